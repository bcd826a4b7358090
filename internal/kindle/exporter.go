package kindle

import "strings"

const entrySeparator = "=========="

// Export writes e as a single clippings block terminated by the separator
// line. Parse reads the block back into an equal entry. The format has no
// way to tell an empty optional field from a missing one, so empty values
// are written as missing.
func Export(e Entry) string {
	var b strings.Builder
	writeEntry(&b, e)
	return b.String()
}

// ExportAll writes entries as a clippings file, in order.
func ExportAll(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		writeEntry(&b, e)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e Entry) {
	b.WriteString(e.title)
	if author, ok := e.Author(); ok && author != "" {
		b.WriteString(" (" + author + ")")
	}
	b.WriteString("\n")

	b.WriteString("- Your " + e.action.phrase())
	page, _ := e.Page()
	hasPage := page != ""
	if hasPage {
		b.WriteString(" on page " + page)
	}
	if location, _ := e.Location(); location != "" {
		if hasPage {
			b.WriteString(" | Location " + location)
		} else {
			b.WriteString(" at location " + location)
		}
	}
	b.WriteString(" | Added on " + e.date + "\n")

	b.WriteString("\n")
	if content, ok := e.Content(); ok {
		b.WriteString(content + "\n")
	}

	b.WriteString(entrySeparator + "\n")
}
