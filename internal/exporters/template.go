package exporters

import (
	"strings"

	"github.com/mrlokans/clippings/internal/kindle"
)

// Template renders an entry by substituting {title}, {author}, {action},
// {page}, {location}, {date} and {content}. Missing optional fields render
// as an empty string, except {author} which falls back to UnknownAuthor.
type Template struct {
	Text          string
	UnknownAuthor string
}

// ParseTemplate builds a Template from user input, expanding the \n and \t
// escapes that environment variables and flags cannot carry literally.
func ParseTemplate(text, unknownAuthor string) Template {
	return Template{
		Text:          strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(text),
		UnknownAuthor: unknownAuthor,
	}
}

func (t Template) Format(e kindle.Entry) string {
	author, ok := e.Author()
	if !ok {
		author = t.UnknownAuthor
	}
	page, _ := e.Page()
	location, _ := e.Location()
	content, _ := e.Content()

	return strings.NewReplacer(
		"{title}", e.Title(),
		"{author}", author,
		"{action}", string(e.Action()),
		"{page}", page,
		"{location}", location,
		"{date}", e.Date(),
		"{content}", content,
	).Replace(t.Text)
}

// FormatAll renders every entry, separated by a blank line.
func (t Template) FormatAll(entries []kindle.Entry) string {
	rendered := make([]string, 0, len(entries))
	for _, e := range entries {
		rendered = append(rendered, t.Format(e))
	}
	return strings.Join(rendered, "\n\n")
}
