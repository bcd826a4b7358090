package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/clippings/internal/filter"
	"github.com/mrlokans/clippings/internal/kindle"
)

// filterFlags are shared by every command that selects entries.
type filterFlags struct {
	Title         string
	Author        string
	Actions       []string
	CaseSensitive bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Title, "title", "t", "", "Only entries whose title contains this text")
	cmd.Flags().StringVarP(&f.Author, "author", "a", "", "Only entries whose author contains this text")
	cmd.Flags().StringSliceVar(&f.Actions, "action", nil, "Only entries of these kinds (highlight, note, bookmark, other)")
	cmd.Flags().BoolVar(&f.CaseSensitive, "case-sensitive", false, "Match title and author case sensitively")
}

func (f filterFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		Title:         f.Title,
		Author:        f.Author,
		CaseSensitive: f.CaseSensitive,
	}
	for _, raw := range f.Actions {
		action := kindle.Action(strings.ToLower(strings.TrimSpace(raw)))
		switch action {
		case kindle.ActionHighlight, kindle.ActionNote, kindle.ActionBookmark, kindle.ActionOther:
			c.Actions = append(c.Actions, action)
		default:
			return filter.Criteria{}, fmt.Errorf("unknown action %q", raw)
		}
	}
	return c, nil
}

// resolvePath picks the file named on the command line, falling back to the
// configured default.
func resolvePath(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func readClippings(path string, log logrus.FieldLogger) (kindle.Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return kindle.Report{}, fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer file.Close()

	report, err := kindle.NewParser(log.WithField("file", path)).ParseReader(file)
	if err != nil {
		return kindle.Report{}, fmt.Errorf("failed to parse clippings: %w", err)
	}
	return report, nil
}

// loadEntries reads path and applies the filters. Skipped blocks are
// reported on errOut.
func loadEntries(a *app, path string, filters filterFlags, errOut io.Writer) ([]kindle.Entry, kindle.Report, error) {
	criteria, err := filters.criteria()
	if err != nil {
		return nil, kindle.Report{}, err
	}

	report, err := readClippings(path, a.log)
	if err != nil {
		return nil, kindle.Report{}, err
	}

	if n := len(report.Failures); n > 0 {
		fmt.Fprintf(errOut, "Skipped %d malformed clipping(s)\n", n)
	}

	return filter.Apply(report.Entries, criteria), report, nil
}

// renderText prints entries as alternating striped records.
func renderText(w io.Writer, entries []kindle.Entry) {
	renderer := lipgloss.NewRenderer(w)
	stripes := []lipgloss.Style{
		renderer.NewStyle().Background(lipgloss.Color("#F0F8FF")).Foreground(lipgloss.Color("#000000")).Padding(0, 1),
		renderer.NewStyle().Background(lipgloss.Color("#D3D3D3")).Foreground(lipgloss.Color("#000000")).Padding(0, 1),
	}
	label := renderer.NewStyle().Bold(true)

	for i, e := range entries {
		author, ok := e.Author()
		if !ok {
			author = "(no author)"
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n", label.Render("Title:"), e.Title())
		fmt.Fprintf(&b, "%s %s\n", label.Render("Author:"), author)
		fmt.Fprintf(&b, "%s %s", label.Render("Added:"), describe(e))
		if content, ok := e.Content(); ok {
			fmt.Fprintf(&b, "\n\n%s", content)
		}

		fmt.Fprintln(w, stripes[i%len(stripes)].Render(b.String()))
	}
}

// describe summarizes the metadata line, e.g. "highlight, page 8, location 64-64, Friday, 5 July 2024".
func describe(e kindle.Entry) string {
	parts := []string{string(e.Action())}
	if page, ok := e.Page(); ok {
		parts = append(parts, "page "+page)
	}
	if location, ok := e.Location(); ok {
		parts = append(parts, "location "+location)
	}
	parts = append(parts, e.Date())
	return strings.Join(parts, ", ")
}
