package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/clippings/internal/exporters"
	"github.com/mrlokans/clippings/internal/kindle"
)

// timeNow stamps markdown front matter.
var timeNow = time.Now

// ExportCommand converts the entries of a clippings file.
type ExportCommand struct {
	Path          string
	Format        string
	Template      string
	UnknownAuthor string
	Output        string
	Filters       filterFlags
}

func newExportCommand(a *app) *cobra.Command {
	ec := &ExportCommand{}

	cmd := &cobra.Command{
		Use:   "export [clippings-file]",
		Short: "Convert entries to clippings, template or markdown output.",
		Long: "export writes the entries matching the filters in one of three formats:\n" +
			"  clippings  the Kindle format itself, e.g. to split a file by author\n" +
			"  template   each entry rendered through --template\n" +
			"  markdown   one Obsidian note per book; -o names a directory",
		Example: "  clippings export --author tolle -o tolle.txt \"My Clippings.txt\"\n" +
			"  clippings export --format template --template '{content}\\n-- {title}'\n" +
			"  clippings export --format markdown -o ~/Obsidian/Highlights",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ec.Path = resolvePath(args, a.cfg.Clippings.Path)
			return ec.Run(a, cmd)
		},
	}

	cmd.Flags().StringVarP(&ec.Format, "format", "f", "clippings", "Output format (clippings, template, markdown)")
	cmd.Flags().StringVar(&ec.Template, "template", a.cfg.Output.Template, "Template for --format template")
	cmd.Flags().StringVar(&ec.UnknownAuthor, "unknown-author", a.cfg.Output.UnknownAuthor, "Text used for {author} when an entry has none")
	cmd.Flags().StringVarP(&ec.Output, "output", "o", "", "Output file, or directory for markdown (default: stdout)")
	ec.Filters.register(cmd)

	return cmd
}

func (ec *ExportCommand) Run(a *app, cmd *cobra.Command) error {
	switch ec.Format {
	case "clippings", "template", "markdown":
	default:
		return fmt.Errorf("unknown format %q", ec.Format)
	}

	entries, _, err := loadEntries(a, ec.Path, ec.Filters, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if ec.Format == "markdown" && ec.Output != "" {
		result, err := exporters.NewMarkdownExporter(ec.Output, a.log).Export(entries)
		if err != nil {
			return fmt.Errorf("failed to export to markdown: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books (%d entries) to %s\n", result.BooksProcessed, result.EntriesProcessed, ec.Output)
		if result.BooksFailed > 0 {
			return fmt.Errorf("%d books failed to export", result.BooksFailed)
		}
		return nil
	}

	text := ec.render(entries)
	if ec.Output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(ec.Output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ec.Output, err)
	}
	a.log.WithField("path", ec.Output).Infof("Exported %d entries", len(entries))
	return nil
}

func (ec *ExportCommand) render(entries []kindle.Entry) string {
	switch ec.Format {
	case "template":
		text := exporters.ParseTemplate(ec.Template, ec.UnknownAuthor).FormatAll(entries)
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text
	case "markdown":
		createdAt := timeNow()
		var notes []string
		for _, book := range exporters.GroupByBook(entries) {
			notes = append(notes, exporters.GenerateMarkdown(book, createdAt))
		}
		return strings.Join(notes, "\n")
	default:
		return kindle.ExportAll(entries)
	}
}
