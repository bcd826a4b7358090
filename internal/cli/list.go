package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/clippings/internal/kindle"
)

// ListCommand prints the entries of a clippings file.
type ListCommand struct {
	Path    string
	Format  string
	Strict  bool
	Filters filterFlags
}

func newListCommand(a *app) *cobra.Command {
	lc := &ListCommand{}

	cmd := &cobra.Command{
		Use:   "list [clippings-file]",
		Short: "Print the entries of a clippings file.",
		Long: "list parses the clippings file and prints every entry matching the filters.\n" +
			"Without a file argument the path from CLIPPINGS_FILE is used.",
		Example: "  clippings list \"/Volumes/Kindle/documents/My Clippings.txt\"\n" +
			"  clippings list --author steinbeck --format json \"My Clippings.txt\"\n" +
			"  clippings list --action note --action highlight --strict",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc.Path = resolvePath(args, a.cfg.Clippings.Path)
			return lc.Run(a, cmd)
		},
	}

	cmd.Flags().StringVarP(&lc.Format, "format", "f", a.cfg.Output.Format, "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&lc.Strict, "strict", false, "Fail when any clipping is malformed")
	lc.Filters.register(cmd)

	return cmd
}

func (lc *ListCommand) Run(a *app, cmd *cobra.Command) error {
	entries, report, err := loadEntries(a, lc.Path, lc.Filters, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []kindle.Entry{}
	}

	out := cmd.OutOrStdout()
	switch lc.Format {
	case "text":
		if len(entries) == 0 {
			fmt.Fprintln(out, "No entries found")
		}
		renderText(out, entries)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", lc.Format)
	}

	if lc.Strict && len(report.Failures) > 0 {
		return fmt.Errorf("%d malformed clipping(s) in %s, first: %w", len(report.Failures), lc.Path, report.Failures[0])
	}
	return nil
}
