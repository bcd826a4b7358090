package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/clippings/internal/config"
	"github.com/mrlokans/clippings/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	logLevel  string
	logFormat string
}

// NewRootCommand creates the top-level command hosting the subcommands.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	a := &app{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "clippings",
		Short: "Read, filter and convert Kindle 'My Clippings.txt' exports.",
		Long: "clippings parses the annotation file a Kindle keeps in documents/My Clippings.txt.\n" +
			"Malformed entries are skipped and reported; everything else is listed or exported.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(config.Log{Level: a.logLevel, Format: a.logFormat}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", cfg.Log.Format, "Log format (text, json)")

	cmd.AddCommand(
		newListCommand(a),
		newExportCommand(a),
	)

	return cmd
}

// Main runs the command line and exits non-zero on failure.
func Main(cfg *config.Config, version string) {
	if err := NewRootCommand(cfg, version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
