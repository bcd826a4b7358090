package config

import (
	"github.com/spf13/viper"
)

const (
	DefaultClippingsPath = "My Clippings.txt"
	DefaultTemplate      = "{content}\n\n*{author} - {title}*"
	DefaultUnknownAuthor = "Unknown author"
)

type (
	Config struct {
		Clippings
		Log
		Output
	}

	Clippings struct {
		Path string // Default input file when none is given on the command line
	}
	Log struct {
		Level  string // logrus level name
		Format string // "text" or "json"
	}
	Output struct {
		Format        string // Default format for the list command
		Template      string // Template used by "export --format template"
		UnknownAuthor string // Substituted for {author} when an entry has none
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("clippings_file", DefaultClippingsPath)
	v.SetDefault("clippings_log_level", "warn")
	v.SetDefault("clippings_log_format", "text")
	v.SetDefault("clippings_output_format", "text")
	v.SetDefault("clippings_template", DefaultTemplate)
	v.SetDefault("clippings_unknown_author", DefaultUnknownAuthor)

	return &Config{
		Clippings: Clippings{
			Path: v.GetString("CLIPPINGS_FILE"),
		},
		Log: Log{
			Level:  v.GetString("CLIPPINGS_LOG_LEVEL"),
			Format: v.GetString("CLIPPINGS_LOG_FORMAT"),
		},
		Output: Output{
			Format:        v.GetString("CLIPPINGS_OUTPUT_FORMAT"),
			Template:      v.GetString("CLIPPINGS_TEMPLATE"),
			UnknownAuthor: v.GetString("CLIPPINGS_UNKNOWN_AUTHOR"),
		},
	}
}
