package log

import "io"

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	Level  Level  `mapstructure:"log_level"`
	Format Format `mapstructure:"log_format"`
	// Output defaults to stderr so stdout stays reserved for the report.
	Output io.Writer `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
	}
}
