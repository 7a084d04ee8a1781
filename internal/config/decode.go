package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/olusolaa/oneroster-parity/internal/errors"
)

// DecodeHook accepts "30s" style durations and comma-separated lists.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Load decodes v on top of DefaultConfig, fills the remaining defaults and
// validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigParseError, "failed to decode configuration",
			"Please check the types of the values in your configuration file.")
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs the struct tag checks and renders every failure.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.CodeConfigValidation, "configuration validation could not run")
	}
	var details strings.Builder
	details.WriteString("Configuration validation failed:")
	for _, fe := range validationErrors {
		details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.NewUserFacing(errors.CodeConfigValidation, details.String(), "Please check your configuration file or flags.")
}
