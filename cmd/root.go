package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/oneroster-parity/internal/app"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	apperrors "github.com/olusolaa/oneroster-parity/internal/errors"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	reporter  string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "oneroster-parity",
	Short: "Verifies that two OneRoster backends serve identical data.",
	Long: `OneRoster Parity compares the PostgreSQL and SQL Server deployments of a
OneRoster 1.2 service, either table by table or through their REST API
responses, and reports every difference it finds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

// errDifferent marks a completed run whose endpoints were not all identical.
var errDifferent = fmt.Errorf("parity differences found")

func newCompareCommand(mode domain.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s [ds4|ds5] [endpoint]", mode),
		Short: short,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), mode, args)
		},
	}
}

func runCompare(ctx context.Context, mode domain.Mode, args []string) error {
	application, err := app.BuildApplicationFromViper(ctx, viper.GetViper(), mode, args)
	if err != nil {
		printError("Application initialization failed", err)
		return err
	}

	report, err := application.Run(ctx)
	if err != nil {
		printError("Comparison failed", err)
		return err
	}
	if !report.Passed() {
		return errDifferent
	}
	return nil
}

func printError(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", prefix, err)
	if msg, suggestion, ok := apperrors.GetUserFacingMessage(err); ok {
		fmt.Fprintf(os.Stderr, "Error Details: %s\n", msg)
		if suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
		}
	}
	if apperrors.Is(err, apperrors.CodeInvalidArgument) {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", app.Usage)
	}
}

// Execute runs the CLI and returns the process exit code: 0 only when every
// compared endpoint is identical.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .oneroster-parity.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&reporter, "reporter", "text", "Report format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	_ = viper.BindPFlag("settings.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("settings.log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("settings.reporter", rootCmd.PersistentFlags().Lookup("reporter"))
	_ = viper.BindPFlag("settings.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	viper.SetEnvPrefix("PARITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		newCompareCommand(domain.ModeTables, "Compare the oneroster12 tables of both databases row by row"),
		newCompareCommand(domain.ModeEnvelopes, "Compare the REST API responses of both deployments"),
	)
}

func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".oneroster-parity")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return apperrors.WrapUserFacing(err, apperrors.CodeConfigReadError, "failed to read config file",
				"Check that the configuration file exists and is valid YAML.")
		}
	}
	return nil
}
