package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"courserag/internal/config"
	"courserag/internal/logger"
)

var (
	cfgPath string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "catalog joins course listings with instructor ratings",
	Long:          "Build the joined course dataset, serve it over HTTP and answer questions grounded in it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		used := cfgPath
		if cfgPath == "" {
			cfg, used, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Configure(logger.Config{
			Level:  logger.LogLevel(cfg.Logging.Level),
			Pretty: cfg.Logging.Pretty,
		})
		logger.Debug().Str("path", used).Msg("config loaded")
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/courserag/config.yaml)")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(coursesCmd)
}
