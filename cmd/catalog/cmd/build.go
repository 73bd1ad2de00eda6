package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"courserag/internal/logger"
	"courserag/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Join the raw catalog and instructor snapshots",
	Long:  "Reads both raw snapshots, joins them and writes the course dataset and instructor records.",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	res, err := pipeline.Run(cmd.Context(), pipeline.OptionsFromConfig(cfg, builder, logger.WithComponent("pipeline")))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Stats)
}
