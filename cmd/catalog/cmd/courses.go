package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courserag/internal/courseindex"
	"courserag/internal/logger"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Look up courses in the joined dataset",
}

var coursesGetCmd = &cobra.Command{
	Use:   "get <code>",
	Short: "Print one course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd)
		if err != nil {
			return err
		}
		c, ok := idx.Get(args[0])
		if !ok {
			return fmt.Errorf("course %q not found", args[0])
		}
		return printJSON(c)
	},
}

var coursesPrefixCmd = &cobra.Command{
	Use:   "prefix [prefix]",
	Short: "Print courses whose code starts with prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd)
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		return printJSON(idx.QueryByPrefix(prefix))
	},
}

var coursesSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Print courses whose code or name contains term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd)
		if err != nil {
			return err
		}
		return printJSON(idx.Search(args[0]))
	},
}

func init() {
	coursesCmd.AddCommand(coursesGetCmd, coursesPrefixCmd, coursesSearchCmd)
}

func openIndex(cmd *cobra.Command) (*courseindex.Index, error) {
	return courseindex.New(cmd.Context(), courseSource(cfg), logger.WithComponent("courseindex"))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
