package main

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <mom-file>",
	Short: "Inspect a MOM document without generating a PO",
	Long: `Analyze parses the MOM document, prints its header and section
outline, and previews the fields the active rule set would extract.
Use it to check a MOM before conversion or to debug a rule overlay.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := extractMOM(args[0])
		if err != nil {
			return err
		}
		printAnalyzeReport(cmd.OutOrStdout(), args[0], result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
