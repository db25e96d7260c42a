package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pogen/internal/docxfile"
)

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders <template.docx>",
	Short: "List the placeholder tokens in a PO template",
	Long: `Placeholders scans the template's document body for {{TOKEN}} markers
and reports each one, flagging tokens that no rule in the active rule
set would ever fill.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		names, err := docxfile.Placeholders(data)
		if err != nil {
			return err
		}

		rules, err := loadRules()
		if err != nil {
			return err
		}
		declared := make(map[string]bool, rules.Len())
		for _, f := range rules.FieldNames() {
			declared[f] = true
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d placeholders in %s", len(names), args[0])))
		for _, name := range names {
			label := fmt.Sprintf("{{%s}}", name)
			if declared[name] {
				fmt.Fprintf(w, "  %s\n", successStyle.Render(label))
			} else {
				fmt.Fprintf(w, "  %s %s\n", warnStyle.Render(label), dimStyle.Render("no rule fills this token"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(placeholdersCmd)
}
