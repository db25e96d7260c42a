package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pogen/internal/docxfile"
)

var convertOutput string

var convertCmd = &cobra.Command{
	Use:   "convert <mom-file> <template.docx>",
	Short: "Generate a PO document from a MOM and a template",
	Long: `Convert extracts fields from the MOM document and substitutes them
into the template's {{PLACEHOLDER}} tokens. The finished PO is written
next to the MOM file unless -o is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		momPath, tmplPath := args[0], args[1]

		result, err := extractMOM(momPath)
		if err != nil {
			return err
		}

		tmplData, err := os.ReadFile(tmplPath)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}

		output, report, err := docxfile.Render(tmplData, result.Fields, fallbackPolicy())
		if err != nil {
			return err
		}

		outPath := convertOutput
		if outPath == "" {
			outPath = defaultOutputPath(momPath)
		}
		if err := os.WriteFile(outPath, output, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		printConvertReport(cmd.OutOrStdout(), momPath, outPath, result, report)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output path for the generated PO (default: PO_<mom>_<timestamp>.docx)")
	rootCmd.AddCommand(convertCmd)
}

// defaultOutputPath mirrors the office convention: the PO lands next to
// its MOM, stamped with the generation time.
func defaultOutputPath(momPath string) string {
	stem := strings.TrimSuffix(filepath.Base(momPath), filepath.Ext(momPath))
	name := fmt.Sprintf("PO_%s_%s.docx", stem, time.Now().Format("20060102_150405"))
	return filepath.Join(filepath.Dir(momPath), name)
}
