// Package main is the entry point for the pogen CLI: convert a MOM
// (minutes of meeting) document into a PO (purchase order) by
// extracting section fields and filling a placeholder template.
package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/pogen/internal/extract"
	"github.com/dgallion1/pogen/internal/mapping"
	"github.com/dgallion1/pogen/internal/momdoc"
	"github.com/dgallion1/pogen/internal/parser"
	"github.com/dgallion1/pogen/internal/template"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pogen",
	Short: "Generate purchase orders from minutes-of-meeting documents",
	Long: `pogen extracts the numbered sections of a MOM (minutes of meeting)
document, maps them onto named fields, and substitutes the fields into
the {{PLACEHOLDER}} tokens of a PO template.

Field mapping is configurable: a YAML or JSON rule file given with
--rules overlays the built-in 36-field PO rule set.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pogen.yaml or ~/.config/pogen/config.yaml)")
	rootCmd.PersistentFlags().String("rules", "", "field-mapping rule file (YAML or JSON), overlays the defaults")
	rootCmd.PersistentFlags().Bool("blank-missing", false, "blank unresolved placeholders instead of keeping them")
	rootCmd.PersistentFlags().String("po-suffix", "", "override the suffix composed onto MOM_NO for PO_NO (default -A01)")
	viper.BindPFlag("rules", rootCmd.PersistentFlags().Lookup("rules"))
	viper.BindPFlag("blank_missing", rootCmd.PersistentFlags().Lookup("blank-missing"))
	viper.BindPFlag("po_suffix", rootCmd.PersistentFlags().Lookup("po-suffix"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pogen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pogen"))
		}
	}
	viper.SetEnvPrefix("POGEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// cliLogger logs warnings and errors to stderr; the CLI's stdout is
// reserved for the report itself.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// loadRules builds the active rule set: defaults plus the optional
// --rules overlay and --po-suffix override.
func loadRules() (*mapping.RuleSet, error) {
	rules := mapping.Defaults()
	if path := viper.GetString("rules"); path != "" {
		var err error
		rules, err = mapping.LoadOver(path, rules)
		if err != nil {
			return nil, err
		}
	}
	if suffix := viper.GetString("po_suffix"); suffix != "" {
		return withPOSuffix(rules, suffix)
	}
	return rules, nil
}

// withPOSuffix rewrites the PO_NO compose suffix.
func withPOSuffix(rules *mapping.RuleSet, suffix string) (*mapping.RuleSet, error) {
	merged := make([]mapping.Rule, 0, rules.Len())
	for _, r := range rules.Rules() {
		rule := *r
		if rule.Field == "PO_NO" && rule.Kind == mapping.KindCompose {
			rule.Suffix = suffix
		}
		merged = append(merged, rule)
	}
	return mapping.NewRuleSet(merged)
}

func fallbackPolicy() template.Fallback {
	if viper.GetBool("blank_missing") {
		return template.FallbackEmpty
	}
	return template.FallbackKeep
}

// parseMOM reads and row-parses a MOM file of any supported format.
func parseMOM(path string) (*momdoc.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(bytes.NewReader(data), filepath.Base(path))
}

// extractMOM parses and extracts one MOM file with the active rules.
func extractMOM(path string) (*extract.Result, error) {
	doc, err := parseMOM(path)
	if err != nil {
		return nil, err
	}
	rules, err := loadRules()
	if err != nil {
		return nil, err
	}
	return extract.New(rules, cliLogger()).Extract(doc)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
