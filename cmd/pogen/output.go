package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/pogen/internal/extract"
	"github.com/dgallion1/pogen/internal/section"
	"github.com/dgallion1/pogen/internal/template"
)

var (
	// titleStyle for section headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for resolved fields and success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warnStyle for empty fields and structural warnings
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// boxStyle for the summary box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// printConvertReport renders the conversion summary box.
func printConvertReport(w io.Writer, momPath, outPath string, result *extract.Result, report template.Report) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("MOM:"), momPath)
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("PO:"), successStyle.Render(outPath))
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("PO No:"), result.Fields.Get("PO_NO"))
	fmt.Fprintf(&b, "%s %d/%d fields, %d placeholders replaced",
		dimStyle.Render("Extracted:"), result.Fields.NonEmpty(), len(result.Fields), report.Replaced())

	if unresolved := report.Unresolved(); len(unresolved) > 0 {
		fmt.Fprintf(&b, "\n%s %s", warnStyle.Render("Unresolved:"), strings.Join(unresolved, ", "))
	}
	for _, warning := range result.Tree.Warnings {
		fmt.Fprintf(&b, "\n%s %s", warnStyle.Render("Warning:"), warning)
	}

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

// printAnalyzeReport renders the header, section outline and extracted
// fields of one MOM document.
func printAnalyzeReport(w io.Writer, momPath string, result *extract.Result) {
	fmt.Fprintln(w, titleStyle.Render("MOM "+momPath))

	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("MOM NO:"), result.Header.MOMNo)
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("DATE:"), result.Header.Date)
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("SUBJECT:"), preview(result.Header.Subject, 60))

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Sections"))
	printOutline(w, result.Tree.Root, 0)

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Fields (%d set of %d)", result.Fields.NonEmpty(), len(result.Fields))))
	for _, name := range fieldNames(result.Fields) {
		value := result.Fields[name]
		label := fmt.Sprintf("{{%s}}", name)
		if value == "" {
			fmt.Fprintf(w, "  %s\n", warnStyle.Render(label))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", successStyle.Render(label), dimStyle.Render(preview(value, 60)))
	}

	for _, warning := range result.Tree.Warnings {
		fmt.Fprintf(w, "\n%s %s\n", warnStyle.Render("Warning:"), warning)
	}
}

func printOutline(w io.Writer, node *section.Node, depth int) {
	for _, c := range node.Children {
		indent := strings.Repeat("  ", depth+1)
		fmt.Fprintf(w, "%s[%s] %s\n", indent, c.Number, c.Title)
		printOutline(w, c, depth+1)
	}
}

func fieldNames(fields extract.FieldSet) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
