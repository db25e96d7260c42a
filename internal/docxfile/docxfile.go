// Package docxfile reads and writes the DOCX template container. A
// template is treated as an opaque zip; substitution rewrites
// word/document.xml and re-packs everything else untouched, so styles,
// headers and images survive verbatim.
package docxfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/pogen/internal/extract"
	"github.com/dgallion1/pogen/internal/template"
)

const documentPath = "word/document.xml"

// Render substitutes the field set into the template bytes and returns
// the finished document plus the substitution report. The template
// bytes are never modified.
func Render(templateData []byte, fields extract.FieldSet, fallback template.Fallback) ([]byte, template.Report, error) {
	doc, err := documentXML(templateData)
	if err != nil {
		return nil, template.Report{}, err
	}

	doc = healSplitTokens(doc)

	// Field values are inserted into XML text, so encode them first.
	// The engine then substitutes encoded values verbatim.
	encoded := make(extract.FieldSet, len(fields))
	for name, value := range fields {
		encoded[name] = encodeValue(value)
	}

	eng := &template.Engine{Fields: encoded, Fallback: fallback}
	out, report := eng.SubstituteText(doc)

	data, err := repack(templateData, out)
	if err != nil {
		return nil, template.Report{}, err
	}
	return data, report, nil
}

// Placeholders lists the distinct placeholder names used by a template.
func Placeholders(templateData []byte) ([]string, error) {
	doc, err := documentXML(templateData)
	if err != nil {
		return nil, err
	}
	return template.Placeholders([]string{healSplitTokens(doc)}), nil
}

// documentXML extracts word/document.xml from the template zip.
func documentXML(templateData []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(templateData), int64(len(templateData)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != documentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPath, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", documentPath, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("not a valid docx template: %s missing", documentPath)
}

// splitTokenRe matches a placeholder that Word broke across runs:
// "{{PO_</w:t></w:r><w:r><w:t>NO}}", with any number of tag/fragment
// alternations before the closing braces. The intervening tags are a
// balanced close-then-open sequence, so dropping them keeps the XML
// well formed while making the token whole again. The trailing "}}"
// anchor leaves stray literal braces in body text alone.
var splitTokenRe = regexp.MustCompile(`\{\{[A-Z0-9_]*(?:(?:<[^<>]+>)+[A-Z0-9_]*)+\}\}`)

var xmlTagRe = regexp.MustCompile(`<[^<>]+>`)

func healSplitTokens(doc string) string {
	return splitTokenRe.ReplaceAllStringFunc(doc, func(m string) string {
		return xmlTagRe.ReplaceAllString(m, "")
	})
}

// encodeValue escapes XML special characters and turns embedded
// newlines into explicit <w:br/> runs so multi-line clauses render as
// real line breaks instead of collapsing into spaces.
func encodeValue(s string) string {
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteString(`</w:t><w:br/><w:t xml:space="preserve">`)
		}
		b.WriteString(escapeXML(line))
	}
	return b.String()
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlReplacer.Replace(s) }

// repack writes a new docx with document.xml replaced and every other
// entry copied through.
func repack(templateData []byte, doc string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(templateData), int64(len(templateData)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   f.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if f.Name == documentPath {
			if _, err := io.WriteString(w, doc); err != nil {
				zw.Close()
				return nil, fmt.Errorf("write %s: %w", f.Name, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}
