// package formatter renders run previews and results for the terminal (plain text, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --format flag value. An empty value means [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: format must be text, markdown or json, got %q", shared.ErrInvalidFlag, s)
	}
}

// Preview renders p in the given format.
func Preview(p *models.Preview, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return PreviewToMarkdown(p)
	case FormatJSON:
		return PreviewToJSON(p)
	default:
		return PreviewToText(p)
	}
}

func blockLine(b models.BlockOutcome) string {
	switch b.Status {
	case models.BlockRendered:
		return fmt.Sprintf("%s %s → %s: %s", styles.ok.Render("✓"), b.Name, b.DocID, b.Title)
	case models.BlockNoTask:
		return fmt.Sprintf("%s %s → %s %s", styles.warn.Render("-"), b.Name, b.DocID, styles.muted.Render("(no task today)"))
	default:
		return fmt.Sprintf("%s %s %s", styles.muted.Render("-"), b.Name, styles.muted.Render("(disabled)"))
	}
}

// PreviewToText converts a preview to styled terminal text
func PreviewToText(p *models.Preview) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render(fmt.Sprintf("Preview for %s", p.Date)))
	buf.WriteString(fmt.Sprintf(" %s\n\n", styles.muted.Render("run "+p.RunID)))

	buf.WriteString(styles.title.Render("Blocks") + "\n")
	for _, b := range p.Blocks {
		buf.WriteString("  " + blockLine(b) + "\n")
	}

	buf.WriteString("\n" + styles.title.Render("Documents") + "\n")
	if len(p.Destinations) == 0 {
		buf.WriteString(styles.muted.Render("  nothing to write today") + "\n")
	}
	for _, d := range p.Destinations {
		buf.WriteString(fmt.Sprintf("── %s %s ──\n", d.DocID, styles.muted.Render(fmt.Sprintf("(%d bytes)", len(d.Content)))))
		buf.WriteString(d.Content)
		buf.WriteString("\n\n")
	}

	return buf.Bytes(), nil
}

// PreviewToMarkdown converts a preview to Markdown with one section per document
func PreviewToMarkdown(p *models.Preview) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Preview for %s\n\n", p.Date))
	buf.WriteString(fmt.Sprintf("**Run**: `%s`\n\n", p.RunID))

	buf.WriteString("## Blocks\n\n")
	buf.WriteString("| Block | Document | Status | Title |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, b := range p.Blocks {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", b.Name, b.DocID, b.Status, b.Title))
	}

	buf.WriteString("\n## Documents\n")
	for _, d := range p.Destinations {
		buf.WriteString(fmt.Sprintf("\n### %s\n\n", d.DocID))
		buf.WriteString("```\n")
		buf.WriteString(d.Content)
		buf.WriteString("\n```\n")
	}

	return buf.Bytes(), nil
}

// PreviewToJSON converts a preview to indented JSON
func PreviewToJSON(p *models.Preview) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preview: %w", err)
	}
	return data, nil
}

// ResultToText summarises a finished run, one line per document write
func ResultToText(r *models.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	for _, b := range r.Blocks {
		buf.WriteString(blockLine(b) + "\n")
	}
	if len(r.Blocks) > 0 {
		buf.WriteString("\n")
	}

	for _, w := range r.Writes {
		if w.Err != nil {
			buf.WriteString(fmt.Sprintf("%s %s: %v\n", styles.err.Render("✗"), w.DocID, w.Err))
			continue
		}
		buf.WriteString(fmt.Sprintf("%s %s %s\n", styles.ok.Render("✓"), w.DocID, styles.muted.Render(fmt.Sprintf("(%d bytes)", w.Bytes))))
	}

	summary := fmt.Sprintf("Updated %d document(s), %d failed", r.Updated, r.Failed)
	switch {
	case r.Failed > 0:
		summary = styles.err.Render(summary)
	case r.Updated == 0:
		summary = styles.warn.Render("No documents to update")
	default:
		summary = styles.ok.Render(summary)
	}
	buf.WriteString(summary + "\n")

	return buf.Bytes(), nil
}
