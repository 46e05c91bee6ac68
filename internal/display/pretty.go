package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/seenimoa/finflux/pkg/series"
)

const defaultWrap = 100

func writePretty(w io.Writer, r Result, opts Options) error {
	md, err := markdown(r, opts.Title)
	if err != nil {
		return err
	}
	wrap := opts.Width
	if wrap <= 0 || wrap > 400 {
		wrap = defaultWrap
	}
	tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
	if err != nil {
		return fmt.Errorf("pretty renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return fmt.Errorf("pretty render: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// markdown picks the richest pretty layout available for r.
func markdown(r Result, title string) (string, error) {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	if m, ok := r.Value.(Markdowner); ok {
		sb.WriteString(m.Markdown())
		return sb.String(), nil
	}
	if f := r.table(); f != nil {
		sb.WriteString(MarkdownTable(f))
		return sb.String(), nil
	}
	if r.Value == nil {
		return "", ErrNothingToRender
	}
	b, err := json.MarshalIndent(r.Value, "", "  ")
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&sb, "```json\n%s\n```\n", b)
	return sb.String(), nil
}

// MarkdownTable formats f as a GitHub-style markdown table.
func MarkdownTable(f *series.Frame) string {
	var sb strings.Builder
	sb.WriteString("| |")
	for _, c := range f.Columns {
		sb.WriteString(" " + c + " |")
	}
	sb.WriteString("\n|---|")
	for range f.Columns {
		sb.WriteString("---:|")
	}
	sb.WriteString("\n")
	for i, label := range f.Index {
		sb.WriteString("| " + label + " |")
		for _, v := range f.Data[i] {
			sb.WriteString(" " + v.String() + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Fields formats label/value pairs as a markdown bullet list, skipping
// empty values.
func Fields(pairs ...[2]string) string {
	var sb strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		fmt.Fprintf(&sb, "- **%s:** %s\n", p[0], p[1])
	}
	return sb.String()
}
