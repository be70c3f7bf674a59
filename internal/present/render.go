package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"promptbench/internal/batch"
	"promptbench/pkg/types"
)

const defaultWidth = 80

// TextRenderer writes groups as styled plain text. Styling degrades to
// plain text when the writer is not a terminal.
type TextRenderer struct {
	Width int

	header lipgloss.Style
	label  lipgloss.Style
	body   lipgloss.Style
	muted  lipgloss.Style
}

// NewTextRenderer builds a renderer bound to w's color profile.
func NewTextRenderer(w io.Writer, width int) *TextRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	r := lipgloss.NewRenderer(w)
	return &TextRenderer{
		Width:  width,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Align(lipgloss.Center).Width(width),
		label:  r.NewStyle().Bold(true),
		body:   r.NewStyle().Width(width),
		muted:  r.NewStyle().Faint(true),
	}
}

// Render writes every group. Groups are separated by a horizontal rule.
func (t *TextRenderer) Render(w io.Writer, groups []types.ComparisonGroup) error {
	var b strings.Builder
	for i, g := range groups {
		b.WriteString(t.header.Render(g.ModelName))
		b.WriteString("\n\n")
		if len(g.Results) == 0 {
			b.WriteString(t.muted.Render("(no results)"))
			b.WriteString("\n")
		}
		for j, r := range g.Results {
			b.WriteString(t.label.Render("Prompt:"))
			b.WriteString("\n")
			t.paragraphs(&b, batch.SplitParagraphs(r.PromptContent))
			b.WriteString(t.muted.Render(strings.Repeat("─", t.Width)))
			b.WriteString("\n")
			t.paragraphs(&b, r.Paragraphs)
			if j < len(g.Results)-1 {
				b.WriteString("\n")
			}
		}
		if i < len(groups)-1 {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("═", t.Width))
			b.WriteString("\n\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *TextRenderer) paragraphs(b *strings.Builder, paras []string) {
	for _, p := range paras {
		fmt.Fprintln(b, t.body.Render(p))
		b.WriteString("\n")
	}
}
