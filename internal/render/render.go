package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorText    = lipgloss.Color("#c0caf5")
	colorDim     = lipgloss.Color("#565f89")

	labelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	bubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)

// Markdown renders markdown for the terminal using a pooled renderer
func Markdown(content string, opts Options) (string, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Reply renders an assistant reply inside a labelled box. If the markdown
// cannot be rendered the plain text is boxed instead.
func Reply(label, content, footer string, opts Options) string {
	body, err := Markdown(content, opts.WithWidth(opts.Width-4))
	if err != nil {
		body = content
	}
	body = strings.Trim(body, "\n")

	box := bubbleStyle.Width(opts.Width - 2).Render(body)

	var sb strings.Builder
	sb.WriteString(labelStyle.Render(label))
	sb.WriteString("\n")
	sb.WriteString(box)
	if footer != "" {
		sb.WriteString("\n")
		sb.WriteString(footerStyle.Render(footer))
	}
	return sb.String()
}
