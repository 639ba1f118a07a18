package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	scalarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// painter applies styles unless output is plain.
type painter struct {
	plain bool
}

func (p painter) paint(style lipgloss.Style, s string) string {
	if p.plain || s == "" {
		return s
	}
	return style.Render(s)
}

// renderTree writes n and its members one per line, indented two spaces
// per level.
func renderTree(n *node, p painter) string {
	var b strings.Builder
	renderNode(&b, n, p, 0)
	return b.String()
}

func renderNode(b *strings.Builder, n *node, p painter, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(p.paint(labelStyle, n.label))
	b.WriteString(": ")
	b.WriteString(summary(n, p))
	b.WriteByte('\n')
	for _, c := range n.children {
		renderNode(b, c, p, depth+1)
	}
}

// summary is the one-line description of n without its label.
func summary(n *node, p painter) string {
	if n.ref > 0 {
		return p.paint(markerStyle, "*"+strconv.Itoa(n.ref))
	}

	var parts []string
	if n.anchor > 0 {
		parts = append(parts, p.paint(markerStyle, "&"+strconv.Itoa(n.anchor)))
	}
	if n.kind != "" {
		kind := n.kind
		if n.container() {
			kind += "(" + strconv.Itoa(n.size) + ")"
		}
		parts = append(parts, p.paint(kindStyle, kind))
	}
	if n.text != "" {
		parts = append(parts, p.paint(scalarStyle, n.text))
	}
	return strings.Join(parts, " ")
}
