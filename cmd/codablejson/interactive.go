package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type browseState int

const (
	stateBrowse browseState = iota
	stateJump
)

// browser walks a value graph one container at a time. Entering a ref
// jumps to its anchor.
type browser struct {
	err      error
	root     *node
	filename string
	stack    []*node
	cursor   []int
	jump     textinput.Model
	state    browseState
	height   int
}

func newBrowser(filename string, root *node) *browser {
	jump := textinput.New()
	jump.Prompt = "path: "
	jump.Placeholder = "a/0/key"
	jump.Width = 40

	return &browser{
		root:     root,
		filename: filename,
		stack:    []*node{root},
		cursor:   []int{0},
		jump:     jump,
		state:    stateBrowse,
		height:   20,
	}
}

func (m *browser) Init() tea.Cmd {
	return nil
}

func (m *browser) current() *node {
	return m.stack[len(m.stack)-1]
}

func (m *browser) selected() *node {
	cur := m.current()
	i := m.cursor[len(m.cursor)-1]
	if i < 0 || i >= len(cur.children) {
		return nil
	}
	return cur.children[i]
}

// enter descends into n, or into the anchor n refers to.
func (m *browser) enter(n *node) {
	if n == nil {
		return
	}
	if n.target != nil {
		n = n.target
	}
	if len(n.children) == 0 {
		return
	}
	m.stack = append(m.stack, n)
	m.cursor = append(m.cursor, 0)
}

func (m *browser) back() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
		m.cursor = m.cursor[:len(m.cursor)-1]
	}
}

func (m *browser) move(delta int) {
	i := &m.cursor[len(m.cursor)-1]
	n := len(m.current().children)
	*i = min(max(*i+delta, 0), max(n-1, 0))
}

// jumpTo resets the view to the container at a slash-separated path
// from the root.
func (m *browser) jumpTo(path string) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	m.stack = []*node{m.root}
	m.cursor = []int{0}
	m.err = nil
	if path == "" {
		return
	}

	segments := strings.Split(path, "/")
	target := m.root.find(segments)
	if target == nil {
		m.err = fmt.Errorf("no value at /%s", path)
		return
	}
	for i := range segments {
		n := m.root.find(segments[:i+1])
		if n.target != nil {
			n = n.target
		}
		if len(n.children) > 0 {
			m.stack = append(m.stack, n)
			m.cursor = append(m.cursor, 0)
		}
	}
}

func (m *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 3)

	case tea.KeyMsg:
		if m.state == stateJump {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.jumpTo(m.jump.Value())
				m.jump.Reset()
				m.jump.Blur()
				m.state = stateBrowse
				return m, nil
			case "esc":
				m.jump.Reset()
				m.jump.Blur()
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.jump, cmd = m.jump.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "enter", "right", "l":
			m.err = nil
			m.enter(m.selected())
		case "esc", "left", "h", "backspace":
			m.err = nil
			m.back()
		case "/":
			m.state = stateJump
			return m, m.jump.Focus()
		}
	}
	return m, nil
}

// location is the label path of the current container.
func (m *browser) location() string {
	var labels []string
	for _, n := range m.stack[1:] {
		labels = append(labels, n.label)
	}
	return "/" + strings.Join(labels, "/")
}

func (m *browser) View() string {
	var b strings.Builder
	p := painter{}

	b.WriteString(titleStyle.Render("codablejson"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(" ")
	b.WriteString(labelStyle.Render(m.location()))
	b.WriteString("\n")
	b.WriteString(summary(m.current(), p))
	b.WriteString("\n\n")

	cur := m.current()
	sel := m.cursor[len(m.cursor)-1]
	start := max(0, sel-m.height+1)
	end := min(len(cur.children), start+m.height)
	for i := start; i < end; i++ {
		c := cur.children[i]
		line := c.label + ": " + summary(c, painter{plain: i == sel})
		if i == sel {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(cur.children) == 0 {
		b.WriteString(helpStyle.Render("  (no members)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.state == stateJump:
		b.WriteString(m.jump.View())
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	default:
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • esc back • / jump • q quit"))
	}
	return b.String()
}

func runInteractive(filename string, root *node) error {
	p := tea.NewProgram(newBrowser(filename, root), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
