package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tiletree/internal/ipc"
)

// TreeTab renders the daemon's container tree dump with scrolling.
type TreeTab struct {
	client *ipc.Client

	dump    string
	lastErr error

	scrollOffset int

	width  int
	height int
}

// NewTreeTab creates the Tree sub-model.
func NewTreeTab(client *ipc.Client) TreeTab {
	t := TreeTab{client: client}
	t.refresh()
	return t
}

func (t *TreeTab) refresh() {
	dump, err := t.client.DebugLayout()
	t.lastErr = err
	if err == nil {
		t.dump = dump
	}
}

// Update implements the sub-model contract.
func (t TreeTab) Update(msg tea.Msg) (TreeTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if t.scrollOffset > 0 {
				t.scrollOffset--
			}
		case "down", "j":
			t.scrollOffset++
		case "g":
			t.scrollOffset = 0
		}
	}
	return t, nil
}

// View implements the sub-model contract.
func (t TreeTab) View() string {
	if t.lastErr != nil {
		return renderPlaceholder("daemon unreachable", t.width, t.height)
	}
	if strings.TrimSpace(t.dump) == "" {
		return renderPlaceholder("no windows tracked", t.width, t.height)
	}

	lines := strings.Split(strings.TrimRight(t.dump, "\n"), "\n")

	visible := t.height - 2
	if visible < 1 {
		visible = 1
	}
	maxScroll := len(lines) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	off := t.scrollOffset
	if off > maxScroll {
		off = maxScroll
	}
	end := off + visible
	if end > len(lines) {
		end = len(lines)
	}

	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("247")).
		Render(strings.Join(lines[off:end], "\n"))

	return lipgloss.NewStyle().
		Width(t.width).
		Height(t.height).
		Padding(1, 2).
		Render(body)
}
