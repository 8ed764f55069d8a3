package tui

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tiletree/internal/ipc"
)

// OverviewTab shows daemon status and exposes one-shot tree operations.
type OverviewTab struct {
	client *ipc.Client

	status  *ipc.StatusData
	lastErr error

	statusText string

	width  int
	height int
}

// NewOverviewTab creates the Overview sub-model.
func NewOverviewTab(client *ipc.Client) OverviewTab {
	t := OverviewTab{client: client}
	t.refresh()
	return t
}

func (o *OverviewTab) refresh() {
	status, err := o.client.GetStatus()
	o.status = status
	o.lastErr = err
}

// Update implements the sub-model contract.
func (o OverviewTab) Update(msg tea.Msg) (OverviewTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height
		return o, nil

	case clearStatusMsg:
		o.statusText = ""
		return o, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			if err := o.client.Equalize(); err != nil {
				o.statusText = fmt.Sprintf("error: %v", err)
			} else {
				o.statusText = "ratios equalized"
				o.refresh()
			}
			return o, clearStatusAfterDelay()
		case "c":
			if err := o.client.Reconcile(); err != nil {
				o.statusText = fmt.Sprintf("error: %v", err)
			} else {
				o.statusText = "reconciled with live windows"
				o.refresh()
			}
			return o, clearStatusAfterDelay()
		}
	}
	return o, nil
}

// View implements the sub-model contract.
func (o OverviewTab) View() string {
	if o.lastErr != nil || o.status == nil {
		return renderPlaceholder("daemon unreachable", o.width, o.height)
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(16).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	uptime := (time.Duration(o.status.UptimeSeconds) * time.Second).String()

	lines := []string{
		"",
		row("Windows", strconv.Itoa(o.status.Windows)),
		row("Containers", strconv.Itoa(o.status.Containers)),
		row("Work Area", o.status.WorkArea),
		row("Uptime", uptime),
		"",
		dimStyle.Render("  e: equalize ratios   c: reconcile now"),
	}
	if o.statusText != "" {
		lines = append(lines, "", "  "+lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(o.statusText))
	}

	content := ""
	for i, l := range lines {
		if i > 0 {
			content += "\n"
		}
		content += l
	}

	return lipgloss.NewStyle().
		Width(o.width).
		Height(o.height).
		Padding(1, 2).
		Render(content)
}
