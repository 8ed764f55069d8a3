package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tiletree/internal/ipc"
)

// layoutItem implements list.Item for the stored-layout picker.
type layoutItem struct {
	name string
}

func (i layoutItem) Title() string       { return i.name }
func (i layoutItem) Description() string { return "" }
func (i layoutItem) FilterValue() string { return i.name }

// clearStatusMsg clears a transient status line after a delay.
type clearStatusMsg struct{}

func clearStatusAfterDelay() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// LayoutsTab lists the daemon's stored layouts and manages them.
type LayoutsTab struct {
	list   list.Model
	client *ipc.Client

	lastErr    error
	statusText string

	// Save-as form
	saving   bool
	form     *huh.Form
	saveName string

	width  int
	height int
	ready  bool
}

// NewLayoutsTab creates the Layouts sub-model.
func NewLayoutsTab(client *ipc.Client) LayoutsTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Stored Layouts"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	lt := LayoutsTab{list: l, client: client}
	lt.refresh()
	return lt
}

func (lt *LayoutsTab) refresh() {
	names, err := lt.client.ListLayouts()
	lt.lastErr = err
	if err != nil {
		return
	}
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, layoutItem{name: name})
	}
	lt.list.SetItems(items)
}

// Update implements the sub-model contract.
func (lt LayoutsTab) Update(msg tea.Msg) (LayoutsTab, tea.Cmd) {
	if lt.saving {
		return lt.updateSaving(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lt.width = msg.Width
		lt.height = msg.Height
		lt.updateListSize()
		lt.ready = true
		return lt, nil

	case clearStatusMsg:
		lt.statusText = ""
		return lt, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "l":
			return lt.loadSelected()
		case "d":
			return lt.deleteSelected()
		case "s":
			lt.startSaveForm()
			return lt, lt.form.Init()
		}
	}

	var cmd tea.Cmd
	lt.list, cmd = lt.list.Update(msg)
	return lt, cmd
}

func (lt LayoutsTab) updateSaving(msg tea.Msg) (LayoutsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			lt.saving = false
			lt.form = nil
			return lt, nil
		}
	case tea.WindowSizeMsg:
		lt.width = msg.Width
		lt.height = msg.Height
		lt.updateListSize()
	}

	form, cmd := lt.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		lt.form = f
	}

	if lt.form.State == huh.StateCompleted {
		name := strings.TrimSpace(lt.saveName)
		lt.saving = false
		lt.form = nil
		if err := lt.client.SaveLayout(name); err != nil {
			lt.statusText = fmt.Sprintf("error: %v", err)
		} else {
			lt.statusText = fmt.Sprintf("saved: %s", name)
			lt.refresh()
		}
		return lt, clearStatusAfterDelay()
	}

	return lt, cmd
}

func (lt *LayoutsTab) startSaveForm() {
	lt.saveName = ""

	w := lt.width - 4
	if w < 40 {
		w = 40
	}

	lt.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Layout Name").
				Description("Snapshot the current tree under this name").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name must not be empty")
					}
					return nil
				}).
				Value(&lt.saveName),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	lt.saving = true
}

func (lt *LayoutsTab) updateListSize() {
	// Reserve 2 lines for the status line at the bottom of the tab.
	listHeight := lt.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	lt.list.SetSize(lt.width, listHeight)
}

func (lt LayoutsTab) selectedName() string {
	item, ok := lt.list.SelectedItem().(layoutItem)
	if !ok {
		return ""
	}
	return item.name
}

func (lt LayoutsTab) loadSelected() (LayoutsTab, tea.Cmd) {
	name := lt.selectedName()
	if name == "" {
		return lt, nil
	}
	if err := lt.client.LoadLayout(name); err != nil {
		lt.statusText = fmt.Sprintf("error: %v", err)
	} else {
		lt.statusText = fmt.Sprintf("loaded: %s", name)
	}
	return lt, clearStatusAfterDelay()
}

func (lt LayoutsTab) deleteSelected() (LayoutsTab, tea.Cmd) {
	name := lt.selectedName()
	if name == "" {
		return lt, nil
	}
	if err := lt.client.DeleteLayout(name); err != nil {
		lt.statusText = fmt.Sprintf("error: %v", err)
	} else {
		lt.statusText = fmt.Sprintf("deleted: %s", name)
		lt.refresh()
	}
	return lt, clearStatusAfterDelay()
}

// View implements the sub-model contract.
func (lt LayoutsTab) View() string {
	if !lt.ready || lt.width == 0 || lt.height == 0 {
		return ""
	}
	if lt.lastErr != nil {
		return renderPlaceholder("daemon unreachable", lt.width, lt.height)
	}

	if lt.saving && lt.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Save Current Layout") +
			lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Render("  (esc to cancel)")

		return lipgloss.NewStyle().
			Width(lt.width).
			Height(lt.height).
			Padding(1, 2).
			Render(header + "\n\n" + lt.form.View())
	}

	status := lt.renderTabStatus()
	return lipgloss.JoinVertical(lipgloss.Left, lt.list.View(), status)
}

func (lt LayoutsTab) renderTabStatus() string {
	left := ""
	if lt.statusText != "" {
		left = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render(lt.statusText)
	}

	right := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("enter/l:load  s:save current  d:delete")

	gap := lt.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(lt.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
