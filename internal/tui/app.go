package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tiletree/internal/ipc"
)

// refreshInterval drives the periodic daemon poll while the TUI is open.
const refreshInterval = 2 * time.Second

// refreshMsg asks all tabs to re-fetch their data from the daemon.
type refreshMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	client *ipc.Client

	activeTab Tab

	overviewTab OverviewTab
	treeTab     TreeTab
	layoutsTab  LayoutsTab

	// Daemon state shown in the status bar.
	daemonConnected bool
	windowCount     int
	containerCount  int

	width  int
	height int
}

func newModel(client *ipc.Client) model {
	m := model{
		client:      client,
		activeTab:   TabOverview,
		overviewTab: NewOverviewTab(client),
		treeTab:     NewTreeTab(client),
		layoutsTab:  NewLayoutsTab(client),
	}
	m.refreshDaemonStatus()
	return m
}

func (m *model) refreshDaemonStatus() {
	status, err := m.client.GetStatus()
	if err != nil {
		m.daemonConnected = false
		m.windowCount = 0
		m.containerCount = 0
		return
	}
	m.daemonConnected = true
	m.windowCount = status.Windows
	m.containerCount = status.Containers
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return scheduleRefresh()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The save form captures all input while open; only ctrl+c escapes.
	if m.layoutsTab.saving {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
			m.forwardSize()
			return m, nil
		}
		var cmd tea.Cmd
		m.layoutsTab, cmd = m.layoutsTab.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil

		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil

		case "1":
			m.activeTab = TabOverview
			return m, nil
		case "2":
			m.activeTab = TabTree
			return m, nil
		case "3":
			m.activeTab = TabLayouts
			return m, nil

		case "r":
			m.refreshDaemonStatus()
			m.refreshTabs()
			return m, nil
		}

	case refreshMsg:
		m.refreshDaemonStatus()
		m.refreshTabs()
		return m, scheduleRefresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.forwardSize()
		return m, nil
	}

	// Delegate to the active tab's sub-model.
	var cmd tea.Cmd
	switch m.activeTab {
	case TabOverview:
		m.overviewTab, cmd = m.overviewTab.Update(msg)
	case TabTree:
		m.treeTab, cmd = m.treeTab.Update(msg)
	case TabLayouts:
		m.layoutsTab, cmd = m.layoutsTab.Update(msg)
	}
	return m, cmd
}

func (m *model) forwardSize() {
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.overviewTab, _ = m.overviewTab.Update(subMsg)
	m.treeTab, _ = m.treeTab.Update(subMsg)
	m.layoutsTab, _ = m.layoutsTab.Update(subMsg)
}

func (m *model) refreshTabs() {
	m.overviewTab.refresh()
	m.treeTab.refresh()
	m.layoutsTab.refresh()
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.daemonConnected, m.windowCount, m.containerCount, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch m.activeTab {
	case TabOverview:
		content = m.overviewTab.View()
	case TabTree:
		content = m.treeTab.View()
	case TabLayouts:
		content = m.layoutsTab.View()
	}
	content = truncateLines(content, contentHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
