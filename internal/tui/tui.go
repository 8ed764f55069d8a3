// Package tui provides an interactive terminal inspector for the tiling
// daemon: live status, the container tree, and stored layout management.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/tiletree/internal/ipc"
)

// Run starts the TUI main loop. It connects to the daemon socket lazily;
// a daemon that is not running shows up as disconnected in the status bar
// rather than failing outright.
func Run(socketPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	var client *ipc.Client
	if socketPath == "" {
		client = ipc.NewClient()
	} else {
		client = ipc.NewClientForSocket(socketPath)
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
