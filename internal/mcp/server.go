package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tiletree/internal/ipc"
)

const (
	ServerName    = "tiletree"
	ServerVersion = "0.1.0"
)

// daemon is the slice of the IPC client the tools need; tests substitute a
// fake.
type daemon interface {
	GetStatus() (*ipc.StatusData, error)
	DebugLayout() (string, error)
	SaveLayout(name string) error
	LoadLayout(name string) error
	DeleteLayout(name string) error
	ListLayouts() ([]string, error)
	Equalize() error
	Preview(window uint32, x, y int) (*ipc.PreviewData, error)
	Insert(window uint32, x, y int) (*ipc.InsertData, error)
	Resize(window uint32, direction string, dx, dy int) error
}

// Server exposes the layout daemon to MCP clients. Every tool is a thin
// forwarder over the daemon's IPC socket; the server holds no state of its
// own.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    daemon
}

// NewServer creates an MCP server talking to the daemon over IPC.
func NewServer(client *ipc.Client) *Server {
	return newServer(client)
}

func newServer(d daemon) *Server {
	s := &Server{
		mcpServer: mcpsdk.NewServer(
			&mcpsdk.Implementation{
				Name:    ServerName,
				Version: ServerVersion,
			},
			nil,
		),
		daemon: d,
	}
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "layout_status",
		Description: "Get the tiling daemon's status: tracked window count, container count, work area, and uptime.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "inspect_layout",
		Description: "Dump the live container tree as indented text: every container with its direction, bounds, and ratio list, and every window with its bounds.",
	}, s.handleInspect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Save the current window arrangement under a name so it can be restored later.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_layout",
		Description: "Restore a previously saved layout. Windows from the snapshot that no longer exist are dropped; windows that appeared since are appended to the top-level row.",
	}, s.handleLoadLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_layout",
		Description: "Delete a saved layout by name.",
	}, s.handleDeleteLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the names of all saved layouts.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "equalize_layout",
		Description: "Reset every container's ratios so siblings share space equally.",
	}, s.handleEqualize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_drop",
		Description: "Ask what dropping a window at a pointer position would do, without changing anything. Returns the ghost rectangle the drop would occupy, or valid=false when the position implies no action.",
	}, s.handlePreview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drop_window",
		Description: "Drop a window at a pointer position, applying the implied structural action: swap near a window's center, extend the row or split the cell nearer an edge, restructure the enclosing group at the outermost edge.",
	}, s.handleDrop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Grow or shrink a tiled window by a pixel delta on the chosen edges. Space is taken from or given to siblings proportionally.",
	}, s.handleResize)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Windows:       st.Windows,
		Containers:    st.Containers,
		WorkArea:      st.WorkArea,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleInspect(_ context.Context, _ *mcpsdk.CallToolRequest, _ InspectInput) (*mcpsdk.CallToolResult, InspectOutput, error) {
	dump, err := s.daemon.DebugLayout()
	if err != nil {
		return nil, InspectOutput{}, err
	}
	return nil, InspectOutput{Layout: dump}, nil
}

func (s *Server) handleSaveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutNameInput) (*mcpsdk.CallToolResult, LayoutNameOutput, error) {
	if args.Name == "" {
		return nil, LayoutNameOutput{}, fmt.Errorf("layout name is required")
	}
	if err := s.daemon.SaveLayout(args.Name); err != nil {
		return nil, LayoutNameOutput{}, err
	}
	return nil, LayoutNameOutput{Name: args.Name}, nil
}

func (s *Server) handleLoadLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutNameInput) (*mcpsdk.CallToolResult, LayoutNameOutput, error) {
	if args.Name == "" {
		return nil, LayoutNameOutput{}, fmt.Errorf("layout name is required")
	}
	if err := s.daemon.LoadLayout(args.Name); err != nil {
		return nil, LayoutNameOutput{}, err
	}
	return nil, LayoutNameOutput{Name: args.Name}, nil
}

func (s *Server) handleDeleteLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutNameInput) (*mcpsdk.CallToolResult, LayoutNameOutput, error) {
	if args.Name == "" {
		return nil, LayoutNameOutput{}, fmt.Errorf("layout name is required")
	}
	if err := s.daemon.DeleteLayout(args.Name); err != nil {
		return nil, LayoutNameOutput{}, err
	}
	return nil, LayoutNameOutput{Name: args.Name}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	names, err := s.daemon.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	return nil, ListLayoutsOutput{Layouts: names}, nil
}

func (s *Server) handleEqualize(_ context.Context, _ *mcpsdk.CallToolRequest, _ EqualizeInput) (*mcpsdk.CallToolResult, EqualizeOutput, error) {
	if err := s.daemon.Equalize(); err != nil {
		return nil, EqualizeOutput{}, err
	}
	return nil, EqualizeOutput{Done: true}, nil
}

func (s *Server) handlePreview(_ context.Context, _ *mcpsdk.CallToolRequest, args DropInput) (*mcpsdk.CallToolResult, PreviewOutput, error) {
	preview, err := s.daemon.Preview(args.Window, args.X, args.Y)
	if err != nil {
		return nil, PreviewOutput{}, err
	}
	return nil, PreviewOutput{
		Valid:  preview.Valid,
		X:      preview.X,
		Y:      preview.Y,
		Width:  preview.Width,
		Height: preview.Height,
	}, nil
}

func (s *Server) handleDrop(_ context.Context, _ *mcpsdk.CallToolRequest, args DropInput) (*mcpsdk.CallToolResult, DropOutput, error) {
	res, err := s.daemon.Insert(args.Window, args.X, args.Y)
	if err != nil {
		return nil, DropOutput{}, err
	}
	return nil, DropOutput{Action: res.Action}, nil
}

func (s *Server) handleResize(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeInput) (*mcpsdk.CallToolResult, ResizeOutput, error) {
	if args.DX == 0 && args.DY == 0 {
		return nil, ResizeOutput{}, fmt.Errorf("dx and dy are both zero")
	}
	if err := s.daemon.Resize(args.Window, args.Direction, args.DX, args.DY); err != nil {
		return nil, ResizeOutput{}, err
	}
	return nil, ResizeOutput{Done: true}, nil
}
