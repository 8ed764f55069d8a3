package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/tiletree/internal/geometry"
	"github.com/1broseidon/tiletree/internal/tiling"
	"github.com/1broseidon/tiletree/internal/wm"
)

// Server answers IPC requests over a unix socket, delegating to the manager.
// Each connection carries one newline-delimited JSON request and gets one
// JSON response.
type Server struct {
	socketPath   string
	listener     net.Listener
	manager      *wm.Manager
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates an IPC server on socketPath. A stale socket from a
// previous run is removed.
func NewServer(socketPath string, manager *wm.Manager, logger *slog.Logger) *Server {
	os.Remove(socketPath)
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		manager:    manager,
		logger:     logger,
	}
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.logger.Info("ipc listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("ipc accept", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("ipc marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("ipc write", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleStatus()
	case CommandDebugLayout:
		return s.handleDebugLayout()
	case CommandGetTree:
		return s.handleGetTree()
	case CommandSaveLayout:
		return s.handleNamedLayout(req, s.manager.SaveLayout)
	case CommandLoadLayout:
		return s.handleNamedLayout(req, s.manager.LoadLayout)
	case CommandDeleteLayout:
		return s.handleNamedLayout(req, s.manager.DeleteLayout)
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandEqualize:
		if err := s.manager.Equalize(); err != nil {
			return NewErrorResponse(err.Error())
		}
		return mustOK(nil)
	case CommandPreview:
		return s.handlePreview(req)
	case CommandInsert:
		return s.handleInsert(req)
	case CommandResize:
		return s.handleResize(req)
	case CommandReconcile:
		if err := s.manager.Reconcile(); err != nil {
			return NewErrorResponse(err.Error())
		}
		return mustOK(nil)
	}
	return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
}

func (s *Server) handleStatus() *Response {
	st, err := s.manager.Status()
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(StatusData{
		Windows:       st.Windows,
		Containers:    st.Containers,
		WorkArea:      st.WorkArea,
		UptimeSeconds: int64(st.Uptime.Seconds()),
	})
}

func (s *Server) handleDebugLayout() *Response {
	dump, err := s.manager.DebugLayout()
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(LayoutTextData{Layout: dump})
}

func (s *Server) handleGetTree() *Response {
	snap, err := s.manager.Snapshot()
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(TreeData{Tree: snap})
}

func (s *Server) handleNamedLayout(req *Request, op func(string) error) *Response {
	var payload LayoutNamePayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid payload: %v", err))
	}
	if err := op(payload.Name); err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(nil)
}

func (s *Server) handleListLayouts() *Response {
	names, err := s.manager.ListLayouts()
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(LayoutsData{Layouts: names})
}

func (s *Server) handlePreview(req *Request) *Response {
	var payload PointPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid payload: %v", err))
	}
	b, ok, err := s.manager.Preview(tiling.WindowID(payload.Window),
		geometry.Point{X: payload.X, Y: payload.Y})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(PreviewData{
		Valid: ok, X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
	})
}

func (s *Server) handleInsert(req *Request) *Response {
	var payload PointPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid payload: %v", err))
	}
	res, err := s.manager.Insert(tiling.WindowID(payload.Window),
		geometry.Point{X: payload.X, Y: payload.Y})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(InsertData{Action: res.Action.Kind.String()})
}

func (s *Server) handleResize(req *Request) *Response {
	var payload ResizePayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid payload: %v", err))
	}
	dir, err := ParseResizeDirection(payload.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if err := s.manager.Resize(tiling.WindowID(payload.Window), dir, payload.DX, payload.DY); err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(nil)
}

// mustOK builds an OK response for data already known to marshal.
func mustOK(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
