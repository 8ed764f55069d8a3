package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tiletree/internal/runtimepath"
)

// Client handles IPC communication with the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client against the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep the constructor non-failing; sendRequest surfaces it.
		socketPath = ""
	}
	return NewClientForSocket(socketPath)
}

// NewClientForSocket creates a client against a specific socket path.
func NewClientForSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) request(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		req.Payload = data
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("parse %s response: %w", cmd, err)
		}
	}
	return nil
}

// GetStatus retrieves daemon status.
func (c *Client) GetStatus() (*StatusData, error) {
	var data StatusData
	if err := c.request(CommandGetStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DebugLayout retrieves the human-readable tree dump.
func (c *Client) DebugLayout() (string, error) {
	var data LayoutTextData
	if err := c.request(CommandDebugLayout, nil, &data); err != nil {
		return "", err
	}
	return data.Layout, nil
}

// GetTree retrieves the serialized live tree.
func (c *Client) GetTree() (*TreeData, error) {
	var data TreeData
	if err := c.request(CommandGetTree, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SaveLayout persists the live tree under a name.
func (c *Client) SaveLayout(name string) error {
	return c.request(CommandSaveLayout, LayoutNamePayload{Name: name}, nil)
}

// LoadLayout applies a stored layout.
func (c *Client) LoadLayout(name string) error {
	return c.request(CommandLoadLayout, LayoutNamePayload{Name: name}, nil)
}

// DeleteLayout removes a stored layout.
func (c *Client) DeleteLayout(name string) error {
	return c.request(CommandDeleteLayout, LayoutNamePayload{Name: name}, nil)
}

// ListLayouts returns the stored layout names.
func (c *Client) ListLayouts() ([]string, error) {
	var data LayoutsData
	if err := c.request(CommandListLayouts, nil, &data); err != nil {
		return nil, err
	}
	return data.Layouts, nil
}

// Equalize resets every container to equal shares.
func (c *Client) Equalize() error {
	return c.request(CommandEqualize, nil, nil)
}

// Preview asks for the drop ghost rectangle at a position.
func (c *Client) Preview(window uint32, x, y int) (*PreviewData, error) {
	var data PreviewData
	if err := c.request(CommandPreview, PointPayload{Window: window, X: x, Y: y}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Insert drops a window at a position.
func (c *Client) Insert(window uint32, x, y int) (*InsertData, error) {
	var data InsertData
	if err := c.request(CommandInsert, PointPayload{Window: window, X: x, Y: y}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Resize grows or shrinks a window on the edges named by direction.
func (c *Client) Resize(window uint32, direction string, dx, dy int) error {
	return c.request(CommandResize, ResizePayload{
		Window: window, Direction: direction, DX: dx, DY: dy,
	}, nil)
}

// Reconcile forces an immediate reconciliation pass.
func (c *Client) Reconcile() error {
	return c.request(CommandReconcile, nil, nil)
}
