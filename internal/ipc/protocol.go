package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tiletree/internal/tiling"
)

// CommandType represents different IPC command types.
type CommandType string

const (
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandDebugLayout  CommandType = "DEBUG_LAYOUT"
	CommandGetTree      CommandType = "GET_TREE"
	CommandSaveLayout   CommandType = "SAVE_LAYOUT"
	CommandLoadLayout   CommandType = "LOAD_LAYOUT"
	CommandDeleteLayout CommandType = "DELETE_LAYOUT"
	CommandListLayouts  CommandType = "LIST_LAYOUTS"
	CommandEqualize     CommandType = "EQUALIZE"
	CommandPreview      CommandType = "PREVIEW"
	CommandInsert       CommandType = "INSERT"
	CommandResize       CommandType = "RESIZE"
	CommandReconcile    CommandType = "RECONCILE"
)

// Request represents an IPC request from client to server.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	Windows       int    `json:"windows"`
	Containers    int    `json:"containers"`
	WorkArea      string `json:"work_area"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// LayoutTextData carries the human-readable tree dump.
type LayoutTextData struct {
	Layout string `json:"layout"`
}

// TreeData carries the serialized tree for machine consumers.
type TreeData struct {
	Tree *tiling.SerializedNode `json:"tree"`
}

// LayoutNamePayload names a stored layout for save, load, and delete.
type LayoutNamePayload struct {
	Name string `json:"name"`
}

// LayoutsData is returned by LIST_LAYOUTS.
type LayoutsData struct {
	Layouts []string `json:"layouts"`
}

// PointPayload is a drop position plus the dragged window, for PREVIEW and
// INSERT.
type PointPayload struct {
	Window uint32 `json:"window"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// PreviewData is returned by PREVIEW. Valid is false when the position
// implies no drop.
type PreviewData struct {
	Valid  bool `json:"valid"`
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// InsertData is returned by INSERT.
type InsertData struct {
	Action string `json:"action"`
}

// ResizePayload grows or shrinks a window on the edges named by Direction,
// one of: left, right, top, bottom, top-left, top-right, bottom-left,
// bottom-right.
type ResizePayload struct {
	Window    uint32 `json:"window"`
	Direction string `json:"direction"`
	DX        int    `json:"dx"`
	DY        int    `json:"dy"`
}

// ParseResizeDirection maps the wire name to the engine's direction.
func ParseResizeDirection(name string) (tiling.ResizeDirection, error) {
	switch name {
	case "left":
		return tiling.ResizeLeft, nil
	case "right":
		return tiling.ResizeRight, nil
	case "top":
		return tiling.ResizeTop, nil
	case "bottom":
		return tiling.ResizeBottom, nil
	case "top-left":
		return tiling.ResizeTopLeft, nil
	case "top-right":
		return tiling.ResizeTopRight, nil
	case "bottom-left":
		return tiling.ResizeBottomLeft, nil
	case "bottom-right":
		return tiling.ResizeBottomRight, nil
	}
	return 0, fmt.Errorf("unknown resize direction %q", name)
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal response data: %w", err)
		}
		dataBytes = bytes
	}
	return &Response{Status: "OK", Data: dataBytes}, nil
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: "ERROR", Error: errMsg}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
