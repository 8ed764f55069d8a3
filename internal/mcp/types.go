package mcp

// StatusInput is the input for the layout_status tool.
type StatusInput struct{}

// StatusOutput is the output for the layout_status tool.
type StatusOutput struct {
	Windows       int    `json:"windows"`
	Containers    int    `json:"containers"`
	WorkArea      string `json:"work_area"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// InspectInput is the input for the inspect_layout tool.
type InspectInput struct{}

// InspectOutput is the output for the inspect_layout tool.
type InspectOutput struct {
	Layout string `json:"layout"`
}

// LayoutNameInput names a stored layout.
type LayoutNameInput struct {
	Name string `json:"name" jsonschema:"required,Name of the stored layout"`
}

// LayoutNameOutput confirms a save, load, or delete.
type LayoutNameOutput struct {
	Name string `json:"name"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []string `json:"layouts"`
}

// EqualizeInput is the input for the equalize_layout tool.
type EqualizeInput struct{}

// EqualizeOutput is the output for the equalize_layout tool.
type EqualizeOutput struct {
	Done bool `json:"done"`
}

// DropInput is a drop position plus the dragged window, for preview_drop and
// drop_window.
type DropInput struct {
	Window uint32 `json:"window" jsonschema:"required,X11 id of the dragged window"`
	X      int    `json:"x" jsonschema:"required,Pointer x in root coordinates"`
	Y      int    `json:"y" jsonschema:"required,Pointer y in root coordinates"`
}

// PreviewOutput is the output for preview_drop.
type PreviewOutput struct {
	Valid  bool `json:"valid"`
	X      int  `json:"x,omitempty"`
	Y      int  `json:"y,omitempty"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

// DropOutput is the output for drop_window.
type DropOutput struct {
	Action string `json:"action"`
}

// ResizeInput is the input for the resize_window tool.
type ResizeInput struct {
	Window    uint32 `json:"window" jsonschema:"required,X11 id of the window to resize"`
	Direction string `json:"direction" jsonschema:"required,Edges to move: left right top bottom top-left top-right bottom-left bottom-right"`
	DX        int    `json:"dx,omitempty" jsonschema:"Horizontal growth in pixels (negative shrinks)"`
	DY        int    `json:"dy,omitempty" jsonschema:"Vertical growth in pixels (negative shrinks)"`
}

// ResizeOutput is the output for the resize_window tool.
type ResizeOutput struct {
	Done bool `json:"done"`
}
