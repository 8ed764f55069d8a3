package tiling

// Options holds the tuning knobs for a container tree. The thresholds are
// fractions of half the target window's shorter dimension; their relative
// ordering (add-to-parent < split < swap) is what the placement heuristic
// depends on, the literal values are taste.
type Options struct {
	// WindowGap is the pixel gap between sibling tiles.
	WindowGap int
	// PartitionGap is the inset between the screen region and the root.
	PartitionGap int

	SwapThreshold        float64
	SplitThreshold       float64
	AddToParentThreshold float64

	// Preview ratios control how much of the target a drop ghost covers.
	SplitPreviewRatio       float64
	AddToParentPreviewRatio float64

	// MinChildWeight is the floor for a single child's ratio during an edge
	// drag, so no pane can be squeezed to nothing.
	MinChildWeight float64
	// MinSplitRatio is the floor for either side of a splitter drag.
	MinSplitRatio float64
}

// DefaultOptions returns the stock tuning used when no config overrides it.
func DefaultOptions() Options {
	return Options{
		WindowGap:               20,
		PartitionGap:            40,
		SwapThreshold:           1.0,
		SplitThreshold:          0.6,
		AddToParentThreshold:    0.2,
		SplitPreviewRatio:       0.5,
		AddToParentPreviewRatio: 0.25,
		MinChildWeight:          0.05,
		MinSplitRatio:           0.1,
	}
}
