package ui

import "github.com/spaghettifunk/anima-ui/engine/math"

// Layout exposes the cursor of the current frame.
type Layout interface {
	// Cursor returns where the next item will be placed.
	Cursor() math.Vec2
	SetCursor(pos math.Vec2)
	// SameLine places the next item to the right of the previous one.
	// A negative spacing uses the default item spacing.
	SameLine(spacing float32)
	NewLine()
}

// Frame is what a renderer hands to the game for a single frame.
type Frame interface {
	ImageDrawer
	Layout
}
