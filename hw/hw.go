// Package hw holds the line capabilities the scan core consumes and the small
// signal conditioning layers (debounce, edge detection, quadrature) on top.
package hw

// Input is a digital input line.
type Input interface {
	IsHigh() (bool, error)
}

// Line is a pin that flips between floating input and push-pull output.
// LED rows and columns are collected as []Line regardless of the concrete pin.
type Line interface {
	// SetOutput switches to push-pull output and drives the level.
	SetOutput(high bool)
	// Disable returns the line to floating input.
	Disable()
}

// InputFunc adapts a function to Input.
type InputFunc func() (bool, error)

func (f InputFunc) IsHigh() (bool, error) {
	return f()
}
