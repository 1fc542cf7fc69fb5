package midi

// PadEvent is sent when a pad is pressed or released on a grid controller.
// Row 0 is the bottom row of the Launchpad.
type PadEvent struct {
	Row, Col int
	Pressed  bool
}

// LEDUpdate sets one pad to a palette color.
type LEDUpdate struct {
	Row, Col int
	Color    uint8
}

// Controller is a grid controller the panel can be mirrored on.
type Controller interface {
	ID() string

	// PadEvents is closed when the controller is closed.
	PadEvents() <-chan PadEvent

	SetLEDBatch(updates []LEDUpdate) error

	Close() error
}

// Launchpad X color palette (velocity values 0-127)
// See Programmer's Reference Manual for full palette
const (
	ColorOff        uint8 = 0
	ColorRed        uint8 = 5
	ColorDimRed     uint8 = 7
	ColorGreen      uint8 = 21
	ColorDimGreen   uint8 = 19
	ColorDimYellow  uint8 = 97
	ColorBrightBlue uint8 = 78
)
