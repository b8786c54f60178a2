package keyboard

// Keyboard usage IDs (HID usage page 0x07).
const (
	KeyNone      byte = 0x00
	KeyA         byte = 0x04
	KeyEnter     byte = 0x28
	KeyEscape    byte = 0x29
	KeyBackspace byte = 0x2A
	KeyTab       byte = 0x2B
	KeySpace     byte = 0x2C
	KeyRight     byte = 0x4F
	KeyLeft      byte = 0x50
	KeyDown      byte = 0x51
	KeyUp        byte = 0x52
)

// Modifiers is the modifier byte of the keyboard input report, one bit
// per modifier key.
type Modifiers byte

const (
	ModLeftCtrl   Modifiers = 1 << 0
	ModLeftShift  Modifiers = 1 << 1
	ModLeftAlt    Modifiers = 1 << 2
	ModLeftGUI    Modifiers = 1 << 3
	ModRightCtrl  Modifiers = 1 << 4
	ModRightShift Modifiers = 1 << 5
	ModRightAlt   Modifiers = 1 << 6
	ModRightGUI   Modifiers = 1 << 7
)

// Consumer control usage IDs (HID usage page 0x0C).
const (
	ConsumerNone       uint16 = 0x0000
	ConsumerPower      uint16 = 0x0030
	ConsumerMenu       uint16 = 0x0040
	ConsumerPlayPause  uint16 = 0x00CD
	ConsumerMute       uint16 = 0x00E2
	ConsumerVolumeUp   uint16 = 0x00E9
	ConsumerVolumeDown uint16 = 0x00EA
	ConsumerHome       uint16 = 0x0223
	ConsumerBack       uint16 = 0x0224
)

// LED output report bits.
const (
	LEDNumLock    byte = 1 << 0
	LEDCapsLock   byte = 1 << 1
	LEDScrollLock byte = 1 << 2
	LEDCompose    byte = 1 << 3
	LEDKana       byte = 1 << 4
)
