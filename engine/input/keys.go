package input

// Key is a virtual key code. The values match GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeySpace Key = 32 // Spacebar (ASCII)
	KeyMinus Key = 45 // Minus (ASCII)
	KeyEqual Key = 61 // Equal (ASCII)

	Key0 Key = 48 // 0 key (ASCII)
	Key1 Key = 49 // 1 key (ASCII)
	Key2 Key = 50 // 2 key (ASCII)
	Key3 Key = 51 // 3 key (ASCII)
	Key4 Key = 52 // 4 key (ASCII)
	Key5 Key = 53 // 5 key (ASCII)
	Key6 Key = 54 // 6 key (ASCII)
	Key7 Key = 55 // 7 key (ASCII)
	Key8 Key = 56 // 8 key (ASCII)
	Key9 Key = 57 // 9 key (ASCII)

	KeyA Key = 65 // A key (ASCII)
	KeyC Key = 67 // C key (ASCII)
	KeyF Key = 70 // F key (ASCII)
	KeyG Key = 71 // G key (ASCII)
	KeyO Key = 79 // O key (ASCII)
	KeyR Key = 82 // R key (ASCII)
	KeyS Key = 83 // S key (ASCII)
	KeyT Key = 84 // T key (ASCII)

	KeyEsc        Key = 256 // Escape key (GLFW)
	KeyBackspace  Key = 259 // Backspace key (GLFW)
	KeyArrowRight Key = 262 // Right arrow (GLFW)
	KeyArrowLeft  Key = 263 // Left arrow (GLFW)
	KeyArrowDown  Key = 264 // Down arrow (GLFW)
	KeyArrowUp    Key = 265 // Up arrow (GLFW)
)

// Additional non-printable keys
const (
	KeyLeftShift  Key = 340 // Left Shift (GLFW)
	KeyRightShift Key = 344 // Right Shift (GLFW)
)
