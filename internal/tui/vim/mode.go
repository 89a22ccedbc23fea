package vim

// Mode represents what the cookie view is doing with key input.
type Mode int

const (
	// ModeNormal navigates the cookie list.
	ModeNormal Mode = iota
	// ModeEdit edits the selected cookie's name and value.
	ModeEdit
	// ModeAdd fills in a new cookie.
	ModeAdd
	// ModeImport collects text to import.
	ModeImport
	// ModeConfirm waits for a y/n answer.
	ModeConfirm
	// ModeText shows text that could not be copied.
	ModeText
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeEdit:
		return "EDIT"
	case ModeAdd:
		return "ADD"
	case ModeImport:
		return "IMPORT"
	case ModeConfirm:
		return "CONFIRM"
	case ModeText:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

// IsInput reports whether keys in this mode are typed into a field.
func (m Mode) IsInput() bool {
	return m == ModeEdit || m == ModeAdd || m == ModeImport
}

// ModeManager handles mode state and transitions.
type ModeManager struct {
	current  Mode
	previous Mode
	count    int
	hasCount bool
}

// NewModeManager creates a new mode manager starting in normal mode.
func NewModeManager() *ModeManager {
	return &ModeManager{
		current:  ModeNormal,
		previous: ModeNormal,
		count:    1,
	}
}

// Current returns the current mode.
func (m *ModeManager) Current() Mode {
	return m.current
}

// Previous returns the previous mode.
func (m *ModeManager) Previous() Mode {
	return m.previous
}

// SetMode changes the current mode. Leaving normal mode drops any count.
func (m *ModeManager) SetMode(mode Mode) {
	if mode != ModeNormal {
		m.ResetCount()
	}
	m.previous = m.current
	m.current = mode
}

// IsNormal returns true if in normal mode.
func (m *ModeManager) IsNormal() bool {
	return m.current == ModeNormal
}

// Count returns the current count (default 1).
func (m *ModeManager) Count() int {
	return m.count
}

// AppendCount adds a digit to the count.
func (m *ModeManager) AppendCount(digit int) {
	if !m.hasCount {
		m.count = digit
		m.hasCount = true
	} else {
		m.count = m.count*10 + digit
	}
}

// ResetCount resets the count to default (1).
func (m *ModeManager) ResetCount() {
	m.count = 1
	m.hasCount = false
}

// HasCount returns true if a count was explicitly set.
func (m *ModeManager) HasCount() bool {
	return m.hasCount
}

// Reset resets all mode state to defaults.
func (m *ModeManager) Reset() {
	m.current = ModeNormal
	m.previous = ModeNormal
	m.ResetCount()
}
