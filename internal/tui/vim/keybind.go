package vim

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding represents a single key binding.
type KeyBinding struct {
	key         string
	description string
	action      func() tea.Cmd
}

// NewKeyBinding creates a new key binding.
func NewKeyBinding(key, description string) *KeyBinding {
	return &KeyBinding{
		key:         key,
		description: description,
	}
}

// Key returns the key string.
func (kb *KeyBinding) Key() string {
	return kb.key
}

// Description returns the description.
func (kb *KeyBinding) Description() string {
	return kb.description
}

// Matches returns true if the key message matches this binding.
func (kb *KeyBinding) Matches(msg tea.KeyMsg) bool {
	return matchKey(kb.key, msg)
}

// Execute runs the action and returns the command.
func (kb *KeyBinding) Execute() tea.Cmd {
	if kb.action != nil {
		return kb.action()
	}
	return nil
}

// SetAction sets the action for this binding.
func (kb *KeyBinding) SetAction(action func() tea.Cmd) {
	kb.action = action
}

// matchKey checks if a key string matches a tea.KeyMsg. Rune keys are
// case-sensitive so "e" and "E" can carry different actions.
func matchKey(key string, msg tea.KeyMsg) bool {
	switch strings.ToLower(key) {
	case "enter":
		return msg.Type == tea.KeyEnter
	case "esc", "escape":
		return msg.Type == tea.KeyEsc
	case "tab":
		return msg.Type == tea.KeyTab
	case "shift+tab":
		return msg.Type == tea.KeyShiftTab
	case "backspace":
		return msg.Type == tea.KeyBackspace
	case "up":
		return msg.Type == tea.KeyUp
	case "down":
		return msg.Type == tea.KeyDown
	case "ctrl+c":
		return msg.Type == tea.KeyCtrlC
	case "ctrl+d":
		return msg.Type == tea.KeyCtrlD
	case "ctrl+r":
		return msg.Type == tea.KeyCtrlR
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			return string(msg.Runes) == key
		}
		return false
	}
}

// KeyMap holds key bindings organized by mode.
type KeyMap struct {
	bindings map[Mode][]*KeyBinding
}

// NewKeyMap creates a new empty key map.
func NewKeyMap() *KeyMap {
	return &KeyMap{
		bindings: make(map[Mode][]*KeyBinding),
	}
}

// Register adds a key binding for a mode.
func (km *KeyMap) Register(mode Mode, key, description string, action func() tea.Cmd) {
	kb := NewKeyBinding(key, description)
	kb.SetAction(action)
	km.bindings[mode] = append(km.bindings[mode], kb)
}

// GetBindings returns all bindings for a mode.
func (km *KeyMap) GetBindings(mode Mode) []*KeyBinding {
	return km.bindings[mode]
}

// FindBinding finds a matching binding for the given mode and key message.
func (km *KeyMap) FindBinding(mode Mode, msg tea.KeyMsg) (*KeyBinding, bool) {
	for _, kb := range km.bindings[mode] {
		if kb.Matches(msg) {
			return kb, true
		}
	}
	return nil, false
}

// Help renders the bindings of mode as "key desc" entries, skipping
// bindings without a description.
func (km *KeyMap) Help(mode Mode) []string {
	var out []string
	for _, kb := range km.bindings[mode] {
		if kb.description == "" {
			continue
		}
		out = append(out, kb.key+" "+kb.description)
	}
	return out
}

// SequenceStatus represents the state of a key sequence.
type SequenceStatus int

const (
	SequenceNone SequenceStatus = iota
	SequencePending
	SequenceComplete
	SequenceInvalid
)

// SequenceResult holds the result of handling a key in a sequence.
type SequenceResult struct {
	Status SequenceStatus
	action func() tea.Cmd
}

// Execute runs the action if the sequence is complete.
func (r *SequenceResult) Execute() tea.Cmd {
	if r.action != nil {
		return r.action()
	}
	return nil
}

// KeySequenceHandler handles multi-key sequences like "dd" and "yy".
type KeySequenceHandler struct {
	sequences    map[string]func() tea.Cmd
	descriptions map[string]string
	buffer       string
}

// NewKeySequenceHandler creates a new sequence handler.
func NewKeySequenceHandler() *KeySequenceHandler {
	return &KeySequenceHandler{
		sequences:    make(map[string]func() tea.Cmd),
		descriptions: make(map[string]string),
	}
}

// Register adds a sequence handler.
func (h *KeySequenceHandler) Register(sequence, description string, action func() tea.Cmd) {
	h.sequences[sequence] = action
	h.descriptions[sequence] = description
}

// Description returns the description registered for sequence.
func (h *KeySequenceHandler) Description(sequence string) string {
	return h.descriptions[sequence]
}

// Handle processes a key and returns the sequence status.
func (h *KeySequenceHandler) Handle(key string) *SequenceResult {
	h.buffer += key

	if action, ok := h.sequences[h.buffer]; ok {
		hasLonger := false
		for seq := range h.sequences {
			if len(seq) > len(h.buffer) && strings.HasPrefix(seq, h.buffer) {
				hasLonger = true
				break
			}
		}

		if !hasLonger {
			h.buffer = ""
			return &SequenceResult{Status: SequenceComplete, action: action}
		}
		return &SequenceResult{Status: SequencePending}
	}

	for seq := range h.sequences {
		if strings.HasPrefix(seq, h.buffer) {
			return &SequenceResult{Status: SequencePending}
		}
	}

	h.buffer = ""
	return &SequenceResult{Status: SequenceInvalid}
}

// Reset clears the sequence buffer.
func (h *KeySequenceHandler) Reset() {
	h.buffer = ""
}

// Buffer returns the current sequence buffer.
func (h *KeySequenceHandler) Buffer() string {
	return h.buffer
}
