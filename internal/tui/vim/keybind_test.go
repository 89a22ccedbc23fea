package vim

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyBinding(t *testing.T) {
	t.Run("creates simple key binding", func(t *testing.T) {
		kb := NewKeyBinding("j", "down")
		assert.Equal(t, "j", kb.Key())
		assert.Equal(t, "down", kb.Description())
	})

	t.Run("matches simple key", func(t *testing.T) {
		kb := NewKeyBinding("j", "down")
		assert.True(t, kb.Matches(runeKey('j')))
		assert.False(t, kb.Matches(runeKey('k')))
	})

	t.Run("rune keys are case-sensitive", func(t *testing.T) {
		kb := NewKeyBinding("E", "export all")
		assert.True(t, kb.Matches(runeKey('E')))
		assert.False(t, kb.Matches(runeKey('e')))
	})

	t.Run("ignores multi-rune input", func(t *testing.T) {
		kb := NewKeyBinding("a", "add")
		assert.False(t, kb.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")}))
	})

	t.Run("execute without action", func(t *testing.T) {
		kb := NewKeyBinding("q", "quit")
		assert.Nil(t, kb.Execute())
	})
}

func TestKeyBinding_MatchKey(t *testing.T) {
	tests := []struct {
		key string
		msg tea.KeyMsg
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}},
		{"up", tea.KeyMsg{Type: tea.KeyUp}},
		{"down", tea.KeyMsg{Type: tea.KeyDown}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}},
		{"ctrl+r", tea.KeyMsg{Type: tea.KeyCtrlR}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.True(t, NewKeyBinding(tt.key, "").Matches(tt.msg))
		})
	}

	t.Run("special key does not match runes", func(t *testing.T) {
		assert.False(t, NewKeyBinding("enter", "").Matches(runeKey('e')))
	})
}

func TestKeyMap(t *testing.T) {
	t.Run("registers binding for mode", func(t *testing.T) {
		km := NewKeyMap()
		km.Register(ModeNormal, "j", "down", func() tea.Cmd { return nil })

		bindings := km.GetBindings(ModeNormal)
		assert.Len(t, bindings, 1)
		assert.Equal(t, "j", bindings[0].Key())
	})

	t.Run("separates bindings by mode", func(t *testing.T) {
		km := NewKeyMap()
		km.Register(ModeNormal, "y", "copy", nil)
		km.Register(ModeConfirm, "y", "yes", nil)

		assert.Equal(t, "copy", km.GetBindings(ModeNormal)[0].Description())
		assert.Equal(t, "yes", km.GetBindings(ModeConfirm)[0].Description())
		assert.Empty(t, km.GetBindings(ModeImport))
	})

	t.Run("finds and executes matching binding", func(t *testing.T) {
		km := NewKeyMap()
		called := false
		km.Register(ModeNormal, "r", "refresh", func() tea.Cmd {
			called = true
			return nil
		})

		binding, found := km.FindBinding(ModeNormal, runeKey('r'))
		assert.True(t, found)
		binding.Execute()
		assert.True(t, called)
	})

	t.Run("returns false for no match", func(t *testing.T) {
		km := NewKeyMap()
		km.Register(ModeNormal, "j", "down", nil)

		_, found := km.FindBinding(ModeNormal, runeKey('x'))
		assert.False(t, found)
		_, found = km.FindBinding(ModeEdit, runeKey('j'))
		assert.False(t, found)
	})

	t.Run("help lists described bindings in order", func(t *testing.T) {
		km := NewKeyMap()
		km.Register(ModeNormal, "a", "add", nil)
		km.Register(ModeNormal, "up", "", nil)
		km.Register(ModeNormal, "q", "quit", nil)

		assert.Equal(t, []string{"a add", "q quit"}, km.Help(ModeNormal))
	})
}

func TestKeySequenceHandler(t *testing.T) {
	t.Run("handles multi-key sequences", func(t *testing.T) {
		h := NewKeySequenceHandler()
		called := false
		h.Register("dd", "delete", func() tea.Cmd {
			called = true
			return nil
		})

		result := h.Handle("d")
		assert.Equal(t, SequencePending, result.Status)

		result = h.Handle("d")
		assert.Equal(t, SequenceComplete, result.Status)
		result.Execute()
		assert.True(t, called)
	})

	t.Run("shared prefix picks the completed sequence", func(t *testing.T) {
		h := NewKeySequenceHandler()
		var got string
		h.Register("yn", "copy name", func() tea.Cmd { got = "yn"; return nil })
		h.Register("yv", "copy value", func() tea.Cmd { got = "yv"; return nil })
		h.Register("yy", "copy cookie", func() tea.Cmd { got = "yy"; return nil })

		assert.Equal(t, SequencePending, h.Handle("y").Status)
		result := h.Handle("v")
		assert.Equal(t, SequenceComplete, result.Status)
		result.Execute()
		assert.Equal(t, "yv", got)
	})

	t.Run("longer sequence keeps prefix pending", func(t *testing.T) {
		h := NewKeySequenceHandler()
		singleCalled := false
		multiCalled := false
		h.Register("g", "", func() tea.Cmd { singleCalled = true; return nil })
		h.Register("gg", "top", func() tea.Cmd { multiCalled = true; return nil })

		assert.Equal(t, SequencePending, h.Handle("g").Status)
		result := h.Handle("g")
		assert.Equal(t, SequenceComplete, result.Status)
		result.Execute()
		assert.True(t, multiCalled)
		assert.False(t, singleCalled)
	})

	t.Run("resets on invalid sequence", func(t *testing.T) {
		h := NewKeySequenceHandler()
		h.Register("dd", "delete", nil)

		h.Handle("d")
		assert.Equal(t, SequenceInvalid, h.Handle("x").Status)
		assert.Equal(t, "", h.Buffer())
	})

	t.Run("Reset clears buffer", func(t *testing.T) {
		h := NewKeySequenceHandler()
		h.Register("dd", "delete", nil)

		h.Handle("d")
		assert.Equal(t, "d", h.Buffer())
		h.Reset()
		assert.Equal(t, "", h.Buffer())
	})

	t.Run("description", func(t *testing.T) {
		h := NewKeySequenceHandler()
		h.Register("dd", "delete", nil)
		assert.Equal(t, "delete", h.Description("dd"))
		assert.Equal(t, "", h.Description("zz"))
	})
}
