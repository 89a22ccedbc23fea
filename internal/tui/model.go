package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/cookiedesk/internal/app"
	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/artpar/cookiedesk/internal/domain"
	"github.com/artpar/cookiedesk/internal/tui/vim"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const notifyDuration = 2 * time.Second

// loadedMsg carries the result of a listing.
type loadedMsg struct {
	list []cookies.Cookie
	err  error
}

// doneMsg reports a finished mutation or copy. The App has already
// reloaded its snapshot.
type doneMsg struct {
	notice string
	err    error
	// fallback is text the clipboard refused; it is shown instead.
	fallback string
	// keepMode leaves an input mode open after a failure.
	keepMode bool
}

// clearNotificationMsg is sent to clear the notification.
type clearNotificationMsg struct {
	seq int
}

// Model is the interactive cookie list of the current domain.
type Model struct {
	ctx    context.Context
	app    *app.App
	styles Styles

	modes    *vim.ModeManager
	keys     *vim.KeyMap
	sequence *vim.KeySequenceHandler

	host    string
	cookies []cookies.Cookie
	cursor  int
	loading bool
	width   int
	height  int

	session    *app.EditSession
	fields     []*TextField
	fieldIndex int
	importText *TextField

	confirmMessage string
	confirmAction  func() tea.Cmd
	fallback       string
	showHelp       bool

	notification string
	failed       bool
	notifySeq    int
}

// NewModel creates the cookie view for a.
func NewModel(ctx context.Context, a *app.App) *Model {
	m := &Model{
		ctx:      ctx,
		app:      a,
		styles:   DefaultStyles(),
		modes:    vim.NewModeManager(),
		keys:     vim.NewKeyMap(),
		sequence: vim.NewKeySequenceHandler(),
		loading:  true,
	}
	if host, err := a.Domain(); err == nil {
		m.host = host
	}
	m.registerKeys()
	return m
}

func (m *Model) registerKeys() {
	km := m.keys
	km.Register(vim.ModeNormal, "j", "down", func() tea.Cmd { m.move(m.modes.Count()); return nil })
	km.Register(vim.ModeNormal, "down", "", func() tea.Cmd { m.move(1); return nil })
	km.Register(vim.ModeNormal, "k", "up", func() tea.Cmd { m.move(-m.modes.Count()); return nil })
	km.Register(vim.ModeNormal, "up", "", func() tea.Cmd { m.move(-1); return nil })
	km.Register(vim.ModeNormal, "G", "bottom", func() tea.Cmd { m.cursor = max(len(m.cookies)-1, 0); return nil })
	km.Register(vim.ModeNormal, "e", "edit", m.beginEdit)
	km.Register(vim.ModeNormal, "enter", "", m.beginEdit)
	km.Register(vim.ModeNormal, "a", "add", m.beginAdd)
	km.Register(vim.ModeNormal, "i", "import", m.beginImport)
	km.Register(vim.ModeNormal, "E", "export all", m.exportAll)
	km.Register(vim.ModeNormal, "C", "clear all", m.askClearAll)
	km.Register(vim.ModeNormal, "r", "refresh", m.refresh)
	km.Register(vim.ModeNormal, "?", "help", func() tea.Cmd { m.showHelp = !m.showHelp; return nil })
	km.Register(vim.ModeNormal, "q", "quit", func() tea.Cmd { return tea.Quit })

	km.Register(vim.ModeConfirm, "y", "yes", m.acceptConfirm)
	km.Register(vim.ModeConfirm, "n", "no", m.rejectConfirm)
	km.Register(vim.ModeConfirm, "esc", "", m.rejectConfirm)

	km.Register(vim.ModeText, "esc", "close", m.closeText)
	km.Register(vim.ModeText, "q", "", m.closeText)

	seq := m.sequence
	seq.Register("gg", "top", func() tea.Cmd { m.cursor = 0; return nil })
	seq.Register("dd", "delete", m.askDelete)
	seq.Register("yn", "copy name", m.copyName)
	seq.Register("yv", "copy value", m.copyValue)
	seq.Register("yy", "copy cookie", m.exportSelected)
}

// Init loads the cookie list.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.notify(errorNotice(msg.err), true)
		}
		m.setCookies(msg.list)
		return m, nil

	case doneMsg:
		return m, m.handleDone(msg)

	case clearNotificationMsg:
		if msg.seq == m.notifySeq {
			m.notification = ""
			m.failed = false
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	mode := m.modes.Current()
	if mode.IsInput() {
		return m.handleInput(msg)
	}

	if mode == vim.ModeNormal && msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		r := msg.Runes[0]
		if (r >= '1' && r <= '9') || (r == '0' && m.modes.HasCount()) {
			m.modes.AppendCount(int(r - '0'))
			return nil
		}
	}

	if m.sequence.Buffer() == "" {
		if kb, ok := m.keys.FindBinding(mode, msg); ok {
			cmd := kb.Execute()
			m.modes.ResetCount()
			return cmd
		}
	}

	if mode != vim.ModeNormal || msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		m.sequence.Reset()
		return nil
	}

	result := m.sequence.Handle(string(msg.Runes))
	switch result.Status {
	case vim.SequenceComplete:
		m.modes.ResetCount()
		return result.Execute()
	case vim.SequenceInvalid:
		m.modes.ResetCount()
	}
	return nil
}

func (m *Model) handleInput(msg tea.KeyMsg) tea.Cmd {
	mode := m.modes.Current()

	switch msg.Type {
	case tea.KeyEsc:
		return m.cancelInput()
	case tea.KeyTab, tea.KeyShiftTab:
		if mode != vim.ModeImport {
			m.focusField((m.fieldIndex + 1) % len(m.fields))
		}
		return nil
	case tea.KeyEnter:
		if mode != vim.ModeImport {
			return m.submitInput()
		}
	case tea.KeyCtrlD:
		if mode == vim.ModeImport {
			return m.submitInput()
		}
	}

	if mode == vim.ModeImport {
		m.importText.Update(msg)
		return nil
	}
	m.fields[m.fieldIndex].Update(msg)
	return nil
}

func (m *Model) setCookies(list []cookies.Cookie) {
	m.cookies = list
	if m.cursor >= len(list) {
		m.cursor = max(len(list)-1, 0)
	}
}

func (m *Model) move(delta int) {
	if len(m.cookies) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.cookies)-1)
}

// Selected returns the cookie under the cursor.
func (m *Model) Selected() (cookies.Cookie, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cookies) {
		return cookies.Cookie{}, false
	}
	return m.cookies[m.cursor], true
}

// Mode returns the current input mode.
func (m *Model) Mode() vim.Mode {
	return m.modes.Current()
}

// Notification returns the current notification message.
func (m *Model) Notification() string {
	return m.notification
}

// Cookies returns the displayed cookies.
func (m *Model) Cookies() []cookies.Cookie {
	return m.cookies
}

func (m *Model) load() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		list, err := a.Load(ctx)
		return loadedMsg{list: list, err: err}
	}
}

func (m *Model) refresh() tea.Cmd {
	m.loading = true
	return m.load()
}

func (m *Model) notify(text string, failed bool) tea.Cmd {
	m.notifySeq++
	m.notification = text
	m.failed = failed
	seq := m.notifySeq
	return tea.Tick(notifyDuration, func(time.Time) tea.Msg {
		return clearNotificationMsg{seq: seq}
	})
}

func (m *Model) handleDone(msg doneMsg) tea.Cmd {
	m.setCookies(m.app.Snapshot())

	if msg.err != nil {
		if !msg.keepMode {
			m.modes.SetMode(vim.ModeNormal)
		}
		return m.notify(errorNotice(msg.err), true)
	}

	if msg.fallback != "" {
		m.fallback = msg.fallback
		m.modes.SetMode(vim.ModeText)
		return m.notify(msg.notice, true)
	}

	m.modes.SetMode(vim.ModeNormal)
	m.session = nil
	m.fields = nil
	m.importText = nil
	return m.notify(msg.notice, false)
}

func errorNotice(err error) string {
	switch {
	case errors.Is(err, app.ErrNoDomain):
		return "✗ Cannot determine current domain"
	case errors.Is(err, app.ErrEmpty):
		return "✗ No cookies to act on"
	}
	return "✗ " + err.Error()
}

// Edit

func (m *Model) beginEdit() tea.Cmd {
	c, ok := m.Selected()
	if !ok {
		return nil
	}
	m.session = m.app.BeginEdit(c)
	m.openFields(vim.ModeEdit, c.Name, c.Value)
	return nil
}

func (m *Model) beginAdd() tea.Cmd {
	m.session = nil
	m.openFields(vim.ModeAdd, "", "")
	return nil
}

func (m *Model) openFields(mode vim.Mode, name, value string) {
	nameField := NewTextField("Name", false)
	nameField.SetValue(name)
	valueField := NewTextField("Value", false)
	valueField.SetValue(value)
	m.fields = []*TextField{nameField, valueField}
	m.focusField(0)
	if mode == vim.ModeEdit {
		m.focusField(1)
	}
	m.modes.SetMode(mode)
}

func (m *Model) focusField(index int) {
	for i, f := range m.fields {
		if i == index {
			f.Focus()
		} else {
			f.Blur()
		}
	}
	m.fieldIndex = index
}

func (m *Model) beginImport() tea.Cmd {
	m.importText = NewTextField("Paste JSON or name=value pairs, ctrl+d to import", true)
	m.importText.Focus()
	m.modes.SetMode(vim.ModeImport)
	return nil
}

func (m *Model) cancelInput() tea.Cmd {
	if m.session != nil {
		m.app.CancelEdit(m.session)
	}
	m.session = nil
	m.fields = nil
	m.importText = nil
	m.modes.SetMode(vim.ModeNormal)
	return nil
}

func (m *Model) submitInput() tea.Cmd {
	ctx, a := m.ctx, m.app

	switch m.modes.Current() {
	case vim.ModeEdit:
		session := *m.session
		session.PendingName = m.fields[0].Value()
		session.PendingValue = m.fields[1].Value()
		return func() tea.Msg {
			if err := a.SaveEdit(ctx, &session); err != nil {
				return doneMsg{err: err, keepMode: true}
			}
			return doneMsg{notice: "✓ Saved " + strings.TrimSpace(session.PendingName)}
		}

	case vim.ModeAdd:
		name, value := m.fields[0].Value(), m.fields[1].Value()
		return func() tea.Msg {
			if err := a.Add(ctx, name, value); err != nil {
				return doneMsg{err: err, keepMode: true}
			}
			return doneMsg{notice: "✓ Added " + strings.TrimSpace(name)}
		}

	case vim.ModeImport:
		text := m.importText.Value()
		return func() tea.Msg {
			res, err := a.Import(ctx, text)
			if err != nil {
				return doneMsg{err: err, keepMode: true}
			}
			notice := fmt.Sprintf("✓ Imported %d of %d cookies", res.Succeeded, res.Total)
			if res.Failed() > 0 {
				notice = fmt.Sprintf("✗ Imported %d of %d cookies", res.Succeeded, res.Total)
			}
			return doneMsg{notice: notice}
		}
	}
	return nil
}

// Confirmation

func (m *Model) ask(message string, action func() tea.Cmd) tea.Cmd {
	m.confirmMessage = message
	m.confirmAction = action
	m.modes.SetMode(vim.ModeConfirm)
	return nil
}

func (m *Model) acceptConfirm() tea.Cmd {
	action := m.confirmAction
	m.confirmMessage = ""
	m.confirmAction = nil
	m.modes.SetMode(vim.ModeNormal)
	if action == nil {
		return nil
	}
	return action()
}

func (m *Model) rejectConfirm() tea.Cmd {
	m.confirmMessage = ""
	m.confirmAction = nil
	m.modes.SetMode(vim.ModeNormal)
	return m.notify("Cancelled", false)
}

func (m *Model) askDelete() tea.Cmd {
	c, ok := m.Selected()
	if !ok {
		return nil
	}
	ctx, a := m.ctx, m.app
	return m.ask(app.DeleteMessage(c), func() tea.Cmd {
		return func() tea.Msg {
			if _, err := a.Delete(ctx, c); err != nil {
				return doneMsg{err: err}
			}
			return doneMsg{notice: "✓ Deleted " + c.Name}
		}
	})
}

func (m *Model) askClearAll() tea.Cmd {
	if len(m.cookies) == 0 {
		return m.notify(errorNotice(app.ErrEmpty), true)
	}
	ctx, a := m.ctx, m.app
	return m.ask(app.ClearMessage(m.host, len(m.cookies)), func() tea.Cmd {
		return func() tea.Msg {
			res, _, err := a.ClearAll(ctx)
			if err != nil {
				return doneMsg{err: err}
			}
			notice := fmt.Sprintf("✓ Cleared %d of %d cookies", res.Succeeded, res.Total)
			if res.Failed() > 0 {
				notice = fmt.Sprintf("✗ Cleared %d of %d cookies", res.Succeeded, res.Total)
			}
			return doneMsg{notice: notice}
		}
	})
}

// Clipboard

func delivered(d app.Delivery, what string) doneMsg {
	if d.Copied {
		return doneMsg{notice: "✓ Copied " + what}
	}
	return doneMsg{notice: "✗ Clipboard unavailable", fallback: d.Text}
}

func (m *Model) copyName() tea.Cmd {
	c, ok := m.Selected()
	if !ok {
		return nil
	}
	a := m.app
	return func() tea.Msg { return delivered(a.CopyName(c), "name") }
}

func (m *Model) copyValue() tea.Cmd {
	c, ok := m.Selected()
	if !ok {
		return nil
	}
	a := m.app
	return func() tea.Msg { return delivered(a.CopyValue(c), "value") }
}

func (m *Model) exportSelected() tea.Cmd {
	c, ok := m.Selected()
	if !ok {
		return nil
	}
	a := m.app
	return func() tea.Msg {
		d, err := a.ExportOne(c)
		if err != nil {
			return doneMsg{err: err}
		}
		return delivered(d, c.Name)
	}
}

func (m *Model) exportAll() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		d, err := a.Export(ctx)
		if err != nil {
			return doneMsg{err: err}
		}
		return delivered(d, fmt.Sprintf("%d cookies", len(a.Snapshot())))
	}
}

func (m *Model) closeText() tea.Cmd {
	m.fallback = ""
	m.modes.SetMode(vim.ModeNormal)
	return nil
}

// View renders the cookie view.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := "Cookies"
	if m.host != "" {
		title = fmt.Sprintf("Cookies of %s (%s)", m.host, domain.MainDomainOf(m.host))
	}

	var b strings.Builder
	b.WriteString(RenderTitle(title, width, true))
	b.WriteString("\n")

	switch m.modes.Current() {
	case vim.ModeEdit, vim.ModeAdd:
		b.WriteString(m.viewFields(width))
	case vim.ModeImport:
		b.WriteString(m.importText.View(m.styles, width-4))
	case vim.ModeText:
		b.WriteString(m.styles.Label.Render("Copy this text manually:"))
		b.WriteString("\n")
		b.WriteString(RenderBorder(m.fallback, width-4, true))
	default:
		b.WriteString(m.viewList(width))
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus(width))
	return b.String()
}

func (m *Model) viewList(width int) string {
	if m.loading && len(m.cookies) == 0 {
		return m.styles.Dim.Render("Loading...")
	}
	if len(m.cookies) == 0 {
		return m.styles.Dim.Render("No cookies for this domain. Press a to add or i to import.")
	}

	nameWidth := min(max(width/4, 8), 30)
	domainWidth := min(max(width/4, 8), 30)
	valueWidth := max(width-nameWidth-domainWidth-6, 8)

	var lines []string
	header := "  " + PadRight("NAME", nameWidth) + " " + PadRight("VALUE", valueWidth) + " " + "DOMAIN"
	lines = append(lines, m.styles.Header.Render(header))
	for i, c := range m.cookies {
		value := Truncate(m.app.Truncate(c.Value), valueWidth)
		row := PadRight(Truncate(c.Name, nameWidth), nameWidth) + " " +
			PadRight(value, valueWidth) + " " +
			Truncate(c.Domain+c.Path, domainWidth)
		if i == m.cursor {
			lines = append(lines, m.styles.Selected.Render("> "+row))
		} else {
			lines = append(lines, "  "+row)
		}
	}

	if m.showHelp {
		lines = append(lines, "", m.viewHelp())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewFields(width int) string {
	heading := "Add cookie"
	if m.session != nil {
		heading = "Edit " + m.session.Original.Identity().String()
	}
	lines := []string{m.styles.Header.Render(heading)}
	for _, f := range m.fields {
		lines = append(lines, f.View(m.styles, width))
	}
	lines = append(lines, m.styles.Dim.Render("tab switch field, enter save, esc cancel"))
	return strings.Join(lines, "\n")
}

func (m *Model) viewHelp() string {
	entries := m.keys.Help(vim.ModeNormal)
	for _, seq := range []string{"gg", "dd", "yn", "yv", "yy"} {
		entries = append(entries, seq+" "+m.sequence.Description(seq))
	}
	return m.styles.Dim.Render(strings.Join(entries, "  "))
}

func (m *Model) viewStatus(width int) string {
	mode := m.modes.Current()
	items := []string{m.styles.Label.Render(mode.String())}

	switch {
	case mode == vim.ModeConfirm:
		items = append(items, m.confirmMessage+" [y/n]")
	case m.notification != "":
		style := m.styles.Success
		if m.failed {
			style = m.styles.Failure
		}
		items = append(items, style.Render(m.notification))
	case mode == vim.ModeNormal:
		items = append(items, m.styles.Dim.Render(fmt.Sprintf("%d cookies  ? help  q quit", len(m.cookies))))
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(items, "  "))
}
