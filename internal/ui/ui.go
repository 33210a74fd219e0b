// Package ui is the interactive session: master password prompt, the two
// record lists and the edit dialog.
package ui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"passrs/internal/clipboard"
	"passrs/internal/config"
	"passrs/internal/crypto"
	"passrs/internal/storage"
	"passrs/internal/vault"
)

type mode int

const (
	modePrompt mode = iota
	modeList
	modeEdit
)

type tab int

const (
	tabPass tab = iota
	tabTOTP
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Deps are the collaborators a session talks to.
type Deps struct {
	// Load reads the data file with the given key (nil: unencrypted).
	Load      func(key *crypto.Key) (*storage.Loaded, error)
	Clipboard clipboard.Sink
	Now       func() time.Time
	Logger    *slog.Logger
}

// Result is what the session leaves behind for the caller to save.
type Result struct {
	Store *vault.Store
	Key   *crypto.Key
	Dirty bool
	// Aborted is set when the user left from the first password prompt or
	// pressed ctrl+c; nothing should be saved or reported.
	Aborted bool
	// Err is the load failure that ended the session, if any.
	Err error
}

type tickMsg time.Time

// copiedMsg reports a clipboard copy that ran outside Update.
type copiedMsg struct{ err error }

type Model struct {
	ctx     context.Context
	session config.Session
	deps    Deps
	log     *slog.Logger

	keys   keyMap
	help   help.Model
	styles styles

	mode   mode
	prompt textinput.Model
	// rekey is set when the prompt was opened from the list to change the
	// password of an already loaded store.
	rekey bool

	store *vault.Store
	key   *crypto.Key

	tab      tab
	sel      [2]int
	showAll  bool
	showNext bool
	form     *form

	dirty    bool
	aborted  bool
	quitting bool
	err      error

	status string
	now    time.Time
	width  int
	height int
}

func New(ctx context.Context, session config.Session, deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.New(session.CopyCommand)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if session.PollInterval <= 0 {
		session.PollInterval = config.DefaultPollInterval * time.Millisecond
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = crypto.KeySize
	ti.Width = crypto.KeySize

	m := Model{
		ctx:     ctx,
		session: session,
		deps:    deps,
		log:     logger,
		keys:    newKeyMap(session.Keys),
		help:    help.New(),
		styles:  newStyles(0),
		mode:    modePrompt,
		prompt:  ti,
		tab:     tabTOTP,
		now:     deps.Now(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	if session.DefaultTab == "pass" {
		m.tab = tabPass
	}

	if session.Password != nil {
		m, _ = m.unlock(*session.Password)
	} else {
		m.prompt.Focus()
	}
	return m
}

// Run drives the session until the user leaves it.
func Run(ctx context.Context, session config.Session, deps Deps) (Result, error) {
	m := New(ctx, session, deps)
	if m.err != nil {
		return m.result(), nil
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return Result{Aborted: true}, err
	}
	return final.(Model).result(), nil
}

func (m Model) result() Result {
	return Result{
		Store:   m.store,
		Key:     m.key,
		Dirty:   m.dirty,
		Aborted: m.aborted,
		Err:     m.err,
	}
}

func (m Model) Init() tea.Cmd {
	if m.mode == modePrompt {
		return tea.Batch(textinput.Blink, m.tick())
	}
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.session.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, interrupt) {
			m.aborted = true
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeEdit:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tickMsg:
		m.refresh()
		return m, m.tick()
	case copiedMsg:
		if msg.err != nil {
			m.log.Error("copy to clipboard", "error", msg.err)
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "Copied"
		}
	}
	return m, nil
}

// refresh moves every TOTP cache to the current window. Leaving a window
// also leaves "show next code" mode.
func (m *Model) refresh() {
	m.now = m.deps.Now()
	if m.store == nil {
		return
	}
	if m.store.RefreshCodes(m.now) && m.showNext {
		m.showNext = false
	}
}

func (m Model) unlock(pass string) (Model, tea.Cmd) {
	key := crypto.PasswordKey(pass)
	loaded, err := m.deps.Load(key)
	if err != nil {
		m.log.Error("load data file", "path", m.session.DataPath, "error", err)
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}

	m.key = key
	m.store = loaded.Store
	m.store.NormalizeTheme(len(palette))
	m.styles = newStyles(m.store.Theme)
	m.sel = [2]int{}
	m.refresh()
	m.mode = modeList
	if loaded.Missing {
		m.status = "Cannot read file, making new password set"
	}
	m.log.Info("session unlocked", "encrypted", key != nil, "missing", loaded.Missing)
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		pass := m.prompt.Value()
		m.prompt.Reset()
		m.prompt.Blur()
		if !m.rekey {
			return m.unlock(pass)
		}
		m.rekey = false
		m.key = crypto.PasswordKey(pass)
		m.dirty = true
		m.mode = modeList
		if m.key == nil {
			m.status = "Encryption disabled"
		} else {
			m.status = "Password changed"
		}
		return m, nil
	case tea.KeyEsc:
		m.prompt.Reset()
		m.prompt.Blur()
		if m.rekey {
			m.rekey = false
			m.mode = modeList
			return m, nil
		}
		m.aborted = true
		m.quitting = true
		return m, tea.Quit
	}

	prev := m.prompt.Value()
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	if len(m.prompt.Value()) > crypto.KeySize {
		m.prompt.SetValue(prev)
	}
	return m, cmd
}

func (m Model) listLen() int {
	if m.tab == tabPass {
		return len(m.store.Passwords)
	}
	return len(m.store.TOTPs)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	n := m.listLen()
	sel := &m.sel[m.tab]

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		if m.tab == tabPass {
			m.tab = tabTOTP
		} else {
			m.tab = tabPass
		}
	case key.Matches(msg, m.keys.Up):
		*sel = clampCursor(*sel-1, n)
	case key.Matches(msg, m.keys.Down):
		*sel = clampCursor(*sel+1, n)
	case key.Matches(msg, m.keys.Top):
		*sel = 0
	case key.Matches(msg, m.keys.Bottom):
		*sel = clampCursor(n-1, n)
	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		up := key.Matches(msg, m.keys.MoveUp)
		before := *sel
		if m.tab == tabPass {
			*sel = m.store.SwapPassword(*sel, up)
		} else {
			*sel = m.store.SwapTOTP(*sel, up)
		}
		if *sel != before {
			m.dirty = true
		}
	case key.Matches(msg, m.keys.Delete):
		if n == 0 {
			return m, nil
		}
		if m.tab == tabPass {
			m.store.TogglePassword(*sel)
		} else {
			m.store.ToggleTOTP(*sel)
		}
		m.dirty = true
	case key.Matches(msg, m.keys.ShowAll):
		m.showAll = !m.showAll
	case key.Matches(msg, m.keys.ShowNext):
		m.showNext = !m.showNext
	case key.Matches(msg, m.keys.Copy):
		if n == 0 {
			return m, nil
		}
		return m, m.copySelected()
	case key.Matches(msg, m.keys.Edit):
		if n == 0 {
			m.status = "Nothing to edit"
			return m, nil
		}
		if m.tab == tabPass {
			m.form = newForm(&passwordDraft{rec: m.store.Passwords[*sel]}, false, *sel)
		} else {
			m.form = newForm(newTOTPDraft(m.store.TOTPs[*sel].Clone()), false, *sel)
		}
		m.mode = modeEdit
	case key.Matches(msg, m.keys.New):
		if m.tab == tabPass {
			m.form = newForm(&passwordDraft{rec: vault.NewPassword()}, true, *sel)
		} else {
			m.form = newForm(newTOTPDraft(vault.NewTOTP()), true, *sel)
		}
		m.mode = modeEdit
	case key.Matches(msg, m.keys.Password):
		m.rekey = true
		m.mode = modePrompt
		m.prompt.Reset()
		cmd := m.prompt.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Theme):
		m.store.CycleTheme(len(palette))
		m.styles = newStyles(m.store.Theme)
		m.dirty = true
	}
	return m, nil
}

// copySelected returns a command that hands the selected value to the
// clipboard and reports back with a copiedMsg.
func (m Model) copySelected() tea.Cmd {
	sel := m.sel[m.tab]
	var value string
	if m.tab == tabPass {
		value = m.store.Passwords[sel].Password
	} else {
		value = m.store.TOTPs[sel].Code(m.showNext)
	}

	ctx, sink := m.ctx, m.deps.Clipboard
	return func() tea.Msg {
		return copiedMsg{err: sink.Copy(ctx, value)}
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch {
	case key.Matches(msg, formKeys.Prev):
		f.move(-1)
	case key.Matches(msg, formKeys.Next):
		f.move(1)
	case key.Matches(msg, formKeys.Confirm):
		return m.commitForm()
	case key.Matches(msg, formKeys.Cancel):
		m.form = nil
		m.mode = modeList
	default:
		f.handle(msg)
	}
	return m, nil
}

func (m Model) commitForm() (tea.Model, tea.Cmd) {
	f := m.form
	f.store()

	switch d := f.draft.(type) {
	case *passwordDraft:
		if f.isNew {
			m.sel[tabPass] = m.store.AddPassword(d.rec, m.sel[tabPass])
		} else {
			m.store.ReplacePassword(f.target, d.rec)
		}
	case *totpDraft:
		rec := d.record()
		rec.Recompute(m.now)
		if f.isNew {
			m.sel[tabTOTP] = m.store.AddTOTP(rec, m.sel[tabTOTP])
		} else {
			m.store.ReplaceTOTP(f.target, rec)
		}
	}

	m.form = nil
	m.mode = modeList
	m.dirty = true
	return m, nil
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
