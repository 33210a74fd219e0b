// Package textedit implements the single-line field editor used by every
// editable value. The cursor is counted in code points, never in bytes.
package textedit

import (
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// Action tells the caller what a key did to the editor.
type Action int

const (
	// Continue means the key was consumed and editing goes on.
	Continue Action = iota
	// Enter confirms the field.
	Enter
	// Cancel abandons the field.
	Cancel
	// Ignored means the key is not an editing key (Up, Down, Tab, ...) and is
	// left for the caller.
	Ignored
)

type Editor struct {
	text   string
	cursor int
}

// New returns an editor holding text with the cursor at the end.
func New(text string) Editor {
	return Editor{text: text, cursor: utf8.RuneCountInString(text)}
}

func (e *Editor) Value() string { return e.text }

// Cursor is the cursor position in code points, within [0, Len()].
func (e *Editor) Cursor() int { return e.cursor }

// Len is the number of code points in the buffer.
func (e *Editor) Len() int { return utf8.RuneCountInString(e.text) }

// SetValue replaces the buffer and moves the cursor to the end.
func (e *Editor) SetValue(text string) {
	e.text = text
	e.cursor = utf8.RuneCountInString(text)
}

func (e *Editor) SetCursor(pos int) {
	e.cursor = clamp(pos, 0, e.Len())
}

func (e *Editor) Insert(r rune) {
	at := byteOffset(e.text, e.cursor)
	e.text = e.text[:at] + string(r) + e.text[at:]
	e.cursor++
}

func (e *Editor) Left() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Editor) Right() {
	if e.cursor < e.Len() {
		e.cursor++
	}
}

func (e *Editor) Home() { e.cursor = 0 }

func (e *Editor) End() { e.cursor = e.Len() }

// Backspace removes the code point before the cursor.
func (e *Editor) Backspace() {
	if e.cursor == 0 {
		return
	}
	from := byteOffset(e.text, e.cursor-1)
	to := byteOffset(e.text, e.cursor)
	e.text = e.text[:from] + e.text[to:]
	e.cursor--
}

// Delete removes the code point under the cursor.
func (e *Editor) Delete() {
	if e.cursor >= e.Len() {
		return
	}
	from := byteOffset(e.text, e.cursor)
	to := byteOffset(e.text, e.cursor+1)
	e.text = e.text[:from] + e.text[to:]
}

// Update applies a key press to the buffer.
func (e *Editor) Update(msg tea.KeyMsg) Action {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return Ignored
		}
		for _, r := range msg.Runes {
			e.Insert(r)
		}
	case tea.KeySpace:
		e.Insert(' ')
	case tea.KeyLeft:
		e.Left()
	case tea.KeyRight:
		e.Right()
	case tea.KeyHome:
		e.Home()
	case tea.KeyEnd:
		e.End()
	case tea.KeyBackspace:
		e.Backspace()
	case tea.KeyDelete:
		e.Delete()
	case tea.KeyEnter:
		return Enter
	case tea.KeyEsc:
		return Cancel
	default:
		return Ignored
	}
	return Continue
}

// byteOffset scans s for the byte index where code point n starts, or len(s)
// when n is past the end.
func byteOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
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
