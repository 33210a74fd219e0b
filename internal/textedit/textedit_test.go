package textedit

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestNew_CursorAtEnd(t *testing.T) {
	e := New("héllo")
	assert.Equal(t, 5, e.Cursor())
	assert.Equal(t, 5, e.Len())
}

func TestInsertMultibyte(t *testing.T) {
	e := New("ab")
	e.SetCursor(1)
	e.Insert('€')
	assert.Equal(t, "a€b", e.Value())
	assert.Equal(t, 2, e.Cursor())

	e.Insert('x')
	assert.Equal(t, "a€xb", e.Value())
}

func TestBackspaceAndDelete(t *testing.T) {
	e := New("añ€z")

	e.Backspace()
	assert.Equal(t, "añ€", e.Value())
	assert.Equal(t, 3, e.Cursor())

	e.Home()
	e.Backspace()
	assert.Equal(t, "añ€", e.Value(), "backspace at 0 is a no-op")

	e.Right()
	e.Delete()
	assert.Equal(t, "a€", e.Value())
	assert.Equal(t, 1, e.Cursor())

	e.End()
	e.Delete()
	assert.Equal(t, "a€", e.Value(), "delete at end is a no-op")
}

func TestInsertThenBackspaceRestores(t *testing.T) {
	texts := []string{"", "plain", "ünïcödé", "日本語", "a😀b"}
	inserts := []rune{'x', 'é', '語', '😀'}

	for _, text := range texts {
		for pos := 0; pos <= len([]rune(text)); pos++ {
			for _, r := range inserts {
				e := New(text)
				e.SetCursor(pos)
				e.Insert(r)
				e.Backspace()
				if e.Value() != text || e.Cursor() != pos {
					t.Fatalf("insert %q at %d of %q then backspace: got %q cursor %d", r, pos, text, e.Value(), e.Cursor())
				}
			}
		}
	}
}

func TestCursorClamped(t *testing.T) {
	e := New("ab")
	for n := 0; n < 5; n++ {
		e.Right()
	}
	assert.Equal(t, 2, e.Cursor())
	for n := 0; n < 5; n++ {
		e.Left()
	}
	assert.Equal(t, 0, e.Cursor())

	e.SetCursor(99)
	assert.Equal(t, 2, e.Cursor())
	e.SetCursor(-3)
	assert.Equal(t, 0, e.Cursor())
}

func TestUpdate(t *testing.T) {
	e := New("")

	assert.Equal(t, Continue, e.Update(runes("hi")))
	assert.Equal(t, Continue, e.Update(key(tea.KeySpace)))
	assert.Equal(t, Continue, e.Update(runes("ö")))
	assert.Equal(t, "hi ö", e.Value())

	assert.Equal(t, Continue, e.Update(key(tea.KeyHome)))
	assert.Equal(t, Continue, e.Update(key(tea.KeyDelete)))
	assert.Equal(t, "i ö", e.Value())

	assert.Equal(t, Continue, e.Update(key(tea.KeyEnd)))
	assert.Equal(t, Continue, e.Update(key(tea.KeyBackspace)))
	assert.Equal(t, "i ", e.Value())

	assert.Equal(t, Ignored, e.Update(key(tea.KeyUp)))
	assert.Equal(t, Ignored, e.Update(key(tea.KeyDown)))
	assert.Equal(t, Enter, e.Update(key(tea.KeyEnter)))
	assert.Equal(t, Cancel, e.Update(key(tea.KeyEsc)))
	assert.Equal(t, "i ", e.Value())
}
