package ui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"passrs/internal/totp"
	"passrs/internal/viewport"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modePrompt:
		return m.viewPrompt()
	case modeEdit:
		return m.viewForm()
	default:
		return m.viewList()
	}
}

func (m Model) viewPrompt() string {
	hint := "enter to confirm, empty for no encryption • esc to cancel"
	body := lipgloss.JoinVertical(lipgloss.Center,
		"Password:",
		m.prompt.View(),
		"",
		m.styles.Muted.Render(hint),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) viewList() string {
	w := m.width
	rows := max(m.height-2, 1)

	var title string
	var total, live int
	if m.tab == tabPass {
		title = "Passwords"
		total = len(m.store.Passwords)
		for _, p := range m.store.Passwords {
			if !p.Deleted {
				live++
			}
		}
	} else {
		title = "Authenticator"
		total = len(m.store.TOTPs)
		for _, t := range m.store.TOTPs {
			if !t.Deleted {
				live++
			}
		}
	}
	if live > 0 {
		title = fmt.Sprintf("%s (%d)", title, live)
	}

	lines := []string{lipgloss.PlaceHorizontal(w, lipgloss.Center, m.styles.Title.Render(title))}
	if total == 0 {
		lines = append(lines, m.styles.Muted.Render(" Nothing here yet, press "+m.keys.New.Help().Key+" to add one"))
	}
	start, end := viewport.Window(rows, total, m.sel[m.tab])
	for i := start; i < end; i++ {
		if m.tab == tabPass {
			lines = append(lines, m.passwordRow(i, w))
		} else {
			lines = append(lines, m.totpRow(i, w))
		}
	}
	return m.frame(lines, m.help.View(m.keys))
}

// frame pads lines to the screen height and puts the status or help line at
// the bottom.
func (m Model) frame(lines []string, helpLine string) string {
	for len(lines) < m.height-1 {
		lines = append(lines, "")
	}
	footer := helpLine
	if m.status != "" {
		footer = m.styles.Status.Render(m.status)
	}
	return strings.Join(append(lines, footer), "\n")
}

func (m Model) passwordRow(i, w int) string {
	rec := m.store.Passwords[i]
	selected := i == m.sel[tabPass]

	name := clip(rec.Name, w-1)
	line := " " + name
	if (selected || m.showAll) && utf8.RuneCountInString(rec.Name)+6 <= w {
		secret := fitSpaced(rec.Password, w-utf8.RuneCountInString(name)-4)
		gap := max(w-1-lipgloss.Width(line)-lipgloss.Width(secret), 1)
		line += strings.Repeat(" ", gap) + secret
	}

	style := m.styles.Row
	if selected {
		style = m.styles.Selected
	}
	if rec.Deleted {
		style = deleted(style)
	}
	return style.Render(line)
}

func (m Model) totpRow(i, w int) string {
	rec := &m.store.TOTPs[i]
	selected := i == m.sel[tabTOTP]
	digits := rec.Digits()

	var line string
	if (selected || m.showAll) && utf8.RuneCountInString(rec.Name)+digits+4 < w {
		first, second := totp.Split(rec.Code(m.showNext), digits)
		line = fmt.Sprintf(" %-*s %s %s ", w-digits-4, rec.Name, first, second)
	} else {
		line = fmt.Sprintf(" %-*s", max(w-1, 0), clip(rec.Name, w-1))
	}

	if !selected {
		style := m.styles.Row
		if rec.Deleted {
			style = deleted(style)
		}
		return style.Render(line)
	}

	// The highlight fills from the left as the window runs out.
	runes := []rune(line)
	split := int(float64(len(runes)) * rec.Params.Progress(m.now))
	if !m.showNext {
		split++
	}
	split = clamp(split, 0, len(runes))

	done, rest := m.styles.Filled, m.styles.Empty
	if m.showNext {
		done, rest = rest, done
	}
	if rec.Deleted {
		done, rest = deleted(done), deleted(rest)
	}
	return done.Render(string(runes[:split])) + rest.Render(string(runes[split:]))
}

func (m Model) viewForm() string {
	f := m.form
	w := m.width

	lines := []string{
		lipgloss.PlaceHorizontal(w, lipgloss.Center, m.styles.Title.Render(f.draft.title(f.isNew))),
		"",
	}
	for i, fd := range f.draft.fields() {
		label := m.styles.Label
		if i == f.focus {
			label = m.styles.Focused
		}
		lines = append(lines, " "+label.Render(fd.label))

		switch fd.kind {
		case numberField:
			lines = append(lines, "    "+strconv.Itoa(f.draft.number(i)), "")
		default:
			value, cursor := f.draft.text(i), -1
			if i == f.focus {
				value, cursor = f.editor.Value(), f.editor.Cursor()
			}
			text, note := m.typing(value, cursor, w-5)
			lines = append(lines, "    "+text, "    "+note)
		}
	}
	return m.frame(lines, m.help.View(formKeys))
}

// typing renders a text field. Every character gets a slot as wide as the
// longest UTF-8 encoding in the text, and the slots scroll so the cursor
// stays visible. A cursor of -1 means the field is not focused. note names
// the character under the cursor when it is not ASCII.
func (m Model) typing(text string, cursor, width int) (field, note string) {
	runes := []rune(text)
	spacing := slotWidth(runes)
	slots := max(width/spacing-1, 1)

	start, end := viewport.Window(slots, len(runes), max(cursor, 0))

	var b strings.Builder
	for i := start; i < end; i++ {
		cell := pad(runes[i], spacing)
		if i != cursor {
			b.WriteString(m.styles.Field.Render(cell))
			continue
		}
		b.WriteString(m.styles.Cursor.Render(cell))
		if runes[i] > 0x7f {
			note = strings.Repeat(" ", (i-start)*spacing) + fmt.Sprintf("\\u%x", runes[i])
		}
	}
	if cursor >= len(runes) {
		b.WriteString(m.styles.Cursor.Render(strings.Repeat(" ", spacing)))
	}
	return b.String(), note
}

func slotWidth(runes []rune) int {
	width := 1
	for _, r := range runes {
		width = max(width, utf8.RuneLen(r))
	}
	return width
}

func pad(r rune, width int) string {
	return fmt.Sprintf("%-*s", width, string(r))
}

// fitSpaced lays text out in slots, cutting it with "..." when it needs
// more than avail columns.
func fitSpaced(text string, avail int) string {
	runes := []rune(text)
	spacing := slotWidth(runes)
	if len(runes)*spacing > avail {
		runes = runes[:max((avail-3)/spacing, 0)]
		return spaced(runes, spacing) + "..."
	}
	return spaced(runes, spacing)
}

func spaced(runes []rune, spacing int) string {
	var b strings.Builder
	for _, r := range runes {
		b.WriteString(pad(r, spacing))
	}
	return b.String()
}

// clip shortens s to n characters, ending in "..." when cut.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
