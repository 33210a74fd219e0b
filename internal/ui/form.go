package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"passrs/internal/textedit"
	"passrs/internal/totp"
	"passrs/internal/vault"
)

type fieldKind int

const (
	textField fieldKind = iota
	numberField
)

// field describes one row of the edit dialog. Values live in the draft and
// are reached by the field's index.
type field struct {
	label string
	kind  fieldKind
	// min and max bound a number field, inclusive.
	min, max int
}

// draft is the private copy of a record being edited.
type draft interface {
	title(isNew bool) string
	fields() []field
	text(i int) string
	setText(i int, v string)
	number(i int) int
	setNumber(i int, v int)
}

type passwordDraft struct {
	rec vault.Password
}

func (d *passwordDraft) title(isNew bool) string {
	if isNew {
		return "New Password"
	}
	return "Edit Password"
}

func (d *passwordDraft) fields() []field {
	return []field{
		{label: "Name", kind: textField},
		{label: "Password", kind: textField},
	}
}

func (d *passwordDraft) text(i int) string {
	switch i {
	case 0:
		return d.rec.Name
	case 1:
		return d.rec.Password
	}
	return ""
}

func (d *passwordDraft) setText(i int, v string) {
	switch i {
	case 0:
		d.rec.Name = v
	case 1:
		d.rec.Password = v
	}
}

func (d *passwordDraft) number(int) int     { return 0 }
func (d *passwordDraft) setNumber(int, int) {}

type totpDraft struct {
	rec    vault.TOTP
	secret string
}

func newTOTPDraft(rec vault.TOTP) *totpDraft {
	return &totpDraft{rec: rec, secret: rec.SecretText()}
}

func (d *totpDraft) title(isNew bool) string {
	if isNew {
		return "New TOTP"
	}
	return "Edit TOTP"
}

func (d *totpDraft) fields() []field {
	return []field{
		{label: "Name", kind: textField},
		{label: "Digits", kind: numberField, min: totp.MinDigits, max: totp.MaxDigits - 1},
		{label: "Secret", kind: textField},
	}
}

func (d *totpDraft) text(i int) string {
	switch i {
	case 0:
		return d.rec.Name
	case 2:
		return d.secret
	}
	return ""
}

func (d *totpDraft) setText(i int, v string) {
	switch i {
	case 0:
		d.rec.Name = v
	case 2:
		d.secret = v
	}
}

func (d *totpDraft) number(i int) int {
	if i == 1 {
		return d.rec.Digits()
	}
	return 0
}

func (d *totpDraft) setNumber(i int, v int) {
	if i == 1 {
		d.rec.SetDigits(v)
	}
}

// record applies the typed secret and returns the finished record.
func (d *totpDraft) record() vault.TOTP {
	rec := d.rec
	rec.SetSecretText(d.secret)
	return rec
}

type form struct {
	draft  draft
	isNew  bool
	target int
	focus  int
	editor textedit.Editor
}

func newForm(d draft, isNew bool, target int) *form {
	f := &form{draft: d, isNew: isNew, target: target}
	f.seed()
	return f
}

func (f *form) current() field {
	return f.draft.fields()[f.focus]
}

// seed loads the focused text field into the editor, cursor at the end.
func (f *form) seed() {
	if f.current().kind == textField {
		f.editor = textedit.New(f.draft.text(f.focus))
	}
}

// store writes the editor back into the draft.
func (f *form) store() {
	if f.current().kind == textField {
		f.draft.setText(f.focus, f.editor.Value())
	}
}

func (f *form) move(delta int) {
	f.store()
	f.focus = wrapIndex(f.focus+delta, len(f.draft.fields()))
	f.seed()
}

func (f *form) handle(msg tea.KeyMsg) {
	fd := f.current()
	if fd.kind == textField {
		f.editor.Update(msg)
		return
	}

	v := f.draft.number(f.focus)
	switch msg.Type {
	case tea.KeyLeft:
		v--
	case tea.KeyRight:
		v++
	case tea.KeyHome:
		v = fd.min
	case tea.KeyEnd:
		v = fd.max
	default:
		return
	}
	f.draft.setNumber(f.focus, clamp(v, fd.min, fd.max))
}
