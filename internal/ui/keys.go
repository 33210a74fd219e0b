package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"passrs/internal/config"
)

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Delete   key.Binding
	ShowAll  key.Binding
	ShowNext key.Binding
	Copy     key.Binding
	Edit     key.Binding
	New      key.Binding
	Password key.Binding
	Theme    key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:     binding(k.Quit, "save & quit"),
		Tab:      binding(k.Tab, "switch tab"),
		Up:       binding(k.Up, "up"),
		Down:     binding(k.Down, "down"),
		Top:      binding(k.Top, "first"),
		Bottom:   binding(k.Bottom, "last"),
		MoveUp:   binding(k.MoveUp, "move up"),
		MoveDown: binding(k.MoveDown, "move down"),
		Delete:   binding(k.Delete, "mark deleted"),
		ShowAll:  binding(k.ShowAll, "show all"),
		ShowNext: binding(k.ShowNext, "next code"),
		Copy:     binding(k.Copy, "copy"),
		Edit:     binding(k.Edit, "edit"),
		New:      binding(k.New, "new"),
		Password: binding(k.Password, "change password"),
		Theme:    binding(k.Theme, "colour"),
	}
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), desc),
	)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Copy, k.Edit, k.New, k.Delete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Tab},
		{k.MoveUp, k.MoveDown, k.Delete, k.Edit, k.New},
		{k.ShowAll, k.ShowNext, k.Copy, k.Password, k.Theme, k.Quit},
	}
}

// formKeyMap is fixed; only the main view is configurable.
type formKeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Adjust  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

var formKeys = formKeyMap{
	Prev: key.NewBinding(
		key.WithKeys("up", "shift+tab"),
		key.WithHelp("↑", "prev field"),
	),
	Next: key.NewBinding(
		key.WithKeys("down", "tab"),
		key.WithHelp("↓", "next field"),
	),
	Adjust: key.NewBinding(
		key.WithKeys("left", "right"),
		key.WithHelp("←/→", "cursor / number"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("⏎", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Adjust, k.Confirm, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var interrupt = key.NewBinding(key.WithKeys("ctrl+c"))
