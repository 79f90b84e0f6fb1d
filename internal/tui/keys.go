package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit    key.Binding
	Cancel    key.Binding
	Copy      key.Binding
	Clear     key.Binding
	Browse    key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding
	Left      key.Binding
	Right     key.Binding
	Remove    key.Binding
	Load      key.Binding
	Pill      key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "analyze")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy answer")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Browse:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "browse")),
		NextFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevFocus: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "select")),
		Right:     key.NewBinding(key.WithKeys("right")),
		Remove:    key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "remove file")),
		Load:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load paths")),
		Pill: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("alt+1…9", "preset prompt"),
		),
		ScrollUp: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", "scroll answer")),
		ScrollDn: key.NewBinding(key.WithKeys("pgdown")),
		Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Browse, k.Copy, k.NextFocus, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Cancel, k.Copy, k.Clear},
		{k.Browse, k.Load, k.Remove, k.Left},
		{k.Pill, k.ScrollUp, k.NextFocus, k.PrevFocus},
		{k.Help, k.Quit},
	}
}
