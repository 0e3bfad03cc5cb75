package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Play       key.Binding
	Reset      key.Binding
	Regenerate key.Binding
	Empty      key.Binding
	Algorithm  key.Binding
	More       key.Binding
	Fewer      key.Binding
	Theme      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Next:       key.NewBinding(key.WithKeys("n", "enter"), key.WithHelp("n", "next step")),
	Play:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/stop")),
	Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Regenerate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "regenerate")),
	Empty:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "empty map")),
	Algorithm:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "algorithm")),
	More:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more obstacles")),
	Fewer:      key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "fewer obstacles")),
	Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Play, k.Regenerate, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Play, k.Reset},
		{k.Regenerate, k.Empty, k.Algorithm},
		{k.More, k.Fewer, k.Theme},
		{k.Help, k.Quit},
	}
}
