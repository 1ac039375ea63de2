package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NewTab  key.Binding
	Close   key.Binding
	Prev    key.Binding
	Next    key.Binding
	Rename  key.Binding
	Clear   key.Binding
	Export  key.Binding
	Theme   key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		NewTab:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "新しいタブ")),
		Close:   key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "タブを閉じる")),
		Prev:    key.NewBinding(key.WithKeys("ctrl+left"), key.WithHelp("ctrl+←", "前のタブ")),
		Next:    key.NewBinding(key.WithKeys("ctrl+right"), key.WithHelp("ctrl+→", "次のタブ")),
		Rename:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "名前を変更")),
		Clear:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "クリア")),
		Export:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "保存")),
		Theme:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "テーマ")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "終了")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "決定")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "キャンセル")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewTab, k.Close, k.Prev, k.Next, k.Rename, k.Clear, k.Export, k.Theme, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewTab, k.Close, k.Prev, k.Next},
		{k.Rename, k.Clear, k.Export, k.Theme, k.Quit},
	}
}

type renameKeys struct{ keyMap }

func (k renameKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

func (k renameKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
