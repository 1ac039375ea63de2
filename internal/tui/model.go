package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/export"
	"github.com/ib-77/memosum/internal/memo"
	"github.com/ib-77/memosum/internal/theme"
)

type Options struct {
	// ExportDir receives text exports (ctrl+s). Defaults to the working directory.
	ExportDir string
	Logger    *zap.Logger
	// OnTheme is told about theme changes, e.g. to save them to the config file.
	OnTheme func(id string)
}

type updateMsg memo.Update

type updatesClosedMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

// Model is the bubbletea model for the memo notebook.
type Model struct {
	ctx    context.Context
	nb     *memo.Notebook
	opts   Options
	logger *zap.Logger

	editor   textarea.Model
	rename   textinput.Model
	renaming bool
	keys     keyMap
	help     help.Model

	themeID string
	styles  theme.Styles

	width  int
	height int
	status statusMsg
}

func New(ctx context.Context, nb *memo.Notebook, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	ta := textarea.New()
	ta.Placeholder = "ここにメモを入力してください… 例: りんご 120円 [バナナ 80×3]"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()
	ta.SetValue(nb.Active().Text)

	ti := textinput.New()
	ti.Prompt = "タブ名: "
	ti.CharLimit = memo.MaxTitleRunes

	m := Model{
		ctx:    ctx,
		nb:     nb,
		opts:   opts,
		logger: opts.Logger,
		editor: ta,
		rename: ti,
		keys:   defaultKeys(),
		help:   help.New(),
	}
	m.applyTheme(nb.Theme())
	return m
}

func (m *Model) applyTheme(id string) {
	t, ok := theme.Lookup(id)
	if !ok {
		m.logger.Warn("theme not found, using default", zap.String("theme", id), zap.String("using", t.ID))
	}
	m.themeID = t.ID
	m.styles = theme.NewStyles(t)
}

func waitForUpdate(nb *memo.Notebook) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-nb.Updates()
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(u)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForUpdate(m.nb))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case updateMsg:
		return m, waitForUpdate(m.nb)

	case updatesClosedMsg:
		return m, nil

	case statusMsg:
		m.status = msg
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.nb.Flush()
			return m, tea.Quit
		}
		if m.renaming {
			return m.updateRename(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		if err := m.nb.Edit(m.ctx, m.nb.Active().ID, after); err != nil {
			m.fail("保存できませんでした", err)
		}
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.NewTab):
		if _, err := m.nb.Add(m.ctx); err != nil {
			if errors.Is(err, memo.ErrTabLimit) {
				m.status = statusMsg{text: fmt.Sprintf("タブは最大%d個までです。", m.nb.MaxTabs()), isErr: true}
			} else {
				m.fail("タブを追加できませんでした", err)
			}
			return nil, true
		}
		m.syncEditor()

	case key.Matches(msg, m.keys.Close):
		if err := m.nb.CloseTab(m.ctx, m.nb.Active().ID); err != nil {
			m.fail("タブを閉じられませんでした", err)
			return nil, true
		}
		m.syncEditor()

	case key.Matches(msg, m.keys.Prev), key.Matches(msg, m.keys.Next):
		delta := 1
		if key.Matches(msg, m.keys.Prev) {
			delta = -1
		}
		if _, err := m.nb.SelectOffset(m.ctx, delta); err != nil {
			m.fail("タブを切り替えられませんでした", err)
			return nil, true
		}
		m.syncEditor()

	case key.Matches(msg, m.keys.Rename):
		m.renaming = true
		m.editor.Blur()
		m.rename.SetValue(m.nb.Active().Title)
		m.rename.CursorEnd()
		return m.rename.Focus(), true

	case key.Matches(msg, m.keys.Clear):
		if err := m.nb.Clear(m.ctx, m.nb.Active().ID); err != nil {
			m.fail("クリアできませんでした", err)
			return nil, true
		}
		m.editor.Reset()

	case key.Matches(msg, m.keys.Export):
		return m.exportActive(), true

	case key.Matches(msg, m.keys.Theme):
		next := theme.Next(m.themeID)
		if err := m.nb.SetTheme(m.ctx, next.ID); err != nil {
			m.fail("テーマを保存できませんでした", err)
		}
		m.applyTheme(next.ID)
		m.resize()
		if m.opts.OnTheme != nil {
			m.opts.OnTheme(next.ID)
		}
		m.status = statusMsg{text: "テーマ: " + next.Name}

	default:
		return nil, false
	}
	return nil, true
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if _, err := m.nb.Rename(m.ctx, m.nb.Active().ID, m.rename.Value()); err != nil {
			m.fail("名前を変更できませんでした", err)
		}
		m.endRename()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.endRename()
		return m, nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *Model) endRename() {
	m.renaming = false
	m.rename.Blur()
	m.editor.Focus()
}

// exportActive writes the active tab as a text file off the update loop.
func (m *Model) exportActive() tea.Cmd {
	tab := m.nb.Active()
	dir := m.opts.ExportDir
	logger := m.logger
	return func() tea.Msg {
		content, err := export.Text(tab, time.Local)
		if errors.Is(err, memo.ErrEmptyMemo) {
			return statusMsg{text: "メモが空です。", isErr: true}
		}
		if err != nil {
			return statusMsg{text: err.Error(), isErr: true}
		}
		path := filepath.Join(dir, export.Filename(tab))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			logger.Error("export failed", zap.String("path", path), zap.Error(err))
			return statusMsg{text: "保存できませんでした: " + err.Error(), isErr: true}
		}
		logger.Info("tab exported", zap.Stringer("tab", tab.ID), zap.String("path", path))
		return statusMsg{text: "保存しました: " + path}
	}
}

func (m *Model) fail(what string, err error) {
	m.logger.Error(what, zap.Error(err))
	m.status = statusMsg{text: what + ": " + err.Error(), isErr: true}
}

func (m *Model) syncEditor() {
	m.editor.SetValue(m.nb.Active().Text)
	m.status = statusMsg{}
}

func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	w := m.width - 4
	h := m.height - 16
	if h < 3 {
		h = 3
	}
	m.editor.SetWidth(w)
	m.editor.SetHeight(h)
	m.help.Width = m.width
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Header.Render("メモ計算"))
	b.WriteString("\n")
	b.WriteString(s.Description.Render(fmt.Sprintf(
		"メモの文中の数字を自動で加算していくアプリです。最大%dページのメモをタブで管理できます。", m.nb.MaxTabs())))
	b.WriteString("\n\n")

	b.WriteString(m.tabBar())
	b.WriteString("\n")

	if m.renaming {
		b.WriteString(m.rename.View())
		b.WriteString("\n")
	}
	b.WriteString(s.Editor.Render(m.editor.View()))
	b.WriteString("\n")
	b.WriteString(m.results())
	b.WriteString("\n")

	if m.status.text != "" {
		if m.status.isErr {
			b.WriteString(s.Error.Render(m.status.text))
		} else {
			b.WriteString(s.Muted.Render(m.status.text))
		}
		b.WriteString("\n")
	}

	if m.renaming {
		b.WriteString(s.Help.Render(m.help.View(renameKeys{m.keys})))
	} else {
		b.WriteString(s.Help.Render(m.help.View(m.keys)))
	}
	return s.App.Render(b.String())
}

func (m Model) tabBar() string {
	s := m.styles
	tabs := m.nb.Tabs()
	active := m.nb.Active().ID

	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		if t.ID == active {
			parts = append(parts, s.ActiveTab.Render("● "+t.Title))
		} else {
			parts = append(parts, s.Tab.Render(t.Title))
		}
	}
	parts = append(parts, s.TabCount.Render(fmt.Sprintf(" %d/%d", len(tabs), m.nb.MaxTabs())))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) results() string {
	s := m.styles
	tab := m.nb.Active()

	var body string
	switch {
	case tab.Pending:
		body = s.Muted.Render("計算中…")
	case len(tab.Extracted.Numbers) == 0:
		body = s.Muted.Render("数字は見つかりませんでした。")
	default:
		chips := make([]string, len(tab.Extracted.Numbers))
		for i, n := range tab.Extracted.Numbers {
			chips[i] = s.Chip.Render(export.FormatNumber(n))
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			"検出された数字:",
			lipgloss.NewStyle().Width(max(m.width-8, 20)).Render(strings.Join(chips, "")),
			"",
			"合計: "+s.Sum.Render(export.FormatNumber(tab.Extracted.Sum)),
		)
	}
	return s.Results.Render(body)
}

// Run starts the terminal UI on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, nb *memo.Notebook, opts Options) error {
	p := tea.NewProgram(New(ctx, nb, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
