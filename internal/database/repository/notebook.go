package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ib-77/memosum/internal/memo"
	"github.com/ib-77/memosum/pkg/memocalc"
)

// NotebookStore keeps a memo.Notebook in sqlite.
type NotebookStore struct {
	tabs     *TabRepo
	settings *SettingsRepo
}

var _ memo.Store = (*NotebookStore)(nil)

func NewNotebookStore(db *sql.DB) *NotebookStore {
	return &NotebookStore{tabs: NewTabRepo(db), settings: NewSettingsRepo(db)}
}

func (s *NotebookStore) Load(ctx context.Context) (memo.State, error) {
	rows, err := s.tabs.List(ctx)
	if err != nil {
		return memo.State{}, fmt.Errorf("list tabs: %w", err)
	}

	state := memo.State{Tabs: make([]memo.Tab, 0, len(rows))}
	for _, r := range rows {
		tab, err := fromRow(r)
		if err != nil {
			return memo.State{}, err
		}
		state.Tabs = append(state.Tabs, tab)
	}

	active, ok, err := s.settings.Get(ctx, SettingActiveTab)
	if err != nil {
		return memo.State{}, fmt.Errorf("active tab: %w", err)
	}
	if ok {
		// an unparsable id is treated like an unknown one
		state.ActiveID, _ = uuid.Parse(active)
	}

	if state.Theme, _, err = s.settings.Get(ctx, SettingTheme); err != nil {
		return memo.State{}, fmt.Errorf("theme: %w", err)
	}
	return state, nil
}

func (s *NotebookStore) SaveTab(ctx context.Context, tab memo.Tab, position int) error {
	return s.tabs.Upsert(ctx, toRow(tab, position))
}

func (s *NotebookStore) SaveTabs(ctx context.Context, tabs []memo.Tab) error {
	rows := make([]TabRow, len(tabs))
	for i, t := range tabs {
		rows[i] = toRow(t, i)
	}
	return s.tabs.ReplaceAll(ctx, rows)
}

func (s *NotebookStore) SaveActive(ctx context.Context, id uuid.UUID) error {
	return s.settings.Set(ctx, SettingActiveTab, id.String())
}

func (s *NotebookStore) SaveTheme(ctx context.Context, theme string) error {
	return s.settings.Set(ctx, SettingTheme, theme)
}

func toRow(t memo.Tab, position int) TabRow {
	return TabRow{
		ID:        t.ID.String(),
		Title:     t.Title,
		MemoText:  t.Text,
		Numbers:   t.Extracted.Numbers,
		Sum:       t.Extracted.Sum,
		Position:  position,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromRow(r TabRow) (memo.Tab, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return memo.Tab{}, fmt.Errorf("tab id %q: %w", r.ID, err)
	}
	nums := r.Numbers
	if nums == nil {
		nums = []float64{}
	}
	return memo.Tab{
		ID:        id,
		Title:     r.Title,
		Text:      r.MemoText,
		Extracted: memocalc.Result{Numbers: nums, Sum: r.Sum},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
