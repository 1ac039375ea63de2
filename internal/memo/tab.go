package memo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/memosum/pkg/memocalc"
)

var (
	ErrTabLimit    = errors.New("tab limit reached")
	ErrTabNotFound = errors.New("tab not found")
	ErrEmptyMemo   = errors.New("memo is empty")
	ErrClosed      = errors.New("notebook closed")
)

// MaxTitleRunes caps tab titles.
const MaxTitleRunes = 30

// Tab is one memo page.
type Tab struct {
	ID        uuid.UUID
	Title     string
	Text      string
	Extracted memocalc.Result
	CreatedAt time.Time
	UpdatedAt time.Time

	// Pending is set while an edit waits for its debounced extraction. Never persisted.
	Pending bool
}

// State is everything a Store keeps for a notebook.
type State struct {
	Tabs     []Tab
	ActiveID uuid.UUID
	Theme    string
}

// Store persists a notebook. SaveTabs replaces every stored tab; positions follow slice order.
type Store interface {
	Load(ctx context.Context) (State, error)
	SaveTab(ctx context.Context, tab Tab, position int) error
	SaveTabs(ctx context.Context, tabs []Tab) error
	SaveActive(ctx context.Context, id uuid.UUID) error
	SaveTheme(ctx context.Context, theme string) error
}

// Update announces a finished extraction.
type Update struct {
	TabID  uuid.UUID
	Result memocalc.Result
}
