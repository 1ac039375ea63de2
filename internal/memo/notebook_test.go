package memo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/memosum/pkg/memocalc"
)

func newNotebook(t *testing.T, store *memStore, opts Options) *Notebook {
	t.Helper()
	if opts.Debounce == 0 && !opts.Immediate {
		opts.Debounce = time.Hour
	}
	n := New(store, opts)
	t.Cleanup(n.Close)
	require.NoError(t, n.Load(context.Background()))
	return n
}

func waitUpdate(t *testing.T, n *Notebook) Update {
	t.Helper()
	select {
	case u := <-n.Updates():
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("no update")
		return Update{}
	}
}

func noUpdate(t *testing.T, n *Notebook) {
	t.Helper()
	select {
	case u := <-n.Updates():
		t.Fatalf("unexpected update for %s", u.TabID)
	default:
	}
}

func storedTabs(n int) []Tab {
	tabs := make([]Tab, n)
	for i := range tabs {
		tabs[i] = Tab{ID: uuid.New(), Title: fmt.Sprintf("stored %d", i+1), Extracted: memocalc.Empty()}
	}
	return tabs
}

func TestLoad_EmptyStoreCreatesOneTab(t *testing.T) {
	store := &memStore{}
	n := newNotebook(t, store, Options{})

	tabs := n.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "メモ 1", tabs[0].Title)
	assert.Equal(t, tabs[0].ID, n.Active().ID)
	assert.Equal(t, "earth", n.Theme())

	saved := store.snapshot()
	require.Len(t, saved.Tabs, 1)
	assert.Equal(t, tabs[0].ID, saved.ActiveID)
}

func TestLoad_TrimsAndRepairsActive(t *testing.T) {
	store := &memStore{state: State{Tabs: storedTabs(12), ActiveID: uuid.New(), Theme: "night"}}
	n := newNotebook(t, store, Options{})

	tabs := n.Tabs()
	require.Len(t, tabs, 10)
	assert.Equal(t, "stored 10", tabs[9].Title)
	assert.Equal(t, tabs[0].ID, n.Active().ID)
	assert.Equal(t, "night", n.Theme())
	assert.Len(t, store.snapshot().Tabs, 10)
}

func TestLoad_KeepsKnownActive(t *testing.T) {
	stored := storedTabs(3)
	store := &memStore{state: State{Tabs: stored, ActiveID: stored[2].ID}}
	n := newNotebook(t, store, Options{})

	assert.Equal(t, stored[2].ID, n.Active().ID)
	assert.Equal(t, 2, n.ActiveIndex())
	assert.Zero(t, store.saves)
}

func TestLoad_StoreError(t *testing.T) {
	boom := errors.New("disk gone")
	n := New(&memStore{failing: boom}, Options{})
	defer n.Close()

	assert.ErrorIs(t, n.Load(context.Background()), boom)
}

func TestAdd_UpToLimit(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{MaxTabs: 3})

	second, err := n.Add(ctx)
	require.NoError(t, err)
	assert.Equal(t, "メモ 2", second.Title)
	assert.Equal(t, second.ID, n.Active().ID)

	_, err = n.Add(ctx)
	require.NoError(t, err)

	_, err = n.Add(ctx)
	assert.ErrorIs(t, err, ErrTabLimit)
	assert.Len(t, n.Tabs(), 3)
}

func TestCloseTab(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	n := newNotebook(t, store, Options{})
	first := n.Active()
	second, _ := n.Add(ctx)
	third, _ := n.Add(ctx)

	// closing a tab that is not active keeps the selection
	require.NoError(t, n.CloseTab(ctx, first.ID))
	assert.Equal(t, third.ID, n.Active().ID)

	// closing the active tab selects the one before it
	require.NoError(t, n.CloseTab(ctx, third.ID))
	assert.Equal(t, second.ID, n.Active().ID)

	// closing the only tab leaves a fresh one
	require.NoError(t, n.CloseTab(ctx, second.ID))
	tabs := n.Tabs()
	require.Len(t, tabs, 1)
	assert.NotEqual(t, second.ID, tabs[0].ID)
	assert.Equal(t, "メモ 1", tabs[0].Title)
	assert.Equal(t, tabs[0].ID, store.snapshot().ActiveID)

	assert.ErrorIs(t, n.CloseTab(ctx, uuid.New()), ErrTabNotFound)
}

func TestCloseTab_FirstActiveSelectsNewFirst(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{})
	first := n.Active()
	second, _ := n.Add(ctx)
	require.NoError(t, n.Select(ctx, first.ID))

	require.NoError(t, n.CloseTab(ctx, first.ID))
	assert.Equal(t, second.ID, n.Active().ID)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{})
	_, _ = n.Add(ctx)
	tab := n.Active()

	got, err := n.Rename(ctx, tab.ID, "  食費  ")
	require.NoError(t, err)
	assert.Equal(t, "食費", got.Title)

	got, err = n.Rename(ctx, tab.ID, strings.Repeat("長", 40))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("長", MaxTitleRunes), got.Title)

	got, err = n.Rename(ctx, tab.ID, " \t ")
	require.NoError(t, err)
	assert.Equal(t, "メモ 2", got.Title)

	_, err = n.Rename(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrTabNotFound)
}

func TestSelectOffset_Wraps(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{})
	first := n.Active()
	_, _ = n.Add(ctx)
	third, _ := n.Add(ctx)

	got, err := n.SelectOffset(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = n.SelectOffset(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, third.ID, got.ID)
}

func TestEdit_DebouncedLastEditWins(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	n := newNotebook(t, store, Options{})
	id := n.Active().ID

	require.NoError(t, n.Edit(ctx, id, "1"))
	require.NoError(t, n.Edit(ctx, id, "1+1"))
	require.NoError(t, n.Edit(ctx, id, "1+1+1"))

	tab := n.Active()
	assert.True(t, tab.Pending)
	assert.Equal(t, "1+1+1", tab.Text)
	assert.Equal(t, "1+1+1", store.snapshot().Tabs[0].Text)
	noUpdate(t, n)

	n.Flush()
	u := waitUpdate(t, n)
	assert.Equal(t, id, u.TabID)
	assert.Equal(t, []float64{3}, u.Result.Numbers)
	noUpdate(t, n)

	tab = n.Active()
	assert.False(t, tab.Pending)
	assert.Equal(t, float64(3), store.snapshot().Tabs[0].Extracted.Sum)
}

func TestEdit_TimerFires(t *testing.T) {
	n := newNotebook(t, &memStore{}, Options{Debounce: 10 * time.Millisecond})
	id := n.Active().ID

	require.NoError(t, n.Edit(context.Background(), id, "[りんご 50円 バナナ 30×2個]"))
	u := waitUpdate(t, n)
	assert.Equal(t, float64(110), u.Result.Sum)
}

func TestEdit_SupersededExtractionIsDiscarded(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{})
	id := n.Active().ID

	require.NoError(t, n.Edit(ctx, id, "1"))
	require.NoError(t, n.Edit(ctx, id, "2"))

	n.extract(ctx, id, 1, "1")
	noUpdate(t, n)
	assert.True(t, n.Active().Pending)

	n.Flush()
	assert.Equal(t, []float64{2}, waitUpdate(t, n).Result.Numbers)
}

func TestEdit_Immediate(t *testing.T) {
	n := newNotebook(t, &memStore{}, Options{Immediate: true})
	id := n.Active().ID

	require.NoError(t, n.Edit(context.Background(), id, "2+3×4"))
	assert.Equal(t, float64(14), n.Active().Extracted.Sum)
	assert.Equal(t, float64(14), waitUpdate(t, n).Result.Sum)
}

func TestSnapshots_KeepEmptyNumbersNonNil(t *testing.T) {
	n := newNotebook(t, &memStore{}, Options{Immediate: true})
	id := n.Active().ID

	require.NoError(t, n.Edit(context.Background(), id, "りんご バナナ"))

	tab, err := n.Tab(id)
	require.NoError(t, err)
	for _, got := range []Tab{tab, n.Active(), n.Tabs()[0]} {
		assert.NotNil(t, got.Extracted.Numbers)
		assert.Equal(t, memocalc.Empty(), got.Extracted)
	}

	// copies do not alias the notebook's slice
	require.NoError(t, n.Edit(context.Background(), id, "1 2"))
	snap := n.Active()
	snap.Extracted.Numbers[0] = 99
	assert.Equal(t, []float64{1, 2}, n.Active().Extracted.Numbers)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{Immediate: true})
	id := n.Active().ID
	require.NoError(t, n.Edit(ctx, id, "100"))
	waitUpdate(t, n)

	require.NoError(t, n.Clear(ctx, id))
	tab := n.Active()
	assert.Empty(t, tab.Text)
	assert.Equal(t, memocalc.Empty(), tab.Extracted)
	assert.Equal(t, memocalc.Empty(), waitUpdate(t, n).Result)
}

func TestClear_CancelsPendingEdit(t *testing.T) {
	ctx := context.Background()
	n := newNotebook(t, &memStore{}, Options{})
	id := n.Active().ID
	require.NoError(t, n.Edit(ctx, id, "100"))

	require.NoError(t, n.Clear(ctx, id))
	waitUpdate(t, n)
	n.Flush()
	noUpdate(t, n)
	assert.Equal(t, memocalc.Empty(), n.Active().Extracted)
}

func TestRecalculateAll(t *testing.T) {
	ctx := context.Background()
	stored := storedTabs(3)
	stored[0].Text = "1,000円"
	stored[1].Text = "(除外 5) 7"
	stored[2].Text = "60+7=67"
	store := &memStore{state: State{Tabs: stored}}
	n := newNotebook(t, store, Options{Lines: 2})

	require.NoError(t, n.RecalculateAll(ctx))
	tabs := n.Tabs()
	assert.Equal(t, float64(1000), tabs[0].Extracted.Sum)
	assert.Equal(t, float64(7), tabs[1].Extracted.Sum)
	assert.Equal(t, float64(67), tabs[2].Extracted.Sum)
	for range 3 {
		waitUpdate(t, n)
	}
	assert.Equal(t, float64(67), store.snapshot().Tabs[2].Extracted.Sum)
}

func TestRecalculate(t *testing.T) {
	stored := storedTabs(1)
	stored[0].Text = "3桁 12"
	n := newNotebook(t, &memStore{state: State{Tabs: stored}}, Options{})

	res, err := n.Recalculate(context.Background(), stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{12}, res.Numbers)

	_, err = n.Recalculate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTabNotFound)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	n := newNotebook(t, store, Options{})

	imported := []Tab{
		{ID: uuid.New(), Title: "買い物", Text: "[牛乳 200 パン 150]"},
		{Title: " ", Text: "10÷0"},
	}
	require.NoError(t, n.Import(ctx, imported, uuid.New()))

	tabs := n.Tabs()
	require.Len(t, tabs, 2)
	assert.Equal(t, float64(350), tabs[0].Extracted.Sum)
	assert.Equal(t, "メモ 2", tabs[1].Title)
	assert.NotEqual(t, uuid.Nil, tabs[1].ID)
	assert.Equal(t, []float64{}, tabs[1].Extracted.Numbers)
	assert.Equal(t, tabs[0].ID, n.Active().ID)
	assert.Len(t, store.snapshot().Tabs, 2)
}

func TestSetTheme(t *testing.T) {
	store := &memStore{}
	n := newNotebook(t, store, Options{Theme: "ocean"})
	assert.Equal(t, "ocean", n.Theme())

	require.NoError(t, n.SetTheme(context.Background(), "sakura"))
	assert.Equal(t, "sakura", n.Theme())
	assert.Equal(t, "sakura", store.snapshot().Theme)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	n := New(&memStore{}, Options{Debounce: time.Hour})
	require.NoError(t, n.Load(ctx))
	id := n.Active().ID
	require.NoError(t, n.Edit(ctx, id, "42"))

	n.Close()
	u, ok := <-n.Updates()
	require.True(t, ok)
	assert.Equal(t, float64(42), u.Result.Sum)
	_, ok = <-n.Updates()
	assert.False(t, ok)

	assert.ErrorIs(t, n.Edit(ctx, id, "1"), ErrClosed)
	_, err := n.Add(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	n.Close()
}
