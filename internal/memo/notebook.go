package memo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ib-77/memosum/pkg/memocalc"
)

const updatesBuffer = 64

// Options configures a Notebook. Zero values fall back to the defaults of the web app:
// ten tabs, "メモ %d" titles, a 300ms debounce and the earth theme.
type Options struct {
	MaxTabs      int
	DefaultTitle string
	Debounce     time.Duration
	// Immediate extracts on every Edit instead of debouncing.
	Immediate bool
	Theme     string
	Lines     int
	Engine    *memocalc.Engine
	Logger    *zap.Logger
	Now       func() time.Time
}

func (o *Options) defaults() {
	if o.MaxTabs < 1 {
		o.MaxTabs = 10
	}
	if !strings.Contains(o.DefaultTitle, "%d") {
		o.DefaultTitle = "メモ %d"
	}
	if o.Debounce <= 0 && !o.Immediate {
		o.Debounce = 300 * time.Millisecond
	}
	if o.Theme == "" {
		o.Theme = "earth"
	}
	if o.Lines < 1 {
		o.Lines = 4
	}
	if o.Engine == nil {
		o.Engine = memocalc.New()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
	}
}

// Notebook is the set of memo tabs, which one is active, and the chosen theme. Every
// mutation goes through to the Store before the call returns.
type Notebook struct {
	store     Store
	opts      Options
	logger    *zap.Logger
	debouncer *Debouncer
	updates   chan Update

	mu     sync.Mutex
	tabs   []Tab
	gens   map[uuid.UUID]uint64
	active uuid.UUID
	theme  string
	closed bool
}

func New(store Store, opts Options) *Notebook {
	opts.defaults()
	return &Notebook{
		store:     store,
		opts:      opts,
		logger:    opts.Logger,
		debouncer: NewDebouncer(opts.Debounce),
		updates:   make(chan Update, updatesBuffer),
		gens:      make(map[uuid.UUID]uint64),
		theme:     opts.Theme,
	}
}

// Load replaces the in-memory notebook with the stored one. Tabs beyond MaxTabs are
// dropped, an unknown active id falls back to the first tab, and an empty store gets one
// fresh tab.
func (n *Notebook) Load(ctx context.Context) error {
	state, err := n.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load notebook: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}

	if state.Theme != "" {
		n.theme = state.Theme
	}
	return n.install(ctx, state.Tabs, state.ActiveID, false)
}

// install must be called with n.mu held.
func (n *Notebook) install(ctx context.Context, tabs []Tab, active uuid.UUID, force bool) error {
	dirty := force
	if len(tabs) > n.opts.MaxTabs {
		n.logger.Warn("dropping tabs beyond limit",
			zap.Int("stored", len(tabs)), zap.Int("limit", n.opts.MaxTabs))
		tabs = tabs[:n.opts.MaxTabs]
		dirty = true
	}

	n.tabs = make([]Tab, len(tabs))
	copy(n.tabs, tabs)
	for i := range n.tabs {
		n.tabs[i].Pending = false
	}
	n.gens = make(map[uuid.UUID]uint64, len(n.tabs))

	if len(n.tabs) == 0 {
		n.tabs = append(n.tabs, n.newTab())
		active = n.tabs[0].ID
		dirty = true
	}
	if n.index(active) < 0 {
		active = n.tabs[0].ID
		dirty = true
	}
	n.active = active

	if !dirty {
		return nil
	}
	if err := n.store.SaveTabs(ctx, n.tabs); err != nil {
		return fmt.Errorf("save tabs: %w", err)
	}
	return n.saveActive(ctx)
}

func (n *Notebook) newTab() Tab {
	now := n.opts.Now()
	return Tab{
		ID:        uuid.New(),
		Title:     fmt.Sprintf(n.opts.DefaultTitle, len(n.tabs)+1),
		Extracted: memocalc.Empty(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (n *Notebook) index(id uuid.UUID) int {
	for i := range n.tabs {
		if n.tabs[i].ID == id {
			return i
		}
	}
	return -1
}

func (n *Notebook) lookup(id uuid.UUID) (int, error) {
	if n.closed {
		return -1, ErrClosed
	}
	i := n.index(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	return i, nil
}

func (n *Notebook) saveActive(ctx context.Context) error {
	if err := n.store.SaveActive(ctx, n.active); err != nil {
		return fmt.Errorf("save active tab: %w", err)
	}
	return nil
}

func (n *Notebook) saveTab(ctx context.Context, i int) error {
	if err := n.store.SaveTab(ctx, n.tabs[i], i); err != nil {
		return fmt.Errorf("save tab %s: %w", n.tabs[i].ID, err)
	}
	return nil
}

func (n *Notebook) snapshot(i int) Tab {
	t := n.tabs[i]
	t.Extracted.Numbers = slices.Clone(t.Extracted.Numbers)
	return t
}

// Tabs returns a copy of every tab in display order.
func (n *Notebook) Tabs() []Tab {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Tab, len(n.tabs))
	for i := range n.tabs {
		out[i] = n.snapshot(i)
	}
	return out
}

// Tab returns one tab by id.
func (n *Notebook) Tab(id uuid.UUID) (Tab, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.index(id)
	if i < 0 {
		return Tab{}, fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	return n.snapshot(i), nil
}

// Active returns the selected tab. The zero Tab is returned before Load.
func (n *Notebook) Active() Tab {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.index(n.active)
	if i < 0 {
		return Tab{}
	}
	return n.snapshot(i)
}

// ActiveIndex is the position of the selected tab.
func (n *Notebook) ActiveIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index(n.active)
}

// MaxTabs is the configured tab limit.
func (n *Notebook) MaxTabs() int {
	return n.opts.MaxTabs
}

// Add appends a fresh tab and selects it.
func (n *Notebook) Add(ctx context.Context) (Tab, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return Tab{}, ErrClosed
	}
	if len(n.tabs) >= n.opts.MaxTabs {
		return Tab{}, fmt.Errorf("%w: at most %d tabs", ErrTabLimit, n.opts.MaxTabs)
	}

	tab := n.newTab()
	n.tabs = append(n.tabs, tab)
	n.active = tab.ID
	if err := n.saveTab(ctx, len(n.tabs)-1); err != nil {
		return Tab{}, err
	}
	if err := n.saveActive(ctx); err != nil {
		return Tab{}, err
	}
	n.logger.Debug("tab added", zap.Stringer("tab", tab.ID), zap.Int("count", len(n.tabs)))
	return tab, nil
}

// Select makes id the active tab.
func (n *Notebook) Select(ctx context.Context, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.lookup(id); err != nil {
		return err
	}
	if n.active == id {
		return nil
	}
	n.active = id
	return n.saveActive(ctx)
}

// SelectOffset moves the selection by delta positions, wrapping around.
func (n *Notebook) SelectOffset(ctx context.Context, delta int) (Tab, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return Tab{}, ErrClosed
	}
	i := n.index(n.active)
	if i < 0 || len(n.tabs) == 0 {
		return Tab{}, ErrTabNotFound
	}
	next := ((i+delta)%len(n.tabs) + len(n.tabs)) % len(n.tabs)
	n.active = n.tabs[next].ID
	if next != i {
		if err := n.saveActive(ctx); err != nil {
			return Tab{}, err
		}
	}
	return n.snapshot(next), nil
}

// CloseTab removes a tab. Closing the active tab selects the one before it; closing the
// only tab leaves a fresh one in its place.
func (n *Notebook) CloseTab(ctx context.Context, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	i, err := n.lookup(id)
	if err != nil {
		return err
	}

	n.debouncer.Cancel(id.String())
	delete(n.gens, id)
	n.tabs = append(n.tabs[:i], n.tabs[i+1:]...)

	switch {
	case len(n.tabs) == 0:
		tab := n.newTab()
		n.tabs = append(n.tabs, tab)
		n.active = tab.ID
	case n.active == id:
		n.active = n.tabs[max(0, i-1)].ID
	}

	if err := n.store.SaveTabs(ctx, n.tabs); err != nil {
		return fmt.Errorf("save tabs: %w", err)
	}
	return n.saveActive(ctx)
}

// Rename sets a tab title, trimmed and capped at MaxTitleRunes. A blank title restores the
// default title for the tab's position.
func (n *Notebook) Rename(ctx context.Context, id uuid.UUID, title string) (Tab, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i, err := n.lookup(id)
	if err != nil {
		return Tab{}, err
	}

	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > MaxTitleRunes {
		title = strings.TrimSpace(string([]rune(title)[:MaxTitleRunes]))
	}
	if title == "" {
		title = fmt.Sprintf(n.opts.DefaultTitle, i+1)
	}
	n.tabs[i].Title = title
	n.tabs[i].UpdatedAt = n.opts.Now()
	if err := n.saveTab(ctx, i); err != nil {
		return Tab{}, err
	}
	return n.snapshot(i), nil
}

// Edit stores new memo text right away and schedules its extraction. A newer edit of the
// same tab supersedes one still waiting or running.
func (n *Notebook) Edit(ctx context.Context, id uuid.UUID, text string) error {
	n.mu.Lock()
	i, err := n.lookup(id)
	if err != nil {
		n.mu.Unlock()
		return err
	}

	n.gens[id]++
	gen := n.gens[id]
	n.tabs[i].Text = text
	n.tabs[i].UpdatedAt = n.opts.Now()
	n.tabs[i].Pending = true
	if err := n.saveTab(ctx, i); err != nil {
		n.mu.Unlock()
		return err
	}
	n.mu.Unlock()

	if n.opts.Immediate {
		n.extract(ctx, id, gen, text)
		return nil
	}
	n.debouncer.Schedule(id.String(), func() {
		n.extract(context.WithoutCancel(ctx), id, gen, text)
	})
	return nil
}

// extract runs the engine outside the lock and applies the result only if no newer edit
// arrived meanwhile.
func (n *Notebook) extract(ctx context.Context, id uuid.UUID, gen uint64, text string) {
	res := n.opts.Engine.Extract(text)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || n.gens[id] != gen {
		n.logger.Debug("discarding superseded extraction", zap.Stringer("tab", id))
		return
	}
	i := n.index(id)
	if i < 0 {
		return
	}
	n.apply(ctx, i, res)
}

// apply must be called with n.mu held.
func (n *Notebook) apply(ctx context.Context, i int, res memocalc.Result) {
	n.tabs[i].Extracted = res
	n.tabs[i].Pending = false
	if err := n.saveTab(ctx, i); err != nil {
		n.logger.Error("persist extraction", zap.Stringer("tab", n.tabs[i].ID), zap.Error(err))
	}
	n.publish(Update{TabID: n.tabs[i].ID, Result: res})
}

func (n *Notebook) publish(u Update) {
	select {
	case n.updates <- u:
	default:
		n.logger.Warn("update dropped, no reader", zap.Stringer("tab", u.TabID))
	}
}

// Clear empties a tab's text and result.
func (n *Notebook) Clear(ctx context.Context, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	i, err := n.lookup(id)
	if err != nil {
		return err
	}

	n.debouncer.Cancel(id.String())
	n.gens[id]++
	n.tabs[i].Text = ""
	n.tabs[i].UpdatedAt = n.opts.Now()
	n.apply(ctx, i, memocalc.Empty())
	return nil
}

// Recalculate extracts a tab synchronously, cancelling any pending debounced run.
func (n *Notebook) Recalculate(ctx context.Context, id uuid.UUID) (memocalc.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i, err := n.lookup(id)
	if err != nil {
		return memocalc.Result{}, err
	}

	n.debouncer.Cancel(id.String())
	n.gens[id]++
	res := n.opts.Engine.Extract(n.tabs[i].Text)
	n.apply(ctx, i, res)
	return res, nil
}

// RecalculateAll extracts every tab on the batch worker lines and stores the results.
func (n *Notebook) RecalculateAll(ctx context.Context) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrClosed
	}
	ids := make([]uuid.UUID, len(n.tabs))
	texts := make([]string, len(n.tabs))
	gens := make([]uint64, len(n.tabs))
	for i, t := range n.tabs {
		n.debouncer.Cancel(t.ID.String())
		n.gens[t.ID]++
		ids[i], texts[i], gens[i] = t.ID, t.Text, n.gens[t.ID]
	}
	n.mu.Unlock()

	results := n.opts.Engine.ExtractAll(ctx, texts, n.opts.Lines)

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("recalculate: %w", r.Err)
		}
		id := ids[r.Index]
		i := n.index(id)
		if i < 0 || n.gens[id] != gens[r.Index] {
			continue
		}
		n.tabs[i].Extracted = r.Result
		n.tabs[i].Pending = false
		n.publish(Update{TabID: id, Result: r.Result})
	}
	if err := n.store.SaveTabs(ctx, n.tabs); err != nil {
		return fmt.Errorf("save tabs: %w", err)
	}
	return nil
}

// Import replaces every tab, recalculating each one.
func (n *Notebook) Import(ctx context.Context, tabs []Tab, active uuid.UUID) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrClosed
	}
	for _, t := range n.tabs {
		n.debouncer.Cancel(t.ID.String())
	}
	for i := range tabs {
		if tabs[i].ID == uuid.Nil {
			tabs[i].ID = uuid.New()
		}
		tabs[i].Title = strings.TrimSpace(tabs[i].Title)
		if tabs[i].Title == "" {
			tabs[i].Title = fmt.Sprintf(n.opts.DefaultTitle, i+1)
		}
	}
	err := n.install(ctx, tabs, active, true)
	n.mu.Unlock()
	if err != nil {
		return err
	}
	return n.RecalculateAll(ctx)
}

func (n *Notebook) Theme() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.theme
}

func (n *Notebook) SetTheme(ctx context.Context, theme string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}
	n.theme = theme
	if err := n.store.SaveTheme(ctx, theme); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Updates delivers finished extractions. It is closed by Close.
func (n *Notebook) Updates() <-chan Update {
	return n.updates
}

// Flush runs every pending extraction now.
func (n *Notebook) Flush() {
	n.debouncer.Flush()
}

// Close flushes pending extractions, stops the timers and closes Updates.
func (n *Notebook) Close() {
	n.debouncer.Flush()
	n.debouncer.Close()

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	close(n.updates)
}
