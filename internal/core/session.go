package core

// session.go holds the state one browser works against.
//
// A Session owns the loaded Dataset, the Filtered View, the filter inputs and
// the sort state. Every operation runs to completion under the session mutex,
// so a request never observes a half-applied change. Listeners are notified
// only after the state swap.
//
// Sorting is deferred: Sort records the request, raises the busy flag and
// completes after SortDelay on a timer. Each request and each load bumps the
// generation counter; a completion whose generation is stale is dropped, so
// two sorts never interleave and a late sort cannot touch a newer dataset.

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/tabview/internal/table"
)

// ErrColumnOutOfRange is returned when a column index does not address a
// header column.
var ErrColumnOutOfRange = errors.New("column out of range")

// ErrNoData is returned by operations that need a loaded dataset.
var ErrNoData = errors.New("no data loaded")

// DefaultSortDelay is the simulated latency of a sort.
const DefaultSortDelay = 200 * time.Millisecond

// EventKind identifies a change notification.
type EventKind string

const (
	// EventBusy is sent when a deferred sort starts.
	EventBusy EventKind = "busy"
	// EventRender is sent after any state change that alters the projection.
	EventRender EventKind = "render"
)

// Event is a change notification delivered to session listeners.
type Event struct {
	Kind       EventKind `json:"kind"`
	Busy       bool      `json:"busy"`
	Generation uint64    `json:"generation"`
}

// SessionOptions configures new sessions.
type SessionOptions struct {
	FilterMode table.FilterMode
	SortDelay  time.Duration // 0 sorts synchronously
}

// View is a consistent snapshot of what the rendering surface draws.
type View struct {
	Projection   [][]string        `json:"projection"`
	Sort         []table.Direction `json:"-"`
	SortStates   []string          `json:"sort"`
	Global       string            `json:"global"`
	Columns      []string          `json:"columns"`
	VisibleRows  int               `json:"visible_rows"`
	TotalRows    int               `json:"total_rows"`
	Busy         bool              `json:"busy"`
	Generation   uint64            `json:"generation"`
	FilterMode   table.FilterMode  `json:"filter_mode"`
	SourceName   string            `json:"source,omitempty"`
	NumColumns   int               `json:"num_columns"`
	HasDataset   bool              `json:"has_dataset"`
	AggregateMsg string            `json:"aggregate,omitempty"`
}

// Header returns the first row of the projection, or nil.
func (v View) Header() []string {
	if len(v.Projection) == 0 {
		return nil
	}
	return v.Projection[0]
}

// Body returns the projected data rows.
func (v View) Body() [][]string {
	if len(v.Projection) < 2 {
		return nil
	}
	return v.Projection[1:]
}

type pendingSort struct {
	gen   uint64
	state table.SortState
	timer *time.Timer
	done  chan struct{}
}

// Session is the controller for one loaded dataset and its view state.
type Session struct {
	ID string

	opts SessionOptions

	mu        sync.Mutex
	dataset   table.Dataset
	source    string
	view      []table.Row
	filters   table.FilterSet
	sort      table.SortState
	pending   *pendingSort
	gen       uint64
	aggregate string
	lastSeen  time.Time

	listenerMu sync.Mutex
	listeners  []chan Event
	closed     bool
}

// NewSession returns an empty session.
func NewSession(id string, opts SessionOptions) *Session {
	if opts.FilterMode == "" {
		opts.FilterMode = table.ModeCompose
	}
	return &Session{
		ID:       id,
		opts:     opts,
		filters:  table.NewFilterSet(opts.FilterMode),
		lastSeen: time.Now(),
	}
}

// Load replaces the dataset. Filter inputs, sort state and the last
// aggregate result are reset, any pending sort is abandoned, and the view
// becomes every data row in file order.
func (s *Session) Load(ds table.Dataset, source string) {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.gen++
	s.dataset = ds
	s.source = source
	s.filters = table.NewFilterSet(s.opts.FilterMode)
	s.sort.Reset()
	s.aggregate = ""
	s.view = table.Filter(ds.Rows())
	gen := s.gen
	s.mu.Unlock()

	slog.Info("dataset loaded",
		"session_id", s.ID,
		"source", source,
		"rows", ds.Len(),
		"columns", ds.NumColumns(),
	)
	s.notify(Event{Kind: EventRender, Generation: gen})
}

// SetGlobalFilter records the global query and recomputes the view.
// It is a no-op without a dataset.
func (s *Session) SetGlobalFilter(query string) {
	s.mu.Lock()
	if s.dataset.Empty() {
		s.mu.Unlock()
		return
	}
	s.filters.SetGlobal(query)
	s.recomputeLocked()
	gen, rows := s.gen, len(s.view)
	s.mu.Unlock()

	slog.Debug("global filter applied", "session_id", s.ID, "query", query, "rows", rows)
	s.notify(Event{Kind: EventRender, Generation: gen})
}

// SetColumnFilter records the query for col and recomputes the view.
// It is a no-op without a dataset.
func (s *Session) SetColumnFilter(col int, query string) error {
	s.mu.Lock()
	if s.dataset.Empty() {
		s.mu.Unlock()
		return nil
	}
	if !s.dataset.ValidColumn(col) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	s.filters.SetColumn(col, query)
	s.recomputeLocked()
	gen, rows := s.gen, len(s.view)
	s.mu.Unlock()

	slog.Debug("column filter applied", "session_id", s.ID, "column", col, "query", query, "rows", rows)
	s.notify(Event{Kind: EventRender, Generation: gen})
	return nil
}

// recomputeLocked rebuilds the view from every data row and re-applies the
// active sort so the indicator keeps describing the displayed order.
func (s *Session) recomputeLocked() {
	s.view = s.filters.Apply(s.dataset.Rows())
	if col, dir, ok := s.sort.Active(); ok {
		table.SortRows(s.view, col, dir)
	}
}

// Sort toggles the direction of col and sorts the view. The returned channel
// is closed once the request is settled: either applied, or superseded by a
// newer sort or load. Without a dataset Sort is a no-op and the channel is
// already closed.
func (s *Session) Sort(col int) (<-chan struct{}, error) {
	done := make(chan struct{})

	s.mu.Lock()
	if s.dataset.Empty() {
		s.mu.Unlock()
		close(done)
		return done, nil
	}
	if !s.dataset.ValidColumn(col) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}

	// Toggle against the newest requested state so rapid clicks alternate.
	next := s.sort
	if s.pending != nil {
		next = s.pending.state
	}
	dir := next.Toggle(col)

	s.cancelPendingLocked()
	s.gen++
	gen := s.gen

	if s.opts.SortDelay <= 0 {
		s.applySortLocked(next)
		s.mu.Unlock()
		close(done)
		slog.Debug("sort applied", "session_id", s.ID, "column", col, "direction", dir.String())
		s.notify(Event{Kind: EventRender, Generation: gen})
		return done, nil
	}

	p := &pendingSort{gen: gen, state: next, done: done}
	p.timer = time.AfterFunc(s.opts.SortDelay, func() { s.completeSort(p) })
	s.pending = p
	s.mu.Unlock()

	slog.Debug("sort scheduled", "session_id", s.ID, "column", col, "direction", dir.String())
	s.notify(Event{Kind: EventBusy, Busy: true, Generation: gen})
	return done, nil
}

func (s *Session) completeSort(p *pendingSort) {
	s.mu.Lock()
	if s.pending != p || s.gen != p.gen {
		// Superseded; the newer request already closed p.done.
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.applySortLocked(p.state)
	gen := s.gen
	s.mu.Unlock()

	close(p.done)
	slog.Debug("sort applied", "session_id", s.ID, "generation", gen)
	s.notify(Event{Kind: EventRender, Generation: gen})
}

func (s *Session) applySortLocked(state table.SortState) {
	s.sort = state
	if col, dir, ok := s.sort.Active(); ok {
		table.SortRows(s.view, col, dir)
	}
}

func (s *Session) cancelPendingLocked() {
	if s.pending == nil {
		return
	}
	s.pending.timer.Stop()
	close(s.pending.done)
	s.pending = nil
}

// Busy reports whether a deferred sort is pending.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Aggregate computes kind over col of the current view and remembers the
// label for the next render.
func (s *Session) Aggregate(col int, kind table.AggregateKind) (table.AggregateResult, error) {
	s.mu.Lock()
	if s.dataset.Empty() {
		s.mu.Unlock()
		return table.AggregateResult{}, ErrNoData
	}
	if !s.dataset.ValidColumn(col) {
		s.mu.Unlock()
		return table.AggregateResult{}, fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	res := table.Aggregate(s.view, col, kind)
	s.aggregate = res.Label()
	s.mu.Unlock()

	slog.Debug("aggregate computed", "session_id", s.ID, "column", col, "kind", string(kind), "label", res.Label())
	return res, nil
}

// Dataset returns the loaded dataset.
func (s *Session) Dataset() table.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// Snapshot returns the current projection together with the sort indicators
// and filter inputs needed to redraw the table.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.dataset.NumColumns()
	v := View{
		Projection:   table.Project(s.dataset.Header(), s.view),
		Sort:         make([]table.Direction, n),
		SortStates:   make([]string, n),
		Global:       s.filters.Global(),
		Columns:      make([]string, n),
		VisibleRows:  len(s.view),
		TotalRows:    s.dataset.Len(),
		Busy:         s.pending != nil,
		Generation:   s.gen,
		FilterMode:   s.filters.Mode,
		SourceName:   s.source,
		NumColumns:   n,
		HasDataset:   !s.dataset.Empty(),
		AggregateMsg: s.aggregate,
	}
	for i := 0; i < n; i++ {
		v.Sort[i] = s.sort.Direction(i)
		v.SortStates[i] = v.Sort[i].String()
		v.Columns[i] = s.filters.Column(i)
	}
	return v
}

// Subscribe registers a listener. The returned function unregisters it.
// The channel is closed when the listener is removed or the session closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 10)

	s.listenerMu.Lock()
	if s.closed {
		s.listenerMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.listeners = append(s.listeners, ch)
	s.listenerMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { s.removeListener(ch) })
	}
}

func (s *Session) removeListener(ch chan Event) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	for i, l := range s.listeners {
		if l == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// notify sends ev to every listener without blocking.
func (s *Session) notify(ev Event) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			// Listener is slow, skip this update
		}
	}
}

// Close abandons any pending sort and closes every listener.
func (s *Session) Close() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.mu.Unlock()

	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	for _, ch := range s.listeners {
		close(ch)
	}
	s.listeners = nil
	s.closed = true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
