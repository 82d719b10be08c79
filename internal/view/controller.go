package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/epiwatch/internal/state"
	"github.com/five82/epiwatch/internal/surveillance"
)

// Loader produces the full record set for one load.
type Loader interface {
	Load(ctx context.Context) ([]surveillance.Record, error)
}

// Status describes where the controller is in its load lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Query        string
	Visible      []surveillance.Record
	Total        int
	Selected     surveillance.Record
	HasSelection bool
	Status       Status
	LastError    error
	LoadedAt     time.Time
}

// Controller ties the record store, the query, and the selection together.
// All public methods are safe for concurrent use and are totally ordered by
// a single mutex.
type Controller struct {
	loader Loader
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	store     state.RecordStore
	selection state.Selection
	query     string
	visible   []surveillance.Record
	status    Status
	lastErr   error
	loadedAt  time.Time
	loadSeq   uint64
	closed    bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp loads.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a controller with an empty store, an empty query and no
// selection.
func New(loader Loader, opts ...Option) *Controller {
	c := &Controller{
		loader:  loader,
		logger:  slog.Default(),
		now:     time.Now,
		visible: []surveillance.Record{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches a fresh record set and commits it. The loader runs without the
// lock held, so queries and selections keep working while it is in flight.
// A result is dropped when a newer Load has started or the controller has
// been closed; the latter returns nil.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loadSeq++
	seq := c.loadSeq
	c.status = StatusLoading
	loader := c.loader
	c.mu.Unlock()

	var (
		records []surveillance.Record
		err     error
	)
	if loader == nil {
		err = fmt.Errorf("load records: no loader configured")
	} else {
		records, err = loader.Load(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("discarding load result after close", "seq", seq)
		return nil
	}
	if seq != c.loadSeq {
		c.logger.Debug("discarding superseded load result", "seq", seq, "latest", c.loadSeq)
		return nil
	}
	if err != nil {
		c.status = StatusFailed
		c.lastErr = err
		c.logger.Warn("record load failed", "error", err, "kept", c.store.Len())
		return fmt.Errorf("load records: %w", err)
	}

	c.store.Load(records)
	c.reconcileSelection()
	c.visible = surveillance.Filter(c.store.All(), c.query)
	c.status = StatusReady
	c.lastErr = nil
	c.loadedAt = c.now()
	c.logger.Info("records loaded", "records", c.store.Len(), "visible", len(c.visible))
	return nil
}

// reconcileSelection refreshes the selected record from the new store, or
// clears it when the id is gone. Callers hold c.mu.
func (c *Controller) reconcileSelection() {
	id, ok := c.selection.ID()
	if !ok {
		return
	}
	if err := c.selection.Select(&c.store, id); err != nil {
		c.logger.Debug("selection dropped after reload", "id", id)
		c.selection.Clear()
	}
}

// SetQuery replaces the query and recomputes the filtered view from the
// current store.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = text
	c.visible = surveillance.Filter(c.store.All(), text)
}

// OpenDetail selects the record with the given id. An unknown id leaves the
// selection unchanged and returns an error wrapping state.ErrRecordNotFound.
func (c *Controller) OpenDetail(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.selection.Select(&c.store, id); err != nil {
		return fmt.Errorf("open detail: %w", err)
	}
	return nil
}

// CloseDetail clears the selection.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := make([]surveillance.Record, len(c.visible))
	copy(visible, c.visible)
	selected, ok := c.selection.Current()
	return Snapshot{
		Query:        c.query,
		Visible:      visible,
		Total:        c.store.Len(),
		Selected:     selected,
		HasSelection: ok,
		Status:       c.status,
		LastError:    c.lastErr,
		LoadedAt:     c.loadedAt,
	}
}

// Close marks the controller torn down. Loads still in flight are discarded
// when they finish and later Load calls do nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
