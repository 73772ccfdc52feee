// Package persist loads the store from disk and keeps the data file and the
// cloud mirror up to date.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/liftlog/internal/cloud"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// DefaultKey is the cloud key holding the payload.
const DefaultKey = "workoutPayload"

// Syncer debounces store changes into saves of the full payload.
type Syncer struct {
	store    *store.Store
	file     FileStore
	kv       cloud.KV
	key      string
	debounce time.Duration
	log      *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	timer       *time.Timer
	cancel      context.CancelFunc
	unsubscribe func()
	stopped     bool
	wg          sync.WaitGroup
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithDebounce sets the quiet period before a save runs.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) { s.debounce = d }
}

// WithKey sets the cloud key.
func WithKey(key string) Option {
	return func(s *Syncer) { s.key = key }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Syncer) { s.log = log }
}

// New creates a syncer for st. kv may be cloud.Noop{}.
func New(st *store.Store, file FileStore, kv cloud.KV, opts ...Option) *Syncer {
	s := &Syncer{
		store:    st,
		file:     file,
		kv:       kv,
		key:      DefaultKey,
		debounce: time.Second,
		log:      slog.Default(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the store contents with the data file, or the seed when the
// file is missing or unreadable, then overlays the cloud copy if there is one.
// Once Start has been called, the loaded state is autosaved like any other
// change.
func (s *Syncer) Load(ctx context.Context) {
	p, err := s.file.Read()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Info("no data file, using seed data", "path", s.file.Path)
		p = Seed()
	case err != nil:
		s.log.Warn("data file unreadable, using seed data", "path", s.file.Path, "error", err)
		p = Seed()
	}
	s.store.Replace(p)

	s.SyncFromCloud(ctx)
}

// SyncFromCloud replaces the store contents with the cloud copy when one
// exists and decodes. It reports whether the store was replaced.
func (s *Syncer) SyncFromCloud(ctx context.Context) bool {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("cloud fetch failed", "key", s.key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	p, err := models.DecodePayload(data)
	if err != nil {
		s.log.Warn("cloud payload undecodable", "key", s.key, "error", err)
		return false
	}
	s.store.Replace(p)
	s.log.Info("loaded cloud payload", "key", s.key, "workouts", len(p.Workouts))
	return true
}

// Start subscribes to the store. Saves run on contexts derived from ctx.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.unsubscribe = s.store.Subscribe(s.onChange)
}

func (s *Syncer) onChange(c store.Change) {
	if !c.Kind.Autosaved() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.fire)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Syncer) fire() {
	p := s.store.Snapshot()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		s.save(ctx, p)
	}()
}

// save writes p to the data file and then the cloud. Cancellation is checked
// before each write; a write that has started runs to completion.
func (s *Syncer) save(ctx context.Context, p models.Payload) error {
	start := time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		savesTotal.WithLabelValues(resultError).Inc()
		s.log.Error("encoding payload", "error", err)
		return fmt.Errorf("encoding payload: %w", err)
	}

	if ctx.Err() != nil {
		savesSuperseded.Inc()
		return ctx.Err()
	}
	if err := s.file.Write(data); err != nil {
		savesTotal.WithLabelValues(resultError).Inc()
		s.log.Error("saving data file", "path", s.file.Path, "error", err)
		return err
	}
	savesTotal.WithLabelValues(resultSuccess).Inc()

	if ctx.Err() != nil {
		savesSuperseded.Inc()
		return ctx.Err()
	}
	if err := s.kv.Set(context.WithoutCancel(ctx), s.key, data); err != nil {
		cloudPushTotal.WithLabelValues(resultError).Inc()
		s.log.Error("pushing payload to cloud", "key", s.key, "bytes", len(data), "error", err)
		return err
	}
	cloudPushTotal.WithLabelValues(resultSuccess).Inc()

	saveDuration.Observe(time.Since(start).Seconds())
	s.log.Debug("saved", "bytes", len(data), "duration", time.Since(start))
	return nil
}

// Flush drops any pending debounce, waits for running saves and saves the
// current state immediately. It is the final save: later changes are not
// autosaved.
func (s *Syncer) Flush(ctx context.Context) error {
	s.halt()

	return s.save(ctx, s.store.Snapshot())
}

// Stop unsubscribes from the store and waits for running saves. A pending
// debounced save is dropped; call Flush first to keep it.
func (s *Syncer) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.halt()
}

// halt stops the debounce timer and waits for running saves. No save starts
// once it has marked the syncer stopped.
func (s *Syncer) halt() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
