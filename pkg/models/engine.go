package models

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/logger"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/registry"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/statestore"
)

// Downloader fetches a model's artifacts into its directory. The transport
// (protocol, retries) is the implementation's business; the engine only
// tracks the resulting state.
type Downloader interface {
	Fetch(ctx context.Context, desc registry.Descriptor, dir string, progress func(fraction float64)) error
}

// Runtime loads model artifacts for inference.
type Runtime interface {
	LoadModel(ctx context.Context, desc registry.Descriptor, dir string) error
	UnloadModel(ctx context.Context) error
}

// Engine owns the authoritative model state map. It merges the registry, the
// persisted snapshot, and disk scans into one snapshot on every mutation, and
// republishes through its Publisher. It is the sole writer of both the
// snapshot and the model directories.
type Engine struct {
	// mu serializes all mutations so a reader never sees a half-built map.
	mu sync.Mutex

	reg     *registry.Registry
	store   statestore.Store
	scanner *Scanner
	pub     *Publisher

	downloader Downloader
	runtime    Runtime

	activeModel string

	log *logger.Logger
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithDownloader wires a download transport.
func WithDownloader(d Downloader) Option {
	return func(e *Engine) { e.downloader = d }
}

// WithRuntime wires an inference runtime.
func WithRuntime(r Runtime) Option {
	return func(e *Engine) { e.runtime = r }
}

// NewEngine creates an engine. The published snapshot starts empty until the
// first ReconcileAll.
func NewEngine(reg *registry.Registry, store statestore.Store, scanner *Scanner, opts ...Option) *Engine {
	e := &Engine{
		reg:     reg,
		store:   store,
		scanner: scanner,
		pub:     NewPublisher(),
		log:     logger.WithComponent("model_engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns a copy of the current snapshot without blocking on any
// in-flight mutation.
func (e *Engine) Current() Snapshot {
	return e.pub.Current()
}

// Subscribe returns a channel receiving every subsequent snapshot
// replacement, plus a cancel function.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	return e.pub.Subscribe()
}

// ReconcileAll rebuilds the full snapshot from registry, persisted state, and
// a disk scan per model, publishes it, and persists it best-effort.
func (e *Engine) ReconcileAll(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconcileLocked(ctx), nil
}

func (e *Engine) reconcileLocked(_ context.Context) Snapshot {
	persisted := e.loadPersisted()

	snap := make(Snapshot, e.reg.Len())
	for _, desc := range e.reg.All() {
		// The filesystem is authoritative for presence: the scan verdict
		// overrides whatever the persisted snapshot claimed, including byte
		// counts. A persisted "downloading" falls out of this naturally: no
		// transfer is in flight in a fresh process, so unless the artifacts
		// are already complete on disk the model reads as not downloaded.
		dir, _ := e.reg.Dir(desc.ID)
		state := stateFromScan(desc.ID, e.scanner.Scan(dir))

		if prev, ok := persisted[desc.ID]; ok && prev.DownloadState != state.DownloadState {
			e.log.Debug("Persisted state overridden by disk scan",
				"model", desc.ID, "persisted", prev.DownloadState, "actual", state.DownloadState)
		}

		snap[desc.ID] = state
	}

	e.pub.Replace(snap)
	e.persist(snap)

	e.log.Info("Reconciled model state", "models", len(snap))
	return snap.Clone()
}

// Delete removes a model's directory and resets its state in the snapshot.
// Deleting an unknown id is an error and mutates nothing; a missing
// directory is not an error.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir, ok := e.reg.Dir(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing model directory: %w", err)
	}

	snap := e.pub.Current()
	snap[id] = stateFromScan(id, e.scanner.Scan(dir))
	e.pub.Replace(snap)
	e.persist(snap)

	e.log.Info("Deleted model", "model", id)
	return nil
}

// IsDownloaded answers from a fresh disk scan, independent of the cached
// snapshot.
func (e *Engine) IsDownloaded(id string) (bool, error) {
	dir, ok := e.reg.Dir(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return e.scanner.Scan(dir).Downloaded, nil
}

// DiskUsage answers from a fresh disk scan, independent of the cached
// snapshot.
func (e *Engine) DiskUsage(id string) (int64, error) {
	dir, ok := e.reg.Dir(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return e.scanner.Scan(dir).SizeBytes, nil
}

// Download fetches a model through the configured downloader, publishing
// progress as snapshot replacements. The final state comes from a disk scan,
// not from the transport's claim of success.
func (e *Engine) Download(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	desc, ok := e.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	if e.downloader == nil {
		return ErrNoDownloader
	}

	dir, _ := e.reg.Dir(id)
	if e.scanner.Scan(dir).Downloaded {
		e.log.Debug("Model already downloaded", "model", id)
		return nil
	}

	e.setState(ModelState{ModelID: id, DownloadState: StateDownloading})

	fetchErr := e.downloader.Fetch(ctx, desc, dir, func(fraction float64) {
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		e.setState(ModelState{
			ModelID:          id,
			DownloadState:    StateDownloading,
			DownloadProgress: fraction,
		})
	})

	final := stateFromScan(id, e.scanner.Scan(dir))
	e.setState(final)
	e.persist(e.pub.Current())

	if fetchErr != nil {
		return fmt.Errorf("downloading %s: %w", id, fetchErr)
	}

	e.log.Info("Downloaded model", "model", id, "bytes", final.DiskUsageBytes)
	return nil
}

// Load hands a downloaded model to the inference runtime and records it as
// the active session.
func (e *Engine) Load(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	desc, ok := e.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}

	dir, _ := e.reg.Dir(id)
	if !e.scanner.Scan(dir).Downloaded {
		return fmt.Errorf("%w: %s", ErrModelNotDownloaded, id)
	}

	if e.runtime == nil {
		return ErrNoRuntime
	}
	if err := e.runtime.LoadModel(ctx, desc, dir); err != nil {
		return fmt.Errorf("loading %s: %w", id, err)
	}

	e.activeModel = id
	e.log.Info("Loaded model", "model", id)
	return nil
}

// Unload ends the active session. With no session it returns
// ErrNoActiveSession.
func (e *Engine) Unload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeModel == "" {
		return ErrNoActiveSession
	}

	if e.runtime != nil {
		if err := e.runtime.UnloadModel(ctx); err != nil {
			return fmt.Errorf("unloading %s: %w", e.activeModel, err)
		}
	}

	e.log.Info("Unloaded model", "model", e.activeModel)
	e.activeModel = ""
	return nil
}

// Close releases the underlying state store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// ActiveModel returns the id of the loaded model, or "" when none is loaded.
func (e *Engine) ActiveModel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeModel
}

// setState updates one model's entry in the published snapshot. Callers hold
// e.mu.
func (e *Engine) setState(state ModelState) {
	snap := e.pub.Current()
	snap[state.ModelID] = state
	e.pub.Replace(snap)
}

// loadPersisted reads and decodes the stored snapshot. Read failures and
// malformed data both degrade to an empty snapshot.
func (e *Engine) loadPersisted() map[string]ModelState {
	data, ok, err := e.store.Load()
	if err != nil {
		e.log.Warn("Failed to load persisted state, starting empty", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	decoded := decodeSnapshot(data)
	if decoded == nil {
		e.log.Warn("Persisted state is malformed, starting empty")
	}
	return decoded
}

// persist stores the snapshot best-effort; a write failure is logged and
// never blocks the in-memory snapshot.
func (e *Engine) persist(snap Snapshot) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		e.log.Error("Failed to encode state snapshot", "error", err)
		return
	}
	if err := e.store.Save(data); err != nil {
		e.log.Warn("Failed to persist state snapshot", "error", err)
	}
}
