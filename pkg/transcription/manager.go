package transcription

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/scribeline/transcribe-core/config"
	"github.com/scribeline/transcribe-core/pkg/catalog"
	"github.com/scribeline/transcribe-core/pkg/events"
	"github.com/scribeline/transcribe-core/pkg/logger"
)

// Manager is the Model Lifecycle Controller: it owns the single resident
// Engine instance, serializes concurrent load attempts, tracks activity for
// the idle watcher, and drives the chunked inference pipeline. At most one
// Manager should exist per process — the engine slot it guards is meant to
// be a process-wide singleton.
type Manager struct {
	catalog catalog.Catalog
	emitter events.Emitter

	engineMu      sync.Mutex
	engine        Engine
	engineVariant catalog.EngineVariant

	modelMu        sync.RWMutex
	currentModelID *string

	loadGroup singleflight.Group

	lastActivityMs int64 // atomic, unix millis

	shutdown     int32 // atomic bool
	watcherDone  chan struct{}
	watcherWG    sync.WaitGroup

	cancelMu    sync.Mutex
	cancelToken *cancellationToken
}

type cancellationToken struct {
	id        string
	cancelled int32 // atomic bool
}

func (t *cancellationToken) cancel() { atomic.StoreInt32(&t.cancelled, 1) }
func (t *cancellationToken) isCancelled() bool {
	return t != nil && atomic.LoadInt32(&t.cancelled) != 0
}

// NewManager constructs a Manager and starts its idle watcher.
func NewManager(cat catalog.Catalog, emitter events.Emitter) *Manager {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	m := &Manager{
		catalog:        cat,
		emitter:        emitter,
		watcherDone:    make(chan struct{}),
		lastActivityMs: time.Now().UnixMilli(),
	}
	m.watcherWG.Add(1)
	go m.runIdleWatcher()
	return m
}

// Close signals the idle watcher to stop and waits for it to exit.
func (m *Manager) Close() {
	atomic.StoreInt32(&m.shutdown, 1)
	close(m.watcherDone)
	m.watcherWG.Wait()
}

func (m *Manager) touchActivity() {
	atomic.StoreInt64(&m.lastActivityMs, time.Now().UnixMilli())
}

// IsModelLoaded reports whether an engine is currently resident.
func (m *Manager) IsModelLoaded() bool {
	m.modelMu.RLock()
	defer m.modelMu.RUnlock()
	return m.currentModelID != nil
}

// GetCurrentModel returns the id of the resident model, or nil if none.
func (m *Manager) GetCurrentModel() *string {
	m.modelMu.RLock()
	defer m.modelMu.RUnlock()
	if m.currentModelID == nil {
		return nil
	}
	id := *m.currentModelID
	return &id
}

// InitiateModelLoad begins loading config.Current.SelectedModel if no
// model is loaded and no load is already in flight. It is idempotent:
// concurrent callers observe the same single load. It does not block.
func (m *Manager) InitiateModelLoad() {
	if m.IsModelLoaded() {
		return
	}
	modelID := config.Current.SelectedModel
	m.loadGroup.DoChan(modelID, func() (interface{}, error) {
		return nil, m.LoadModel(modelID)
	})
}

// waitForLoad blocks until any in-flight load of modelID completes.
func (m *Manager) waitForLoad(modelID string) error {
	ch := m.loadGroup.DoChan(modelID, func() (interface{}, error) {
		// If nothing is in flight, this becomes a real (redundant) load
		// attempt only when the model still isn't loaded; otherwise treat
		// it as a successful no-op so callers waiting on an
		// already-resident model don't pay for a reload.
		if m.IsModelLoaded() {
			return nil, nil
		}
		return nil, m.LoadModel(modelID)
	})
	res := <-ch
	return res.Err
}

// LoadModel loads the given model id, replacing any currently resident
// engine. It emits loading_started, then loading_completed or
// loading_failed.
func (m *Manager) LoadModel(modelID string) error {
	m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.LoadingStarted, ModelID: modelID})

	descriptor, ok := m.catalog.GetModelInfo(modelID)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
		m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.LoadingFailed, ModelID: modelID, Err: err})
		return err
	}
	if !descriptor.IsDownloaded {
		err := fmt.Errorf("%w: %s", ErrModelNotDownloaded, modelID)
		m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.LoadingFailed, ModelID: modelID, Err: err})
		return err
	}

	var engine Engine
	switch descriptor.Engine {
	case catalog.Whisper:
		engine = NewWhisperEngine()
	case catalog.Parakeet:
		engine = NewParakeetEngine()
	default:
		err := fmt.Errorf("%w: unknown engine variant %q for model %s", ErrBackendLoadFailed, descriptor.Engine, modelID)
		m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.LoadingFailed, ModelID: modelID, Err: err})
		return err
	}

	if err := engine.Load(descriptor.OnDiskPath); err != nil {
		err = fmt.Errorf("%w: %v", ErrBackendLoadFailed, err)
		m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.LoadingFailed, ModelID: modelID, Err: err})
		return err
	}

	m.engineMu.Lock()
	if m.engine != nil {
		m.engine.Unload()
	}
	m.engine = engine
	m.engineVariant = descriptor.Engine
	m.engineMu.Unlock()

	m.modelMu.Lock()
	id := modelID
	m.currentModelID = &id
	m.modelMu.Unlock()

	logger.Info(logger.CategoryLifecycle, "model loaded: %s (%s)", modelID, descriptor.Engine)
	m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.LoadingCompleted, ModelID: modelID, ModelName: descriptor.DisplayName})
	return nil
}

// UnloadModel releases the resident engine, if any. It is a no-op when
// already unloaded.
func (m *Manager) UnloadModel() error {
	m.engineMu.Lock()
	engine := m.engine
	m.engine = nil
	m.engineMu.Unlock()

	if engine == nil {
		return nil
	}
	engine.Unload()

	m.modelMu.Lock()
	prevID := m.currentModelID
	m.currentModelID = nil
	m.modelMu.Unlock()

	if prevID != nil {
		logger.Info(logger.CategoryLifecycle, "model unloaded: %s", *prevID)
	}
	m.emitter.EmitModelStateChanged(events.ModelStateChanged{Type: events.Unloaded})
	return nil
}

func (m *Manager) maybeUnloadImmediately(reason string) {
	if config.Current.ModelUnloadTimeout == config.UnloadImmediately && m.IsModelLoaded() {
		logger.Debug(logger.CategoryLifecycle, "unloading immediately after %s", reason)
		_ = m.UnloadModel()
	}
}

// CancelCurrentTranscription signals the cancellation token registered for
// whatever transcription is currently in flight. It is a no-op if none is
// registered.
func (m *Manager) CancelCurrentTranscription() {
	m.cancelMu.Lock()
	token := m.cancelToken
	m.cancelMu.Unlock()

	if token == nil {
		logger.Warning(logger.CategoryPipeline, "cancel requested but no transcription is in flight")
		return
	}
	token.cancel()
}
