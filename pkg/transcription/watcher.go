package transcription

import (
	"sync/atomic"
	"time"

	"github.com/scribeline/transcribe-core/config"
	"github.com/scribeline/transcribe-core/pkg/logger"
)

const idleWatcherInterval = 10 * time.Second

// runIdleWatcher wakes every idleWatcherInterval and unloads the resident
// engine once it has sat idle past the configured timeout. It exits as soon
// as Close signals shutdown.
func (m *Manager) runIdleWatcher() {
	defer m.watcherWG.Done()

	ticker := time.NewTicker(idleWatcherInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.watcherDone:
			return
		case <-ticker.C:
			if atomic.LoadInt32(&m.shutdown) != 0 {
				return
			}
			m.checkIdle()
		}
	}
}

func (m *Manager) checkIdle() {
	mode := config.Current.ModelUnloadTimeout
	if mode == config.UnloadImmediately || mode == config.UnloadNever {
		return
	}
	if !m.IsModelLoaded() {
		return
	}

	limitMs := int64(config.Current.ModelUnloadAfterSeconds) * 1000
	idleMs := time.Now().UnixMilli() - atomic.LoadInt64(&m.lastActivityMs)

	if idleMs > limitMs {
		logger.Info(logger.CategoryWatcher, "idle for %dms (limit %dms), unloading", idleMs, limitMs)
		_ = m.UnloadModel()
	}
}
