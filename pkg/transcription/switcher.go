package transcription

import (
	"strings"

	"github.com/scribeline/transcribe-core/pkg/catalog"
	"github.com/scribeline/transcribe-core/pkg/logger"
)

// ensureTranslationCapableEngine swaps the resident engine for the best
// downloaded Whisper-family model when the loaded engine is Parakeet-family
// and translation has been requested. It never errors: if no suitable
// model is available, it logs and leaves the current engine in place, and
// the pipeline proceeds with translation effectively ignored.
func (m *Manager) ensureTranslationCapableEngine() {
	m.engineMu.Lock()
	variant := m.engineVariant
	m.engineMu.Unlock()

	if variant != catalog.Parakeet {
		return
	}

	best, ok := bestTranslationCapableModel(m.catalog.GetAvailableModels())
	if !ok {
		logger.Warning(logger.CategorySwitcher, "translation requested but no downloaded whisper model is available; continuing without translation")
		return
	}

	logger.Info(logger.CategorySwitcher, "switching engine to %s for translation support", best.ID)
	if err := m.LoadModel(best.ID); err != nil {
		logger.Warning(logger.CategorySwitcher, "failed to switch to %s: %v", best.ID, err)
	}
}

// bestTranslationCapableModel scores every downloaded Whisper-family model
// and returns the highest-scoring one. Models whose id contains "turbo"
// receive a synthetic score of 100, overriding their catalog accuracy score,
// so a turbo variant is always preferred when one is available.
func bestTranslationCapableModel(models []catalog.Descriptor) (catalog.Descriptor, bool) {
	var best catalog.Descriptor
	var bestScore float64
	found := false

	for _, d := range models {
		if d.Engine != catalog.Whisper || !d.IsDownloaded {
			continue
		}

		score := d.AccuracyScore
		if strings.Contains(d.ID, "turbo") {
			score = 100
		}

		if !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}

	return best, found
}
