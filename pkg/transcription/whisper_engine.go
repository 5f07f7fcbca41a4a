//go:build cgo && whisper_go
// +build cgo,whisper_go

package transcription

import (
	"fmt"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/scribeline/transcribe-core/pkg/logger"
)

// WhisperEngine wraps whisper.cpp's Go bindings behind the Engine
// interface. It is an encoder-decoder multilingual model: it supports
// translation, an initial prompt, and segment-level timestamps.
type WhisperEngine struct {
	mu      sync.Mutex
	model   *whisper.Model
	context *whisper.Context
}

// NewWhisperEngine constructs an unloaded engine. Call Load before use.
func NewWhisperEngine() *WhisperEngine {
	return &WhisperEngine{}
}

func (e *WhisperEngine) Load(modelPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	model, err := whisper.New(modelPath)
	if err != nil {
		return fmt.Errorf("load whisper model: %w", err)
	}

	ctx, err := model.NewContext()
	if err != nil {
		model.Close()
		return fmt.Errorf("create whisper context: %w", err)
	}

	ctx.SetSplitOnWord(true)

	e.model = model
	e.context = ctx
	logger.Info(logger.CategoryLifecycle, "whisper engine loaded model: %s", modelPath)
	return nil
}

func (e *WhisperEngine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.context != nil {
		e.context.Free()
		e.context = nil
	}
	if e.model != nil {
		e.model.Close()
		e.model = nil
	}
}

func (e *WhisperEngine) Capabilities() Capabilities {
	return Capabilities{
		SupportsTranslation:   true,
		SupportsInitialPrompt: true,
		SupportsTimestamps:    true,
	}
}

func (e *WhisperEngine) Transcribe(samples []float32, params Params) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.context == nil || e.model == nil {
		return Result{}, fmt.Errorf("whisper engine: %w", ErrModelNotLoaded)
	}

	if params.Language != nil {
		if err := e.context.SetLanguage(*params.Language); err != nil {
			logger.Warning(logger.CategoryPipeline, "failed to set whisper language %q: %v", *params.Language, err)
		}
	} else {
		_ = e.context.SetLanguage("auto")
	}

	e.context.SetTranslate(params.Translate)

	if params.InitialPrompt != "" {
		e.context.SetInitialPrompt(params.InitialPrompt)
	}

	if err := e.context.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("whisper process: %w", err)
	}

	var segments []Segment
	var fullText string
	for {
		seg, err := e.context.NextSegment()
		if err != nil {
			break
		}
		segments = append(segments, Segment{
			Start: float32(seg.Start.Seconds()),
			End:   float32(seg.End.Seconds()),
			Text:  seg.Text,
		})
		fullText += seg.Text + " "
	}

	return Result{Segments: segments, Text: fullText}, nil
}
