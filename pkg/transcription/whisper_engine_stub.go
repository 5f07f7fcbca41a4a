//go:build !(cgo && whisper_go)
// +build !cgo !whisper_go

package transcription

import "fmt"

// WhisperEngine is a stub used when the whisper.cpp Go bindings are not
// compiled in (missing cgo, or the "whisper_go" build tag was not passed).
// It allows the rest of the module to build without the native dependency.
type WhisperEngine struct{}

func NewWhisperEngine() *WhisperEngine {
	return &WhisperEngine{}
}

func (e *WhisperEngine) Load(modelPath string) error {
	return fmt.Errorf("whisper engine unavailable: build without cgo/whisper_go tag")
}

func (e *WhisperEngine) Unload() {}

func (e *WhisperEngine) Capabilities() Capabilities {
	return Capabilities{SupportsTranslation: true, SupportsInitialPrompt: true, SupportsTimestamps: true}
}

func (e *WhisperEngine) Transcribe(samples []float32, params Params) (Result, error) {
	return Result{}, fmt.Errorf("whisper engine unavailable: build without cgo/whisper_go tag")
}
