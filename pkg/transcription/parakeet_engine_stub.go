//go:build !parakeet_onnx
// +build !parakeet_onnx

package transcription

import "fmt"

// ParakeetEngine is a stub used when the module was built without the
// "parakeet_onnx" tag (which pulls in ONNX Runtime via cgo).
type ParakeetEngine struct{}

func NewParakeetEngine() *ParakeetEngine {
	return &ParakeetEngine{}
}

func (e *ParakeetEngine) Load(modelPath string) error {
	return fmt.Errorf("parakeet engine unavailable: build without parakeet_onnx tag")
}

func (e *ParakeetEngine) Unload() {}

func (e *ParakeetEngine) Capabilities() Capabilities {
	return Capabilities{SupportsTranslation: false, SupportsInitialPrompt: false, SupportsTimestamps: true}
}

func (e *ParakeetEngine) Transcribe(samples []float32, params Params) (Result, error) {
	return Result{}, fmt.Errorf("parakeet engine unavailable: build without parakeet_onnx tag")
}
