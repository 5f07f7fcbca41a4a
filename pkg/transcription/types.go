package transcription

import "strings"

// audioSampleRate is the fixed sample rate every sample buffer in this
// package is expressed at.
const audioSampleRate = 16000

// Granularity selects how finely a backend should report timestamps.
type Granularity string

const (
	GranularitySegment Granularity = "segment"
	GranularityWord    Granularity = "word"
)

// Segment is a timestamped text fragment. Start and End are expressed in
// seconds, in audio-global time — never chunk-local.
type Segment struct {
	Start float32
	End   float32
	Text  string
}

// Params configures a single backend invocation. A backend silently ignores
// any field it cannot honor; callers should consult Capabilities rather
// than rely on silent fallback.
type Params struct {
	// Language is nil for auto-detection, otherwise an ISO-639-ish code
	// already normalized by the caller (see normalizeLanguage).
	Language             *string
	Translate            bool
	InitialPrompt        string
	TimestampGranularity Granularity
}

// Result is what a backend returns for one chunk of audio.
type Result struct {
	// Segments is optional; a backend that cannot produce structured
	// timing may leave this nil and return Text only.
	Segments []Segment
	Text     string
}

// Capabilities declares what a backend supports, so the pipeline and the
// capability switcher can decide when a different engine is required.
type Capabilities struct {
	SupportsTranslation   bool
	SupportsInitialPrompt bool
	SupportsTimestamps    bool
}

// Engine is the uniform contract every inference backend implements. At
// most one Engine instance is resident process-wide at a time; the
// Manager owns that lifetime.
type Engine interface {
	Load(modelPath string) error
	Unload()
	Transcribe(samples []float32, params Params) (Result, error)
	Capabilities() Capabilities
}

// normalizeLanguage applies the language-code normalization the original
// transcription manager performs before handing a language to a backend:
// "auto" (or empty) means auto-detect, and any Chinese script variant
// collapses to the bare "zh" code.
func normalizeLanguage(lang string) *string {
	switch {
	case lang == "" || lang == "auto":
		return nil
	case strings.HasPrefix(lang, "zh-"):
		zh := "zh"
		return &zh
	default:
		return &lang
	}
}
