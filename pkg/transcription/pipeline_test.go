package transcription

import (
	"testing"
	"time"

	"github.com/scribeline/transcribe-core/pkg/catalog"
)

func setManagerEngine(m *Manager, id string, variant catalog.EngineVariant, engine Engine) {
	m.engineMu.Lock()
	m.engine = engine
	m.engineVariant = variant
	m.engineMu.Unlock()
	m.modelMu.Lock()
	m.currentModelID = &id
	m.modelMu.Unlock()
}

func TestTranscribeEmptyInputShortCircuits(t *testing.T) {
	m := newTestManager(newFakeCatalog())
	defer m.Close()

	text, segments, err := m.Transcribe(nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" || segments != nil {
		t.Errorf("expected empty result for empty input, got text=%q segments=%v", text, segments)
	}
}

func TestTranscribeStitchesTimestampsAcrossChunks(t *testing.T) {
	m := newTestManager(newFakeCatalog())
	defer m.Close()

	fake := &fakeEngine{
		caps: Capabilities{SupportsTranslation: true, SupportsInitialPrompt: true, SupportsTimestamps: true},
		transcribeFunc: func(samples []float32, params Params) (Result, error) {
			dur := float32(len(samples)) / float32(audioSampleRate)
			return Result{
				Segments: []Segment{{Start: 0, End: dur, Text: "chunk"}},
				Text:     "chunk",
			}, nil
		},
	}
	setManagerEngine(m, "base", catalog.Whisper, fake)

	// Two chunks: one full 5s chunk, one 0.5s remainder.
	samples := make([]float32, chunkSamples+audioSampleRate/2)

	text, segments, err := m.Transcribe(samples, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 stitched segments, got %d", len(segments))
	}
	if segments[0].Start != 0 || segments[0].End != 5 {
		t.Errorf("expected first segment [0,5], got [%v,%v]", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 5 || segments[1].End != 5.5 {
		t.Errorf("expected second segment [5,5.5], got [%v,%v]", segments[1].Start, segments[1].End)
	}
	if text != "chunk chunk" {
		t.Errorf("expected joined text %q, got %q", "chunk chunk", text)
	}
}

func TestTranscribeSynthesizesFallbackSegmentWhenOnlyTextReturned(t *testing.T) {
	m := newTestManager(newFakeCatalog())
	defer m.Close()

	fake := &fakeEngine{
		transcribeFunc: func(samples []float32, params Params) (Result, error) {
			return Result{Text: "synthesized output"}, nil
		},
	}
	setManagerEngine(m, "base", catalog.Whisper, fake)

	samples := make([]float32, chunkSamples)
	_, segments, err := m.Transcribe(samples, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected a single synthesized segment, got %d", len(segments))
	}
	if segments[0].Text != "synthesized output" {
		t.Errorf("expected synthesized text preserved, got %q", segments[0].Text)
	}
	if segments[0].End != 5 {
		t.Errorf("expected synthesized segment to span the whole chunk, got end=%v", segments[0].End)
	}
}

func TestTranscribeCancellationStopsBeforeAllChunks(t *testing.T) {
	m := newTestManager(newFakeCatalog())
	defer m.Close()

	fake := &fakeEngine{
		transcribeFunc: func(samples []float32, params Params) (Result, error) {
			time.Sleep(30 * time.Millisecond)
			return Result{Text: "x"}, nil
		},
	}
	setManagerEngine(m, "base", catalog.Whisper, fake)

	samples := make([]float32, chunkSamples*6)

	type outcome struct {
		segments []Segment
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		_, segments, err := m.Transcribe(samples, Options{})
		done <- outcome{segments, err}
	}()

	time.Sleep(45 * time.Millisecond)
	m.CancelCurrentTranscription()

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if len(res.segments) >= 6 {
			t.Errorf("expected cancellation to stop before all 6 chunks, got %d segments", len(res.segments))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("transcription did not finish after cancellation")
	}
}

func TestResolveOptionsUsesOverridesOverSettings(t *testing.T) {
	lang := "fr"
	tr := true
	language, translate := resolveOptions(Options{Language: &lang, TranslateToEnglish: &tr})

	if language == nil || *language != "fr" {
		t.Errorf("expected language override 'fr', got %v", language)
	}
	if !translate {
		t.Error("expected translate override true")
	}
}

func TestResolveOptionsFallsBackToSettingsWhenNil(t *testing.T) {
	language, translate := resolveOptions(Options{})
	// config.Current defaults: SelectedLanguage "auto" -> nil, TranslateToEnglish false.
	if language != nil {
		t.Errorf("expected nil language for 'auto' default, got %v", *language)
	}
	if translate {
		t.Error("expected translate false by default")
	}
}

func TestSplitChunksEvenAndRemainder(t *testing.T) {
	samples := make([]float32, 25)
	chunks := splitChunks(samples, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 10 || len(chunks[1]) != 10 || len(chunks[2]) != 5 {
		t.Errorf("unexpected chunk sizes: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestConcatenateSegmentTextSkipsBlank(t *testing.T) {
	segments := []Segment{{Text: "hello"}, {Text: "  "}, {Text: "world"}}
	got := concatenateSegmentText(segments)
	if got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}
}

func TestToEventSegmentsMapsFields(t *testing.T) {
	segments := []Segment{{Start: 1, End: 2, Text: "a"}}
	out := toEventSegments(segments)
	if len(out) != 1 || out[0].Start != 1 || out[0].End != 2 || out[0].Text != "a" {
		t.Errorf("unexpected mapping: %+v", out)
	}
}

func TestApplyCustomWordCorrectionNoopWithEmptyGlossary(t *testing.T) {
	if got := applyCustomWordCorrection("hello world"); got != "hello world" {
		t.Errorf("expected text unchanged without glossary, got %q", got)
	}
}
