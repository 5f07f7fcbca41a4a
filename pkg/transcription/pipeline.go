package transcription

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribeline/transcribe-core/config"
	"github.com/scribeline/transcribe-core/pkg/audio"
	"github.com/scribeline/transcribe-core/pkg/events"
	"github.com/scribeline/transcribe-core/pkg/logger"
)

// chunkSamples is 5 seconds of audio at 16 kHz: the unit of engine
// invocation and progress emission.
const chunkSamples = audioSampleRate * 5

// Options overrides the caller may supply for a single transcription; any
// nil/zero field falls back to config.Current.
type Options struct {
	Language           *string
	TranslateToEnglish *bool
}

// TranscribeFile decodes path to a sample buffer and transcribes it,
// emitting a file-transcription-completed event when done.
func (m *Manager) TranscribeFile(path string, opts Options) (string, []Segment, error) {
	samples, err := audio.Decode(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	text, segments, err := m.Transcribe(samples, opts)
	if err != nil {
		return "", nil, err
	}

	m.emitter.EmitFileTranscriptionCompleted(events.FileTranscriptionCompleted{
		Path:     path,
		Segments: toEventSegments(segments),
		Text:     text,
	})

	return text, segments, nil
}

// Transcribe runs the chunked inference pipeline over samples and returns
// the concatenated text and the stitched, timestamped segments.
func (m *Manager) Transcribe(samples []float32, opts Options) (string, []Segment, error) {
	m.touchActivity()

	if len(samples) == 0 {
		m.maybeUnloadImmediately("empty audio")
		return "", nil, nil
	}

	modelID := config.Current.SelectedModel
	m.InitiateModelLoad()
	if err := m.waitForLoad(modelID); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrModelNotLoaded, err)
	}
	if !m.IsModelLoaded() {
		return "", nil, ErrModelNotLoaded
	}

	language, translate := resolveOptions(opts)

	token := &cancellationToken{id: uuid.NewString()}
	m.cancelMu.Lock()
	m.cancelToken = token
	m.cancelMu.Unlock()
	defer func() {
		m.cancelMu.Lock()
		if m.cancelToken == token {
			m.cancelToken = nil
		}
		m.cancelMu.Unlock()
	}()

	var (
		segments            []Segment
		previousEndTime     float32
		previousTextContext string
	)

	start := time.Now()
	chunks := splitChunks(samples, chunkSamples)

	for _, chunk := range chunks {
		if token.isCancelled() {
			logger.Info(logger.CategoryPipeline, "transcription %s cancelled after %d segments", token.id, len(segments))
			break
		}

		if translate {
			m.ensureTranslationCapableEngine()
		}

		result, err := m.transcribeChunk(chunk, language, translate, previousTextContext)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
		}

		chunkSegments := result.Segments
		if len(chunkSegments) == 0 && strings.TrimSpace(result.Text) != "" {
			chunkSegments = []Segment{{
				Start: 0,
				End:   float32(len(chunk)) / float32(audioSampleRate),
				Text:  result.Text,
			}}
		}

		if rawText := concatenateSegmentText(chunkSegments); rawText != "" {
			previousTextContext = rawText
		}

		var progressBatch []Segment
		for _, seg := range chunkSegments {
			shifted := Segment{
				Start: seg.Start + previousEndTime,
				End:   seg.End + previousEndTime,
				Text:  seg.Text,
			}
			shifted.Text = normalizeSegmentText(applyCustomWordCorrection(shifted.Text))
			segments = append(segments, shifted)
			progressBatch = append(progressBatch, shifted)
		}

		previousEndTime += float32(len(chunk)) / float32(audioSampleRate)

		if len(progressBatch) > 0 {
			m.emitter.EmitTranscriptionProgress(events.TranscriptionProgress{
				Segments:  toEventSegments(progressBatch),
				IsPartial: true,
			})
		}
	}

	logger.Debug(logger.CategoryPipeline, "transcription %s finished %d chunks in %s", token.id, len(chunks), time.Since(start))

	m.maybeUnloadImmediately("transcription")

	return joinSegmentText(segments), segments, nil
}

func (m *Manager) transcribeChunk(chunk []float32, language *string, translate bool, initialPrompt string) (Result, error) {
	m.engineMu.Lock()
	engine := m.engine
	m.engineMu.Unlock()

	if engine == nil {
		return Result{}, ErrModelNotLoaded
	}

	params := Params{
		Language:             language,
		Translate:            translate,
		TimestampGranularity: GranularitySegment,
	}
	if engine.Capabilities().SupportsInitialPrompt {
		params.InitialPrompt = initialPrompt
	}

	return engine.Transcribe(chunk, params)
}

// applyCustomWordCorrection corrects a segment's text against the
// configured glossary before it is added to the accumulated result, per
// config.Current.CustomWords / WordCorrectionThreshold.
func applyCustomWordCorrection(text string) string {
	return correctCustomWords(text, config.Current.CustomWords, config.Current.WordCorrectionThreshold)
}

func resolveOptions(opts Options) (language *string, translate bool) {
	if opts.Language != nil {
		language = normalizeLanguage(*opts.Language)
	} else {
		language = normalizeLanguage(config.Current.SelectedLanguage)
	}

	if opts.TranslateToEnglish != nil {
		translate = *opts.TranslateToEnglish
	} else {
		translate = config.Current.TranslateToEnglish
	}
	return language, translate
}

func splitChunks(samples []float32, size int) [][]float32 {
	var chunks [][]float32
	for start := 0; start < len(samples); start += size {
		end := start + size
		if end > len(samples) {
			end = len(samples)
		}
		chunks = append(chunks, samples[start:end])
	}
	return chunks
}

func concatenateSegmentText(segments []Segment) string {
	var parts []string
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func joinSegmentText(segments []Segment) string {
	return concatenateSegmentText(segments)
}

func toEventSegments(segments []Segment) []events.Segment {
	out := make([]events.Segment, len(segments))
	for i, s := range segments {
		out[i] = events.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return out
}
