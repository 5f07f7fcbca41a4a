//go:build parakeet_onnx
// +build parakeet_onnx

package transcription

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/scribeline/transcribe-core/pkg/logger"
)

var ortInit sync.Once
var ortInitErr error

func ensureRuntimeInitialized() error {
	ortInit.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// The CTC output grid this engine allocates: a fixed 2x time-subsampling of
// the 80,000-sample (5s @ 16kHz) input window, over a 1024-entry vocabulary.
const (
	parakeetInputSamples = 80000
	parakeetOutputFrames = parakeetInputSamples / 2
	parakeetVocabSize    = 1024
)

// ParakeetEngine runs a streaming CTC model exported to ONNX through ONNX
// Runtime. It is English-only, cannot translate, and ignores any initial
// prompt; it reports segment-level timestamps from the CTC frame alignment.
type ParakeetEngine struct {
	mu        sync.Mutex
	session   *ort.AdvancedSession
	input     *ort.Tensor[float32]
	output    *ort.Tensor[float32]
	numFrames int
	vocabSize int
}

func NewParakeetEngine() *ParakeetEngine {
	return &ParakeetEngine{}
}

func (e *ParakeetEngine) Load(modelPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ensureRuntimeInitialized(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}

	// A generous fixed-length input window; the chunked pipeline always
	// hands this engine at most one 5-second (80,000-sample) chunk.
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, parakeetInputSamples))
	if err != nil {
		return fmt.Errorf("allocate input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, parakeetOutputFrames, parakeetVocabSize))
	if err != nil {
		input.Destroy()
		return fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"audio_signal"}, []string{"logprobs"},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return fmt.Errorf("create onnx session: %w", err)
	}

	e.session = session
	e.input = input
	e.output = output
	e.numFrames = parakeetOutputFrames
	e.vocabSize = parakeetVocabSize
	logger.Info(logger.CategoryLifecycle, "parakeet engine loaded model: %s", modelPath)
	return nil
}

func (e *ParakeetEngine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
}

func (e *ParakeetEngine) Capabilities() Capabilities {
	return Capabilities{
		SupportsTranslation:   false,
		SupportsInitialPrompt: false,
		SupportsTimestamps:    true,
	}
}

func (e *ParakeetEngine) Transcribe(samples []float32, params Params) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return Result{}, fmt.Errorf("parakeet engine: %w", ErrModelNotLoaded)
	}

	if params.Translate {
		logger.Warning(logger.CategoryPipeline, "parakeet engine does not support translation, ignoring request")
	}

	data := e.input.GetData()
	n := copy(data, samples)
	for i := n; i < len(data); i++ {
		data[i] = 0
	}

	if err := e.session.Run(); err != nil {
		return Result{}, fmt.Errorf("onnx session run: %w", err)
	}

	frameDuration := float32(parakeetInputSamples) / float32(audioSampleRate) / float32(e.numFrames)
	segments := greedyCTCDecode(e.output.GetData(), e.numFrames, e.vocabSize, frameDuration)

	return Result{Segments: segments, Text: concatenateSegmentText(segments)}, nil
}

// ctcBlankID is the CTC blank symbol, conventionally index 0 of the
// vocabulary.
const ctcBlankID = 0

// ctcSegmentGapSeconds is the minimum run of blank frames that splits one
// decoded segment from the next.
const ctcSegmentGapSeconds = 0.5

// ctcToken is one decoded (non-blank) vocabulary entry, anchored to the
// output frame it first appeared at.
type ctcToken struct {
	id    int
	frame int
}

// greedyCTCDecode performs standard greedy CTC decoding over a flattened
// [numFrames, vocabSize] logit matrix: per-frame argmax, then the CTC
// collapse rule (drop immediate repeats, then drop blanks). Consecutive
// decoded tokens are grouped into timestamped segments, splitting wherever a
// run of blank frames of at least ctcSegmentGapSeconds separates them. No
// token vocabulary ships with this core (it arrives with the exported
// model), so each token renders as its numeric vocabulary index; a caller
// with the real id->string table can substitute it downstream.
func greedyCTCDecode(logits []float32, numFrames, vocabSize int, frameDuration float32) []Segment {
	if numFrames <= 0 || vocabSize <= 0 || len(logits) < numFrames*vocabSize {
		return nil
	}

	tokens := collapseCTCFrames(logits, numFrames, vocabSize)
	if len(tokens) == 0 {
		return nil
	}

	gapFrames := int(ctcSegmentGapSeconds / frameDuration)

	var segments []Segment
	words := []string{strconv.Itoa(tokens[0].id)}
	segStartFrame, segEndFrame := tokens[0].frame, tokens[0].frame

	flush := func() {
		segments = append(segments, Segment{
			Start: float32(segStartFrame) * frameDuration,
			End:   float32(segEndFrame+1) * frameDuration,
			Text:  strings.Join(words, " "),
		})
	}

	for _, tok := range tokens[1:] {
		if tok.frame-segEndFrame > gapFrames {
			flush()
			words = nil
			segStartFrame = tok.frame
		}
		segEndFrame = tok.frame
		words = append(words, strconv.Itoa(tok.id))
	}
	flush()

	return segments
}

// collapseCTCFrames applies per-frame argmax followed by the CTC collapse
// rule, returning the surviving non-blank tokens in frame order.
func collapseCTCFrames(logits []float32, numFrames, vocabSize int) []ctcToken {
	var tokens []ctcToken
	prevID := -1
	for f := 0; f < numFrames; f++ {
		row := logits[f*vocabSize : (f+1)*vocabSize]
		id := argmaxIndex(row)
		if id == prevID {
			continue
		}
		prevID = id
		if id == ctcBlankID {
			continue
		}
		tokens = append(tokens, ctcToken{id: id, frame: f})
	}
	return tokens
}

func argmaxIndex(row []float32) int {
	best := 0
	bestVal := row[0]
	for i, v := range row {
		if v > bestVal {
			bestVal = v
			best = i
		}
	}
	return best
}
