// Package audio decodes arbitrary audio containers to mono float32 samples
// at 16 kHz and encodes mono float32 samples back to WAV.
package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/scribeline/transcribe-core/pkg/logger"
)

// TargetSampleRate is the sample rate every decoded buffer is normalized to.
const TargetSampleRate = 16000

// decodeWav reads a RIFF/WAVE file into mono float32 samples at the file's
// native sample rate. Multi-channel files are downmixed by averaging.
func decodeWav(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav pcm: %w", err)
	}

	sampleRate := int(d.SampleRate)
	numChans := buf.Format.NumChannels
	if numChans < 1 {
		numChans = 1
	}

	data := buf.Data
	if d.BitDepth == 8 {
		// 8-bit WAV PCM is unsigned; shift it to be centred on zero.
		data = make([]int, len(buf.Data))
		for i, v := range buf.Data {
			data[i] = v - 128
		}
	}

	samples := downmixInt(data, numChans, int(d.BitDepth))
	logger.Debug(logger.CategoryDecoder, "decoded wav: %d channels, %d Hz, %d bits, %d samples",
		numChans, sampleRate, d.BitDepth, len(samples))

	return samples, sampleRate, nil
}

// EncodeWav writes mono float32 samples as 16-bit PCM WAV at sampleRate.
func EncodeWav(samples []float32, sampleRate int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(clampFloat(s) * 32767.0)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   ints,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return enc.Close()
}

func clampFloat(s float32) float32 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}

// downmixInt mixes interleaved integer samples at the given bit depth down
// to mono float32 in [-1.0, 1.0], following the per-format normalization
// divisors of a standard PCM decoder: the full-scale positive magnitude of
// the format.
func downmixInt(data []int, numChans, bitDepth int) []float32 {
	if numChans < 1 {
		numChans = 1
	}

	var fullScale float32
	switch bitDepth {
	case 8:
		fullScale = 128
	case 24:
		fullScale = 8388608
	case 32:
		fullScale = 2147483648
	default:
		fullScale = 32768
	}

	frames := len(data) / numChans
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < numChans; c++ {
			sum += float32(data[i*numChans+c]) / fullScale
		}
		out[i] = sum / float32(numChans)
	}
	return out
}
