package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
	"github.com/tosone/minimp3"
	"github.com/tphakala/flac"

	"github.com/scribeline/transcribe-core/pkg/logger"
)

// Decode reads an audio file of any supported container (WAV, MP3, FLAC,
// Ogg/Vorbis), downmixes it to a single channel, and resamples it to
// TargetSampleRate. The returned buffer is ready for direct use as an
// inference input.
func Decode(path string) ([]float32, error) {
	header, err := readMagic(path)
	if err != nil {
		return nil, fmt.Errorf("read audio header: %w", err)
	}

	var samples []float32
	var sourceRate int

	switch {
	case bytes.HasPrefix(header, []byte("RIFF")):
		samples, sourceRate, err = decodeWav(path)
	case bytes.HasPrefix(header, []byte("fLaC")):
		samples, sourceRate, err = decodeFlac(path)
	case bytes.HasPrefix(header, []byte("OggS")):
		samples, sourceRate, err = decodeOgg(path)
	case looksLikeMP3(header):
		samples, sourceRate, err = decodeMP3(path)
	default:
		return nil, fmt.Errorf("unrecognized audio container")
	}
	if err != nil {
		return nil, err
	}

	if sourceRate != TargetSampleRate {
		logger.Debug(logger.CategoryDecoder, "resampling %d Hz -> %d Hz (%d samples)",
			sourceRate, TargetSampleRate, len(samples))
		samples = Resample(samples, sourceRate, TargetSampleRate)
	}

	return samples, nil
}

func readMagic(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, 12)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// looksLikeMP3 recognizes an ID3 tag or a raw MPEG frame sync.
func looksLikeMP3(header []byte) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	return len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0
}

func decodeFlac(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open flac: %w", err)
	}
	defer f.Close()

	stream, err := flac.Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("parse flac: %w", err)
	}

	sampleRate := int(stream.Info.SampleRate)
	numChans := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)

	var ints []int
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warning(logger.CategoryDecoder, "flac frame decode error, skipping: %v", err)
			continue
		}
		for i := 0; i < frame.BlockSize; i++ {
			for c := 0; c < len(frame.Subframes) && c < numChans; c++ {
				ints = append(ints, int(frame.Subframes[c].Samples[i]))
			}
		}
	}

	samples := downmixInt(ints, numChans, bitDepth)
	logger.Debug(logger.CategoryDecoder, "decoded flac: %d channels, %d Hz, %d bits, %d samples",
		numChans, sampleRate, bitDepth, len(samples))
	return samples, sampleRate, nil
}

func decodeOgg(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open ogg: %w", err)
	}
	defer f.Close()

	reader, format, err := oggvorbis.NewReaderAt(f, mustSize(f))
	if err != nil {
		return nil, 0, fmt.Errorf("parse ogg vorbis: %w", err)
	}

	numChans := format.Channels
	if numChans < 1 {
		numChans = 1
	}

	buf := make([]float32, 4096)
	var interleaved []float32
	for {
		n, err := reader.Read(buf)
		interleaved = append(interleaved, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("decode ogg vorbis: %w", err)
		}
	}

	frames := len(interleaved) / numChans
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < numChans; c++ {
			sum += interleaved[i*numChans+c]
		}
		samples[i] = sum / float32(numChans)
	}

	logger.Debug(logger.CategoryDecoder, "decoded ogg/vorbis: %d channels, %d Hz, %d samples",
		numChans, format.SampleRate, len(samples))
	return samples, format.SampleRate, nil
}

func mustSize(f *os.File) int64 {
	fi, err := f.Stat()
	if err != nil {
		return 0
	}
	return fi.Size()
}

func decodeMP3(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read mp3: %w", err)
	}

	dec, err := minimp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("parse mp3: %w", err)
	}
	defer dec.Close()

	<-dec.Started()

	var pcm []int16
	buf := make([]byte, 4*4096)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			for i := 0; i+1 < n; i += 2 {
				pcm = append(pcm, int16(uint16(buf[i])|uint16(buf[i+1])<<8))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("decode mp3: %w", err)
		}
	}

	numChans := int(dec.Channels)
	if numChans < 1 {
		numChans = 1
	}
	ints := make([]int, len(pcm))
	for i, s := range pcm {
		ints[i] = int(s)
	}

	samples := downmixInt(ints, numChans, 16)
	logger.Debug(logger.CategoryDecoder, "decoded mp3: %d channels, %d Hz, %d samples",
		numChans, dec.SampleRate, len(samples))
	return samples, int(dec.SampleRate), nil
}
