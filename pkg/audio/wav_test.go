package audio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeWavRoundTrip(t *testing.T) {
	sampleRate := 16000
	samples := make([]float32, sampleRate/2)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*220*float64(i)/float64(sampleRate)))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := EncodeWav(samples, sampleRate, path); err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}

	decoded, rate, err := decodeWav(path)
	if err != nil {
		t.Fatalf("decodeWav failed: %v", err)
	}
	if rate != sampleRate {
		t.Errorf("expected sample rate %d, got %d", sampleRate, rate)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded))
	}

	// 16-bit round trip loses precision; allow a small tolerance.
	for i := range samples {
		diff := float64(decoded[i]) - float64(samples[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.01 {
			t.Fatalf("sample %d diverged too much: want %f got %f", i, samples[i], decoded[i])
		}
	}
}

func TestClampFloat(t *testing.T) {
	cases := map[float32]float32{
		0.0:  0.0,
		0.5:  0.5,
		1.5:  1.0,
		-1.5: -1.0,
		-0.9: -0.9,
	}
	for in, want := range cases {
		if got := clampFloat(in); got != want {
			t.Errorf("clampFloat(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestDownmixIntStereoAverages(t *testing.T) {
	// Two stereo frames, 16-bit: (full-scale, 0), (0, -full-scale).
	data := []int{32767, 0, 0, -32768}
	out := downmixInt(data, 2, 16)
	if len(out) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(out))
	}
	if out[0] <= 0 {
		t.Errorf("expected first frame positive average, got %v", out[0])
	}
	if out[1] >= 0 {
		t.Errorf("expected second frame negative average, got %v", out[1])
	}
}
