package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeWavFileResamplesToTargetRate(t *testing.T) {
	sourceRate := 44100
	samples := make([]float32, sourceRate/10)
	for i := range samples {
		samples[i] = 0.1
	}

	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := EncodeWav(samples, sourceRate, path); err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}

	out, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty decoded buffer")
	}

	wantLen := int(float64(len(samples)) * float64(TargetSampleRate) / float64(sourceRate))
	if diff := wantLen - len(out); diff < -2 || diff > 2 {
		t.Errorf("expected ~%d samples after resample to %d Hz, got %d", wantLen, TargetSampleRate, len(out))
	}
}

func TestDecodeWavAlreadyAtTargetRateSkipsResample(t *testing.T) {
	samples := make([]float32, 8000)
	path := filepath.Join(t.TempDir(), "native.wav")
	if err := EncodeWav(samples, TargetSampleRate, path); err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}

	out, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) != len(samples) {
		t.Errorf("expected %d samples unchanged, got %d", len(samples), len(out))
	}
}

func TestDecodeUnrecognizedContainerErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bin")
	if err := os.WriteFile(path, []byte("not an audio file at all"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := Decode(path); err == nil {
		t.Error("expected an error decoding an unrecognized container")
	}
}

func TestLooksLikeMP3(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"id3 tag", []byte("ID3\x03\x00\x00"), true},
		{"frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, true},
		{"wav header", []byte("RIFF\x00\x00\x00\x00"), false},
		{"too short", []byte{0xFF}, false},
	}
	for _, c := range cases {
		if got := looksLikeMP3(c.header); got != c.want {
			t.Errorf("%s: looksLikeMP3 = %v, want %v", c.name, got, c.want)
		}
	}
}
