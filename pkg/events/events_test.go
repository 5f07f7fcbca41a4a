package events

import "testing"

func TestNoopEmitterDiscardsEverything(t *testing.T) {
	var e Emitter = NoopEmitter{}
	// Should not panic regardless of payload.
	e.EmitModelStateChanged(ModelStateChanged{Type: LoadingStarted, ModelID: "x"})
	e.EmitTranscriptionProgress(TranscriptionProgress{IsPartial: true})
	e.EmitFileTranscriptionCompleted(FileTranscriptionCompleted{Path: "a.wav"})
}

func TestChannelEmitterDeliversWithinBuffer(t *testing.T) {
	c := NewChannelEmitter(2)
	var e Emitter = c

	e.EmitModelStateChanged(ModelStateChanged{Type: LoadingCompleted, ModelID: "base"})

	select {
	case got := <-c.ModelState:
		if got.ModelID != "base" || got.Type != LoadingCompleted {
			t.Errorf("unexpected event: %+v", got)
		}
	default:
		t.Fatal("expected a buffered event to be available")
	}
}

func TestChannelEmitterDropsWhenFull(t *testing.T) {
	c := NewChannelEmitter(1)

	c.EmitTranscriptionProgress(TranscriptionProgress{IsPartial: true})
	// Buffer is now full (size 1); this second emit must not block.
	c.EmitTranscriptionProgress(TranscriptionProgress{IsPartial: false})

	first := <-c.Progress
	if !first.IsPartial {
		t.Error("expected the first buffered event to survive, not the dropped second one")
	}

	select {
	case <-c.Progress:
		t.Error("expected no second event: the buffer should have dropped it")
	default:
	}
}
