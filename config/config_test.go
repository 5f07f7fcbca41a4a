package config

import "testing"

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.SelectedLanguage != "auto" {
		t.Errorf("expected default SelectedLanguage 'auto', got %q", s.SelectedLanguage)
	}
	if s.TranslateToEnglish {
		t.Error("expected default TranslateToEnglish to be false")
	}
	if s.ModelUnloadTimeout != UnloadAfter {
		t.Errorf("expected default ModelUnloadTimeout to be UnloadAfter, got %q", s.ModelUnloadTimeout)
	}
	if s.ModelUnloadAfterSeconds != 300 {
		t.Errorf("expected default ModelUnloadAfterSeconds 300, got %d", s.ModelUnloadAfterSeconds)
	}
	if len(s.CustomWords) != 0 {
		t.Errorf("expected no default custom words, got %v", s.CustomWords)
	}
}

func TestCurrentSettings(t *testing.T) {
	if Current == nil {
		t.Fatal("Current settings should not be nil")
	}
	if Current.SelectedLanguage != "auto" {
		t.Errorf("expected Current.SelectedLanguage 'auto', got %q", Current.SelectedLanguage)
	}
}

func TestSaveAndLoadSettingsRoundTrip(t *testing.T) {
	original := Current
	defer func() { Current = original }()

	Current = &Settings{
		SelectedModel:           "turbo",
		SelectedLanguage:        "en",
		TranslateToEnglish:      true,
		ModelUnloadTimeout:      UnloadImmediately,
		ModelUnloadAfterSeconds: 0,
		CustomWords:             []string{"Scribeline", "Whisperkit"},
		WordCorrectionThreshold: 0.75,
	}

	if err := SaveSettings(); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	Current = DefaultSettings()
	if err := LoadSettings(); err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if Current.SelectedModel != "turbo" {
		t.Errorf("expected SelectedModel 'turbo' after reload, got %q", Current.SelectedModel)
	}
	if !Current.TranslateToEnglish {
		t.Error("expected TranslateToEnglish true after reload")
	}
	if len(Current.CustomWords) != 2 {
		t.Errorf("expected 2 custom words after reload, got %d", len(Current.CustomWords))
	}
}
