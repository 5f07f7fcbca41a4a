// Package config holds user-facing settings for the transcription core,
// persisted as JSON under the user's home directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UnloadTimeoutMode selects when the resident engine is unloaded
// automatically: by the pipeline after each transcription (UnloadImmediately)
// or by the idle watcher (UnloadAfter).
type UnloadTimeoutMode string

const (
	// UnloadImmediately unloads the engine synchronously after every
	// transcription, including empty input.
	UnloadImmediately UnloadTimeoutMode = "immediately"
	// UnloadAfter unloads the engine after UnloadAfterSeconds of inactivity.
	UnloadAfter UnloadTimeoutMode = "after"
	// UnloadNever disables automatic unload entirely.
	UnloadNever UnloadTimeoutMode = "never"
)

// Settings holds the subset of user preferences the transcription core
// consults. A host application may carry additional UI-facing settings of
// its own; only these fields are read by this module.
type Settings struct {
	SelectedModel           string            `json:"selected_model"`
	SelectedLanguage        string            `json:"selected_language"`
	TranslateToEnglish      bool              `json:"translate_to_english"`
	ModelUnloadTimeout      UnloadTimeoutMode `json:"model_unload_timeout"`
	ModelUnloadAfterSeconds int               `json:"model_unload_after_seconds"`
	CustomWords             []string          `json:"custom_words"`
	WordCorrectionThreshold float64           `json:"word_correction_threshold"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() *Settings {
	return &Settings{
		SelectedModel:           "base",
		SelectedLanguage:        "auto",
		TranslateToEnglish:      false,
		ModelUnloadTimeout:      UnloadAfter,
		ModelUnloadAfterSeconds: 300,
		CustomWords:             nil,
		WordCorrectionThreshold: 0.80,
	}
}

// Current holds the active settings. Callers that embed this package
// directly mutate Current and call SaveSettings to persist changes.
var Current = DefaultSettings()

// GetAppDir returns the path to the application's per-user directory,
// creating it if necessary.
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, ".scribeline")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("create app directory: %w", err)
	}
	return appDir, nil
}

// GetSettingsFilePath returns the path to the persisted settings file.
func GetSettingsFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "settings.json"), nil
}

// GetModelDir returns the path to the model storage directory.
func GetModelDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	modelDir := filepath.Join(appDir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}
	return modelDir, nil
}

// LoadSettings loads settings from disk, writing defaults if no file exists
// yet.
func LoadSettings() error {
	path, err := GetSettingsFilePath()
	if err != nil {
		return fmt.Errorf("get settings file path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		Current = DefaultSettings()
		return SaveSettings()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}
	Current = &s
	return nil
}

// SaveSettings persists Current to disk.
func SaveSettings() error {
	path, err := GetSettingsFilePath()
	if err != nil {
		return fmt.Errorf("get settings file path: %w", err)
	}

	data, err := json.MarshalIndent(Current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
