// Package transcription provides speech-to-text transcription over
// pluggable inference backends.
package transcription

import (
	"errors"
)

// Sentinel errors returned by the lifecycle controller and the inference
// pipeline. Callers should match against these with errors.Is.
var (
	// ErrModelNotFound indicates the requested model id has no entry in the
	// catalog.
	ErrModelNotFound = errors.New("model not found in catalog")

	// ErrModelNotDownloaded indicates the catalog knows the model but it has
	// not been fetched to local disk.
	ErrModelNotDownloaded = errors.New("model not downloaded")

	// ErrBackendLoadFailed indicates the engine's Load call failed.
	ErrBackendLoadFailed = errors.New("backend failed to load model")

	// ErrModelNotLoaded indicates an inference was attempted with no engine
	// resident.
	ErrModelNotLoaded = errors.New("no model is currently loaded")

	// ErrInferenceFailed indicates the engine's Transcribe call failed.
	ErrInferenceFailed = errors.New("inference failed")

	// ErrDecodeFailed indicates the audio decoder could not decode a file.
	ErrDecodeFailed = errors.New("failed to decode audio")

	// ErrUnsupportedFormat indicates the audio decoder could not identify or
	// support the container format. TranscribeFile does not return it: an
	// unrecognized container is reported as ErrDecodeFailed.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrIO indicates a filesystem error unrelated to decoding.
	// TranscribeFile does not return it: a file that cannot be opened or
	// read is reported as ErrDecodeFailed.
	ErrIO = errors.New("audio file io error")
)
