// Command transcribecli is a thin manual-smoke-test harness for the
// transcription core: it wires a Manager to a single file path on the
// command line and prints the transcript. It drives TranscribeFile,
// IsModelLoaded and CancelCurrentTranscription (on SIGINT/SIGTERM); the
// -model and -unload flags write config.Current directly.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scribeline/transcribe-core/config"
	"github.com/scribeline/transcribe-core/pkg/catalog"
	"github.com/scribeline/transcribe-core/pkg/events"
	"github.com/scribeline/transcribe-core/pkg/logger"
	"github.com/scribeline/transcribe-core/pkg/transcription"
)

func main() {
	audioPath := flag.String("file", "", "path to an audio file to transcribe")
	model := flag.String("model", "", "model id to select before transcribing (defaults to settings.json)")
	language := flag.String("language", "", "language override (ISO-639-ish, or 'auto')")
	translate := flag.Bool("translate", false, "translate to English")
	unloadMode := flag.String("unload", "", "unload timeout mode: immediately, after, never")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger.Initialize()
	if *debug {
		logger.SetLevel(logger.LevelDebug)
	}

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: transcribecli -file <audio path> [-model id] [-language lang] [-translate] [-unload mode]")
		os.Exit(2)
	}

	if err := config.LoadSettings(); err != nil {
		logger.Warning(logger.CategoryApp, "failed to load settings, using defaults: %v", err)
	}
	if *model != "" {
		config.Current.SelectedModel = *model
	}
	switch *unloadMode {
	case "immediately":
		config.Current.ModelUnloadTimeout = config.UnloadImmediately
	case "after":
		config.Current.ModelUnloadTimeout = config.UnloadAfter
	case "never":
		config.Current.ModelUnloadTimeout = config.UnloadNever
	case "":
		// leave settings.json's value in place
	default:
		logger.Warning(logger.CategoryApp, "unknown -unload mode %q, ignoring", *unloadMode)
	}

	modelDir, err := config.GetModelDir()
	if err != nil {
		logger.Error(logger.CategoryApp, "failed to resolve model directory: %v", err)
		os.Exit(1)
	}
	cat, err := catalog.NewFileCatalog(modelDir)
	if err != nil {
		logger.Error(logger.CategoryApp, "failed to open model catalog: %v", err)
		os.Exit(1)
	}

	emitter := events.NewChannelEmitter(16)
	go logEvents(emitter)

	manager := transcription.NewManager(cat, emitter)
	defer manager.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info(logger.CategoryApp, "interrupt received, cancelling transcription")
		manager.CancelCurrentTranscription()
	}()

	opts := transcription.Options{}
	if *language != "" {
		opts.Language = language
	}
	if *translate {
		t := true
		opts.TranslateToEnglish = &t
	}

	start := time.Now()
	text, segments, err := manager.TranscribeFile(*audioPath, opts)
	if err != nil {
		logger.Error(logger.CategoryApp, "transcription failed: %v", err)
		os.Exit(1)
	}

	status := manager.IsModelLoaded()
	logger.Info(logger.CategoryApp, "done in %s, model loaded: %v, %d segments", time.Since(start), status, len(segments))

	for _, seg := range segments {
		fmt.Printf("[%6.2f -> %6.2f] %s\n", seg.Start, seg.End, seg.Text)
	}
	fmt.Println("---")
	fmt.Println(text)
}

func logEvents(emitter *events.ChannelEmitter) {
	for {
		select {
		case e, ok := <-emitter.ModelState:
			if !ok {
				return
			}
			logger.Debug(logger.CategoryApp, "model state: %s %s %v", e.Type, e.ModelID, e.Err)
		case e, ok := <-emitter.Progress:
			if !ok {
				return
			}
			logger.Debug(logger.CategoryApp, "progress: %d segments (partial=%v)", len(e.Segments), e.IsPartial)
		case e, ok := <-emitter.Completed:
			if !ok {
				return
			}
			logger.Debug(logger.CategoryApp, "file completed: %s (%d segments)", e.Path, len(e.Segments))
		}
	}
}
