package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/logger"
	"github.com/MrMazzone/meeting-notes/internal/session"
	"github.com/MrMazzone/meeting-notes/internal/store"
	"github.com/MrMazzone/meeting-notes/internal/summarizer"
	"github.com/MrMazzone/meeting-notes/internal/transcriber"
	"github.com/MrMazzone/meeting-notes/internal/watcher"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml configuration file")
	title := flag.String("title", "", "meeting title for the exported notes")
	watch := flag.Bool("watch", false, "watch the inbox folder and import dropped recordings instead of recording live")
	recent := flag.Int("recent", 0, "list the N most recent meetings and exit")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		log.Error(ctx, "Failed to open meeting store: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	if *recent > 0 {
		if err := listRecent(ctx, st, *recent); err != nil {
			log.Error(ctx, "Failed to list meetings: %v", err)
			os.Exit(1)
		}
		return
	}

	// A missing API key degrades to transcript-only output rather than
	// refusing to record.
	summ, err := summarizer.New(cfg, log)
	if err != nil {
		if !errors.Is(err, summarizer.ErrMissingAPIKey) {
			log.Error(ctx, "Failed to create summarizer: %v", err)
			os.Exit(1)
		}
		log.Warn(ctx, "No API key configured (%v), notes will contain the transcript only", err)
		summ = nil
	}

	exec := executor.New()

	if *watch {
		runImport(ctx, cfg, exec, summ, st, log)
		return
	}

	runRecording(ctx, cfg, exec, summ, st, log, *title)
}

func runRecording(ctx context.Context, cfg *config.Config, exec executor.Executor, summ summarizer.Summarizer, st *store.Store, log logger.Logger, title string) {
	if err := session.Preflight(cfg); err != nil {
		log.Error(ctx, "Preflight failed: %v", err)
		os.Exit(1)
	}

	if title == "" {
		title = "Meeting " + time.Now().Format("2006-01-02 15:04")
	}

	sess := session.New(cfg, exec, summ, st, log)
	if err := sess.Start(ctx); err != nil {
		log.Error(ctx, "Failed to start session: %v", err)
		os.Exit(1)
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Recording: %s", title)
	log.Info(ctx, "Segment length: %ds, batch size: %d", cfg.Audio.SegmentSeconds, cfg.Performance.BatchSize)
	log.Info(ctx, "Press Ctrl+C to stop and summarize")
	log.Info(ctx, "========================================")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "Stop requested, draining transcription pipeline...")

	result, err := sess.Stop(ctx, title)
	if err != nil {
		log.Error(ctx, "Session ended with error: %v", err)
		if result.Transcript == "" {
			os.Exit(1)
		}
	}

	if result.Transcript == "" {
		log.Warn(ctx, "No speech was transcribed, nothing to export")
		return
	}

	if result.Degraded {
		log.Warn(ctx, "Recording was microphone-only, system audio was not captured")
	}
	log.Info(ctx, "Transcript: %d characters across the session", len(result.Transcript))
	if result.Notes.MarkdownPath != "" {
		log.Info(ctx, "Notes written to %s", result.Notes.MarkdownPath)
	}
	if result.Notes.DocxPath != "" {
		log.Info(ctx, "Docx notes written to %s", result.Notes.DocxPath)
	}
	if result.MeetingID != 0 {
		log.Info(ctx, "Meeting saved with id %d", result.MeetingID)
	}
}

func runImport(ctx context.Context, cfg *config.Config, exec executor.Executor, summ summarizer.Summarizer, st *store.Store, log logger.Logger) {
	handler := func(ctx context.Context, filePath string) error {
		started := time.Now()
		log.Info(ctx, "Importing %s", filePath)

		transcript, err := transcriber.TranscribeFile(ctx, cfg, exec, filePath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(transcript) == "" {
			log.Warn(ctx, "No speech found in %s, skipping", filePath)
			return nil
		}

		title := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		summary := ""
		if summ != nil {
			summary, err = summ.Summarize(ctx, transcript)
			if err != nil {
				log.Error(ctx, "Summarization failed for %s, exporting transcript only: %v", filePath, err)
				summary = ""
			}
		}

		notes, err := summarizer.ExportNotes(title, summary, transcript, cfg.Paths.Notes)
		if err != nil {
			return err
		}

		if _, err := st.Save(ctx, store.Meeting{
			Title:      title,
			StartedAt:  started,
			EndedAt:    time.Now(),
			Transcript: transcript,
			Summary:    summary,
		}); err != nil {
			log.Error(ctx, "Failed to persist imported meeting: %v", err)
		}

		log.Info(ctx, "Imported %s in %s, notes at %s", filePath, time.Since(started).Round(time.Second), notes.MarkdownPath)
		return nil
	}

	w, err := watcher.New(cfg.Paths.Inbox, handler, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		os.Exit(1)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Watcher error: %v", err)
	}

	cancel()
	log.Info(ctx, "Import mode stopped")
}

func listRecent(ctx context.Context, st *store.Store, limit int) error {
	meetings, err := st.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		fmt.Println("No meetings recorded yet")
		return nil
	}
	for _, m := range meetings {
		fmt.Printf("%4d  %s  %-30s  %d chars\n",
			m.ID, m.StartedAt.Format("2006-01-02 15:04"), m.Title, len(m.Transcript))
	}
	return nil
}

// ensureDirectories creates the working directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Segments,
		cfg.Paths.Notes,
		cfg.Paths.Inbox,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
