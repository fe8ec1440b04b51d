// Package service orchestrates a conversion run: ingest, aggregate, fill,
// score, build, render, then write the artifact and record history. The full
// report model is built in memory before any byte is written, so a failing
// step never leaves a partial artifact behind.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtrkit/dtr-backend/internal/dtr/directory"
	"github.com/dtrkit/dtr-backend/internal/dtr/events"
	"github.com/dtrkit/dtr-backend/internal/dtr/processor"
	"github.com/dtrkit/dtr-backend/internal/dtr/render"
	"github.com/dtrkit/dtr-backend/internal/dtr/repository"
	"github.com/dtrkit/dtr-backend/pkg/config"
	"github.com/dtrkit/dtr-backend/pkg/errors"
	"github.com/dtrkit/dtr-backend/pkg/logger"
	"github.com/dtrkit/dtr-backend/pkg/messaging"
)

// HistoryRecorder appends conversion history entries. Satisfied by the
// Postgres repository; nil disables history recording.
type HistoryRecorder interface {
	Record(ctx context.Context, entry *repository.Conversion) error
}

// ConversionService runs punch-log conversions.
type ConversionService struct {
	cfg      *config.ConversionConfig
	renderer render.Renderer
	history  HistoryRecorder
	events   *events.ConversionEventPublisher
	logger   *logger.Logger
}

// NewConversionService creates the service. history may be nil (no history
// sink) and the event publisher swallows broker absence itself.
func NewConversionService(
	cfg *config.ConversionConfig,
	renderer render.Renderer,
	history HistoryRecorder,
	eventPub *events.ConversionEventPublisher,
	log *logger.Logger,
) *ConversionService {
	return &ConversionService{
		cfg:      cfg,
		renderer: renderer,
		history:  history,
		events:   eventPub,
		logger:   log.WithComponent("conversion"),
	}
}

// Result describes one successfully converted source.
type Result struct {
	ConversionID string        `json:"conversion_id"`
	Source       string        `json:"source"`
	OutputPath   string        `json:"output_path,omitempty"`
	ActiveMonth  string        `json:"active_month"`
	Employees    int           `json:"employees"`
	Events       int           `json:"events"`
	Dropped      int           `json:"dropped_rows"`
	Artifact     *bytes.Buffer `json:"-"`
}

// SourceOutcome pairs one batch source with its result or error.
type SourceOutcome struct {
	Source     string
	OutputPath string
	Events     int
	Dropped    int
	Err        error
}

// Convert runs the pipeline over one source stream and returns the rendered
// artifact in memory. No filesystem writes, no history, no events; callers
// that want those use ConvertFile.
func (s *ConversionService) Convert(ctx context.Context, sourceName string, r io.Reader, snapshot *directory.Snapshot) (*Result, error) {
	ingested, err := processor.Ingest(sourceName, r)
	if err != nil {
		return nil, err
	}

	present := processor.Aggregate(ingested.Events, snapshot)
	filled := processor.Fill(present, processor.EarliestTimestamp(ingested.Events))
	undertimes := processor.ComputeAllUndertime(filled)
	model := processor.Build(filled, undertimes)

	artifact, err := s.renderer.Render(model)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("source", sourceName).
		Str("month", model.ActiveMonth()).
		Int("employees", len(model.Sheets)).
		Int("events", len(ingested.Events)).
		Int("dropped", ingested.Dropped).
		Msg("source converted")

	return &Result{
		Source:      sourceName,
		ActiveMonth: model.ActiveMonth(),
		Employees:   len(model.Sheets),
		Events:      len(ingested.Events),
		Dropped:     ingested.Dropped,
		Artifact:    artifact,
	}, nil
}

// ConvertFile converts one punch-log file on disk, writes the .xlsx artifact
// into the configured output directory, records history, and publishes a
// completion or failure event.
func (s *ConversionService) ConvertFile(ctx context.Context, sourcePath string, snapshot *directory.Snapshot) (*Result, error) {
	result, err := s.convertFile(ctx, sourcePath, snapshot)
	if err != nil {
		s.publishFailure(ctx, filepath.Base(sourcePath), err)
		return nil, err
	}
	return result, nil
}

func (s *ConversionService) convertFile(ctx context.Context, sourcePath string, snapshot *directory.Snapshot) (*Result, error) {
	sourceName := filepath.Base(sourcePath)

	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, errors.InputFormat(sourceName, err.Error())
	}
	defer f.Close()

	return s.convertAndStore(ctx, sourceName, f, snapshot)
}

// ConvertUpload converts an uploaded punch log, stores the artifact in the
// output directory, records history, and publishes events. The returned
// result still carries the artifact bytes for streaming back to the client.
func (s *ConversionService) ConvertUpload(ctx context.Context, sourceName string, r io.Reader, snapshot *directory.Snapshot) (*Result, error) {
	result, err := s.convertAndStore(ctx, sourceName, r, snapshot)
	if err != nil {
		s.publishFailure(ctx, sourceName, err)
		return nil, err
	}
	return result, nil
}

func (s *ConversionService) convertAndStore(ctx context.Context, sourceName string, r io.Reader, snapshot *directory.Snapshot) (*Result, error) {
	result, err := s.Convert(ctx, sourceName, r, snapshot)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(s.cfg.OutputDir, artifactName(sourceName, result.ActiveMonth))
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, errors.WriteFailed(err)
	}
	if err := os.WriteFile(outputPath, result.Artifact.Bytes(), 0o644); err != nil {
		return nil, errors.WriteFailed(err)
	}
	result.OutputPath = outputPath

	s.record(ctx, result)
	return result, nil
}

// ConvertBatch attempts every source independently and reports on all of
// them; a failing source never prevents the others from converting. All
// sources share one immutable directory snapshot.
func (s *ConversionService) ConvertBatch(ctx context.Context, sourcePaths []string, snapshot *directory.Snapshot) []SourceOutcome {
	outcomes := make([]SourceOutcome, 0, len(sourcePaths))

	for _, path := range sourcePaths {
		outcome := SourceOutcome{Source: filepath.Base(path)}

		result, err := s.ConvertFile(ctx, path, snapshot)
		if err != nil {
			outcome.Err = err
			s.logger.Error().Err(err).Str("source", outcome.Source).Msg("conversion failed")
		} else {
			outcome.OutputPath = result.OutputPath
			outcome.Events = result.Events
			outcome.Dropped = result.Dropped
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// LoadDirectory loads the configured employee list into a snapshot for a
// run. A missing list is not fatal; conversions then fall back to raw keys.
func (s *ConversionService) LoadDirectory() *directory.Snapshot {
	result, err := directory.LoadFile(s.cfg.DirectoryPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.cfg.DirectoryPath).Msg("employee list unavailable, using raw keys")
		return nil
	}
	if result.Skipped > 0 {
		s.logger.Warn().Int("skipped", result.Skipped).Msg("skipped malformed employee list lines")
	}
	return result.Snapshot
}

func (s *ConversionService) record(ctx context.Context, result *Result) {
	entry := &repository.Conversion{
		ID:             uuid.New(),
		SourceFilename: result.Source,
		OutputPath:     result.OutputPath,
		ActiveMonth:    result.ActiveMonth,
		EmployeeCount:  result.Employees,
		EventCount:     result.Events,
		DroppedRows:    result.Dropped,
		ConvertedAt:    time.Now().UTC(),
	}

	if s.history != nil {
		if err := s.history.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("source", result.Source).Msg("failed to record conversion history")
		}
	}
	result.ConversionID = entry.ID.String()

	if s.events != nil {
		s.events.ConversionCompleted(ctx, completedEvent(entry))
	}
}

func (s *ConversionService) publishFailure(ctx context.Context, source string, err error) {
	if s.events == nil {
		return
	}

	code := "CONVERSION_FAILED"
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	s.events.ConversionFailed(ctx, failedEvent(source, code, err))
}

func completedEvent(entry *repository.Conversion) *messaging.ConversionCompletedEvent {
	return &messaging.ConversionCompletedEvent{
		ConversionID:   entry.ID.String(),
		SourceFilename: entry.SourceFilename,
		OutputPath:     entry.OutputPath,
		ActiveMonth:    entry.ActiveMonth,
		EmployeeCount:  entry.EmployeeCount,
		EventCount:     entry.EventCount,
		DroppedRows:    entry.DroppedRows,
		ConvertedAt:    entry.ConvertedAt,
	}
}

func failedEvent(source, code string, err error) *messaging.ConversionFailedEvent {
	return &messaging.ConversionFailedEvent{
		SourceFilename: source,
		Code:           code,
		Reason:         err.Error(),
	}
}

// artifactName derives the output filename: <source stem>-DTR-<YYYY-MM>.xlsx.
func artifactName(sourceName, activeMonth string) string {
	stem := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	return fmt.Sprintf("%s-DTR-%s.xlsx", stem, activeMonth)
}
