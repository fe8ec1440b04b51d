package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtrkit/dtr-backend/internal/dtr/directory"
	"github.com/dtrkit/dtr-backend/internal/dtr/events"
	"github.com/dtrkit/dtr-backend/internal/dtr/render"
	"github.com/dtrkit/dtr-backend/internal/dtr/repository"
	"github.com/dtrkit/dtr-backend/pkg/config"
	"github.com/dtrkit/dtr-backend/pkg/errors"
	"github.com/dtrkit/dtr-backend/pkg/logger"
	"github.com/dtrkit/dtr-backend/pkg/messaging"
	"github.com/dtrkit/dtr-backend/pkg/testutil"
)

type recordedHistory struct {
	entries []*repository.Conversion
	err     error
}

func (h *recordedHistory) Record(_ context.Context, entry *repository.Conversion) error {
	if h.err != nil {
		return h.err
	}
	h.entries = append(h.entries, entry)
	return nil
}

type fixture struct {
	svc     *ConversionService
	history *recordedHistory
	broker  *testutil.MockPublisher
	outDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New("service-test", "development")
	outDir := t.TempDir()

	history := &recordedHistory{}
	broker := testutil.NewMockPublisher()

	cfg := &config.ConversionConfig{
		DirectoryPath: filepath.Join(t.TempDir(), "missing-employees.txt"),
		OutputDir:     outDir,
	}

	svc := NewConversionService(
		cfg,
		render.NewExcelRenderer(log),
		history,
		events.NewConversionEventPublisher(broker, log),
		log,
	)

	return &fixture{svc: svc, history: history, broker: broker, outDir: outDir}
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const januaryLog = "5\t2025-01-02 08:03:11\n" +
	"5\t2025-01-02 17:02:45\n" +
	"5\t2025-01-04 09:15:00\n"

func TestConvertFile(t *testing.T) {
	fx := newFixture(t)
	path := writeSource(t, "jan.dat", januaryLog)

	snapshot := directory.NewSnapshot(map[string]string{"5": "JUAN DELA CRUZ"})

	result, err := fx.svc.ConvertFile(context.Background(), path, snapshot)
	require.NoError(t, err)

	assert.Equal(t, "jan.dat", result.Source)
	assert.Equal(t, "2025-01", result.ActiveMonth)
	assert.Equal(t, 1, result.Employees)
	assert.Equal(t, 3, result.Events)
	assert.Equal(t, 0, result.Dropped)

	expectedPath := filepath.Join(fx.outDir, "jan-DTR-2025-01.xlsx")
	assert.Equal(t, expectedPath, result.OutputPath)

	info, err := os.Stat(expectedPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	require.Len(t, fx.history.entries, 1)
	assert.Equal(t, "jan.dat", fx.history.entries[0].SourceFilename)
	assert.Equal(t, expectedPath, fx.history.entries[0].OutputPath)

	fx.broker.AssertEventPublished(t, messaging.EventConversionCompleted)
}

func TestConvertFile_IngestFailurePublishesFailedEvent(t *testing.T) {
	fx := newFixture(t)
	path := writeSource(t, "empty.dat", "")

	_, err := fx.svc.ConvertFile(context.Background(), path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInputFormat))

	assert.Empty(t, fx.history.entries)
	fx.broker.AssertEventPublished(t, messaging.EventConversionFailed)

	// No artifact must exist for a failed source.
	matches, globErr := filepath.Glob(filepath.Join(fx.outDir, "*.xlsx"))
	require.NoError(t, globErr)
	assert.Empty(t, matches)
}

func TestConvertFile_HistoryFailureDoesNotFailConversion(t *testing.T) {
	fx := newFixture(t)
	fx.history.err = assert.AnError
	path := writeSource(t, "jan.dat", januaryLog)

	result, err := fx.svc.ConvertFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.FileExists(t, result.OutputPath)
}

func TestConvertBatch_IsolatesFailures(t *testing.T) {
	fx := newFixture(t)

	good := writeSource(t, "jan.dat", januaryLog)
	bad := writeSource(t, "noise.dat", "5\tgarbage\n")
	alsoGood := writeSource(t, "feb.dat", "7\t2025-02-03 08:00:00\n7\t2025-02-03 17:00:00\n")

	outcomes := fx.svc.ConvertBatch(context.Background(), []string{good, bad, alsoGood}, nil)
	require.Len(t, outcomes, 3)

	assert.NoError(t, outcomes[0].Err)
	assert.NotEmpty(t, outcomes[0].OutputPath)

	require.Error(t, outcomes[1].Err)
	assert.True(t, errors.Is(outcomes[1].Err, errors.ErrEmptyDataset))

	// The failure in the middle never stops the last source.
	assert.NoError(t, outcomes[2].Err)
	assert.FileExists(t, outcomes[2].OutputPath)

	assert.Len(t, fx.history.entries, 2)
}

func TestConvert_ReturnsArtifactWithoutWriting(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.svc.Convert(context.Background(), "upload.dat", strings.NewReader(januaryLog), nil)
	require.NoError(t, err)

	assert.NotZero(t, result.Artifact.Len())
	assert.Empty(t, result.OutputPath)

	matches, globErr := filepath.Glob(filepath.Join(fx.outDir, "*.xlsx"))
	require.NoError(t, globErr)
	assert.Empty(t, matches)
}

func TestConvertUpload_StoresArtifactAndStreamsBytes(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.svc.ConvertUpload(context.Background(), "upload.dat", strings.NewReader(januaryLog), nil)
	require.NoError(t, err)

	assert.NotZero(t, result.Artifact.Len())
	assert.FileExists(t, result.OutputPath)
	require.Len(t, fx.history.entries, 1)
	fx.broker.AssertEventPublished(t, messaging.EventConversionCompleted)
}

func TestLoadDirectory_MissingListFallsBack(t *testing.T) {
	fx := newFixture(t)

	assert.Nil(t, fx.svc.LoadDirectory())
}

func TestLoadDirectory(t *testing.T) {
	fx := newFixture(t)

	listPath := writeSource(t, "employees.txt", "5 Juan dela Cruz\nbroken line without code\n")
	fx.svc.cfg.DirectoryPath = listPath

	snapshot := fx.svc.LoadDirectory()
	require.NotNil(t, snapshot)

	name, ok := snapshot.Resolve("5")
	require.True(t, ok)
	assert.Equal(t, "JUAN DELA CRUZ", name)
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "jan-DTR-2025-01.xlsx", artifactName("jan.dat", "2025-01"))
	assert.Equal(t, "punches-DTR-2024-12.xlsx", artifactName("punches.txt", "2024-12"))
	assert.Equal(t, "noext-DTR-2025-03.xlsx", artifactName("noext", "2025-03"))
}
