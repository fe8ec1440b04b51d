// Package handler exposes the conversion service over HTTP: punch-log
// upload, conversion history, and health.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dtrkit/dtr-backend/internal/dtr/repository"
	"github.com/dtrkit/dtr-backend/internal/dtr/service"
	"github.com/dtrkit/dtr-backend/pkg/errors"
	"github.com/dtrkit/dtr-backend/pkg/httputil"
	"github.com/dtrkit/dtr-backend/pkg/logger"
)

// HistoryLister reads conversion history entries.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]repository.Conversion, error)
}

// ConversionHandler handles conversion API requests.
type ConversionHandler struct {
	svc            *service.ConversionService
	history        HistoryLister
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewConversionHandler creates a new handler
func NewConversionHandler(svc *service.ConversionService, history HistoryLister, maxUploadBytes int64, log *logger.Logger) *ConversionHandler {
	return &ConversionHandler{
		svc:            svc,
		history:        history,
		maxUploadBytes: maxUploadBytes,
		logger:         log.WithComponent("handler"),
	}
}

// Upload converts a multipart punch-log upload and streams the rendered
// workbook back. POST /api/v1/conversions, field name "file".
func (h *ConversionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.Error(w, errors.BadRequest("invalid multipart body or upload too large"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing file field"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		httputil.Error(w, errors.BadRequest("upload has no filename"))
		return
	}

	snapshot := h.svc.LoadDirectory()

	result, err := h.svc.ConvertUpload(r.Context(), header.Filename, file, snapshot)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	artifactName := fmt.Sprintf("%s-DTR-%s.xlsx", stem(header.Filename), result.ActiveMonth)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifactName))
	w.Header().Set("X-Conversion-Id", result.ConversionID)
	w.Header().Set("X-Dropped-Rows", strconv.Itoa(result.Dropped))
	w.WriteHeader(http.StatusCreated)
	w.Write(result.Artifact.Bytes())
}

type historyQuery struct {
	Limit int `validate:"gte=0,lte=500"`
}

// History lists recent conversions, newest first.
// GET /api/v1/conversions?limit=N.
func (h *ConversionHandler) History(w http.ResponseWriter, r *http.Request) {
	query := historyQuery{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.Error(w, errors.BadRequest("limit must be an integer"))
			return
		}
		query.Limit = limit
	}

	if err := httputil.Validate(query); err != nil {
		httputil.Error(w, err)
		return
	}

	entries, err := h.history.List(r.Context(), query.Limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list conversion history")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
