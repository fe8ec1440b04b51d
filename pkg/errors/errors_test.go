package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	plain := New("SOME_CODE", "something went wrong", http.StatusBadRequest)
	assert.Equal(t, "something went wrong", plain.Error())

	wrapped := Wrap(stderrors.New("disk full"), "WRITE_FAILED", "failed to write output", http.StatusInternalServerError)
	assert.Equal(t, "failed to write output: disk full", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := stderrors.New("disk full")
	err := Wrap(inner, "WRITE_FAILED", "failed to write output", http.StatusInternalServerError)

	assert.True(t, Is(err, inner))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		sentinel   error
		code       string
		statusCode int
	}{
		{"not found", NotFound("conversion"), ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"conflict", Conflict("duplicate conversion"), ErrConflict, "CONFLICT", http.StatusConflict},
		{"bad request", BadRequest("missing file field"), ErrBadRequest, "BAD_REQUEST", http.StatusBadRequest},
		{"token expired", TokenExpired(), ErrTokenExpired, "TOKEN_EXPIRED", http.StatusUnauthorized},
		{"token invalid", TokenInvalid(), ErrTokenInvalid, "TOKEN_INVALID", http.StatusUnauthorized},
		{"input format", InputFormat("jan.dat", "source has no rows"), ErrInputFormat, "INPUT_FORMAT", http.StatusUnprocessableEntity},
		{"empty dataset", EmptyDataset("jan.dat"), ErrEmptyDataset, "EMPTY_DATASET", http.StatusUnprocessableEntity},
		{"render failed", RenderFailed(stderrors.New("boom")), ErrRender, "RENDER_FAILED", http.StatusInternalServerError},
		{"write failed", WriteFailed(stderrors.New("boom")), ErrWrite, "WRITE_FAILED", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
		})
	}
}

func TestRenderFailed_KeepsCause(t *testing.T) {
	cause := stderrors.New("sheet name too long")
	err := RenderFailed(cause)

	assert.True(t, Is(err, ErrRender))
	assert.True(t, Is(err, cause))
}

func TestValidation_CarriesDetails(t *testing.T) {
	err := Validation(map[string]string{"limit": "must be at most 500"})

	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "must be at most 500", err.Details["limit"])
}

func TestWithDetails(t *testing.T) {
	err := BadRequest("bad input").WithDetails(map[string]string{"field": "file"})
	assert.Equal(t, "file", err.Details["field"])
}
