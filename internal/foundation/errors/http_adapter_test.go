package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	assert.Equal(t, http.StatusOK, a.StatusCodeFor(nil))
	assert.Equal(t, http.StatusServiceUnavailable, a.StatusCodeFor(MissingField("url").Build()))
	assert.Equal(t, http.StatusServiceUnavailable, a.StatusCodeFor(BrokenLink("a", "b").Build()))
	assert.Equal(t, http.StatusBadGateway, a.StatusCodeFor(IntegrityMismatch("x").Build()))
	assert.Equal(t, http.StatusNotFound, a.StatusCodeFor(NewError(CategoryNotFound, "nope").Build()))
	assert.Equal(t, http.StatusInternalServerError, a.StatusCodeFor(stderrors.New("x")))
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	a.WriteErrorResponse(rec, req, InvalidURL("baseUrl", "docs").Build())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "invalid url", payload.Error)
	assert.Equal(t, "config", payload.Category)
	assert.Equal(t, "invalid_url", payload.Code)
	assert.Equal(t, "baseUrl", payload.Details["field"])
	assert.Equal(t, "docs", payload.Details["value"])
}
