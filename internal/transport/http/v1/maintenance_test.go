package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/kzhou57/localmem/internal/domain"
)

func TestExportTable(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	rec := postMessage(t, e, h, "s1", `{"role":"user","content":"hello"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/export/messages", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/export/:table")
	c.SetParamNames("table")
	c.SetParamValues("messages")

	assert.NoError(t, h.ExportTable(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "messages", resp["table"])

	fi, err := os.Stat(resp["path"])
	assert.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}

func TestExportTableUnknown(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/export/secrets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/export/:table")
	c.SetParamNames("table")
	c.SetParamValues("secrets")

	assert.NoError(t, h.ExportTable(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStats(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	rec := postMessage(t, e, h, "s1", `{"role":"user","content":"hello"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.GetStats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats domain.StorageStats
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalMessages)
}
