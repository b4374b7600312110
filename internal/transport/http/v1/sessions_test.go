package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/kzhou57/localmem/internal/domain"
)

func TestCreateSession(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	body := `{"session_id":"s1","metadata":{"tier":"pro"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateSession(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateSessionMissingID(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateSession(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	err := h.GetSession(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSessionSuccess(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	body := `{"session_id":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	assert.NoError(t, h.CreateSession(e.NewContext(req, rec)))

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/s1", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	err := h.GetSession(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var session domain.Session
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "s1", session.SessionID)
	assert.NotEmpty(t, session.CreatedAt)
}
