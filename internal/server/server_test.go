package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	s := New(nil, nil, zerolog.Nop())
	mux := http.NewServeMux()
	s.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleGetFileRejectsUnknownLeague(t *testing.T) {
	s := New(nil, nil, zerolog.Nop())
	mux := http.NewServeMux()
	s.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/file/u1/f1?pvp=true&league=mega", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "league")
}

func TestBoolParam(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "1", want: true},
		{in: "true", want: true},
		{in: "TRUE", want: true},
		{in: "yes", want: true},
		{in: "0", want: false},
		{in: "false", want: false},
		{in: "", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, boolParam(tt.in), tt.in)
	}
}
