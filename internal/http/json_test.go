package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_IgnoresUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","unexpected":1}`))
	rec := httptest.NewRecorder()

	var dst loginRequest
	require.True(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, "a@x.com", dst.Email)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "empty", body: "", wantStatus: http.StatusBadRequest, wantMsg: "Request body is required"},
		{name: "malformed", body: `{"email":`, wantStatus: http.StatusBadRequest, wantMsg: "Request body must be valid JSON"},
		{name: "wrong type", body: `{"email":5}`, wantStatus: http.StatusBadRequest, wantMsg: "Request body must be valid JSON"},
		{
			name:       "too large",
			body:       `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantMsg:    "Request body too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst loginRequest
			assert.False(t, DecodeJSON(rec, req, &dst))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, rec.Body.String())
		})
	}
}

func TestNumberField(t *testing.T) {
	tests := []struct {
		body    string
		wantRaw string
		wantSet bool
	}{
		{body: `{"number":7}`, wantRaw: "7", wantSet: true},
		{body: `{"number":"42"}`, wantRaw: "42", wantSet: true},
		{body: `{"number":1.5}`, wantRaw: "1.5", wantSet: true},
		{body: `{"number":null}`},
		{body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(tt.body))
			var dst signupRequest
			require.True(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
			assert.Equal(t, tt.wantRaw, dst.Number.raw)
			assert.Equal(t, tt.wantSet, dst.Number.set)
		})
	}
}
