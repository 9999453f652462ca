package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/models"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{"page", models.Page{Items: []models.Record{}, Watermark: 7}, http.StatusOK, `{"items":[],"lastEdit":7}`},
		{"created record", models.Record{ID: "a", Title: "Alien", LastEdit: 3}, http.StatusCreated, `"title":"Alien"`},
		{"conflict body", map[string]string{"error": "stale"}, http.StatusConflict, `{"error":"stale"}`},
		{"nil", nil, http.StatusOK, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)
			require.NoError(t, err)

			assert.Equal(t, w.Body.Len(), n)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestWriteJSON_RecordOmitsClientMarkers(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, models.Record{ID: "a", Title: "Alien", OwnerID: 9}, http.StatusOK)
	require.NoError(t, err)

	assert.NotContains(t, w.Body.String(), "dirty")
	assert.NotContains(t, w.Body.String(), "conflict")
	assert.NotContains(t, w.Body.String(), ":9")
}

func TestWriteJSON_Unmarshalable(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestParseWatermark(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int64
		wantOK bool
	}{
		{name: "absent", header: ""},
		{name: "millis", header: "1700000000123", want: 1700000000123, wantOK: true},
		{name: "padded", header: " 42 ", want: 42, wantOK: true},
		{name: "http date", header: "Wed, 21 Oct 2015 07:28:00 GMT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/records/page/1", nil)
			if tt.header != "" {
				r.Header.Set(IfModifiedSinceHeader, tt.header)
			}

			got, ok := ParseWatermark(r)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatWatermark_RoundTrip(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/records/page/1", nil)
	r.Header.Set(IfModifiedSinceHeader, FormatWatermark(1700000000123))

	got, ok := ParseWatermark(r)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000123), got)
}
