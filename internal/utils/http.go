package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// IfModifiedSinceHeader carries the client's page watermark. The value is
// the decimal millisecond watermark returned by the previous page fetch, not
// an HTTP date.
const IfModifiedSinceHeader = "If-Modified-Since"

// TraceIDHeader carries the trace id of a client sync cycle to the server
// logs and back.
const TraceIDHeader = "X-Trace-ID"

// WriteJSON serializes data to JSON and writes it with the given status code
// and an "application/json" content type.
//
// If marshaling fails it responds with 500 Internal Server Error and returns
// a wrapped error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// ParseWatermark reads the If-Modified-Since watermark of a request.
// ok is false when the header is absent or not a millisecond integer, in
// which case the request is treated as unconditional.
func ParseWatermark(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(IfModifiedSinceHeader))
	if raw == "" {
		return 0, false
	}

	watermark, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return watermark, true
}

// FormatWatermark renders a watermark for the If-Modified-Since header.
func FormatWatermark(watermark int64) string {
	return strconv.FormatInt(watermark, 10)
}
