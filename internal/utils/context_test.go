// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	assert.Equal(t, "userID", UserIDCtxKey.String())
	assert.Equal(t, "traceID", TraceIDCtxKey.String())
	assert.NotEqual(t, any(UserIDCtxKey), any("userID"))
}

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   int64
		wantOK bool
	}{
		{"set", WithUserID(context.Background(), 42), 42, true},
		{"missing", context.Background(), 0, false},
		{"wrong type", context.WithValue(context.Background(), UserIDCtxKey, "42"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetUserIDFromContext(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTraceIDFromContext(t *testing.T) {
	traceID, ok := GetTraceIDFromContext(WithTraceID(context.Background(), "trace-1"))
	assert.True(t, ok)
	assert.Equal(t, "trace-1", traceID)

	_, ok = GetTraceIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetTraceIDFromContext(WithTraceID(context.Background(), ""))
	assert.False(t, ok)
}
