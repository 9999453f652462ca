package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPageQuery(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		prefix   string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "first page",
			page:     1,
			size:     10,
			wantSQL:  "SELECT record_id, owner_id, title, director, release_date, duration, watched, photo, location_lat, location_long, last_edit FROM records WHERE owner_id = $1 ORDER BY created_at, record_id LIMIT 10 OFFSET 0",
			wantArgs: []any{int64(5)},
		},
		{
			name:     "third page with prefix",
			page:     3,
			size:     10,
			prefix:   "Star",
			wantSQL:  "SELECT record_id, owner_id, title, director, release_date, duration, watched, photo, location_lat, location_long, last_edit FROM records WHERE owner_id = $1 AND title LIKE $2 ORDER BY created_at, record_id LIMIT 10 OFFSET 20",
			wantArgs: []any{int64(5), "Star%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildPageQuery(5, tt.page, tt.size, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildFindRecordQuery(t *testing.T) {
	query, args, err := buildFindRecordQuery(5, "abc")
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE owner_id = $1 AND record_id = $2")
	assert.Equal(t, []any{int64(5), "abc"}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}
