package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventListQuery(t *testing.T) {
	r := NewEventRepository(nil)

	sql, args, err := r.listQuery(EventQuery{}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM events WHERE status = $1")
	assert.Contains(t, sql, "ORDER BY start_date ASC, created_at DESC")
	assert.NotContains(t, sql, "LIMIT")
	assert.Equal(t, []interface{}{"Active"}, args)

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sql, args, err = r.listQuery(EventQuery{From: from, Limit: 10}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "start_date >= $2")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Equal(t, []interface{}{"Active", from}, args)
}
