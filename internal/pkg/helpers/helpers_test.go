package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/unilink/internal/app/models/dto"
)

func TestPage(t *testing.T) {
	p := Page{Number: 3, Size: 10}
	assert.Equal(t, uint64(20), p.Offset())
	assert.Equal(t, uint64(10), p.Limit())

	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, Page{Number: -1, Size: 1000}.Normalize())

	info := NewPaginationInfo(25, Page{Number: 9, Size: 10})
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 3, TotalPages: 3, PageSize: 10, TotalItems: 25}, info)
	assert.Equal(t, 1, NewPaginationInfo(0, Page{}).TotalPages)
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name  string
		query string
		want  Page
	}{
		{"explicit", "?page=2&size=5", Page{Number: 2, Size: 5}},
		{"invalid values fall back", "?page=abc&size=-3", Page{Number: DefaultPage, Size: DefaultPageSize}},
		{"absent", "", Page{Number: DefaultPage, Size: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePage(c))
		})
	}
}

func TestParseDurationAndSchedule(t *testing.T) {
	assert.Equal(t, time.Minute, ParseDuration("1m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))

	loc := time.FixedZone("LKT", 5*3600+1800)
	at := time.Date(2026, 3, 2, 4, 30, 0, 0, time.UTC)
	assert.Equal(t, "Monday, March 2, 2026 at 10:00 AM", FormatSchedule(at, loc))
}
