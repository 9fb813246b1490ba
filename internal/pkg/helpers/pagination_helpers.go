package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// Normalize clamps a page request into range
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Size <= 0 || p.Size > MaxPageSize {
		p.Size = DefaultPageSize
	}
	return p
}

// Offset is the number of rows to skip
func (p Page) Offset() uint64 {
	p = p.Normalize()
	return uint64((p.Number - 1) * p.Size)
}

// Limit is the number of rows to return
func (p Page) Limit() uint64 {
	return uint64(p.Normalize().Size)
}

// NewPaginationInfo builds the page metadata for totalItems rows
func NewPaginationInfo(totalItems int64, p Page) dto.PaginationInfo {
	p = p.Normalize()
	totalPages := int(math.Ceil(float64(totalItems) / float64(p.Size)))
	if totalPages == 0 {
		totalPages = 1
	}
	current := p.Number
	if current > totalPages {
		current = totalPages
	}
	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  totalPages,
		PageSize:    p.Size,
		TotalItems:  totalItems,
	}
}

// ParsePage reads ?page= and ?size= from the request
func ParsePage(c *gin.Context) Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	return Page{Number: number, Size: size}.Normalize()
}
