package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/models"
)

// parseListFilter extracts the shared search/page/limit query parameters.
func parseListFilter(c *gin.Context) models.ListFilter {
	var filter models.ListFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "25")); err == nil {
		filter.Limit = limit
	}
	return filter.Normalized()
}
