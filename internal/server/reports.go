package server

import (
	"net/http"
	"strconv"
	"strings"

	reportdomain "github.com/evalworks/vendoreval/internal/report/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleAverages(c *gin.Context) {
	filters, err := reportFilters(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	averages, err := s.report.Averages(c.Request.Context(), filters)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": averages})
}

func (s *Server) handleRankings(c *gin.Context) {
	filters, err := reportFilters(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rankings, err := s.report.Rankings(c.Request.Context(), filters)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rankings})
}

func (s *Server) handleYears(c *gin.Context) {
	years, err := s.report.Years(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// reportFilters reads year/project/supplier query params. Each accepts a
// comma-separated list and may repeat.
func reportFilters(c *gin.Context) (reportdomain.Filters, error) {
	var filters reportdomain.Filters

	for _, raw := range splitQuery(c.QueryArray("year")) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filters, newValidationError("year", "invalid_request", "year must be an integer")
		}
		filters.Years = append(filters.Years, year)
	}
	filters.Projects = splitQuery(c.QueryArray("project"))
	filters.Suppliers = splitQuery(c.QueryArray("supplier"))
	return filters, nil
}

func splitQuery(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
