package server

import (
	"net/http"
	"strconv"
	"strings"

	admindomain "github.com/evalworks/vendoreval/internal/admin/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleAdminRecords(c *gin.Context) {
	records, err := s.admin.Records(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}

func (s *Server) handleAdminParticipation(c *gin.Context) {
	participation, err := s.admin.Participation(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participation": participation})
}

func (s *Server) handleDeleteEvaluationByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, newValidationError("id", "invalid_request", "evaluation id required"))
		return
	}

	removed, err := s.admin.DeleteEvaluation(c.Request.Context(), admindomain.EvaluationRef{EvaluationID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows_removed": removed})
}

type deleteEvaluationRequest struct {
	UserName string `json:"user_name"`
	Supplier string `json:"supplier"`
	Project  string `json:"project"`
	Year     int    `json:"year"`
}

func (s *Server) handleDeleteEvaluationByTuple(c *gin.Context) {
	var req deleteEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "body must identify an evaluation"))
		return
	}

	removed, err := s.admin.DeleteEvaluation(c.Request.Context(), admindomain.EvaluationRef{
		UserName: req.UserName,
		Supplier: req.Supplier,
		Project:  req.Project,
		Year:     req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows_removed": removed})
}

func (s *Server) handlePurge(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	if !confirm {
		AbortWithError(c, newValidationError("confirm", "invalid_request", "purge requires confirm=true"))
		return
	}

	removed, err := s.admin.PurgeAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows_removed": removed})
}
