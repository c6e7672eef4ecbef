package server

import (
	"net/http"

	evaluationdomain "github.com/evalworks/vendoreval/internal/evaluation/domain"
	"github.com/gin-gonic/gin"
)

type submitEvaluationRequest struct {
	Supplier string                       `json:"supplier"`
	Project  string                       `json:"project"`
	Votes    map[string]map[string]string `json:"votes"`
	Comments map[string]string            `json:"comments"`
}

func (s *Server) handleSubmitEvaluation(c *gin.Context) {
	sess := s.currentSession(c)
	if sess == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req submitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "body must be a json evaluation"))
		return
	}

	receipt, err := s.eval.Submit(c.Request.Context(), evaluationdomain.SubmitRequest{
		UserName: sess.UserName,
		Supplier: req.Supplier,
		Project:  req.Project,
		Votes:    req.Votes,
		Comments: req.Comments,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}
