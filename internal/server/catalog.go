package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type catalogQuestion struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Rubric []string `json:"rubric,omitempty"`
}

type catalogCategory struct {
	Name      string            `json:"name"`
	Questions []catalogQuestion `json:"questions"`
}

type catalogResponse struct {
	Version       string            `json:"version"`
	VoteTokens    []string          `json:"vote_tokens"`
	NotApplicable string            `json:"not_applicable"`
	Categories    []catalogCategory `json:"categories"`
}

func (s *Server) handleCatalog(c *gin.Context) {
	doc := s.catalog.Current()

	out := catalogResponse{
		Version:       doc.Version,
		VoteTokens:    doc.VoteTokens,
		NotApplicable: doc.NotApplicable,
	}
	for _, category := range doc.Categories {
		entry := catalogCategory{Name: category.Name}
		for _, question := range category.Questions {
			entry.Questions = append(entry.Questions, catalogQuestion{
				ID:     question.ID,
				Text:   question.Text,
				Rubric: doc.Rubric(category.Name, question.ID),
			})
		}
		out.Categories = append(out.Categories, entry)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suppliers": s.catalog.Current().Suppliers()})
}

func (s *Server) handleProjects(c *gin.Context) {
	options, err := s.projects.Projects(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if options == nil {
		options = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": options})
}
