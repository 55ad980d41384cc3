package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kalyxon/progress-server/internal/catalog"
	"github.com/kalyxon/progress-server/internal/model"
)

type TutorialHandler struct {
	catalog *catalog.Catalog
}

func NewTutorialHandler(catalog *catalog.Catalog) *TutorialHandler {
	return &TutorialHandler{catalog: catalog}
}

// GET /api/v1/tutorials?category=DSA
func (h *TutorialHandler) List(c *gin.Context) {
	category := c.Query("category")

	tutorials := make([]model.Tutorial, 0, h.catalog.Len())
	for _, t := range h.catalog.All() {
		if category == "" || strings.EqualFold(t.Category, category) {
			tutorials = append(tutorials, t)
		}
	}

	c.JSON(http.StatusOK, gin.H{"tutorials": tutorials})
}

// GET /api/v1/tutorials/:id
func (h *TutorialHandler) Get(c *gin.Context) {
	tutorial, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tutorial not found"})
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// GET /api/v1/categories
func (h *TutorialHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}
