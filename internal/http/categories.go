package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CategoriesController struct {
	categories Categories
}

func NewCategoriesController(categories Categories) *CategoriesController {
	return &CategoriesController{categories: categories}
}

// List returns every category ordered by name.
// GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	categories, err := cc.categories.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
