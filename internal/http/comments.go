package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentsController struct {
	comments Comments
}

func NewCommentsController(comments Comments) *CommentsController {
	return &CommentsController{comments: comments}
}

// List returns a page of a book's comments, newest first.
// GET /api/books/:id/comments?page=&pageSize=
func (cc *CommentsController) List(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}

	comments, err := cc.comments.List(c.Request.Context(), bookID, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create adds a comment to a book.
// POST /api/books/:id/comments
func (cc *CommentsController) Create(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	comment, err := cc.comments.Create(c.Request.Context(), currentUserID(c), bookID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Delete removes a comment. Only its author may do so.
// DELETE /api/comments/:commentId
func (cc *CommentsController) Delete(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	if err := cc.comments.Delete(c.Request.Context(), currentUserID(c), commentID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
