package v1

import (
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// CommentController handles comments on bugs
type CommentController struct {
	commentService *services.CommentService
}

func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

func (cc *CommentController) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/bugs/:id/comments")
	{
		comments.GET("", cc.ListComments)
		comments.POST("", cc.CreateComment)
		comments.DELETE("/:commentId", cc.DeleteComment)
	}
}

// ListComments godoc
// @Summary List comments of a bug
// @Description Oldest first, with markdown rendered to HTML
// @Tags comments
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {array} dto.CommentResponse
// @Router /bugs/{id}/comments [get]
func (cc *CommentController) ListComments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	comments, err := cc.commentService.List(user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewCommentList(comments))
}

// CreateComment godoc
// @Summary Comment on a bug
// @Description Body is markdown; the response carries the rendered HTML
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Bug ID"
// @Param comment body dto.CreateCommentRequest true "Comment body"
// @Success 201 {object} dto.CommentResponse
// @Router /bugs/{id}/comments [post]
func (cc *CommentController) CreateComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := cc.commentService.Create(user, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, dto.NewCommentResponse(comment))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Allowed for the author and project owners
// @Tags comments
// @Produce json
// @Param id path string true "Bug ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Router /bugs/{id}/comments/{commentId} [delete]
func (cc *CommentController) DeleteComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := cc.commentService.Delete(user, c.Param("id"), c.Param("commentId")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Comment deleted successfully")
}
