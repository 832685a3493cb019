package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

const commentsPath = "/titles/:id/reviews/:review_id/comments"

func (h *CommentHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET(commentsPath, h.List)
	public.GET(commentsPath+"/:comment_id", h.Get)

	authed.POST(commentsPath, h.Create)
	authed.PATCH(commentsPath+"/:comment_id", h.Update)
	authed.DELETE(commentsPath+"/:comment_id", h.Delete)
}

// scope parses the title and review ids every comment route carries
func scope(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = parseID(c, "id"); !ok {
		return
	}
	reviewID, ok = parseID(c, "review_id")
	return
}

func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := scope(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	comments, total, err := h.commentService.List(c.Request.Context(), titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapPage(comments, total, page, pageSize, dto.FromModelToCommentResponse))
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := scope(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := scope(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToCommentResponse(comment))
}

func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := scope(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID, commentID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := scope(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
