package handlers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/storage"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	store storage.Storage
}

func NewCommentHandler(store storage.Storage) *CommentHandler {
	return &CommentHandler{store: store}
}

type addCommentRequest struct {
	PostID  uint   `json:"postId"`
	Content string `json:"content"`
}

// Add POST /api/v1/comment/add
func (h *CommentHandler) Add(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	if req.PostID == 0 || req.Content == "" {
		failValidation(c, "postId and content are required")
		return
	}
	if utf8.RuneCountInString(req.Content) > models.MaxCommentLength {
		failValidation(c, fmt.Sprintf("comment must be at most %d characters", models.MaxCommentLength))
		return
	}

	// 评论表没有外键约束，发表前确认文章还在
	if _, err := h.store.GetPostByID(c.Request.Context(), req.PostID); err != nil {
		fail(c, err)
		return
	}

	comment := models.Comment{
		PostID:  req.PostID,
		UserID:  user.ID,
		User:    *user,
		Content: req.Content,
	}
	if err := h.store.CreateComment(c.Request.Context(), &comment); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Comment added successfully", comment)
}

// List GET /api/v1/comment/post/:postId 公开接口，按时间倒序
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := utils.StringToUint(c.Param("postId"))
	if !ok {
		failValidation(c, "invalid postId")
		return
	}

	comments, err := h.store.ListCommentsByPost(c.Request.Context(), postID)
	if err != nil {
		fail(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	respond(c, http.StatusOK, "Comments fetched successfully", comments)
}

type editCommentRequest struct {
	Content string `json:"content"`
}

// Edit PUT /api/v1/comment/edit/:commentId
// 非作者编辑与评论不存在同样返回 not_found
func (h *CommentHandler) Edit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	commentID, okID := utils.StringToUint(c.Param("commentId"))
	if !okID {
		failValidation(c, "invalid commentId")
		return
	}

	var req editCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	if req.Content == "" {
		failValidation(c, "content is required")
		return
	}
	if utf8.RuneCountInString(req.Content) > models.MaxCommentLength {
		failValidation(c, fmt.Sprintf("comment must be at most %d characters", models.MaxCommentLength))
		return
	}

	comment, err := h.store.UpdateCommentOwned(c.Request.Context(), commentID, user.ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Comment updated successfully", comment)
}

// Delete DELETE /api/v1/comment/delete/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	commentID, okID := utils.StringToUint(c.Param("commentId"))
	if !okID {
		failValidation(c, "invalid commentId")
		return
	}

	if err := h.store.DeleteCommentOwned(c.Request.Context(), commentID, user.ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Comment deleted successfully", gin.H{})
}
