package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/storage"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	store  storage.Storage
	feed   *services.FeedService
	assist *services.ContentAssistService
	images *services.ImageUploadService
}

func NewPostHandler(store storage.Storage, feed *services.FeedService, assist *services.ContentAssistService, images *services.ImageUploadService) *PostHandler {
	return &PostHandler{store: store, feed: feed, assist: assist, images: images}
}

// Create POST /api/v1/post/create
// multipart 表单：title/category 必填，image 必传且先上传成功才落库；
// useAI=true 时正文由生成服务产出，生成失败则整个请求失败，不产生半成品
func (h *PostHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	title := c.PostForm("title")
	category := c.PostForm("category")
	content := c.PostForm("content")
	useAI := c.PostForm("useAI") == "true"

	if title == "" || category == "" {
		failValidation(c, "title and category are required")
		return
	}

	isAIGenerated := false
	if useAI {
		draft, err := h.assist.GenerateDraft(c.Request.Context(), title, category)
		if err != nil {
			fail(c, err)
			return
		}
		content = draft
		isAIGenerated = true
	}
	if content == "" {
		failValidation(c, "content is required")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		failValidation(c, "image is required")
		return
	}
	defer file.Close()

	imageURL, err := h.images.Upload(c.Request.Context(), file, header)
	if err != nil {
		fail(c, err)
		return
	}

	post := models.Post{
		UserID:        user.ID,
		Title:         title,
		Slug:          utils.Slugify(title),
		Category:      category,
		Content:       content,
		Image:         imageURL,
		IsAIGenerated: isAIGenerated,
	}
	if err := h.store.CreatePost(c.Request.Context(), &post); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Post created successfully", post)
}

// parseFeedQuery 解析公共列表查询参数，postId 非法时返回 false
func parseFeedQuery(c *gin.Context) (storage.FeedQuery, bool) {
	q := storage.FeedQuery{
		Category:   c.Query("category"),
		Slug:       c.Query("slug"),
		SearchTerm: c.Query("searchTerm"),
		Order:      c.Query("order"),
		StartIndex: utils.StringToInt(c.Query("startIndex")),
	}
	if limit := c.Query("limit"); limit != "" {
		q.Limit = utils.StringToInt(limit)
	}
	if raw := c.Query("postId"); raw != "" {
		id, ok := utils.StringToUint(raw)
		if !ok {
			return q, false
		}
		q.PostID = id
	}
	return q, true
}

// GetBlogs GET /api/v1/post/getblogs 公开的文章 Feed
func (h *PostHandler) GetBlogs(c *gin.Context) {
	q, ok := parseFeedQuery(c)
	if !ok {
		failValidation(c, "invalid postId")
		return
	}

	result, err := h.feed.GetFeed(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Posts fetched successfully", result)
}

// GetUserBlogs GET /api/v1/post/getuserblogs
// 仪表盘视图：无论传什么过滤条件都只看到自己的文章
func (h *PostHandler) GetUserBlogs(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	q, okQ := parseFeedQuery(c)
	if !okQ {
		failValidation(c, "invalid postId")
		return
	}
	// postId 是精确定位，覆盖其余过滤条件；作者限定始终保留
	if q.PostID != 0 {
		q = storage.FeedQuery{PostID: q.PostID}
	}
	q.UserID = user.ID

	result, err := h.feed.GetFeed(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Posts fetched successfully", result)
}

type updatePostRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Content  *string `json:"content"`
	Image    *string `json:"image"`
}

// Update PUT /api/v1/post/update/:postId
// 只有作者本人可改；slug 创建后不可变，不接受修改
func (h *PostHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	postID, okID := utils.StringToUint(c.Param("postId"))
	if !okID {
		failValidation(c, "invalid postId")
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	if req.Title == nil && req.Category == nil && req.Content == nil && req.Image == nil {
		failValidation(c, "no fields to update")
		return
	}
	if req.Title != nil && *req.Title == "" {
		failValidation(c, "title cannot be empty")
		return
	}
	if req.Content != nil && *req.Content == "" {
		failValidation(c, "content cannot be empty")
		return
	}

	post, err := h.store.UpdatePostOwned(c.Request.Context(), postID, user.ID, storage.PostUpdate{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Image:    req.Image,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Post updated successfully", post)
}

// Delete DELETE /api/v1/post/delete/:postId
// 归属不匹配与不存在同样返回 not_found，不泄露文章归属；
// 评论不级联删除，由列表接口对孤儿评论自然屏蔽
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	postID, okID := utils.StringToUint(c.Param("postId"))
	if !okID {
		failValidation(c, "invalid postId")
		return
	}

	if err := h.store.DeletePostOwned(c.Request.Context(), postID, user.ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Post deleted successfully", gin.H{})
}

type previewRequest struct {
	Content string `json:"content"`
}

// Preview POST /api/v1/post/preview
// 编辑器侧栏的 Markdown 预览，渲染结果已消毒可直接插入 DOM
func (h *PostHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	respond(c, http.StatusOK, "Preview rendered", gin.H{
		"html": utils.RenderMarkdown(req.Content),
	})
}

type previewDraftRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// PreviewDraft POST /api/v1/post/preview-draft
// 生成正文草稿填充编辑区，作者确认后才随 create 提交发布
func (h *PostHandler) PreviewDraft(c *gin.Context) {
	var req previewDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	if req.Title == "" || req.Category == "" {
		failValidation(c, "title and category are required")
		return
	}

	draft, err := h.assist.GenerateDraft(c.Request.Context(), req.Title, req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Draft generated successfully", gin.H{
		"content": draft,
	})
}
