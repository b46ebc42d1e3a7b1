package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/storage"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	store  storage.Storage
	images *services.ImageUploadService
}

func NewUserHandler(store storage.Storage, images *services.ImageUploadService) *UserHandler {
	return &UserHandler{store: store, images: images}
}

// Get GET /api/v1/user/:userId 公开的作者资料
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := utils.StringToUint(c.Param("userId"))
	if !ok {
		failValidation(c, "invalid userId")
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User fetched successfully", user)
}

// UpdateProfile PUT /api/v1/user/update
// multipart 表单，字段都可选；头像走图床，密码重新散列
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		failUnauthorized(c, "invalid or missing session")
		return
	}

	changed := false
	if fullName := c.PostForm("fullName"); fullName != "" {
		user.FullName = fullName
		changed = true
	}
	if email := c.PostForm("email"); email != "" {
		user.Email = email
		changed = true
	}
	if password := c.PostForm("password"); password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			fail(c, err)
			return
		}
		user.Password = hash
		changed = true
	}

	if file, header, err := c.Request.FormFile("profilePicture"); err == nil {
		defer file.Close()
		link, err := h.images.Upload(c.Request.Context(), file, header)
		if err != nil {
			fail(c, err)
			return
		}
		user.ProfilePicture = link
		changed = true
	}

	if !changed {
		failValidation(c, "no fields to update")
		return
	}

	if err := h.store.UpdateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			failConflict(c, "email already in use")
			return
		}
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}
