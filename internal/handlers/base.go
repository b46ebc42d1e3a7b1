package handlers

import (
	"errors"
	"log"
	"net/http"

	"inkwell/internal/services"
	"inkwell/internal/storage"

	"github.com/gin-gonic/gin"
)

// respond 统一成功响应包装，结构与 SPA 客户端约定的 ApiResponse 一致
func respond(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{
		"success":    true,
		"statusCode": code,
		"message":    message,
		"data":       data,
	})
}

func respondError(c *gin.Context, code int, kind, message string) {
	c.JSON(code, gin.H{
		"success":    false,
		"statusCode": code,
		"error":      gin.H{"kind": kind, "message": message},
	})
}

func failValidation(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "validation", message)
}

func failUnauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, "unauthorized", message)
}

func failNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, "not_found", message)
}

func failConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, "conflict", message)
}

func failUpstream(c *gin.Context, message string) {
	respondError(c, http.StatusBadGateway, "upstream_failure", message)
}

// fail 将数据层/服务层错误映射为响应边界的错误分类，
// 存储细节不外露给客户端
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		failNotFound(c, "resource not found")
	case errors.Is(err, storage.ErrDuplicate):
		failConflict(c, "duplicate resource")
	case errors.Is(err, services.ErrGenerationFailed):
		failUpstream(c, "content generation failed")
	case errors.Is(err, services.ErrUploadFailed):
		failUpstream(c, "image upload failed")
	default:
		log.Printf("[http] unexpected error: %v", err)
		respondError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}
