package router

import (
	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/storage"

	"github.com/gin-gonic/gin"
)

// New 组装 API 路由。所有依赖在这里显式注入，handler 不碰全局状态。
func New(cfg *config.Config, store storage.Storage) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(cfg.ClientOrigin))

	// Services
	feedService := services.NewFeedService(store)
	assistService := services.NewContentAssistService(cfg)
	imageService := services.NewImageUploadService(cfg.ImgurClientID)

	// Handlers
	authHandler := handlers.NewAuthHandler(store, cfg)
	postHandler := handlers.NewPostHandler(store, feedService, assistService, imageService)
	commentHandler := handlers.NewCommentHandler(store)
	userHandler := handlers.NewUserHandler(store, imageService)

	auth := middleware.NewAuth(cfg.JWTSecret, store)

	api := r.Group("/api/v1")

	// 认证 (Auth)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh-token", authHandler.Refresh)
		authGroup.POST("/logout", auth.AuthRequired(), authHandler.Logout)
		authGroup.GET("/verify", auth.AuthRequired(), authHandler.Verify)
	}

	// 用户 (User)
	userGroup := api.Group("/user")
	{
		userGroup.GET("/:userId", userHandler.Get)
		userGroup.PUT("/update", auth.AuthRequired(), userHandler.UpdateProfile)
	}

	// 文章 (Post)
	postGroup := api.Group("/post")
	{
		postGroup.GET("/getblogs", auth.OptionalAuth(), postHandler.GetBlogs)
		postGroup.POST("/preview", postHandler.Preview)
		postGroup.POST("/preview-draft", auth.AuthRequired(), postHandler.PreviewDraft)
		postGroup.POST("/create", auth.AuthRequired(), postHandler.Create)
		postGroup.GET("/getuserblogs", auth.AuthRequired(), postHandler.GetUserBlogs)
		postGroup.PUT("/update/:postId", auth.AuthRequired(), postHandler.Update)
		postGroup.DELETE("/delete/:postId", auth.AuthRequired(), postHandler.Delete)
	}

	// 评论 (Comment)
	commentGroup := api.Group("/comment")
	{
		commentGroup.GET("/post/:postId", commentHandler.List)
		commentGroup.POST("/add", auth.AuthRequired(), commentHandler.Add)
		commentGroup.PUT("/edit/:commentId", auth.AuthRequired(), commentHandler.Edit)
		commentGroup.DELETE("/delete/:commentId", auth.AuthRequired(), commentHandler.Delete)
	}

	return r
}
