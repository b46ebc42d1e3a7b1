package storage

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/models"
)

var (
	// ErrNotFound 记录不存在，或存在但不属于当前请求的用户
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 唯一字段冲突（email、slug）
	ErrDuplicate = errors.New("duplicate record")
)

// OrderAsc / OrderDesc Feed 排序方向，按最后更新时间
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DefaultFeedLimit 未指定 limit 时的默认分页大小
const DefaultFeedLimit = 100

// FeedQuery 显式的过滤条件集合，零值字段表示"无约束"。
// 所有条件按 AND 组合；SearchTerm 对标题和正文做大小写不敏感的子串匹配。
type FeedQuery struct {
	Category   string
	Slug       string
	PostID     uint
	UserID     uint // 限定到某个作者（仪表盘）
	SearchTerm string
	Order      string // OrderAsc / OrderDesc，默认 desc
	StartIndex int
	Limit      int
}

// PostUpdate 文章更新字段，nil 表示不修改。Slug 不在其中：创建后不可变。
type PostUpdate struct {
	Title    *string
	Category *string
	Content  *string
	Image    *string
}

// Storage 持久层契约。关联（作者）由实现解析为类型化字段，
// 调用方不依赖任何运行时 populate 行为。
type Storage interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Posts
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	// FindPosts 返回一页按 updated_at 排序的文章，作者已解析。
	FindPosts(ctx context.Context, q FeedQuery) ([]models.Post, error)
	// CountPosts 统计命中条数，忽略分页。
	CountPosts(ctx context.Context, q FeedQuery) (int64, error)
	// CountPostsCreatedSince 统计 since 之后创建的命中条数，忽略分页。
	CountPostsCreatedSince(ctx context.Context, q FeedQuery, since time.Time) (int64, error)
	// IncrementViews 原子地给 slug 对应文章的浏览量 +1。
	IncrementViews(ctx context.Context, slug string) error
	// UpdatePostOwned 仅当 (postID, ownerID) 匹配时更新，否则 ErrNotFound。
	UpdatePostOwned(ctx context.Context, postID, ownerID uint, upd PostUpdate) (*models.Post, error)
	// DeletePostOwned 仅当 (postID, ownerID) 匹配时删除，否则 ErrNotFound。
	// 不级联删除评论。
	DeletePostOwned(ctx context.Context, postID, ownerID uint) error

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListCommentsByPost 按创建时间倒序返回某篇文章的全部评论。
	ListCommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	CountCommentsByPost(ctx context.Context, postID uint) (int64, error)
	// UpdateCommentOwned / DeleteCommentOwned 仅作者本人可操作，否则 ErrNotFound。
	UpdateCommentOwned(ctx context.Context, commentID, ownerID uint, content string) (*models.Comment, error)
	DeleteCommentOwned(ctx context.Context, commentID, ownerID uint) error
}
