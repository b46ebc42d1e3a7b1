package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store 基于 PostgreSQL 的 Storage 实现
type Store struct {
	db *gorm.DB
}

// New 连接数据库并执行迁移
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true, // 唯一索引冲突翻译为 gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migration completed")

	return &Store{db: db}, nil
}

// translate 将 GORM 错误映射为 storage 层的哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	default:
		return err
	}
}

// applyFeedQuery 把 FeedQuery 逐项拼到查询上，缺省字段不加约束
func applyFeedQuery(tx *gorm.DB, q storage.FeedQuery) *gorm.DB {
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Slug != "" {
		tx = tx.Where("slug = ?", q.Slug)
	}
	if q.PostID != 0 {
		tx = tx.Where("id = ?", q.PostID)
	}
	if q.UserID != 0 {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.SearchTerm != "" {
		pattern := "%" + q.SearchTerm + "%"
		tx = tx.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}
	return tx
}

// === Users ===

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

// === Posts ===

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.db.WithContext(ctx).Create(post).Error)
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) FindPosts(ctx context.Context, q storage.FeedQuery) ([]models.Post, error) {
	order := "updated_at DESC"
	if q.Order == storage.OrderAsc {
		order = "updated_at ASC"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = storage.DefaultFeedLimit
	}

	var posts []models.Post
	err := applyFeedQuery(s.db.WithContext(ctx).Model(&models.Post{}), q).
		Preload("User").
		Order(order).
		Offset(q.StartIndex).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func (s *Store) CountPosts(ctx context.Context, q storage.FeedQuery) (int64, error) {
	var count int64
	err := applyFeedQuery(s.db.WithContext(ctx).Model(&models.Post{}), q).Count(&count).Error
	return count, translate(err)
}

func (s *Store) CountPostsCreatedSince(ctx context.Context, q storage.FeedQuery, since time.Time) (int64, error) {
	var count int64
	err := applyFeedQuery(s.db.WithContext(ctx).Model(&models.Post{}), q).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, translate(err)
}

// IncrementViews 原子加一，避免并发浏览时丢失更新
func (s *Store) IncrementViews(ctx context.Context, slug string) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ?", slug).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePostOwned(ctx context.Context, postID, ownerID uint, upd storage.PostUpdate) (*models.Post, error) {
	updates := make(map[string]interface{})
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Category != nil {
		updates["category"] = *upd.Category
	}
	if upd.Content != nil {
		updates["content"] = *upd.Content
	}
	if upd.Image != nil {
		updates["image"] = *upd.Image
	}

	// (id, user_id) 联合限定：非本人一律 ErrNotFound，不泄露文章是否存在
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Post{}).
			Where("id = ? AND user_id = ?", postID, ownerID).
			Updates(updates)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, storage.ErrNotFound
		}
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").
		Where("id = ? AND user_id = ?", postID, ownerID).
		First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) DeletePostOwned(ctx context.Context, postID, ownerID uint) error {
	// 硬删除，评论不级联（孤儿评论保留）
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", postID, ownerID).
		Delete(&models.Post{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === Comments ===

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.db.WithContext(ctx).Create(comment).Error)
}

func (s *Store) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

func (s *Store) CountCommentsByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, translate(err)
}

func (s *Store) UpdateCommentOwned(ctx context.Context, commentID, ownerID uint, content string) (*models.Comment, error) {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", commentID, ownerID).
		Update("content", content)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, commentID).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) DeleteCommentOwned(ctx context.Context, commentID, ownerID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, ownerID).
		Delete(&models.Comment{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
