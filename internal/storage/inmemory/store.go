package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/storage"
)

// Store 内存版 Storage 实现，语义与 postgres 版保持一致。
// 用于测试，也可通过 STORAGE_DRIVER=memory 在本地跑起整个服务。
type Store struct {
	mu       sync.RWMutex
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment

	nextUserID    uint
	nextPostID    uint
	nextCommentID uint
}

func New() *Store {
	return &Store{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
	}
}

// === Users ===

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	for _, u := range s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// === Posts ===

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return storage.ErrDuplicate
		}
	}
	if post.Category == "" {
		post.Category = "uncategorized"
	}

	s.nextPostID++
	post.ID = s.nextPostID
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	cp := *post
	cp.User = models.User{}
	s.posts[post.ID] = &cp
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *post
	s.resolveAuthor(&cp)
	return &cp, nil
}

// matches FeedQuery 的 AND 过滤语义，与 postgres 的 applyFeedQuery 对应
func matches(p *models.Post, q storage.FeedQuery) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Slug != "" && p.Slug != q.Slug {
		return false
	}
	if q.PostID != 0 && p.ID != q.PostID {
		return false
	}
	if q.UserID != 0 && p.UserID != q.UserID {
		return false
	}
	if q.SearchTerm != "" {
		term := strings.ToLower(q.SearchTerm)
		if !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Content), term) {
			return false
		}
	}
	return true
}

func (s *Store) resolveAuthor(p *models.Post) {
	if u, ok := s.users[p.UserID]; ok {
		p.User = *u
	}
}

func (s *Store) FindPosts(ctx context.Context, q storage.FeedQuery) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Post
	for _, p := range s.posts {
		if matches(p, q) {
			cp := *p
			s.resolveAuthor(&cp)
			all = append(all, cp)
		}
	}

	asc := q.Order == storage.OrderAsc
	sort.Slice(all, func(i, j int) bool {
		if asc {
			return all[i].UpdatedAt.Before(all[j].UpdatedAt)
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	limit := q.Limit
	if limit <= 0 {
		limit = storage.DefaultFeedLimit
	}
	start := q.StartIndex
	if start < 0 {
		// 与 postgres 一致：负的 offset 当作无偏移
		start = 0
	}
	if start >= len(all) {
		return []models.Post{}, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *Store) CountPosts(ctx context.Context, q storage.FeedQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, p := range s.posts {
		if matches(p, q) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountPostsCreatedSince(ctx context.Context, q storage.FeedQuery, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, p := range s.posts {
		if matches(p, q) && !p.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) IncrementViews(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			p.Views++
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) UpdatePostOwned(ctx context.Context, postID, ownerID uint, upd storage.PostUpdate) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok || post.UserID != ownerID {
		return nil, storage.ErrNotFound
	}

	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Category != nil {
		post.Category = *upd.Category
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.Image != nil {
		post.Image = *upd.Image
	}
	post.UpdatedAt = time.Now().UTC()

	cp := *post
	s.resolveAuthor(&cp)
	return &cp, nil
}

func (s *Store) DeletePostOwned(ctx context.Context, postID, ownerID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok || post.UserID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.posts, postID)
	// 评论不级联删除
	return nil
}

// === Comments ===

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return storage.ErrNotFound
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	cp := *comment
	cp.User = models.User{}
	s.comments[comment.ID] = &cp
	return nil
}

func (s *Store) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *comment
	if u, ok := s.users[cp.UserID]; ok {
		cp.User = *u
	}
	return &cp, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			if u, ok := s.users[cp.UserID]; ok {
				cp.User = *u
			}
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) CountCommentsByPost(ctx context.Context, postID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, c := range s.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateCommentOwned(ctx context.Context, commentID, ownerID uint, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.UserID != ownerID {
		return nil, storage.ErrNotFound
	}
	comment.Content = content
	comment.UpdatedAt = time.Now().UTC()

	cp := *comment
	if u, ok := s.users[cp.UserID]; ok {
		cp.User = *u
	}
	return &cp, nil
}

func (s *Store) DeleteCommentOwned(ctx context.Context, commentID, ownerID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.UserID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}
