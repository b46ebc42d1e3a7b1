package inmemory

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *models.User) {
	t.Helper()
	s := New()
	user := &models.User{FullName: "Ada Lovelace", Email: "ada@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return s, user
}

func seedPost(t *testing.T, s *Store, userID uint, title, slug, category string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:   userID,
		Title:    title,
		Slug:     slug,
		Category: category,
		Content:  "content of " + title,
	}
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.CreateUser(context.Background(), &models.User{FullName: "B", Email: "ada@example.com", Password: "x"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	s, user := newTestStore(t)
	seedPost(t, s, user.ID, "First", "first", "go")
	err := s.CreatePost(context.Background(), &models.Post{UserID: user.ID, Title: "First again", Slug: "first", Content: "x"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestFindPostsFilters(t *testing.T) {
	s, user := newTestStore(t)
	other := &models.User{FullName: "Bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), other))

	seedPost(t, s, user.ID, "Go Concurrency Patterns", "go-concurrency-patterns", "go")
	seedPost(t, s, user.ID, "Cooking Pasta", "cooking-pasta", "food")
	seedPost(t, s, other.ID, "Go Modules Guide", "go-modules-guide", "go")

	ctx := context.Background()

	// 按分类
	posts, err := s.FindPosts(ctx, storage.FeedQuery{Category: "go"})
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	// 分类 + 作者 AND 组合
	posts, err = s.FindPosts(ctx, storage.FeedQuery{Category: "go", UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "go-concurrency-patterns", posts[0].Slug)

	// 搜索词大小写不敏感，命中标题或正文
	posts, err = s.FindPosts(ctx, storage.FeedQuery{SearchTerm: "CONCURRENCY"})
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	// 无命中是空结果，不是错误
	posts, err = s.FindPosts(ctx, storage.FeedQuery{Category: "does-not-exist"})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFindPostsSortAndPagination(t *testing.T) {
	s, user := newTestStore(t)
	ctx := context.Background()

	slugs := []string{"a", "b", "c", "d", "e"}
	for _, slug := range slugs {
		seedPost(t, s, user.ID, slug, slug, "go")
		// 保证 UpdatedAt 严格递增
		time.Sleep(2 * time.Millisecond)
	}

	// 默认按更新时间倒序
	posts, err := s.FindPosts(ctx, storage.FeedQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, "e", posts[0].Slug)
	assert.Equal(t, "a", posts[4].Slug)

	// 正序
	posts, err = s.FindPosts(ctx, storage.FeedQuery{Order: storage.OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, "a", posts[0].Slug)

	// 相邻两页不重叠不遗漏
	page1, err := s.FindPosts(ctx, storage.FeedQuery{StartIndex: 0, Limit: 2})
	require.NoError(t, err)
	page2, err := s.FindPosts(ctx, storage.FeedQuery{StartIndex: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Len(t, page2, 2)
	seen := map[uint]bool{}
	for _, p := range append(page1, page2...) {
		assert.False(t, seen[p.ID], "post %d appeared twice", p.ID)
		seen[p.ID] = true
	}

	// 越界页返回空
	empty, err := s.FindPosts(ctx, storage.FeedQuery{StartIndex: 100})
	require.NoError(t, err)
	assert.Empty(t, empty)

	// 负的 startIndex 当作 0，不 panic
	posts, err = s.FindPosts(ctx, storage.FeedQuery{StartIndex: -5, Limit: 2})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "e", posts[0].Slug)
}

func TestIncrementViews(t *testing.T) {
	s, user := newTestStore(t)
	ctx := context.Background()
	seedPost(t, s, user.ID, "Viewed", "viewed", "go")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementViews(ctx, "viewed"))
	}
	posts, err := s.FindPosts(ctx, storage.FeedQuery{Slug: "viewed"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 3, posts[0].Views)

	assert.ErrorIs(t, s.IncrementViews(ctx, "missing"), storage.ErrNotFound)
}

func TestUpdatePostOwned(t *testing.T) {
	s, user := newTestStore(t)
	ctx := context.Background()
	post := seedPost(t, s, user.ID, "Original", "original", "go")

	newTitle := "Updated"
	updated, err := s.UpdatePostOwned(ctx, post.ID, user.ID, storage.PostUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
	// slug 不变
	assert.Equal(t, "original", updated.Slug)

	// 非作者更新与不存在等价
	_, err = s.UpdatePostOwned(ctx, post.ID, user.ID+99, storage.PostUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeletePostOwnedKeepsComments(t *testing.T) {
	s, user := newTestStore(t)
	ctx := context.Background()
	post := seedPost(t, s, user.ID, "Doomed", "doomed", "go")

	comment := &models.Comment{PostID: post.ID, UserID: user.ID, Content: "nice"}
	require.NoError(t, s.CreateComment(ctx, comment))

	// 非作者删除失败
	assert.ErrorIs(t, s.DeletePostOwned(ctx, post.ID, user.ID+99), storage.ErrNotFound)

	require.NoError(t, s.DeletePostOwned(ctx, post.ID, user.ID))
	_, err := s.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 评论留存为孤儿
	count, err := s.CountCommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCommentsOwnership(t *testing.T) {
	s, user := newTestStore(t)
	ctx := context.Background()
	post := seedPost(t, s, user.ID, "Commented", "commented", "go")

	comment := &models.Comment{PostID: post.ID, UserID: user.ID, Content: "first"}
	require.NoError(t, s.CreateComment(ctx, comment))

	_, err := s.UpdateCommentOwned(ctx, comment.ID, user.ID+99, "hacked")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	updated, err := s.UpdateCommentOwned(ctx, comment.ID, user.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, s.DeleteCommentOwned(ctx, comment.ID, user.ID+99), storage.ErrNotFound)
	require.NoError(t, s.DeleteCommentOwned(ctx, comment.ID, user.ID))
}

func TestListCommentsNewestFirst(t *testing.T) {
	s, user := newTestStore(t)
	ctx := context.Background()
	post := seedPost(t, s, user.ID, "Threaded", "threaded", "go")

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: post.ID, UserID: user.ID, Content: content}))
		time.Sleep(2 * time.Millisecond)
	}

	comments, err := s.ListCommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "three", comments[0].Content)
	assert.Equal(t, "one", comments[2].Content)
}
