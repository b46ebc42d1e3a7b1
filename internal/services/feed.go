package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/storage"
	"inkwell/internal/utils"
)

const (
	// AnonymousAuthor 作者无法解析时的展示名
	AnonymousAuthor = "Anonymous"
	// DefaultProfilePicture 作者无头像时的占位图
	DefaultProfilePicture = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"
)

// FeedResult 一页 Feed 数据及总量统计
type FeedResult struct {
	Posts          []models.Post `json:"posts"`
	TotalPosts     int64         `json:"totalPosts"`
	LastMonthPosts int64         `json:"lastMonthPosts"`
}

// FeedService 文章列表查询引擎：过滤、排序、分页，
// 并为每条结果补齐作者展示信息和评论数。
type FeedService struct {
	store storage.Storage
}

func NewFeedService(store storage.Storage) *FeedService {
	return &FeedService{store: store}
}

// GetFeed 执行一次 Feed 查询。
// slug 精确查询是文章详情的入口，作为副作用给浏览量 +1
// （不做访客去重，重复浏览由客户端标记抑制）。
// 空结果是正常响应，不是错误。
func (s *FeedService) GetFeed(ctx context.Context, q storage.FeedQuery) (*FeedResult, error) {
	posts, err := s.store.FindPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("feed query: %w", err)
	}

	fillAuthors(posts)
	s.fillCommentCounts(ctx, posts)

	if q.Slug != "" {
		for i := range posts {
			posts[i].ContentHTML = utils.RenderMarkdown(posts[i].Content)
		}
		// 返回的记录保持自增前的数值：先查后加
		if err := s.store.IncrementViews(ctx, q.Slug); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[feed] increment views failed (slug=%s): %v", q.Slug, err)
		}
	}

	total, err := s.store.CountPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("feed total count: %w", err)
	}

	// 近一月：按日历月回退，不是固定 30 天
	oneMonthAgo := time.Now().AddDate(0, -1, 0)
	lastMonth, err := s.store.CountPostsCreatedSince(ctx, q, oneMonthAgo)
	if err != nil {
		return nil, fmt.Errorf("feed last month count: %w", err)
	}

	if posts == nil {
		posts = []models.Post{}
	}
	return &FeedResult{
		Posts:          posts,
		TotalPosts:     total,
		LastMonthPosts: lastMonth,
	}, nil
}

// fillCommentCounts 每篇文章独立统计评论数。统计之间无顺序依赖，
// 并发执行；单篇统计失败只降级该篇为 0，不影响整页。
func (s *FeedService) fillCommentCounts(ctx context.Context, posts []models.Post) {
	var wg sync.WaitGroup
	for i := range posts {
		wg.Add(1)
		go func(p *models.Post) {
			defer wg.Done()
			count, err := s.store.CountCommentsByPost(ctx, p.ID)
			if err != nil {
				log.Printf("[feed] comment count failed (postID=%d): %v", p.ID, err)
				return
			}
			p.CommentsCount = count
		}(&posts[i])
	}
	wg.Wait()
}

// fillAuthors 解析作者展示字段，解析不到时回退占位值
func fillAuthors(posts []models.Post) {
	for i := range posts {
		p := &posts[i]
		p.Author = p.User.FullName
		if p.Author == "" {
			p.Author = AnonymousAuthor
		}
		p.ProfilePicture = p.User.ProfilePicture
		if p.ProfilePicture == "" {
			p.ProfilePicture = DefaultProfilePicture
		}
		if p.Image == "" {
			p.Image = models.DefaultPostImage
		}
	}
}
