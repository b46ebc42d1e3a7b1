package models

import (
	"time"
)

// DefaultPostImage 未上传封面时的占位图
const DefaultPostImage = "https://images.unsplash.com/photo-1453928582365-b6ad33cbcf64?q=80&w=2073&auto=format&fit=crop"

type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"` // 创建时由标题生成，之后不可变
	Category      string    `gorm:"default:'uncategorized'" json:"category"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Image         string    `json:"image"`
	Views         int       `gorm:"default:0" json:"views"` // 浏览量，slug 查询时 +1
	IsAIGenerated bool      `gorm:"default:false" json:"isAIGenerated"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// 非数据库字段，查询时由 Feed 层填充
	Author         string `gorm:"-" json:"author"`
	ProfilePicture string `gorm:"-" json:"profilePicture"`
	CommentsCount  int64  `gorm:"-" json:"commentsCount"`
	ContentHTML    string `gorm:"-" json:"contentHtml,omitempty"` // 仅 slug 精确查询时渲染
}
