package models

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FullName       string    `gorm:"not null" json:"fullName"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"` // bcrypt hash
	ProfilePicture string    `json:"profilePicture"`
	RefreshToken   string    `json:"-"` // 当前有效的 refresh token，用于轮换校验
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	// No DeletedAt, account removal is a hard delete
}
