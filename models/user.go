package models

import (
	"time"
)

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username   string     `gorm:"column:username;unique" json:"username"`
	Password   string     `gorm:"column:password" json:"-"`
	Email      string     `gorm:"column:email" json:"email"`
	Role       string     `gorm:"column:role" json:"role"`
	Department string     `gorm:"column:department" json:"department"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}
