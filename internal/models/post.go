package models

import "time"

// Post is a tweet. Posts are immutable once created.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"size:140;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Author    User      `json:"author" gorm:"foreignKey:UserID"`
}

// TweetForm is the body of the post form on the home feed.
type TweetForm struct {
	Tweet string `form:"tweet" validate:"required,min=1,max=140"`
}
