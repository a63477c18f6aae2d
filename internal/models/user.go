package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"` // bcrypt hash, never the plaintext
	AboutMe      string    `json:"about_me" gorm:"size:140"`
	IsActivated  bool      `json:"is_activated" gorm:"not null;default:false"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

type RegisterForm struct {
	Username  string `form:"username" validate:"required,min=3,max=64,username"`
	Email     string `form:"email" validate:"required,email,max=120"`
	Password  string `form:"password" validate:"required,min=8,max=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Username   string `form:"username" validate:"required"`
	Password   string `form:"password" validate:"required"`
	RememberMe bool   `form:"remember_me"`
}

type EditProfileForm struct {
	AboutMe string `form:"about_me" validate:"max=140"`
}

type PasswordResetRequestForm struct {
	Email string `form:"email" validate:"required,email"`
}

type PasswordResetForm struct {
	Password  string `form:"password" validate:"required,min=8,max=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}
