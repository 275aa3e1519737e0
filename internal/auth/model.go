package auth

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string         `gorm:"size:100;not null;column:firstname" json:"firstname"`
	LastName  string         `gorm:"size:100;not null;column:lastname" json:"lastname"`
	Email     string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Roles     pq.StringArray `gorm:"type:text[];column:roles" json:"roles"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type LoginResponse struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"firstname"`
	LastName  string         `json:"lastname"`
	Email     string         `json:"email"`
	Roles     pq.StringArray `json:"roles"`
}
