package auth

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type AuthService struct {
	DB *gorm.DB
}

func (s *AuthService) CreateUser(user User) (*User, error) {
	if len(user.Roles) == 0 {
		user.Roles = []string{"user"}
	}

	if err := s.DB.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, errors.New("An account with this email already exists. Please log in or use a different email.")
		}
		return nil, err
	}

	return &user, nil
}

func (s *AuthService) GetUser(email string) (*User, error) {
	var user User
	result := s.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (s *AuthService) GetUserByID(id int64) (*User, error) {
	var user User
	result := s.DB.Where("id = ?", id).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}
