package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an app account; history and documents are scoped to it
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // "-" means don't include in JSON
	IsActive     bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Folders   []Folder   `json:"folders,omitempty" gorm:"foreignKey:UserID"`
	Documents []Document `json:"documents,omitempty" gorm:"foreignKey:UserID"`
}

// UserLogin represents login request
type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserRegister represents registration request
type UserRegister struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
