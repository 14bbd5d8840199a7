package models

import "time"

type User struct {
	SoftDeleteModel
	Name      string     `json:"name" gorm:"default:''"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null"`
	Role      string     `json:"role" gorm:"default:'USER'"` // USER, INSTRUCTOR, ADMIN
	Password  string     `json:"-" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`
}
