package models

// Student is the learner profile, created lazily on first enrollment.
type Student struct {
	SoftDeleteModel
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
}

// Instructor is the teaching profile; courses hang off it.
type Instructor struct {
	SoftDeleteModel
	UserID uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Bio    string `json:"bio" gorm:"type:text"`
}
