package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string         `gorm:"type:varchar(256);not null" json:"title"`
	Slug        string         `gorm:"type:varchar(256);uniqueIndex;not null" json:"slug"`
	Category    string         `gorm:"type:varchar(64);index;not null" json:"category"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null;default:0" json:"price_cents"`
	Published   bool           `gorm:"not null;default:false" json:"published"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Course) TableName() string { return "courses" }

// CourseFilter narrows course listings. Zero values mean "no filter".
type CourseFilter struct {
	Category string
	Limit    int
	Offset   int
}
