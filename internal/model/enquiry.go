package model

import (
	"time"

	"github.com/google/uuid"
)

type Enquiry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID  *uuid.UUID `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Name      string     `gorm:"type:varchar(128);not null" json:"name"`
	Email     string     `gorm:"type:varchar(320);not null;index" json:"email"`
	Phone     string     `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Message   string     `gorm:"type:text" json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Enquiry) TableName() string { return "enquiries" }
