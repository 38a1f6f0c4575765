package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Title     string    `json:"title" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Course struct {
	ID          string   `json:"id" gorm:"primaryKey;size:36"`
	Title       string   `json:"title" gorm:"not null;size:200;index"`
	Description *string  `json:"description" gorm:"type:text"`
	ImageURL    *string  `json:"image_url" gorm:"size:500"`
	Price       *float64 `json:"price"`
	IsPublished bool     `json:"is_published" gorm:"default:false;index"`

	UserID     string  `json:"user_id" gorm:"not null;index;size:36"`
	CategoryID *string `json:"category_id" gorm:"index;size:36"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner    User      `json:"owner" gorm:"foreignKey:UserID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsOwnedBy reports whether the identity is the course's creator
func (c *Course) IsOwnedBy(identity Identity) bool {
	return !identity.IsAnonymous() && c.Owner.AuthID == identity.AuthID
}

type Chapter struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	CourseID    string `json:"course_id" gorm:"not null;index;size:36"`
	Title       string `json:"title" gorm:"not null;size:200"`
	Position    int    `json:"position" gorm:"not null;default:0"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Chapter) TableName() string {
	return "chapters"
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Access grants a user the right to view a course
type Access struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CourseID  string    `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_access_course_user"`
	UserID    string    `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_access_course_user;index"`
	CreatedAt time.Time `json:"created_at"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Access) TableName() string {
	return "accesses"
}

func (a *Access) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
