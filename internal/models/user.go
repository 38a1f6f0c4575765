package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
)

func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

type User struct {
	ID         string   `json:"id" gorm:"primaryKey;size:36"`
	AuthID     string   `json:"auth_id" gorm:"uniqueIndex;not null;size:255"`
	Name       *string  `json:"name" gorm:"size:100"`
	Email      string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	ProfilePic *string  `json:"profile_pic" gorm:"size:500"`
	Role       UserRole `json:"role" gorm:"not null;size:20;default:STUDENT"`
	OnBoarded  bool     `json:"on_boarded" gorm:"default:false"`
	Bio        *string  `json:"bio,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// DisplayName returns the user's name, or the local part of the email when unset
func (u *User) DisplayName() string {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		return *u.Name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// PictureURL returns the profile picture or an empty string
func (u *User) PictureURL() string {
	if u.ProfilePic == nil {
		return ""
	}
	return *u.ProfilePic
}

// Identity is the caller's authentication subject. The zero value is anonymous.
type Identity struct {
	AuthID string `json:"auth_id,omitempty"`
}

func AnonymousIdentity() Identity {
	return Identity{}
}

func (i Identity) IsAnonymous() bool {
	return i.AuthID == ""
}

// ExternalProfile is the identity provider's view of a user, used to create the local record
type ExternalProfile struct {
	AuthID     string
	Name       string
	Email      string
	ProfilePic string
	Role       UserRole
}
