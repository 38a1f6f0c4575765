package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
	ProgressCompleted  ProgressStatus = "COMPLETED"
)

type Progress struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    string         `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_progress_user_chapter"`
	ChapterID string         `json:"chapter_id" gorm:"not null;size:36;uniqueIndex:idx_progress_user_chapter;index"`
	Status    ProgressStatus `json:"status" gorm:"not null;size:20;default:IN_PROGRESS"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Progress) TableName() string {
	return "progresses"
}

func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Certificate is issued once per (course, user) and never modified afterwards
type Certificate struct {
	ID       string         `json:"id" gorm:"primaryKey;size:36"`
	Title    string         `json:"title" gorm:"not null;size:200"`
	CourseID string         `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_certificate_course_user"`
	UserID   string         `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_certificate_course_user;index"`
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CertificateMetadata snapshots the instructor at issue time
type CertificateMetadata struct {
	InstructorName string `json:"instructor_name"`
	InstructorPic  string `json:"instructor_pic,omitempty"`
	ChapterCount   int    `json:"chapter_count"`
}

func NewCertificateMetadata(meta CertificateMetadata) datatypes.JSON {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// ParseMetadata decodes the instructor snapshot; an empty snapshot yields the zero value
func (c *Certificate) ParseMetadata() (CertificateMetadata, error) {
	var meta CertificateMetadata
	if len(c.Metadata) == 0 {
		return meta, nil
	}
	err := json.Unmarshal(c.Metadata, &meta)
	return meta, err
}

// URLPath is the relative link to the public certificate page
func (c *Certificate) URLPath() string {
	return "certificate/" + c.ID
}

// CompletionNotice carries everything needed to render the completion email
type CompletionNotice struct {
	CertificateID  string `json:"certificate_id"`
	CourseID       string `json:"course_id"`
	UserID         string `json:"user_id"`
	RecipientEmail string `json:"recipient_email"`
	StudentName    string `json:"student_name"`
	CertificateURL string `json:"certificate_url"`
	CourseName     string `json:"course_name"`
	InstructorName string `json:"instructor_name"`
	InstructorPic  string `json:"instructor_pic"`
}

// NewCompletionNotice builds the notice with display-name fallbacks applied
func NewCompletionNotice(cert *Certificate, course *Course, student *User) *CompletionNotice {
	return &CompletionNotice{
		CertificateID:  cert.ID,
		CourseID:       course.ID,
		UserID:         student.ID,
		RecipientEmail: student.Email,
		StudentName:    student.DisplayName(),
		CertificateURL: cert.URLPath(),
		CourseName:     course.Title,
		InstructorName: course.Owner.DisplayName(),
		InstructorPic:  course.Owner.PictureURL(),
	}
}
