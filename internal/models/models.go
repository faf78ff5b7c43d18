package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Firstname    string    `gorm:"not null"                 json:"firstname"`
	Lastname     string    `gorm:"not null"                 json:"lastname"`
	CreatedAt    time.Time `json:"created_at"`
}

// Worklog is one logged work session. StartTime holds the sentinel "Absent"
// for days off, in which case EndTime stays empty. ImagePath is the stored
// artifact name, empty when no image is attached.
type Worklog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	WeekNo    int       `gorm:"not null"                 json:"weekNo"`
	Date      string    `gorm:"not null"                 json:"date"`
	StartTime string    `gorm:"not null"                 json:"startTime"`
	EndTime   string    `json:"endTime"`
	Content   string    `gorm:"not null"                 json:"content"`
	ImagePath string    `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}

type GalleryImage struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index;not null"           json:"user_id"`
	Filename     string    `gorm:"not null"                 json:"filename"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func (w *Worklog) PrimaryID() uint      { return w.ID }
func (w *Worklog) OwnerID() uint        { return w.UserID }
func (w *Worklog) Artifact() string     { return w.ImagePath }
func (w *Worklog) SetArtifact(n string) { w.ImagePath = n }

func (g *GalleryImage) PrimaryID() uint      { return g.ID }
func (g *GalleryImage) OwnerID() uint        { return g.UserID }
func (g *GalleryImage) Artifact() string     { return g.Filename }
func (g *GalleryImage) SetArtifact(n string) { g.Filename = n }
