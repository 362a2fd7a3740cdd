package models

import "time"

// Document stores the metadata of an uploaded proof document. The payload
// itself lives in external storage and is addressed by URL; callers address
// documents by the opaque PublicID.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PublicID  string    `gorm:"size:64;uniqueIndex;not null" json:"public_id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
