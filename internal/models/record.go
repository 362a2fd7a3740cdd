package models

import (
	"time"

	"gorm.io/datatypes"
)

// VerificationStatus is the lifecycle state of an activity record.
type VerificationStatus string

const (
	// StatusPending indicates the record awaits a reviewer decision.
	StatusPending VerificationStatus = "Pending"
	// StatusApproved indicates a reviewer accepted the record.
	StatusApproved VerificationStatus = "Approved"
	// StatusRejected indicates a reviewer declined the record.
	StatusRejected VerificationStatus = "Rejected"
)

// Valid reports whether the status is one of the three known states.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further reviewer transition is possible.
func (s VerificationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether moving from s to target is a legal transition.
// Only Pending may move, and only into a terminal state.
func (s VerificationStatus) CanTransition(target VerificationStatus) bool {
	return s == StatusPending && target.Terminal()
}

// Decision is a reviewer verdict on a pending record.
type Decision string

const (
	// DecisionApprove accepts the record.
	DecisionApprove Decision = "approve"
	// DecisionReject declines the record.
	DecisionReject Decision = "reject"
)

// Status maps the decision onto the resulting verification status.
func (d Decision) Status() (VerificationStatus, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Category partitions activity records by the kind of activity they document.
type Category string

const (
	// CategoryTechnical covers hackathons, workshops and other technical events.
	CategoryTechnical Category = "technical"
	// CategoryCultural covers cultural events and performances.
	CategoryCultural Category = "cultural"
	// CategoryClub covers club and society roles.
	CategoryClub Category = "club"
	// CategoryInternship covers internships and industry training.
	CategoryInternship Category = "internship"
	// CategoryPublication covers papers, articles and other publications.
	CategoryPublication Category = "publication"
)

// Categories lists every known record category.
func Categories() []Category {
	return []Category{CategoryTechnical, CategoryCultural, CategoryClub, CategoryInternship, CategoryPublication}
}

// Valid reports whether the category is known.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ActivityRecord is a single student-submitted activity entry under one category.
type ActivityRecord struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	OwnerID         uint               `gorm:"not null;index" json:"owner_id"`
	Category        Category           `gorm:"size:32;not null;index" json:"category"`
	Fields          datatypes.JSONMap  `gorm:"type:json" json:"fields"`
	DocumentID      *uint              `json:"document_id"`
	Status          VerificationStatus `gorm:"size:16;not null;index" json:"status"`
	ReviewerComment *string            `gorm:"type:text" json:"reviewer_comment"`
	ReviewedBy      *uint              `json:"reviewed_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Owner           User               `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner"`
	Document        *Document          `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
}

// Decided reports whether a reviewer has already ruled on the record.
func (r ActivityRecord) Decided() bool {
	return r.Status.Terminal()
}

// Editable reports whether the owner may still change fields or the document.
func (r ActivityRecord) Editable() bool {
	return r.Status == StatusPending
}
