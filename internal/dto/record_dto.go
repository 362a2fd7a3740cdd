package dto

import (
	"time"

	"github.com/veritrack/veritrack-api/internal/models"
)

// RecordCreateRequest describes the multipart payload for submitting a record.
// Field values arrive as a flat category-specific map alongside an optional
// proof document.
type RecordCreateRequest struct {
	Category models.Category        `form:"category" validate:"required"`
	Fields   map[string]interface{} `validate:"required"`
}

// RecordUpdateRequest is used by the owning student to edit a pending record.
type RecordUpdateRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required"`
}

// RecordListQuery describes the query string of a record listing.
type RecordListQuery struct {
	Category      models.Category `query:"category" validate:"required"`
	SortField     string          `query:"sort"`
	SortDirection string          `query:"direction" validate:"omitempty,oneof=asc desc"`
	Status        *string         `query:"status" validate:"omitempty,oneof=Pending Approved Rejected"`
	Page          int             `query:"page" validate:"omitempty,gte=1"`
	PageSize      int             `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// RecordResponse is returned to API clients when viewing activity records.
type RecordResponse struct {
	ID              uint                   `json:"id"`
	OwnerID         uint                   `json:"owner_id"`
	Category        models.Category        `json:"category"`
	Fields          map[string]interface{} `json:"fields"`
	DocumentRef     *string                `json:"document_ref"`
	Status          string                 `json:"status"`
	ReviewerComment *string                `json:"reviewer_comment"`
	ReviewedBy      *uint                  `json:"reviewed_by"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Owner           UserLite               `json:"owner"`
}

// UserLite summarizes an account without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RecordListResponse carries one page of a sorted record listing.
type RecordListResponse struct {
	Items       []RecordResponse `json:"items"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

// NewRecordResponse converts an ActivityRecord model into a DTO.
func NewRecordResponse(model models.ActivityRecord) RecordResponse {
	response := RecordResponse{
		ID:              model.ID,
		OwnerID:         model.OwnerID,
		Category:        model.Category,
		Fields:          model.Fields,
		Status:          string(model.Status),
		ReviewerComment: model.ReviewerComment,
		ReviewedBy:      model.ReviewedBy,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if model.Document != nil {
		ref := model.Document.PublicID
		response.DocumentRef = &ref
	}

	if model.Owner.ID != 0 {
		response.Owner = UserLite{
			ID:    model.Owner.ID,
			Name:  model.Owner.Name,
			Email: model.Owner.Email,
			Role:  model.Owner.Role,
		}
	}

	return response
}

// NewRecordResponseSlice converts record models into DTOs.
func NewRecordResponseSlice(records []models.ActivityRecord) []RecordResponse {
	responses := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewRecordResponse(record))
	}
	return responses
}
