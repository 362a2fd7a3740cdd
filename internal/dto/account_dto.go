package dto

import (
	"time"

	"github.com/veritrack/veritrack-api/internal/models"
)

// AccountListRequest describes the admin account listing query.
type AccountListRequest struct {
	Search   string `query:"search"`
	Role     string `query:"role" validate:"omitempty,oneof=student faculty admin"`
	Status   string `query:"status" validate:"omitempty,oneof=active inactive"`
	Sort     string `query:"sort"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// AccountCreateRequest registers a new account.
type AccountCreateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=student faculty admin"`
}

// AccountUpdateRequest mutates an existing account.
type AccountUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=255"`
	Role   *string `json:"role" validate:"omitempty,oneof=student faculty admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// AssignmentRequest links a student to a faculty reviewer.
type AssignmentRequest struct {
	FacultyID uint `json:"faculty_id" validate:"required,gt=0"`
	StudentID uint `json:"student_id" validate:"required,gt=0"`
}

// AccountResponse serializes an account for admin clients.
type AccountResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountListResponse carries one page of accounts.
type AccountListResponse struct {
	Items       []AccountResponse `json:"items"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
}

// NewAccountResponse converts a User model into a DTO.
func NewAccountResponse(model models.User) AccountResponse {
	return AccountResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      model.Role,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAccountResponseSlice converts user models into DTOs.
func NewAccountResponseSlice(users []models.User) []AccountResponse {
	responses := make([]AccountResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewAccountResponse(user))
	}
	return responses
}
