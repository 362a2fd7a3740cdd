package dto

// DecisionRequest carries a reviewer verdict on a pending record.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Comment  string `json:"comment" validate:"omitempty,max=2000"`
}
