package dto

import (
	"time"

	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

// ExportSummaryResponse aggregates approved records per category.
type ExportSummaryResponse struct {
	Counts      []repository.CategoryCount `json:"counts"`
	Total       int64                      `json:"total"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// ExportRow is one flattened approved record for the host's export file.
type ExportRow struct {
	RecordID   uint                   `json:"record_id"`
	Category   models.Category        `json:"category"`
	OwnerName  string                 `json:"owner_name"`
	OwnerEmail string                 `json:"owner_email"`
	Fields     map[string]interface{} `json:"fields"`
	ReviewedBy *uint                  `json:"reviewed_by"`
	ApprovedAt time.Time              `json:"approved_at"`
}

// ExportRowsResponse carries the approved rows for one category (or all).
type ExportRowsResponse struct {
	Rows []ExportRow `json:"rows"`
}
