// Package listing implements the shared sort/filter/paginate engine applied
// to every activity record collection, independent of category.
package listing

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/veritrack/veritrack-api/internal/models"
)

// Direction orders a sorted listing ascending or descending.
type Direction string

const (
	// Ascending sorts smallest first.
	Ascending Direction = "asc"
	// Descending sorts largest first.
	Descending Direction = "desc"
)

// DefaultPageSize is used whenever the caller does not supply a page size.
const DefaultPageSize = 10

// MaxPageSize bounds caller-supplied page sizes.
const MaxPageSize = 100

// Params controls one listing pass. The engine is stateless; the caller owns
// the current sort and page between calls.
type Params struct {
	SortField     string
	SortDirection Direction
	Status        *models.VerificationStatus
	Page          int
	PageSize      int
}

// Page is one slice of a sorted record collection.
type Page struct {
	Items       []models.ActivityRecord
	TotalPages  int
	CurrentPage int
}

// Apply filters, sorts and paginates records in one pass. The input slice is
// never mutated. An unset SortField preserves the input order.
func Apply(records []models.ActivityRecord, category models.Category, params Params) Page {
	filtered := records
	if params.Status != nil {
		filtered = make([]models.ActivityRecord, 0, len(records))
		for _, record := range records {
			if record.Status == *params.Status {
				filtered = append(filtered, record)
			}
		}
	}

	ordered := make([]models.ActivityRecord, len(filtered))
	copy(ordered, filtered)

	if field := strings.TrimSpace(params.SortField); field != "" {
		if fieldType, ok := FieldTypeOf(category, field); ok {
			compare := comparator(field, fieldType)
			descending := params.SortDirection == Descending
			sort.SliceStable(ordered, func(i, j int) bool {
				result := compare(ordered[i], ordered[j])
				if descending {
					return result > 0
				}
				return result < 0
			})
		}
	}

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	totalPages := int(math.Ceil(float64(len(ordered)) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(ordered) {
		start = len(ordered)
	}
	if end > len(ordered) {
		end = len(ordered)
	}

	return Page{
		Items:       ordered[start:end],
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}

// comparator returns a three-way compare for the given field. Missing or
// unparsable values sort as the zero of their type, never panicking.
func comparator(field string, fieldType FieldType) func(a, b models.ActivityRecord) int {
	switch fieldType {
	case FieldDate:
		return func(a, b models.ActivityRecord) int {
			left := dateValue(a, field)
			right := dateValue(b, field)
			switch {
			case left.Before(right):
				return -1
			case left.After(right):
				return 1
			default:
				return 0
			}
		}
	case FieldNumber:
		return func(a, b models.ActivityRecord) int {
			left := numberValue(a, field)
			right := numberValue(b, field)
			switch {
			case left < right:
				return -1
			case left > right:
				return 1
			default:
				return 0
			}
		}
	default:
		return func(a, b models.ActivityRecord) int {
			return strings.Compare(stringValue(a, field), stringValue(b, field))
		}
	}
}

func rawValue(record models.ActivityRecord, field string) interface{} {
	switch field {
	case FieldCreatedAt:
		return record.CreatedAt
	case FieldUpdatedAt:
		return record.UpdatedAt
	case FieldStatus:
		return string(record.Status)
	}
	if record.Fields == nil {
		return nil
	}
	return record.Fields[field]
}

func dateValue(record models.ActivityRecord, field string) time.Time {
	switch v := rawValue(record, field).(type) {
	case time.Time:
		return v
	case string:
		return parseDate(v)
	default:
		return time.Time{}
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}

func parseDate(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func numberValue(record models.ActivityRecord, field string) float64 {
	switch v := rawValue(record, field).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func stringValue(record models.ActivityRecord, field string) string {
	switch v := rawValue(record, field).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return ""
	}
}
