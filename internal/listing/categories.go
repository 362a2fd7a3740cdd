package listing

import "github.com/veritrack/veritrack-api/internal/models"

// FieldType tags the semantic type of a category field for comparator dispatch.
type FieldType string

const (
	// FieldString compares as a case-sensitive lexicographic string.
	FieldString FieldType = "string"
	// FieldNumber compares numerically.
	FieldNumber FieldType = "number"
	// FieldDate compares by parsed instant.
	FieldDate FieldType = "date"
)

// FieldSpec describes one category-specific attribute of an activity record.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
}

// Synthetic sort fields available on every category in addition to the
// category-specific attributes.
const (
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldStatus    = "status"
)

var categoryFields = map[models.Category][]FieldSpec{
	models.CategoryTechnical: {
		{Name: "title", Type: FieldString, Required: true},
		{Name: "organizer", Type: FieldString, Required: true},
		{Name: "event_date", Type: FieldDate, Required: true},
		{Name: "achievement", Type: FieldString},
	},
	models.CategoryCultural: {
		{Name: "title", Type: FieldString, Required: true},
		{Name: "venue", Type: FieldString, Required: true},
		{Name: "event_date", Type: FieldDate, Required: true},
		{Name: "achievement", Type: FieldString},
	},
	models.CategoryClub: {
		{Name: "club_name", Type: FieldString, Required: true},
		{Name: "position", Type: FieldString, Required: true},
		{Name: "start_date", Type: FieldDate, Required: true},
		{Name: "end_date", Type: FieldDate},
	},
	models.CategoryInternship: {
		{Name: "company", Type: FieldString, Required: true},
		{Name: "role", Type: FieldString, Required: true},
		{Name: "start_date", Type: FieldDate, Required: true},
		{Name: "end_date", Type: FieldDate},
		{Name: "stipend", Type: FieldNumber},
	},
	models.CategoryPublication: {
		{Name: "title", Type: FieldString, Required: true},
		{Name: "journal", Type: FieldString, Required: true},
		{Name: "published_on", Type: FieldDate},
		{Name: "doi", Type: FieldString},
		{Name: "authors", Type: FieldString},
	},
}

// CategoryFields returns the attribute specification for a category.
func CategoryFields(category models.Category) []FieldSpec {
	return categoryFields[category]
}

// FieldTypeOf resolves the semantic type of a sortable field for the given
// category, including the synthetic record metadata fields.
func FieldTypeOf(category models.Category, name string) (FieldType, bool) {
	switch name {
	case FieldCreatedAt, FieldUpdatedAt:
		return FieldDate, true
	case FieldStatus:
		return FieldString, true
	}
	for _, spec := range categoryFields[category] {
		if spec.Name == name {
			return spec.Type, true
		}
	}
	return "", false
}
