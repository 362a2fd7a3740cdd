package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/listing"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

// RecordService orchestrates submission, editing and listing of activity
// records. Reviewer decisions live in ReviewService.
type RecordService interface {
	Submit(ctx context.Context, principal Principal, payload dto.RecordCreateRequest, document *multipart.FileHeader) (dto.RecordResponse, error)
	UpdateFields(ctx context.Context, principal Principal, recordID uint, payload dto.RecordUpdateRequest, document *multipart.FileHeader) (dto.RecordResponse, error)
	ListOwned(ctx context.Context, principal Principal, query dto.RecordListQuery) (dto.RecordListResponse, error)
	ListForReview(ctx context.Context, principal Principal, query dto.RecordListQuery) (dto.RecordListResponse, error)
	Get(ctx context.Context, principal Principal, recordID uint) (dto.RecordResponse, error)
}

type recordService struct {
	records   repository.RecordRepository
	accounts  repository.AccountRepository
	documents DocumentService
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	pageSize  int
	tracer    trace.Tracer
}

// NewRecordService constructs the record service. defaultPageSize falls back
// to the listing engine default when non-positive.
func NewRecordService(records repository.RecordRepository, accounts repository.AccountRepository, documents DocumentService, audit AuditRecorder, defaultPageSize int, logger zerolog.Logger) RecordService {
	if defaultPageSize <= 0 {
		defaultPageSize = listing.DefaultPageSize
	}
	return &recordService{
		records:   records,
		accounts:  accounts,
		documents: documents,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "record_service").Logger(),
		pageSize:  defaultPageSize,
		tracer:    otel.Tracer("github.com/veritrack/veritrack-api/internal/service/record"),
	}
}

func (s *recordService) Submit(ctx context.Context, principal Principal, payload dto.RecordCreateRequest, document *multipart.FileHeader) (dto.RecordResponse, error) {
	ctx, span := s.tracer.Start(ctx, "record.submit")
	span.SetAttributes(
		attribute.Int64("record.owner_id", int64(principal.ID)),
		attribute.String("record.category", string(payload.Category)),
	)
	defer span.End()

	if !principal.IsStudent() {
		span.SetStatus(codes.Error, "forbidden")
		return dto.RecordResponse{}, ErrForbidden
	}

	fields, err := s.validateFields(payload.Category, payload.Fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.RecordResponse{}, err
	}

	record := models.ActivityRecord{
		OwnerID:  principal.ID,
		Category: payload.Category,
		Fields:   fields,
	}

	if document != nil {
		stored, err := s.documents.Store(ctx, principal, document)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "document store failed")
			return dto.RecordResponse{}, err
		}
		record.DocumentID = &stored.ID
	}

	if err := s.records.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.RecordResponse{}, err
	}

	created, err := s.records.GetByID(ctx, record.ID)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorID:    principal.ID,
			ActorRole:  principal.Role,
			Action:     "record.submitted",
			EntityType: "record",
			EntityID:   &created.ID,
			Metadata: map[string]interface{}{
				"category": string(created.Category),
			},
		})
	}

	span.SetStatus(codes.Ok, "submitted")
	return dto.NewRecordResponse(created), nil
}

func (s *recordService) UpdateFields(ctx context.Context, principal Principal, recordID uint, payload dto.RecordUpdateRequest, document *multipart.FileHeader) (dto.RecordResponse, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		return dto.RecordResponse{}, err
	}

	if record.OwnerID != principal.ID {
		return dto.RecordResponse{}, ErrForbidden
	}
	if !record.Editable() {
		return dto.RecordResponse{}, ErrRecordNotEditable
	}

	fields, err := s.validateFields(record.Category, payload.Fields)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	// A new document replaces the current one; the pending guard below still
	// decides whether the edit lands.
	var documentID *uint
	if document != nil {
		stored, err := s.documents.Store(ctx, principal, document)
		if err != nil {
			return dto.RecordResponse{}, err
		}
		documentID = &stored.ID
	}

	updated, err := s.records.UpdateFields(ctx, recordID, principal.ID, fields, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return dto.RecordResponse{}, ErrRecordNotEditable
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		return dto.RecordResponse{}, err
	}

	return dto.NewRecordResponse(updated), nil
}

func (s *recordService) ListOwned(ctx context.Context, principal Principal, query dto.RecordListQuery) (dto.RecordListResponse, error) {
	if !query.Category.Valid() {
		return dto.RecordListResponse{}, ErrCategoryUnknown
	}

	category := query.Category
	records, err := s.records.GetByOwner(ctx, principal.ID, repository.RecordFilter{Category: &category})
	if err != nil {
		return dto.RecordListResponse{}, err
	}

	return s.paginate(records, category, query), nil
}

func (s *recordService) ListForReview(ctx context.Context, principal Principal, query dto.RecordListQuery) (dto.RecordListResponse, error) {
	if !principal.CanReview() {
		return dto.RecordListResponse{}, ErrForbidden
	}
	if !query.Category.Valid() {
		return dto.RecordListResponse{}, ErrCategoryUnknown
	}

	category := query.Category
	scope := repository.ReviewerScope{ReviewerID: principal.ID, Role: principal.Role}
	records, err := s.records.GetForReview(ctx, scope, repository.RecordFilter{Category: &category})
	if err != nil {
		return dto.RecordListResponse{}, err
	}

	return s.paginate(records, category, query), nil
}

func (s *recordService) Get(ctx context.Context, principal Principal, recordID uint) (dto.RecordResponse, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		return dto.RecordResponse{}, err
	}

	if record.OwnerID != principal.ID {
		within, err := s.withinReviewerScope(ctx, principal, record)
		if err != nil {
			return dto.RecordResponse{}, err
		}
		if !within {
			return dto.RecordResponse{}, ErrForbidden
		}
	}

	return dto.NewRecordResponse(record), nil
}

func (s *recordService) paginate(records []models.ActivityRecord, category models.Category, query dto.RecordListQuery) dto.RecordListResponse {
	params := listing.Params{
		SortField:     query.SortField,
		SortDirection: listing.Direction(query.SortDirection),
		Page:          query.Page,
		PageSize:      query.PageSize,
	}
	if params.PageSize <= 0 {
		params.PageSize = s.pageSize
	}
	if query.Status != nil {
		status := models.VerificationStatus(*query.Status)
		params.Status = &status
	}

	page := listing.Apply(records, category, params)
	return dto.RecordListResponse{
		Items:       dto.NewRecordResponseSlice(page.Items),
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}

func (s *recordService) withinReviewerScope(ctx context.Context, principal Principal, record models.ActivityRecord) (bool, error) {
	switch {
	case principal.IsAdmin():
		return true, nil
	case principal.IsFaculty():
		return s.accounts.IsAssigned(ctx, principal.ID, record.OwnerID)
	default:
		return false, nil
	}
}

// validateFields checks a raw payload against the category field specs and
// returns the cleaned map persisted on the record.
func (s *recordService) validateFields(category models.Category, raw map[string]interface{}) (datatypes.JSONMap, error) {
	if !category.Valid() {
		return nil, ErrCategoryUnknown
	}

	specs := listing.CategoryFields(category)
	cleaned := datatypes.JSONMap{}

	for _, spec := range specs {
		value := raw[spec.Name]
		text := strings.TrimSpace(stringify(value))

		if text == "" {
			if spec.Required {
				return nil, &FieldValidationError{Field: spec.Name, Reason: "required"}
			}
			continue
		}

		switch spec.Type {
		case listing.FieldDate:
			if !parseableDate(text) {
				return nil, &FieldValidationError{Field: spec.Name, Reason: "not a valid date"}
			}
			cleaned[spec.Name] = text
		case listing.FieldNumber:
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, &FieldValidationError{Field: spec.Name, Reason: "not a number"}
			}
			cleaned[spec.Name] = text
		default:
			cleaned[spec.Name] = s.sanitizer.Sanitize(text)
		}
	}

	for key := range raw {
		if !knownField(specs, key) {
			return nil, &FieldValidationError{Field: key, Reason: "not defined for this category"}
		}
	}

	return cleaned, nil
}

func knownField(specs []listing.FieldSpec, name string) bool {
	for _, spec := range specs {
		if spec.Name == name {
			return true
		}
	}
	return false
}

func parseableDate(value string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
