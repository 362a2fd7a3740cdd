package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/observability"
	"github.com/veritrack/veritrack-api/internal/repository"
)

// ReviewService applies reviewer decisions to pending records.
type ReviewService interface {
	SubmitDecision(ctx context.Context, recordID uint, principal Principal, payload dto.DecisionRequest) (dto.RecordResponse, error)
}

type reviewService struct {
	records   repository.RecordRepository
	accounts  repository.AccountRepository
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(records repository.RecordRepository, accounts repository.AccountRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) ReviewService {
	return &reviewService{
		records:   records,
		accounts:  accounts,
		validator: validator,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) SubmitDecision(ctx context.Context, recordID uint, principal Principal, payload dto.DecisionRequest) (dto.RecordResponse, error) {
	tracer := otel.Tracer("github.com/veritrack/veritrack-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.decision")
	span.SetAttributes(
		attribute.Int64("review.record_id", int64(recordID)),
		attribute.Int64("review.reviewer_id", int64(principal.ID)),
		attribute.String("review.decision", payload.Decision),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.RecordResponse{}, err
	}

	// Resolve the record before any permission check so probing an unknown
	// id reports NotFound regardless of the caller's role.
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "record_not_found")
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "record_lookup_failed")
		return dto.RecordResponse{}, err
	}

	if !principal.CanReview() {
		span.SetStatus(codes.Error, "forbidden")
		return dto.RecordResponse{}, ErrForbidden
	}

	target, ok := models.Decision(payload.Decision).Status()
	if !ok {
		span.SetStatus(codes.Error, "invalid_decision")
		return dto.RecordResponse{}, ErrInvalidTransition
	}

	within, err := s.withinScope(ctx, principal, record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scope_check_failed")
		return dto.RecordResponse{}, err
	}
	if !within {
		span.SetStatus(codes.Error, "out_of_scope")
		return dto.RecordResponse{}, ErrForbidden
	}

	if !record.Status.CanTransition(target) {
		observability.ReviewDecisions().WithLabelValues(payload.Decision, "conflict").Inc()
		span.SetStatus(codes.Error, "already_decided")
		return dto.RecordResponse{}, ErrDecisionConflict
	}

	comment := s.sanitizer.Sanitize(strings.TrimSpace(payload.Comment))

	updated, err := s.records.ApplyDecision(ctx, recordID, target, comment, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			observability.ReviewDecisions().WithLabelValues(payload.Decision, "conflict").Inc()
			span.SetStatus(codes.Error, "already_decided")
			return dto.RecordResponse{}, ErrDecisionConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision_persist_failed")
		return dto.RecordResponse{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorID:    principal.ID,
			ActorRole:  principal.Role,
			Action:     "record." + strings.ToLower(string(target)),
			EntityType: "record",
			EntityID:   &updated.ID,
			Metadata: map[string]interface{}{
				"owner_id": updated.OwnerID,
				"category": string(updated.Category),
				"decision": payload.Decision,
			},
		})
	}

	observability.ReviewDecisions().WithLabelValues(payload.Decision, "applied").Inc()
	span.SetAttributes(attribute.String("review.status", string(updated.Status)))

	return dto.NewRecordResponse(updated), nil
}

func (s *reviewService) withinScope(ctx context.Context, principal Principal, record models.ActivityRecord) (bool, error) {
	switch {
	case principal.IsAdmin():
		return true, nil
	case principal.IsFaculty():
		return s.accounts.IsAssigned(ctx, principal.ID, record.OwnerID)
	default:
		return false, nil
	}
}
