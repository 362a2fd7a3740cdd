package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

const exportSummaryCacheKey = "export:summary"

// ExportService exposes the aggregated approved-record queries used by the
// host to build export files. File generation itself stays outside the core.
type ExportService interface {
	Summary(ctx context.Context, principal Principal) (dto.ExportSummaryResponse, error)
	Rows(ctx context.Context, principal Principal, category *models.Category) (dto.ExportRowsResponse, error)
}

type exportService struct {
	repo     repository.ExportRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExportService builds the export aggregator.
func NewExportService(repo repository.ExportRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ExportService {
	return &exportService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "export_service").Logger(),
		now:      time.Now,
	}
}

func (s *exportService) Summary(ctx context.Context, principal Principal) (dto.ExportSummaryResponse, error) {
	if !principal.IsAdmin() {
		return dto.ExportSummaryResponse{}, ErrForbidden
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, exportSummaryCacheKey).Result(); err == nil {
			var response dto.ExportSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("export summary cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read export summary cache")
		}
	}

	counts, err := s.repo.ApprovedCountsByCategory(ctx)
	if err != nil {
		return dto.ExportSummaryResponse{}, err
	}

	var total int64
	for _, count := range counts {
		total += count.Total
	}

	response := dto.ExportSummaryResponse{
		Counts:      counts,
		Total:       total,
		GeneratedAt: s.now().UTC(),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, exportSummaryCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store export summary cache")
			}
		}
	}

	return response, nil
}

func (s *exportService) Rows(ctx context.Context, principal Principal, category *models.Category) (dto.ExportRowsResponse, error) {
	if !principal.IsAdmin() {
		return dto.ExportRowsResponse{}, ErrForbidden
	}
	if category != nil && !category.Valid() {
		return dto.ExportRowsResponse{}, ErrCategoryUnknown
	}

	records, err := s.repo.ApprovedRecords(ctx, category)
	if err != nil {
		return dto.ExportRowsResponse{}, err
	}

	rows := make([]dto.ExportRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, dto.ExportRow{
			RecordID:   record.ID,
			Category:   record.Category,
			OwnerName:  record.Owner.Name,
			OwnerEmail: record.Owner.Email,
			Fields:     record.Fields,
			ReviewedBy: record.ReviewedBy,
			ApprovedAt: record.UpdatedAt,
		})
	}

	return dto.ExportRowsResponse{Rows: rows}, nil
}
