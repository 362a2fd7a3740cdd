package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

// AdminAccountService encapsulates account administration: listing, role and
// status changes, soft deletion, and the faculty-to-student assignments that
// define reviewer scope.
type AdminAccountService interface {
	List(ctx context.Context, principal Principal, req dto.AccountListRequest) (dto.AccountListResponse, error)
	Create(ctx context.Context, principal Principal, req dto.AccountCreateRequest) (dto.AccountResponse, error)
	Update(ctx context.Context, principal Principal, accountID uint, req dto.AccountUpdateRequest) (dto.AccountResponse, error)
	Delete(ctx context.Context, principal Principal, accountID uint) error
	Assign(ctx context.Context, principal Principal, req dto.AssignmentRequest) error
	Unassign(ctx context.Context, principal Principal, req dto.AssignmentRequest) error
}

type adminAccountService struct {
	repo      repository.AccountRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewAdminAccountService constructs the account administration service.
func NewAdminAccountService(repo repository.AccountRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AdminAccountService {
	return &adminAccountService{
		repo:      repo,
		validator: validator,
		audit:     audit,
		logger:    logger.With().Str("component", "admin_account_service").Logger(),
	}
}

func (s *adminAccountService) List(ctx context.Context, principal Principal, req dto.AccountListRequest) (dto.AccountListResponse, error) {
	if !principal.IsAdmin() {
		return dto.AccountListResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AccountListResponse{}, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	users, total, err := s.repo.List(ctx, repository.AccountFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     req.Role,
		Status:   req.Status,
		Sort:     sanitizeAccountSort(req.Sort),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.AccountListResponse{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	return dto.AccountListResponse{
		Items:       dto.NewAccountResponseSlice(users),
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *adminAccountService) Create(ctx context.Context, principal Principal, req dto.AccountCreateRequest) (dto.AccountResponse, error) {
	if !principal.IsAdmin() {
		return dto.AccountResponse{}, ErrForbidden
	}

	// Normalize before validation so padded but valid addresses pass the
	// email tag.
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return dto.AccountResponse{}, err
	}

	user := models.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: models.AccountStatusActive,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.AccountResponse{}, err
	}

	s.recordAudit(ctx, principal, "account.created", user.ID, map[string]interface{}{"role": user.Role})

	return dto.NewAccountResponse(user), nil
}

func (s *adminAccountService) Update(ctx context.Context, principal Principal, accountID uint, req dto.AccountUpdateRequest) (dto.AccountResponse, error) {
	if !principal.IsAdmin() {
		return dto.AccountResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AccountResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	user, err := s.repo.Update(ctx, accountID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	s.recordAudit(ctx, principal, "account.updated", user.ID, map[string]interface{}{"changes": len(updates)})

	return dto.NewAccountResponse(user), nil
}

func (s *adminAccountService) Delete(ctx context.Context, principal Principal, accountID uint) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.recordAudit(ctx, principal, "account.deleted", accountID, nil)
	return nil
}

func (s *adminAccountService) Assign(ctx context.Context, principal Principal, req dto.AssignmentRequest) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	faculty, err := s.repo.GetByID(ctx, req.FacultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if faculty.Role != models.RoleFaculty {
		return ErrForbidden
	}

	student, err := s.repo.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if student.Role != models.RoleStudent {
		return ErrForbidden
	}

	if err := s.repo.AssignStudent(ctx, req.FacultyID, req.StudentID); err != nil {
		return err
	}

	s.recordAudit(ctx, principal, "assignment.created", req.StudentID, map[string]interface{}{"faculty_id": req.FacultyID})
	return nil
}

func (s *adminAccountService) Unassign(ctx context.Context, principal Principal, req dto.AssignmentRequest) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	if err := s.repo.UnassignStudent(ctx, req.FacultyID, req.StudentID); err != nil {
		return err
	}

	s.recordAudit(ctx, principal, "assignment.removed", req.StudentID, map[string]interface{}{"faculty_id": req.FacultyID})
	return nil
}

func (s *adminAccountService) recordAudit(ctx context.Context, principal Principal, action string, entityID uint, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	id := entityID
	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:    principal.ID,
		ActorRole:  principal.Role,
		Action:     action,
		EntityType: "account",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

// sanitizeAccountSort restricts ordering to known columns to keep the raw
// Order clause safe.
func sanitizeAccountSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "name":
		return "name ASC"
	case "name_desc":
		return "name DESC"
	case "email":
		return "email ASC"
	case "created_at":
		return "created_at ASC"
	case "created_at_desc", "":
		return "created_at DESC"
	default:
		return "created_at DESC"
	}
}
