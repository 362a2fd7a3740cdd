package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

func setupAuditService(t *testing.T) AuditService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	require.NoError(t, db.Exec("DELETE FROM audit_logs").Error)

	return NewAuditService(repository.NewAuditLogRepository(db), validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func TestAuditServiceRecordAndList(t *testing.T) {
	svc := setupAuditService(t)

	entity := uint(12)
	require.NoError(t, svc.Record(context.Background(), AuditEntry{
		ActorID:    7,
		ActorRole:  "Faculty",
		Action:     "Record.Approved",
		EntityType: "Record",
		EntityID:   &entity,
		Metadata:   map[string]interface{}{"category": "technical"},
	}))
	require.NoError(t, svc.Record(context.Background(), AuditEntry{
		ActorID:    1,
		ActorRole:  models.RoleAdmin,
		Action:     "account.created",
		EntityType: "account",
	}))

	admin := Principal{ID: 1, Role: models.RoleAdmin}
	listing, err := svc.List(context.Background(), admin, dto.AuditListRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 2, listing.Total)

	// Actions and roles normalise to lower case on write.
	listing, err = svc.List(context.Background(), admin, dto.AuditListRequest{Action: "record.approved"})
	require.NoError(t, err)
	require.EqualValues(t, 1, listing.Total)
	require.Equal(t, "faculty", listing.Items[0].ActorRole)
	require.Equal(t, "technical", listing.Items[0].Metadata["category"])
	require.NotNil(t, listing.Items[0].EntityID)
	require.Equal(t, entity, *listing.Items[0].EntityID)
}

func TestAuditServiceRecordValidation(t *testing.T) {
	svc := setupAuditService(t)

	require.Error(t, svc.Record(context.Background(), AuditEntry{EntityType: "record"}))
	require.Error(t, svc.Record(context.Background(), AuditEntry{Action: "record.approved"}))
}

func TestAuditServiceListAdminOnly(t *testing.T) {
	svc := setupAuditService(t)

	_, err := svc.List(context.Background(), Principal{ID: 7, Role: models.RoleFaculty}, dto.AuditListRequest{})
	require.ErrorIs(t, err, ErrForbidden)
}
