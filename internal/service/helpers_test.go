package service

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeRecordRepo is an in-memory RecordRepository honouring the same pending
// guard as the real one.
type fakeRecordRepo struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]models.ActivityRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[uint]models.ActivityRecord{}}
}

func (f *fakeRecordRepo) Create(_ context.Context, record *models.ActivityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record.ID = f.nextID
	record.Status = models.StatusPending
	record.ReviewerComment = nil
	record.ReviewedBy = nil
	f.records[record.ID] = *record
	return nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id uint) (models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return models.ActivityRecord{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRecordRepo) GetByOwner(_ context.Context, ownerID uint, filter repository.RecordFilter) ([]models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityRecord
	for id := uint(1); id <= f.nextID; id++ {
		record, ok := f.records[id]
		if !ok || record.OwnerID != ownerID {
			continue
		}
		if filter.Category != nil && record.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeRecordRepo) GetForReview(_ context.Context, scope repository.ReviewerScope, filter repository.RecordFilter) ([]models.ActivityRecord, error) {
	if scope.Role != models.RoleAdmin && scope.Role != models.RoleFaculty {
		return []models.ActivityRecord{}, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityRecord
	for id := uint(1); id <= f.nextID; id++ {
		record, ok := f.records[id]
		if !ok {
			continue
		}
		if filter.Category != nil && record.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeRecordRepo) UpdateFields(_ context.Context, id, ownerID uint, fields datatypes.JSONMap, documentID *uint) (models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return models.ActivityRecord{}, gorm.ErrRecordNotFound
	}
	if record.OwnerID != ownerID || record.Status != models.StatusPending {
		return models.ActivityRecord{}, repository.ErrStatusConflict
	}
	record.Fields = fields
	if documentID != nil {
		record.DocumentID = documentID
	}
	f.records[id] = record
	return record, nil
}

func (f *fakeRecordRepo) ApplyDecision(_ context.Context, id uint, status models.VerificationStatus, comment string, reviewerID uint) (models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return models.ActivityRecord{}, gorm.ErrRecordNotFound
	}
	if record.Status != models.StatusPending {
		return models.ActivityRecord{}, repository.ErrStatusConflict
	}
	record.Status = status
	record.ReviewerComment = &comment
	record.ReviewedBy = &reviewerID
	f.records[id] = record
	return record, nil
}

// fakeAccountRepo implements the assignment lookups used by reviewer scoping.
type fakeAccountRepo struct {
	assignments map[[2]uint]bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{assignments: map[[2]uint]bool{}}
}

func (f *fakeAccountRepo) assign(facultyID, studentID uint) {
	f.assignments[[2]uint{facultyID, studentID}] = true
}

func (f *fakeAccountRepo) List(context.Context, repository.AccountFilter) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeAccountRepo) GetByID(context.Context, uint) (models.User, error) {
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) Create(context.Context, *models.User) error { return nil }

func (f *fakeAccountRepo) Update(context.Context, uint, map[string]interface{}) (models.User, error) {
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) SoftDelete(context.Context, uint) error { return nil }

func (f *fakeAccountRepo) AssignStudent(_ context.Context, facultyID, studentID uint) error {
	f.assign(facultyID, studentID)
	return nil
}

func (f *fakeAccountRepo) UnassignStudent(_ context.Context, facultyID, studentID uint) error {
	delete(f.assignments, [2]uint{facultyID, studentID})
	return nil
}

func (f *fakeAccountRepo) IsAssigned(_ context.Context, facultyID, studentID uint) (bool, error) {
	return f.assignments[[2]uint{facultyID, studentID}], nil
}

// auditSink records audit entries for assertions.
type auditSink struct {
	entries []AuditEntry
}

func (a *auditSink) Record(_ context.Context, entry AuditEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}
