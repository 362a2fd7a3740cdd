package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
)

func newRecordService(records *fakeRecordRepo, accounts *fakeAccountRepo, audit AuditRecorder) RecordService {
	return NewRecordService(records, accounts, nil, audit, 10, testLogger())
}

func TestRecordServiceSubmit(t *testing.T) {
	records := newFakeRecordRepo()
	audit := &auditSink{}
	svc := newRecordService(records, newFakeAccountRepo(), audit)

	student := Principal{ID: 1, Role: models.RoleStudent}
	resp, err := svc.Submit(context.Background(), student, dto.RecordCreateRequest{
		Category: models.CategoryTechnical,
		Fields: map[string]interface{}{
			"title":      "Hackathon",
			"organizer":  "ACM",
			"event_date": "2025-02-01",
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, string(models.StatusPending), resp.Status)
	require.Equal(t, uint(1), resp.OwnerID)
	require.Equal(t, "Hackathon", resp.Fields["title"])
	require.Nil(t, resp.ReviewerComment)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "record.submitted", audit.entries[0].Action)
}

func TestRecordServiceSubmitRequiresStudent(t *testing.T) {
	svc := newRecordService(newFakeRecordRepo(), newFakeAccountRepo(), nil)

	_, err := svc.Submit(context.Background(), Principal{ID: 7, Role: models.RoleFaculty}, dto.RecordCreateRequest{
		Category: models.CategoryTechnical,
		Fields:   map[string]interface{}{"title": "t", "organizer": "o", "event_date": "2025-01-01"},
	}, nil)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRecordServiceSubmitFieldValidation(t *testing.T) {
	svc := newRecordService(newFakeRecordRepo(), newFakeAccountRepo(), nil)
	student := Principal{ID: 1, Role: models.RoleStudent}

	cases := []struct {
		name   string
		fields map[string]interface{}
		field  string
	}{
		{
			name:   "missing required",
			fields: map[string]interface{}{"title": "t", "event_date": "2025-01-01"},
			field:  "organizer",
		},
		{
			name:   "bad date",
			fields: map[string]interface{}{"title": "t", "organizer": "o", "event_date": "next tuesday"},
			field:  "event_date",
		},
		{
			name:   "unknown field",
			fields: map[string]interface{}{"title": "t", "organizer": "o", "event_date": "2025-01-01", "stipend": "100"},
			field:  "stipend",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), student, dto.RecordCreateRequest{
				Category: models.CategoryTechnical,
				Fields:   tc.fields,
			}, nil)
			var fieldErr *FieldValidationError
			require.ErrorAs(t, err, &fieldErr)
			require.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestRecordServiceSubmitUnknownCategory(t *testing.T) {
	svc := newRecordService(newFakeRecordRepo(), newFakeAccountRepo(), nil)

	_, err := svc.Submit(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, dto.RecordCreateRequest{
		Category: models.Category("sports"),
		Fields:   map[string]interface{}{"title": "t"},
	}, nil)
	require.ErrorIs(t, err, ErrCategoryUnknown)
}

func TestRecordServiceSubmitNumericValidation(t *testing.T) {
	svc := newRecordService(newFakeRecordRepo(), newFakeAccountRepo(), nil)
	student := Principal{ID: 1, Role: models.RoleStudent}

	_, err := svc.Submit(context.Background(), student, dto.RecordCreateRequest{
		Category: models.CategoryInternship,
		Fields: map[string]interface{}{
			"company":    "Initech",
			"role":       "intern",
			"start_date": "2025-05-01",
			"stipend":    "lots",
		},
	}, nil)
	var fieldErr *FieldValidationError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "stipend", fieldErr.Field)

	resp, err := svc.Submit(context.Background(), student, dto.RecordCreateRequest{
		Category: models.CategoryInternship,
		Fields: map[string]interface{}{
			"company":    "Initech",
			"role":       "intern",
			"start_date": "2025-05-01",
			"stipend":    "1200.50",
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "1200.50", resp.Fields["stipend"])
}

func TestRecordServiceSubmitSanitizesStrings(t *testing.T) {
	svc := newRecordService(newFakeRecordRepo(), newFakeAccountRepo(), nil)

	resp, err := svc.Submit(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, dto.RecordCreateRequest{
		Category: models.CategoryTechnical,
		Fields: map[string]interface{}{
			"title":      "<b>Hackathon</b>",
			"organizer":  "ACM<script>x()</script>",
			"event_date": "2025-02-01",
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Hackathon", resp.Fields["title"])
	require.Equal(t, "ACM", resp.Fields["organizer"])
}

func TestRecordServiceUpdateFields(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newRecordService(records, newFakeAccountRepo(), nil)
	student := Principal{ID: 1, Role: models.RoleStudent}

	created, err := svc.Submit(context.Background(), student, dto.RecordCreateRequest{
		Category: models.CategoryTechnical,
		Fields:   map[string]interface{}{"title": "t", "organizer": "o", "event_date": "2025-01-01"},
	}, nil)
	require.NoError(t, err)

	updated, err := svc.UpdateFields(context.Background(), student, created.ID, dto.RecordUpdateRequest{
		Fields: map[string]interface{}{"title": "t2", "organizer": "o", "event_date": "2025-01-02"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "t2", updated.Fields["title"])

	// Another student may not edit the record.
	_, err = svc.UpdateFields(context.Background(), Principal{ID: 2, Role: models.RoleStudent}, created.ID, dto.RecordUpdateRequest{
		Fields: map[string]interface{}{"title": "x", "organizer": "o", "event_date": "2025-01-02"},
	}, nil)
	require.ErrorIs(t, err, ErrForbidden)

	// Decided records are frozen.
	_, err = records.ApplyDecision(context.Background(), created.ID, models.StatusApproved, "", 7)
	require.NoError(t, err)
	_, err = svc.UpdateFields(context.Background(), student, created.ID, dto.RecordUpdateRequest{
		Fields: map[string]interface{}{"title": "x", "organizer": "o", "event_date": "2025-01-02"},
	}, nil)
	require.ErrorIs(t, err, ErrRecordNotEditable)
}

func TestRecordServiceUpdateReplacesDocument(t *testing.T) {
	records := newFakeRecordRepo()
	accounts := newFakeAccountRepo()
	documents := NewDocumentService(&documentStorageStub{}, newDocumentRepoStub(), accounts, 5, testLogger())
	svc := NewRecordService(records, accounts, documents, nil, 10, testLogger())
	student := Principal{ID: 1, Role: models.RoleStudent}

	created, err := svc.Submit(context.Background(), student, dto.RecordCreateRequest{
		Category: models.CategoryTechnical,
		Fields:   map[string]interface{}{"title": "t", "organizer": "o", "event_date": "2025-01-01"},
	}, nil)
	require.NoError(t, err)
	require.Nil(t, created.DocumentRef)

	// A pending record accepts proof attached after submission.
	_, err = svc.UpdateFields(context.Background(), student, created.ID, dto.RecordUpdateRequest{
		Fields: map[string]interface{}{"title": "t", "organizer": "o", "event_date": "2025-01-01"},
	}, buildFileHeader(t, "proof.pdf", pdfBytes))
	require.NoError(t, err)

	stored, err := records.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DocumentID)
	first := *stored.DocumentID

	// A later edit replaces the reference.
	_, err = svc.UpdateFields(context.Background(), student, created.ID, dto.RecordUpdateRequest{
		Fields: map[string]interface{}{"title": "t", "organizer": "o", "event_date": "2025-01-01"},
	}, buildFileHeader(t, "proof-v2.pdf", pdfBytes))
	require.NoError(t, err)

	stored, err = records.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DocumentID)
	require.NotEqual(t, first, *stored.DocumentID)
}

func TestRecordServiceListOwnedSortsAndPages(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newRecordService(records, newFakeAccountRepo(), nil)

	for i := 1; i <= 25; i++ {
		record := models.ActivityRecord{
			OwnerID:  1,
			Category: models.CategoryTechnical,
			Fields: datatypes.JSONMap{
				"title":      "event",
				"organizer":  "ACM",
				"event_date": fmt.Sprintf("2025-01-%02d", i),
			},
		}
		require.NoError(t, records.Create(context.Background(), &record))
	}

	resp, err := svc.ListOwned(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, dto.RecordListQuery{
		Category:      models.CategoryTechnical,
		SortField:     "event_date",
		SortDirection: "desc",
		Page:          1,
	})
	require.NoError(t, err)
	require.Equal(t, 3, resp.TotalPages)
	require.Equal(t, 1, resp.CurrentPage)
	require.Len(t, resp.Items, 10)
	require.Equal(t, "2025-01-25", resp.Items[0].Fields["event_date"])
	require.Equal(t, "2025-01-16", resp.Items[9].Fields["event_date"])
}

func TestRecordServiceListForReviewStatusFilter(t *testing.T) {
	records := newFakeRecordRepo()
	accounts := newFakeAccountRepo()
	accounts.assign(7, 1)
	svc := newRecordService(records, accounts, nil)

	first := models.ActivityRecord{OwnerID: 1, Category: models.CategoryTechnical, Fields: datatypes.JSONMap{"title": "a", "organizer": "o", "event_date": "2025-01-01"}}
	require.NoError(t, records.Create(context.Background(), &first))
	second := models.ActivityRecord{OwnerID: 1, Category: models.CategoryTechnical, Fields: datatypes.JSONMap{"title": "b", "organizer": "o", "event_date": "2025-01-02"}}
	require.NoError(t, records.Create(context.Background(), &second))
	_, err := records.ApplyDecision(context.Background(), first.ID, models.StatusApproved, "", 7)
	require.NoError(t, err)

	pending := string(models.StatusPending)
	resp, err := svc.ListForReview(context.Background(), Principal{ID: 7, Role: models.RoleFaculty}, dto.RecordListQuery{
		Category: models.CategoryTechnical,
		Status:   &pending,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "b", resp.Items[0].Fields["title"])

	_, err = svc.ListForReview(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, dto.RecordListQuery{Category: models.CategoryTechnical})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRecordServiceGetVisibility(t *testing.T) {
	records := newFakeRecordRepo()
	accounts := newFakeAccountRepo()
	accounts.assign(7, 1)
	svc := newRecordService(records, accounts, nil)

	record := models.ActivityRecord{OwnerID: 1, Category: models.CategoryTechnical, Fields: datatypes.JSONMap{"title": "a", "organizer": "o", "event_date": "2025-01-01"}}
	require.NoError(t, records.Create(context.Background(), &record))

	_, err := svc.Get(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, record.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), Principal{ID: 7, Role: models.RoleFaculty}, record.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), Principal{ID: 8, Role: models.RoleFaculty}, record.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), Principal{ID: 2, Role: models.RoleStudent}, record.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), Principal{ID: 3, Role: models.RoleAdmin}, 999)
	require.ErrorIs(t, err, ErrRecordNotFound)
}
