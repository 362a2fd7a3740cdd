package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/pkg/cloudinary"
)

type documentStorageStub struct {
	uploaded bytes.Buffer
	content  []byte
	mime     string
	fetchErr error
}

func (s *documentStorageStub) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + name, nil
}

func (s *documentStorageStub) Fetch(context.Context, string) ([]byte, string, error) {
	if s.fetchErr != nil {
		return nil, "", s.fetchErr
	}
	return s.content, s.mime, nil
}

type documentRepoStub struct {
	documents map[string]models.Document
	nextID    uint
}

func newDocumentRepoStub() *documentRepoStub {
	return &documentRepoStub{documents: map[string]models.Document{}}
}

func (d *documentRepoStub) Create(_ context.Context, document *models.Document) error {
	d.nextID++
	document.ID = d.nextID
	d.documents[document.PublicID] = *document
	return nil
}

func (d *documentRepoStub) GetByID(_ context.Context, id uint) (models.Document, error) {
	for _, document := range d.documents {
		if document.ID == id {
			return document, nil
		}
	}
	return models.Document{}, gorm.ErrRecordNotFound
}

func (d *documentRepoStub) GetByPublicID(_ context.Context, publicID string) (models.Document, error) {
	document, ok := d.documents[publicID]
	if !ok {
		return models.Document{}, gorm.ErrRecordNotFound
	}
	return document, nil
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF")

func TestDocumentServiceRejectsOversizedUpload(t *testing.T) {
	svc := NewDocumentService(&documentStorageStub{}, newDocumentRepoStub(), newFakeAccountRepo(), 1, testLogger())

	file := buildFileHeader(t, "large.pdf", bytes.Repeat([]byte("a"), 2*1024*1024))
	_, err := svc.Store(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, file)
	require.ErrorIs(t, err, ErrDocumentTooLarge)
}

func TestDocumentServiceRejectsDisallowedType(t *testing.T) {
	svc := NewDocumentService(&documentStorageStub{}, newDocumentRepoStub(), newFakeAccountRepo(), 5, testLogger())

	file := buildFileHeader(t, "notes.txt", []byte("plain text notes"))
	_, err := svc.Store(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, file)
	require.ErrorIs(t, err, ErrDocumentTypeNotAllowed)
}

func TestDocumentServiceStoresPdf(t *testing.T) {
	storage := &documentStorageStub{}
	repo := newDocumentRepoStub()
	svc := NewDocumentService(storage, repo, newFakeAccountRepo(), 5, testLogger())

	file := buildFileHeader(t, "My Proof.PDF", pdfBytes)
	document, err := svc.Store(context.Background(), Principal{ID: 3, Role: models.RoleStudent}, file)
	require.NoError(t, err)

	require.NotEmpty(t, document.PublicID)
	require.Equal(t, uint(3), document.OwnerID)
	require.Equal(t, "my-proof.pdf", document.FileName)
	require.Contains(t, document.MimeType, "application/pdf")
	require.EqualValues(t, len(pdfBytes), document.SizeBytes)
	require.NotEmpty(t, document.Checksum)
	require.Equal(t, pdfBytes, storage.uploaded.Bytes())

	stored, err := repo.GetByPublicID(context.Background(), document.PublicID)
	require.NoError(t, err)
	require.Equal(t, document.URL, stored.URL)
}

func TestDocumentServiceFetch(t *testing.T) {
	storage := &documentStorageStub{content: pdfBytes, mime: "application/pdf"}
	repo := newDocumentRepoStub()
	svc := NewDocumentService(storage, repo, newFakeAccountRepo(), 5, testLogger())

	owner := Principal{ID: 1, Role: models.RoleStudent}
	file := buildFileHeader(t, "proof.pdf", pdfBytes)
	document, err := svc.Store(context.Background(), owner, file)
	require.NoError(t, err)

	content, err := svc.Fetch(context.Background(), owner, document.PublicID)
	require.NoError(t, err)
	require.Equal(t, pdfBytes, content.Bytes)
	require.Equal(t, "application/pdf", content.ContentType)
	require.Equal(t, "proof.pdf", content.FileName)
}

func TestDocumentServiceFetchUnknownReference(t *testing.T) {
	svc := NewDocumentService(&documentStorageStub{}, newDocumentRepoStub(), newFakeAccountRepo(), 5, testLogger())

	_, err := svc.Fetch(context.Background(), Principal{ID: 1, Role: models.RoleStudent}, "no-such-ref")
	require.ErrorIs(t, err, ErrMissingDocument)
}

func TestDocumentServiceFetchScope(t *testing.T) {
	storage := &documentStorageStub{content: pdfBytes, mime: "application/pdf"}
	accounts := newFakeAccountRepo()
	svc := NewDocumentService(storage, newDocumentRepoStub(), accounts, 5, testLogger())

	owner := Principal{ID: 1, Role: models.RoleStudent}
	document, err := svc.Store(context.Background(), owner, buildFileHeader(t, "proof.pdf", pdfBytes))
	require.NoError(t, err)

	// Knowing the reference is not enough; the caller must be the owner, an
	// admin, or faculty assigned to the owner.
	_, err = svc.Fetch(context.Background(), Principal{ID: 2, Role: models.RoleStudent}, document.PublicID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Fetch(context.Background(), Principal{ID: 7, Role: models.RoleFaculty}, document.PublicID)
	require.ErrorIs(t, err, ErrForbidden)

	accounts.assign(7, owner.ID)
	_, err = svc.Fetch(context.Background(), Principal{ID: 7, Role: models.RoleFaculty}, document.PublicID)
	require.NoError(t, err)

	_, err = svc.Fetch(context.Background(), Principal{ID: 9, Role: models.RoleAdmin}, document.PublicID)
	require.NoError(t, err)

	_, err = svc.Fetch(context.Background(), owner, document.PublicID)
	require.NoError(t, err)
}

func TestDocumentServiceFetchGoneFromStorage(t *testing.T) {
	storage := &documentStorageStub{}
	repo := newDocumentRepoStub()
	svc := NewDocumentService(storage, repo, newFakeAccountRepo(), 5, testLogger())

	owner := Principal{ID: 1, Role: models.RoleStudent}
	file := buildFileHeader(t, "proof.pdf", pdfBytes)
	document, err := svc.Store(context.Background(), owner, file)
	require.NoError(t, err)

	// The stored reference survives, the asset behind it does not.
	storage.fetchErr = cloudinary.ErrNotFound
	_, err = svc.Fetch(context.Background(), owner, document.PublicID)
	require.ErrorIs(t, err, ErrMissingDocument)
}
