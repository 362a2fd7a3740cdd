package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/veritrack/veritrack-api/internal/dto"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/observability"
	"github.com/veritrack/veritrack-api/internal/repository"
	"github.com/veritrack/veritrack-api/pkg/cloudinary"
)

// DocumentStorage abstracts the external blob store holding uploaded proof
// documents. The core only carries references; it never inspects bytes.
type DocumentStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// DocumentService validates, stores and resolves proof documents.
type DocumentService interface {
	Store(ctx context.Context, principal Principal, file *multipart.FileHeader) (models.Document, error)
	Fetch(ctx context.Context, principal Principal, ref string) (dto.DocumentContent, error)
}

type documentService struct {
	storage  DocumentStorage
	repo     repository.DocumentRepository
	accounts repository.AccountRepository
	logger   zerolog.Logger
	maxSize  int64
	tracer   trace.Tracer
}

// NewDocumentService constructs a document service.
func NewDocumentService(storage DocumentStorage, repo repository.DocumentRepository, accounts repository.AccountRepository, maxSizeMB int, logger zerolog.Logger) DocumentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &documentService{
		storage:  storage,
		repo:     repo,
		accounts: accounts,
		logger:   logger.With().Str("component", "document_service").Logger(),
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/veritrack/veritrack-api/internal/service/document"),
	}
}

func (s *documentService) Store(ctx context.Context, principal Principal, file *multipart.FileHeader) (models.Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.store")
	defer span.End()

	span.SetAttributes(attribute.Int64("document.max_bytes", s.maxSize))

	start := time.Now()
	defer func() {
		observability.DocumentUploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return models.Document{}, err
	}

	span.SetAttributes(
		attribute.String("document.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("document.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.DocumentUploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrDocumentTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return models.Document{}, ErrDocumentTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return models.Document{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return models.Document{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.DocumentUploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrDocumentTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return models.Document{}, ErrDocumentTooLarge
	}

	detected := mimetype.Detect(buf.Bytes()).String()
	span.SetAttributes(attribute.String("document.detected_mime", detected))
	if !allowedDocumentType(detected) {
		observability.DocumentUploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrDocumentTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return models.Document{}, ErrDocumentTypeNotAllowed
	}

	checksum := sha256.Sum256(buf.Bytes())
	name := sanitizeFileName(file.Filename)

	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.DocumentUploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return models.Document{}, err
	}

	document := models.Document{
		PublicID:  uuid.NewString(),
		OwnerID:   principal.ID,
		FileName:  name,
		URL:       url,
		MimeType:  detected,
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}

	if err := s.repo.Create(ctx, &document); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return models.Document{}, err
	}

	observability.DocumentUploads().WithLabelValues(detected).Inc()
	span.SetStatus(codes.Ok, "stored")

	return document, nil
}

func (s *documentService) Fetch(ctx context.Context, principal Principal, ref string) (dto.DocumentContent, error) {
	ctx, span := s.tracer.Start(ctx, "document.fetch")
	span.SetAttributes(attribute.String("document.ref", ref))
	defer span.End()

	document, err := s.repo.GetByPublicID(ctx, strings.TrimSpace(ref))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "unknown reference")
			return dto.DocumentContent{}, ErrMissingDocument
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return dto.DocumentContent{}, err
	}

	allowed, err := s.mayAccess(ctx, principal, document.OwnerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scope check failed")
		return dto.DocumentContent{}, err
	}
	if !allowed {
		span.SetStatus(codes.Error, "out of scope")
		return dto.DocumentContent{}, ErrForbidden
	}

	payload, contentType, err := s.storage.Fetch(ctx, document.URL)
	if err != nil {
		if errors.Is(err, cloudinary.ErrNotFound) {
			s.logger.Warn().Str("ref", document.PublicID).Msg("stored document no longer resolvable")
			span.SetStatus(codes.Error, "asset gone")
			return dto.DocumentContent{}, ErrMissingDocument
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return dto.DocumentContent{}, err
	}

	if contentType == "" {
		contentType = document.MimeType
	}

	return dto.DocumentContent{
		Bytes:       payload,
		ContentType: contentType,
		FileName:    document.FileName,
	}, nil
}

// mayAccess grants the owning student, faculty assigned to the owner, and
// admins. Holding the opaque reference alone is not enough.
func (s *documentService) mayAccess(ctx context.Context, principal Principal, ownerID uint) (bool, error) {
	switch {
	case principal.ID == ownerID:
		return true, nil
	case principal.IsAdmin():
		return true, nil
	case principal.IsFaculty():
		return s.accounts.IsAssigned(ctx, principal.ID, ownerID)
	default:
		return false, nil
	}
}

// Accepted proof document types: pdf, doc, docx.
func allowedDocumentType(mime string) bool {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	default:
		return false
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, extension(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "document"
	}
	ext := strings.ToLower(extension(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func extension(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}
