package document

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/document/dto"
	"gabconcours.ga/backend/internal/modules/document/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/storage"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrphanMaxAge is how long an uploaded file may sit without a document row.
const OrphanMaxAge = 24 * time.Hour

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type CandidateFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error)
	FindByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error)
}

type StatusSyncer interface {
	SyncStatus(ctx context.Context, candidateID uuid.UUID) error
}

type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

type DocumentService interface {
	Upload(ctx context.Context, input dto.UploadInput, file dto.UploadedFile) (*entity.Document, error)
	UpdateStatus(ctx context.Context, adminID uuid.UUID, id uuid.UUID, req dto.UpdateStatusRequest) (*entity.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListByNupcan(ctx context.Context, nupcan string) ([]entity.Document, error)
	Download(ctx context.Context, id uuid.UUID) (*dto.Download, error)
	CleanupOrphans(ctx context.Context) (int, error)
}

type documentService struct {
	repo          repository.DocumentRepository
	candidates    CandidateFinder
	files         storage.FileStorage
	syncer        StatusSyncer
	notifier      Notifier
	maxUploadSize int64
}

func NewDocumentService(
	repo repository.DocumentRepository,
	candidates CandidateFinder,
	files storage.FileStorage,
	syncer StatusSyncer,
	notifier Notifier,
	maxUploadSize int64,
) DocumentService {
	return &documentService{
		repo:          repo,
		candidates:    candidates,
		files:         files,
		syncer:        syncer,
		notifier:      notifier,
		maxUploadSize: maxUploadSize,
	}
}

func (s *documentService) checkFile(file dto.UploadedFile) error {
	if file.Reader == nil {
		return apperror.Validation("Fichier requis")
	}
	if s.maxUploadSize > 0 && file.Size > s.maxUploadSize {
		return apperror.Validation(
			"Fichier trop volumineux",
			fmt.Sprintf("La taille maximale autorisée est de %d Mo", s.maxUploadSize/(1024*1024)),
		)
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(file.ContentType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(file.FileName))
	if !allowedContentTypes[contentType] || !allowedExtensions[ext] {
		return apperror.Validation("Type de fichier non autorisé", "Formats acceptés : PDF, JPG, JPEG, PNG")
	}
	return nil
}

// Upload writes the file first, then its metadata. A failed insert removes the file;
// a crash between the two leaves an orphan for CleanupOrphans.
func (s *documentService) Upload(ctx context.Context, input dto.UploadInput, file dto.UploadedFile) (*entity.Document, error) {
	if err := s.checkFile(file); err != nil {
		return nil, err
	}

	candidate, err := s.candidates.FindByNupcan(ctx, strings.TrimSpace(input.Nupcan))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Candidat introuvable")
		}
		return nil, err
	}

	storedName, err := s.files.Save(ctx, file.Reader, storage.FolderDocuments, "document", file.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	name := validator.SanitizeText(input.Name)
	if name == "" {
		name = validator.SanitizeText(filepath.Base(file.FileName))
	}

	document := &entity.Document{
		CandidateID: candidate.ID,
		Nupcan:      candidate.Nupcan,
		Name:        name,
		Type:        validator.SanitizeText(input.Type),
		StoredName:  storedName,
		Size:        file.Size,
		Status:      entity.StatusPending,
	}

	if err := s.repo.Create(ctx, document); err != nil {
		if delErr := s.files.Delete(storage.FolderDocuments, storedName); delErr != nil {
			log.Printf("Failed to remove stored file %s after insert error: %v", storedName, delErr)
		}
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}

	if err := s.syncer.SyncStatus(ctx, candidate.ID); err != nil {
		log.Printf("Failed to sync participation status for %s: %v", candidate.Nupcan, err)
	}

	return document, nil
}

// UpdateStatus is the only mutation of a document after upload.
func (s *documentService) UpdateStatus(ctx context.Context, adminID uuid.UUID, id uuid.UUID, req dto.UpdateStatusRequest) (*entity.Document, error) {
	if !req.Status.Valid() {
		return nil, apperror.Validation("Statut invalide", "Le statut doit être en_attente, valide ou rejete")
	}

	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := document.Status

	reason := validator.SanitizeOptional(req.Reason)
	if req.Status != entity.StatusRejected {
		reason = nil
	}

	var (
		validatedBy *uuid.UUID
		validatedAt *time.Time
	)
	if req.Status != entity.StatusPending {
		now := time.Now()
		validatedBy = &adminID
		validatedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, reason, validatedBy, validatedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Document introuvable")
		}
		return nil, err
	}

	document.Status = req.Status
	document.RejectionReason = reason
	document.ValidatedByID = validatedBy
	document.ValidatedAt = validatedAt

	if req.Status != previous && req.Status != entity.StatusPending {
		s.notify(ctx, document)
	}

	return document, nil
}

func (s *documentService) notify(ctx context.Context, document *entity.Document) {
	if s.notifier == nil {
		return
	}

	candidate, err := s.candidates.FindByID(ctx, document.CandidateID)
	if err != nil {
		log.Printf("Failed to load candidate for document %s notification: %v", document.ID, err)
		return
	}

	n := &entity.Notification{
		CandidateID: candidate.ID,
		Nupcan:      candidate.Nupcan,
		Email:       candidate.Email,
		Recipient:   candidate.FullName(),
		Reason:      document.RejectionReason,
	}
	if document.Status == entity.StatusValidated {
		n.Type = entity.NotificationDocumentValidated
		n.Title = "Document validé"
		n.Message = fmt.Sprintf("Votre document « %s » a été validé.", document.Name)
	} else {
		n.Type = entity.NotificationDocumentRejected
		n.Title = "Document rejeté"
		n.Message = fmt.Sprintf("Votre document « %s » a été rejeté. Merci de déposer une nouvelle version.", document.Name)
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("Failed to queue notification for document %s: %v", document.ID, err)
	}
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Document introuvable")
		}
		return nil, err
	}
	return document, nil
}

func (s *documentService) ListByNupcan(ctx context.Context, nupcan string) ([]entity.Document, error) {
	nupcan = strings.TrimSpace(nupcan)
	if nupcan == "" {
		return nil, apperror.Validation("NUPCAN requis")
	}
	return s.repo.FindByNupcan(ctx, nupcan)
}

func (s *documentService) Download(ctx context.Context, id uuid.UUID) (*dto.Download, error) {
	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	file, info, err := s.files.Open(storage.FolderDocuments, document.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, apperror.NotFound("Fichier introuvable sur le serveur")
		}
		return nil, err
	}

	fileName := document.Name
	if filepath.Ext(fileName) == "" {
		fileName += filepath.Ext(document.StoredName)
	}

	return &dto.Download{
		File:        file,
		Size:        info.Size(),
		FileName:    fileName,
		ContentType: storage.ContentTypeFor(document.StoredName),
	}, nil
}

// CleanupOrphans deletes stored documents older than OrphanMaxAge that no row references.
func (s *documentService) CleanupOrphans(ctx context.Context) (int, error) {
	names, err := s.files.ListOlderThan(storage.FolderDocuments, time.Now().Add(-OrphanMaxAge))
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}

	existing, err := s.repo.ExistingStoredNames(ctx, names)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if existing[name] {
			continue
		}
		if err := s.files.Delete(storage.FolderDocuments, name); err != nil {
			log.Printf("Failed to delete orphan file %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}
