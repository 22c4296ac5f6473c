package main

import (
	"fmt"

	"gabconcours.ga/backend/internal/config"
	candidateRepo "gabconcours.ga/backend/internal/modules/candidate/repository"
	contestRepo "gabconcours.ga/backend/internal/modules/contest/repository"
	documentRepo "gabconcours.ga/backend/internal/modules/document/repository"
	documentService "gabconcours.ga/backend/internal/modules/document/service"
	participationRepo "gabconcours.ga/backend/internal/modules/participation/repository"
	paymentRepo "gabconcours.ga/backend/internal/modules/payment/repository"
	statService "gabconcours.ga/backend/internal/modules/stat/service"
	"gabconcours.ga/backend/pkg/storage"
	"gorm.io/gorm"
)

// newStatService reads straight from the database; the CLI never uses the Redis cache.
func newStatService(db *gorm.DB) statService.StatService {
	return statService.NewStatService(
		candidateRepo.NewCandidateRepository(db),
		contestRepo.NewContestRepository(db),
		paymentRepo.NewPaymentRepository(db),
		documentRepo.NewDocumentRepository(db),
		participationRepo.NewParticipationRepository(db),
		nil,
	)
}

// newDocumentService only serves maintenance: no status sync and no notifications.
func newDocumentService(db *gorm.DB, cfg *config.Config) (documentService.DocumentService, error) {
	files, err := storage.NewLocalStorage(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to open upload directory: %w", err)
	}

	return documentService.NewDocumentService(
		documentRepo.NewDocumentRepository(db),
		candidateRepo.NewCandidateRepository(db),
		files,
		nil,
		nil,
		cfg.MaxUploadSize,
	), nil
}
