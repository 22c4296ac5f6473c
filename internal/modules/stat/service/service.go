package stat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gabconcours.ga/backend/internal/entity"
	paymentRepo "gabconcours.ga/backend/internal/modules/payment/repository"
	"gabconcours.ga/backend/internal/modules/stat/dto"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const cacheTTL = 30 * time.Second

type CandidateCounter interface {
	Count(ctx context.Context, institutionID *uuid.UUID) (int64, error)
}

type ContestCounter interface {
	CountOpenContests(ctx context.Context, institutionID *uuid.UUID) (int64, error)
}

type PaymentTotaler interface {
	Totals(ctx context.Context, institutionID *uuid.UUID) (*paymentRepo.PaymentTotals, error)
}

type DocumentCounter interface {
	CountByStatus(ctx context.Context, institutionID *uuid.UUID) (map[entity.ValidationStatus]int64, error)
}

type ParticipationCounter interface {
	CountByStatus(ctx context.Context, institutionID *uuid.UUID) (map[entity.ParticipationStatus]int64, error)
}

type StatService interface {
	Overview(ctx context.Context, admin *entity.Admin) (*dto.Statistics, error)
	DocumentValidation(ctx context.Context, admin *entity.Admin) (*dto.DocumentStats, error)
}

type statService struct {
	candidates     CandidateCounter
	contests       ContestCounter
	payments       PaymentTotaler
	documents      DocumentCounter
	participations ParticipationCounter
	redis          *redis.Client
}

// NewStatService builds the dashboard counters. With a Redis client the overview is cached briefly per scope.
func NewStatService(
	candidates CandidateCounter,
	contests ContestCounter,
	payments PaymentTotaler,
	documents DocumentCounter,
	participations ParticipationCounter,
	redisClient *redis.Client,
) StatService {
	return &statService{
		candidates:     candidates,
		contests:       contests,
		payments:       payments,
		documents:      documents,
		participations: participations,
		redis:          redisClient,
	}
}

func scopeOf(admin *entity.Admin) (*uuid.UUID, error) {
	if admin.IsSuperAdmin() {
		return nil, nil
	}
	if admin.InstitutionID == nil {
		return nil, apperror.Forbidden("Aucun établissement n'est rattaché à ce compte")
	}
	return admin.InstitutionID, nil
}

func cacheKey(institutionID *uuid.UUID) string {
	if institutionID == nil {
		return "stats:overview:all"
	}
	return "stats:overview:" + institutionID.String()
}

func (s *statService) Overview(ctx context.Context, admin *entity.Admin) (*dto.Statistics, error) {
	institutionID, err := scopeOf(admin)
	if err != nil {
		return nil, err
	}

	if cached := s.cached(ctx, cacheKey(institutionID)); cached != nil {
		return cached, nil
	}

	stats := &dto.Statistics{Participations: map[string]int64{}}
	if institutionID != nil {
		stats.InstitutionID = institutionID.String()
	}

	var (
		totals   *paymentRepo.PaymentTotals
		byStatus map[entity.ParticipationStatus]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Candidates, err = s.candidates.Count(gctx, institutionID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.OpenContests, err = s.contests.CountOpenContests(gctx, institutionID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.payments.Totals(gctx, institutionID)
		return err
	})
	g.Go(func() error {
		documents, err := s.documentStats(gctx, institutionID)
		if err != nil {
			return err
		}
		stats.Documents = *documents
		return nil
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.participations.CountByStatus(gctx, institutionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Payments = dto.PaymentStats{
		Total:           totals.Count,
		Validated:       totals.ValidatedCount,
		Pending:         totals.PendingCount,
		ValidatedAmount: totals.ValidatedSum,
	}
	for status, count := range byStatus {
		stats.Participations[string(status)] = count
	}

	s.store(ctx, cacheKey(institutionID), stats)
	return stats, nil
}

func (s *statService) DocumentValidation(ctx context.Context, admin *entity.Admin) (*dto.DocumentStats, error) {
	institutionID, err := scopeOf(admin)
	if err != nil {
		return nil, err
	}
	return s.documentStats(ctx, institutionID)
}

func (s *statService) documentStats(ctx context.Context, institutionID *uuid.UUID) (*dto.DocumentStats, error) {
	counts, err := s.documents.CountByStatus(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	stats := &dto.DocumentStats{
		Pending:   counts[entity.StatusPending],
		Validated: counts[entity.StatusValidated],
		Rejected:  counts[entity.StatusRejected],
	}
	stats.Total = stats.Pending + stats.Validated + stats.Rejected
	return stats, nil
}

func (s *statService) cached(ctx context.Context, key string) *dto.Statistics {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Failed to read statistics cache: %v", err)
		}
		return nil
	}

	var stats dto.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *statService) store(ctx context.Context, key string, stats *dto.Statistics) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		log.Printf("Failed to write statistics cache: %v", err)
	}
}
