// Package progression derives a candidate's stage from the participation ledgers.
// Nothing here touches storage: the result is recomputed on every read.
package progression

import (
	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Stage string

const (
	StageRegistration Stage = "inscription"
	StageDocuments    Stage = "documents"
	StagePayment      Stage = "paiement"
	StageComplete     Stage = "complete"
)

var orderedStages = []Stage{StageRegistration, StageDocuments, StagePayment}

var percentages = [...]int{0, 33, 67, 100}

type StageState struct {
	Stage     Stage `json:"stage"`
	Completed bool  `json:"completed"`
}

type Result struct {
	CurrentStage Stage        `json:"current_stage"`
	Percentage   int          `json:"percentage"`
	Completed    int          `json:"completed_stages"`
	Stages       []StageState `json:"stages"`
	FreeContest  bool         `json:"free_contest"`
}

// Compute folds candidate, documents and payment into a single progression.
// Completed counts leading stages only: a stage done out of order (e.g. the payment stage
// of a free contest) does not advance the percentage before the stages ahead of it.
func Compute(candidate *entity.Candidate, documents []entity.Document, payment *entity.Payment, fee decimal.Decimal) Result {
	free := fee.IsZero()
	done := map[Stage]bool{
		StageRegistration: candidate != nil,
		StageDocuments:    len(documents) > 0,
		StagePayment:      free || (payment != nil && payment.Status == entity.StatusValidated),
	}

	result := Result{
		CurrentStage: StageComplete,
		Stages:       make([]StageState, 0, len(orderedStages)),
		FreeContest:  free,
	}

	prefix := true
	for _, stage := range orderedStages {
		completed := done[stage]
		result.Stages = append(result.Stages, StageState{Stage: stage, Completed: completed})

		if !completed && prefix {
			result.CurrentStage = stage
			prefix = false
		}
		if completed && prefix {
			result.Completed++
		}
	}

	result.Percentage = percentages[result.Completed]
	return result
}

// SelectPayment picks the payment that counts for contestID: a validated one if any,
// otherwise the most recent attempt. Payments with no resolved contest count for every contest.
func SelectPayment(payments []entity.Payment, contestID uuid.UUID) *entity.Payment {
	var latest *entity.Payment
	for i := range payments {
		p := &payments[i]
		if p.ContestID != nil && *p.ContestID != contestID {
			continue
		}
		if p.Status == entity.StatusValidated {
			return p
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return latest
}
