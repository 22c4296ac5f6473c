package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const (
	CandidatesIndex = "candidates"
	signerKeyName   = "CandidateSearchSigner"
)

var ErrSigningKeyMissing = errors.New("search signing key not initialized")

// Result holds the matching candidate ids in ranking order.
type Result struct {
	IDs   []uuid.UUID
	Total int64
}

type SearchService interface {
	IndexCandidate(candidate *entity.Candidate, participations []entity.Participation) error
	DeleteCandidate(id uuid.UUID) error
	SearchCandidates(query string, institutionID *uuid.UUID, limit, offset int) (*Result, error)
	GenerateSearchToken(admin *entity.Admin) (string, error)
}

type searchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager, masterKey string) SearchService {
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	s.initSigningKey()
	return s
}

func (s *searchService) initIndex() {
	filterable := []any{"institution_ids", "contest_ids"}
	if _, err := s.client.Index(CandidatesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update candidates filterable attributes: %v", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(CandidatesIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update candidates sortable attributes: %v", err)
	}

	searchable := []string{"nupcan", "last_name", "first_name", "email", "phone", "application_numbers"}
	if _, err := s.client.Index(CandidatesIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update candidates searchable attributes: %v", err)
	}

	log.Println("Meilisearch candidates index initialized")
}

func (s *searchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == signerKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Signs tenant tokens for institution scoped candidate search",
		Name:        signerKeyName,
		Actions:     []string{"search"},
		Indexes:     []string{CandidatesIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type candidateDoc struct {
	ID                 string   `json:"id"`
	Nupcan             string   `json:"nupcan"`
	LastName           string   `json:"last_name"`
	FirstName          string   `json:"first_name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	PhotoURL           string   `json:"photo_url,omitempty"`
	InstitutionIDs     []string `json:"institution_ids"`
	ContestIDs         []string `json:"contest_ids"`
	ApplicationNumbers []string `json:"application_numbers"`
	CreatedAt          int64    `json:"created_at"`
}

func (s *searchService) clean(value string) string {
	text := html.UnescapeString(s.sanitizer.Sanitize(value))
	return strings.Join(strings.Fields(text), " ")
}

func (s *searchService) buildDoc(candidate *entity.Candidate, participations []entity.Participation) candidateDoc {
	doc := candidateDoc{
		ID:                 candidate.ID.String(),
		Nupcan:             candidate.Nupcan,
		LastName:           s.clean(candidate.LastName),
		FirstName:          s.clean(candidate.FirstName),
		Email:              candidate.Email,
		Phone:              candidate.Phone,
		InstitutionIDs:     []string{},
		ContestIDs:         []string{},
		ApplicationNumbers: []string{},
		CreatedAt:          candidate.CreatedAt.Unix(),
	}
	if candidate.PhotoURL != nil {
		doc.PhotoURL = *candidate.PhotoURL
	}

	seen := map[string]bool{}
	for _, p := range participations {
		doc.ContestIDs = append(doc.ContestIDs, p.ContestID.String())
		doc.ApplicationNumbers = append(doc.ApplicationNumbers, p.ApplicationNumber)
		if p.Contest == nil {
			continue
		}
		id := p.Contest.InstitutionID.String()
		if !seen[id] {
			seen[id] = true
			doc.InstitutionIDs = append(doc.InstitutionIDs, id)
		}
	}
	return doc
}

func (s *searchService) IndexCandidate(candidate *entity.Candidate, participations []entity.Participation) error {
	doc := s.buildDoc(candidate, participations)

	task, err := s.client.Index(CandidatesIndex).AddDocuments([]candidateDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed candidate %s, task id: %d", candidate.Nupcan, task.TaskUID)
	return nil
}

func (s *searchService) DeleteCandidate(id uuid.UUID) error {
	_, err := s.client.Index(CandidatesIndex).DeleteDocument(id.String())
	return err
}

func institutionFilter(institutionID uuid.UUID) string {
	return fmt.Sprintf("institution_ids = '%s'", institutionID)
}

type rawSearchResponse struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
	EstimatedTotalHits int64 `json:"estimatedTotalHits"`
}

// SearchCandidates returns candidate ids only; callers load the rows from the database.
func (s *searchService) SearchCandidates(query string, institutionID *uuid.UUID, limit, offset int) (*Result, error) {
	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		Offset:               int64(offset),
		AttributesToRetrieve: []string{"id"},
	}
	if institutionID != nil {
		req.Filter = institutionFilter(*institutionID)
	}

	raw, err := s.client.Index(CandidatesIndex).SearchRaw(strings.TrimSpace(query), req)
	if err != nil {
		return nil, err
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := &Result{IDs: make([]uuid.UUID, 0, len(resp.Hits)), Total: resp.EstimatedTotalHits}
	for _, hit := range resp.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		result.IDs = append(result.IDs, id)
	}
	return result, nil
}

// GenerateSearchToken lets the admin frontend query Meilisearch directly; institution admins
// get a token whose filter is pinned to their institution.
func (s *searchService) GenerateSearchToken(admin *entity.Admin) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", ErrSigningKeyMissing
	}

	rules := map[string]any{CandidatesIndex: map[string]any{"filter": nil}}
	if !admin.IsSuperAdmin() {
		if admin.InstitutionID == nil {
			return "", fmt.Errorf("admin %s has no institution", admin.ID)
		}
		rules[CandidatesIndex] = map[string]any{"filter": institutionFilter(*admin.InstitutionID)}
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, rules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

func strPtr(s string) *string {
	return &s
}
