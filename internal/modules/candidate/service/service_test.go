package candidate

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/candidate/dto"
	"gabconcours.ga/backend/internal/modules/candidate/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/numbering"
	"gabconcours.ga/backend/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryCandidates struct {
	byNupcan       map[string]*entity.Candidate
	participations []*entity.Participation
	failNext       int
}

func newMemoryCandidates() *memoryCandidates {
	return &memoryCandidates{byNupcan: map[string]*entity.Candidate{}}
}

func (m *memoryCandidates) CreateWithParticipation(_ context.Context, c *entity.Candidate, p *entity.Participation) error {
	if m.failNext > 0 {
		m.failNext--
		return gorm.ErrDuplicatedKey
	}
	if _, exists := m.byNupcan[c.Nupcan]; exists {
		return gorm.ErrDuplicatedKey
	}
	c.ID = uuid.New()
	p.ID = uuid.New()
	p.CandidateID = c.ID
	copied := *c
	m.byNupcan[c.Nupcan] = &copied
	m.participations = append(m.participations, p)
	return nil
}

func (m *memoryCandidates) FindByID(_ context.Context, id uuid.UUID) (*entity.Candidate, error) {
	for _, c := range m.byNupcan {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryCandidates) FindByNupcan(_ context.Context, nupcan string) (*entity.Candidate, error) {
	if c, ok := m.byNupcan[nupcan]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryCandidates) FindByIDs(context.Context, []uuid.UUID) ([]entity.Candidate, error) {
	return nil, nil
}

func (m *memoryCandidates) ExistsNupcan(_ context.Context, nupcan string) (bool, error) {
	_, ok := m.byNupcan[nupcan]
	return ok, nil
}

func (m *memoryCandidates) FindAll(_ context.Context, filter repository.CandidateFilter) ([]entity.Candidate, int64, error) {
	var out []entity.Candidate
	for _, c := range m.byNupcan {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *memoryCandidates) Update(_ context.Context, c *entity.Candidate) error {
	copied := *c
	m.byNupcan[c.Nupcan] = &copied
	return nil
}

func (m *memoryCandidates) Count(context.Context, *uuid.UUID) (int64, error) {
	return int64(len(m.byNupcan)), nil
}

type stubContests map[uuid.UUID]*entity.Contest

func (s stubContests) FindContestByID(_ context.Context, id uuid.UUID) (*entity.Contest, error) {
	if c, ok := s[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubParticipations struct{}

func (stubParticipations) NewParticipation(candidateID, contestID uuid.UUID, trackID *uuid.UUID) *entity.Participation {
	return &entity.Participation{
		CandidateID:       candidateID,
		ContestID:         contestID,
		TrackID:           trackID,
		ApplicationNumber: numbering.ApplicationNumber(time.Now()),
		Status:            entity.ParticipationRegistered,
	}
}

func (stubParticipations) FindByCandidate(context.Context, uuid.UUID) ([]entity.Participation, error) {
	return nil, nil
}

type recordingIndexer struct{ indexed []string }

func (r *recordingIndexer) IndexCandidate(c *entity.Candidate, _ []entity.Participation) error {
	r.indexed = append(r.indexed, c.Nupcan)
	return nil
}

type recordingImages struct {
	uploads []string
	deleted []string
}

func (r *recordingImages) UploadImage(_ context.Context, reader io.Reader, folder, fileName string) (string, error) {
	_, _ = io.ReadAll(reader)
	url := "/uploads/" + folder + "/" + fileName
	r.uploads = append(r.uploads, url)
	return url, nil
}

func (r *recordingImages) DeleteImage(_ context.Context, url string) error {
	r.deleted = append(r.deleted, url)
	return nil
}

const testMaxPhotoSize = 2 * 1024 * 1024

func pngPhoto(name string, body []byte) *dto.PhotoFile {
	return &dto.PhotoFile{Reader: bytes.NewReader(body), FileName: name, Size: int64(len(body)), ContentType: "image/png"}
}

func newTestService(t *testing.T) (*candidateService, *memoryCandidates, *entity.Contest, *recordingIndexer, *recordingImages) {
	t.Helper()
	track := entity.Track{ID: uuid.New(), Name: "Lettres modernes"}
	maxAge := 25
	contest := &entity.Contest{ID: uuid.New(), Label: "ENS", Fee: decimal.NewFromInt(10000), IsOpen: true, MaxAge: &maxAge, Tracks: []entity.Track{track}}

	repo := newMemoryCandidates()
	indexer := &recordingIndexer{}
	images := &recordingImages{}
	svc := NewCandidateService(repo, stubContests{contest.ID: contest}, stubParticipations{}, images, indexer, testMaxPhotoSize).(*candidateService)
	svc.now = func() time.Time { return time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo, contest, indexer, images
}

func validInput(contest *entity.Contest) dto.RegisterInput {
	return dto.RegisterInput{
		LastName:   "Mba",
		FirstName:  "Paul",
		Email:      "Paul.Mba@Example.com ",
		Phone:      "+24106000000",
		BirthDate:  "2004-02-10",
		BirthPlace: "Libreville",
		ContestID:  contest.ID.String(),
	}
}

func TestRegister_CreatesCandidateAndParticipation(t *testing.T) {
	svc, repo, contest, indexer, _ := newTestService(t)

	res, err := svc.Register(context.Background(), validInput(contest), nil)
	require.NoError(t, err)

	assert.Regexp(t, numbering.NupcanPattern, res.Nupcan)
	assert.Equal(t, "paul.mba@example.com", res.Candidate.Email)
	assert.Equal(t, entity.ParticipationRegistered, res.Participation.Status)
	assert.Regexp(t, numbering.ApplicationNumberPattern, res.Participation.ApplicationNumber)
	assert.Equal(t, res.Candidate.ID, res.Participation.CandidateID)
	assert.Len(t, repo.participations, 1)
	assert.Equal(t, []string{res.Nupcan}, indexer.indexed)
}

func TestRegister_NupcanUniqueAcrossRun(t *testing.T) {
	svc, _, contest, _, _ := newTestService(t)
	seen := map[string]bool{}

	for i := 0; i < 200; i++ {
		res, err := svc.Register(context.Background(), validInput(contest), nil)
		require.NoError(t, err)
		require.NotEmpty(t, res.Nupcan)
		require.False(t, seen[res.Nupcan], "duplicate nupcan %s", res.Nupcan)
		seen[res.Nupcan] = true
	}
}

func TestRegister_RetriesOnDuplicateKey(t *testing.T) {
	svc, repo, contest, _, _ := newTestService(t)
	repo.failNext = 2

	res, err := svc.Register(context.Background(), validInput(contest), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Nupcan)
}

func TestRegister_Rejections(t *testing.T) {
	svc, _, contest, _, _ := newTestService(t)

	tooOld := validInput(contest)
	tooOld.BirthDate = "1990-01-01"
	_, err := svc.Register(context.Background(), tooOld, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	badTrack := validInput(contest)
	badTrack.TrackID = uuid.New().String()
	_, err = svc.Register(context.Background(), badTrack, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	unknown := validInput(contest)
	unknown.ContestID = uuid.New().String()
	_, err = svc.Register(context.Background(), unknown, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	contest.IsOpen = false
	_, err = svc.Register(context.Background(), validInput(contest), nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRegister_UploadsPhoto(t *testing.T) {
	svc, _, contest, _, images := newTestService(t)

	res, err := svc.Register(context.Background(), validInput(contest), pngPhoto("me.png", []byte("img")))
	require.NoError(t, err)
	require.NotNil(t, res.Candidate.PhotoURL)
	assert.Len(t, images.uploads, 1)
}

func TestUpdate_KeepsNupcan(t *testing.T) {
	svc, _, contest, _, images := newTestService(t)
	res, err := svc.Register(context.Background(), validInput(contest), pngPhoto("a.png", []byte("a")))
	require.NoError(t, err)

	phone := "+24107111111"
	updated, err := svc.Update(context.Background(), res.Nupcan, dto.UpdateInput{Phone: &phone}, pngPhoto("b.png", []byte("b")))
	require.NoError(t, err)

	assert.Equal(t, res.Nupcan, updated.Nupcan)
	assert.Equal(t, phone, updated.Phone)
	assert.Len(t, images.deleted, 1)
}

func TestRegister_RejectsBadPhotoBeforeWriting(t *testing.T) {
	root := t.TempDir()
	files, err := storage.NewLocalStorage(root, "/uploads")
	require.NoError(t, err)

	svc, repo, contest, indexer, _ := newTestService(t)
	svc.imageStorage = files

	cases := map[string]*dto.PhotoFile{
		"html page": {
			Reader:      bytes.NewReader([]byte("<script>alert(1)</script>")),
			FileName:    "x.html",
			Size:        25,
			ContentType: "text/html",
		},
		"png name with html type": {
			Reader:      bytes.NewReader([]byte("<html></html>")),
			FileName:    "x.png",
			Size:        13,
			ContentType: "text/html",
		},
		"pdf": {
			Reader:      bytes.NewReader([]byte("%PDF-1.4")),
			FileName:    "x.pdf",
			Size:        8,
			ContentType: "application/pdf",
		},
		"oversized": {
			Reader:      bytes.NewReader(make([]byte, 16)),
			FileName:    "big.png",
			Size:        25 * 1024 * 1024,
			ContentType: "image/png",
		},
	}

	for name, photo := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), validInput(contest), photo)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}

	assert.Empty(t, repo.byNupcan)
	assert.Empty(t, indexer.indexed)
	entries, err := os.ReadDir(filepath.Join(root, storage.FolderPhotos))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdate_RejectsBadPhotoBeforeWriting(t *testing.T) {
	svc, repo, contest, _, images := newTestService(t)
	res, err := svc.Register(context.Background(), validInput(contest), nil)
	require.NoError(t, err)

	phone := "+24107222222"
	_, err = svc.Update(context.Background(), res.Nupcan, dto.UpdateInput{Phone: &phone}, &dto.PhotoFile{
		Reader:      bytes.NewReader([]byte("<html></html>")),
		FileName:    "x.html",
		Size:        13,
		ContentType: "text/html",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, images.uploads)
	assert.NotEqual(t, phone, repo.byNupcan[res.Nupcan].Phone)

	_, err = svc.Update(context.Background(), res.Nupcan, dto.UpdateInput{}, &dto.PhotoFile{
		Reader:      bytes.NewReader(nil),
		FileName:    "big.jpg",
		Size:        testMaxPhotoSize + 1,
		ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, images.uploads)
}

func TestCheckPhoto_AcceptsContentTypeParameters(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	err := svc.checkPhoto(&dto.PhotoFile{Reader: bytes.NewReader(nil), FileName: "ME.JPEG", Size: 10, ContentType: "image/jpeg; charset=binary"})
	assert.NoError(t, err)
	assert.NoError(t, svc.checkPhoto(nil))
}

func TestCheckNupcan(t *testing.T) {
	svc, _, contest, _, _ := newTestService(t)
	res, err := svc.Register(context.Background(), validInput(contest), nil)
	require.NoError(t, err)

	taken, err := svc.CheckNupcan(context.Background(), res.Nupcan)
	require.NoError(t, err)
	assert.False(t, taken.Available)

	free, err := svc.CheckNupcan(context.Background(), "GC20250101-ZZZZZZZZ")
	require.NoError(t, err)
	assert.True(t, free.Available)

	_, err = svc.CheckNupcan(context.Background(), " ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestList_ScopedAdminCannotWidenScope(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	own := uuid.New()
	admin := &entity.Admin{Role: entity.RoleInstitutionAdmin, InstitutionID: &own}

	_, err := svc.List(context.Background(), admin, dto.ListFilter{InstitutionID: uuid.New().String()})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	res, err := svc.List(context.Background(), admin, dto.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Meta.CurrentPage)
	assert.Equal(t, 20, res.Meta.Limit)
}
