package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentgrid/competency-backend/internal/logger"
	apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
	"github.com/talentgrid/competency-backend/internal/repos"
	"github.com/talentgrid/competency-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testVector(fill float32) []float32 {
	v := make([]float32, types.EmbeddingDimensions)
	for i := range v {
		v[i] = fill
	}
	return v
}

type fakeCompetencyRepo struct {
	competencies []*types.Competency

	nameLookups  int
	getByIDCalls int
	createCalls  int
	createErr    error
	lookupErr    error
}

func (f *fakeCompetencyRepo) add(c *types.Competency) *types.Competency {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.competencies = append(f.competencies, c)
	return c
}

func (f *fakeCompetencyRepo) Create(ctx context.Context, tx *gorm.DB, competencies []*types.Competency) ([]*types.Competency, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, c := range competencies {
		for _, existing := range f.competencies {
			if strings.EqualFold(existing.Name, c.Name) && existing.Type == c.Type {
				return nil, fmt.Errorf("%w: competency %q (%s) already exists", apperr.ErrNameConflict, c.Name, c.Type)
			}
		}
		f.add(c)
	}
	return competencies, nil
}

func (f *fakeCompetencyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Competency, error) {
	f.getByIDCalls++
	out := make([]*types.Competency, 0, len(ids))
	for _, id := range ids {
		for _, c := range f.competencies {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeCompetencyRepo) GetByNameAndType(ctx context.Context, tx *gorm.DB, name string, ctype types.CompetencyType) (*types.Competency, error) {
	f.nameLookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, c := range f.competencies {
		if strings.EqualFold(c.Name, name) && c.Type == ctype {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: competency %q (%s)", apperr.ErrNotFound, name, ctype)
}

func (f *fakeCompetencyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Competency, error) {
	return f.competencies, nil
}

type fakeEmbedder struct {
	vector []float32

	embedErr         error
	ensureErr        error
	embedCalls       int
	ensureCalls      int
	storeCalls       int
	lastEmbeddedName string
}

func (f *fakeEmbedder) EmbedName(ctx context.Context, name string) ([]float32, error) {
	f.embedCalls++
	f.lastEmbeddedName = name
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return testVector(0.1), nil
}

func (f *fakeEmbedder) StoreEmbedding(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, vector []float32) error {
	f.storeCalls++
	return nil
}

func (f *fakeEmbedder) EnsureEmbedding(ctx context.Context, competency *types.Competency) error {
	f.ensureCalls++
	return f.ensureErr
}

type fakeSimilarityIndex struct {
	neighbors []*repos.Neighbor

	queryErr          error
	queryCalls        int
	lastMinSimilarity float64
	lastLimit         int
}

func (f *fakeSimilarityIndex) NearestNeighbors(ctx context.Context, vector []float32, excludeID *uuid.UUID, minSimilarity float64, limit int) ([]*repos.Neighbor, error) {
	f.queryCalls++
	f.lastMinSimilarity = minSimilarity
	f.lastLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.neighbors, nil
}

type fakeOpenAI struct {
	generateOut map[string]any
	generateErr error

	generateCalls  int
	lastSystem     string
	lastUser       string
	lastSchemaName string
}

func (f *fakeOpenAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = testVector(0.2)
	}
	return out, nil
}

func (f *fakeOpenAI) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	f.generateCalls++
	f.lastSystem = system
	f.lastUser = user
	f.lastSchemaName = schemaName
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.generateOut, nil
}

type resolveOutcome struct {
	identity Identity
	options  []SimilarOption
	err      error
}

// fakeResolver scripts Resolve results per candidate name; unscripted names
// resolve to a fresh provisional identity with no options.
type fakeResolver struct {
	outcomes map[string]resolveOutcome

	resolveCalls int
	lastDraft    CandidateDraft
}

func (f *fakeResolver) Resolve(ctx context.Context, draft CandidateDraft) (Identity, []SimilarOption, error) {
	f.resolveCalls++
	f.lastDraft = draft
	if outcome, ok := f.outcomes[draft.Name]; ok {
		return outcome.identity, outcome.options, outcome.err
	}
	return NewProvisionalIdentity(), []SimilarOption{}, nil
}

type fakeAssigner struct {
	result *CommitResult
	err    error

	commitCalls int
	lastInput   CommitInput
}

func (f *fakeAssigner) Commit(ctx context.Context, input CommitInput) (*CommitResult, error) {
	f.commitCalls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &CommitResult{CompetencyID: uuid.New(), Created: true}, nil
}

type fakeReconciler struct {
	startCalls     int
	lastEntity     types.EntityRef
	lastEntityName string
	lastCandidates []*ExtractedCandidate
	lastLinked     []uuid.UUID
}

func (f *fakeReconciler) StartSession(entity types.EntityRef, entityName string, candidates []*ExtractedCandidate, linked []uuid.UUID) {
	f.startCalls++
	f.lastEntity = entity
	f.lastEntityName = entityName
	f.lastCandidates = candidates
	f.lastLinked = linked
}

func (f *fakeReconciler) EndSession(entity types.EntityRef) {}

func (f *fakeReconciler) List(entity types.EntityRef, includeIgnored bool) ([]*ReconcileItem, error) {
	return nil, nil
}

func (f *fakeReconciler) SelectOption(entity types.EntityRef, candidateID uuid.UUID, optionID string) error {
	return nil
}

func (f *fakeReconciler) EditDraft(entity types.EntityRef, candidateID uuid.UUID, edit DraftEdit) error {
	return nil
}

func (f *fakeReconciler) SetProficiency(entity types.EntityRef, candidateID uuid.UUID, proficiency types.Proficiency) error {
	return nil
}

func (f *fakeReconciler) Ignore(entity types.EntityRef, candidateID uuid.UUID) error  { return nil }
func (f *fakeReconciler) Restore(entity types.EntityRef, candidateID uuid.UUID) error { return nil }

func (f *fakeReconciler) Commit(ctx context.Context, entity types.EntityRef, candidateID uuid.UUID) (*ReconcileItem, error) {
	return nil, nil
}
