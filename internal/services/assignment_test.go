package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
	"github.com/talentgrid/competency-backend/internal/types"
)

type fakePersonLinks struct {
	existing map[uuid.UUID]map[uuid.UUID]bool

	created   []*types.PersonCompetency
	existsErr error
}

func (f *fakePersonLinks) Create(ctx context.Context, tx *gorm.DB, links []*types.PersonCompetency) ([]*types.PersonCompetency, error) {
	f.created = append(f.created, links...)
	return links, nil
}

func (f *fakePersonLinks) GetByPersonIDs(ctx context.Context, tx *gorm.DB, personIDs []uuid.UUID) ([]*types.PersonCompetency, error) {
	return nil, nil
}

func (f *fakePersonLinks) Exists(ctx context.Context, tx *gorm.DB, personID, competencyID uuid.UUID) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[personID][competencyID], nil
}

func (f *fakePersonLinks) Delete(ctx context.Context, tx *gorm.DB, personID, competencyID uuid.UUID) error {
	return nil
}

type fakeCourseLinks struct {
	created []*types.CourseCompetency
}

func (f *fakeCourseLinks) Create(ctx context.Context, tx *gorm.DB, links []*types.CourseCompetency) ([]*types.CourseCompetency, error) {
	f.created = append(f.created, links...)
	return links, nil
}

func (f *fakeCourseLinks) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseCompetency, error) {
	return nil, nil
}

func (f *fakeCourseLinks) Exists(ctx context.Context, tx *gorm.DB, courseID, competencyID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeCourseLinks) Delete(ctx context.Context, tx *gorm.DB, courseID, competencyID uuid.UUID) error {
	return nil
}

type recordingNotifier struct {
	createdCalls  int
	linkedCalls   int
	unlinkedCalls int
}

func (n *recordingNotifier) CompetencyCreated(competency *types.Competency) { n.createdCalls++ }

func (n *recordingNotifier) CompetencyLinked(entity types.EntityRef, c *types.Competency) {
	n.linkedCalls++
}

func (n *recordingNotifier) CompetencyUnlinked(entity types.EntityRef, competencyID string) {
	n.unlinkedCalls++
}

func newAssignmentFixture(t *testing.T, repo *fakeCompetencyRepo, persons *fakePersonLinks, courses *fakeCourseLinks, notifier *recordingNotifier) CompetencyAssigner {
	t.Helper()
	return NewAssignmentService(nil, testLogger(t), repo, persons, courses, &fakeEmbedder{}, notifier)
}

func TestCommitExistingCompetencyLinksPerson(t *testing.T) {
	repo := &fakeCompetencyRepo{}
	python := repo.add(&types.Competency{Name: "Python", Type: types.CompetencyTypeTechTool})
	persons := &fakePersonLinks{}
	notifier := &recordingNotifier{}
	assigner := newAssignmentFixture(t, repo, persons, &fakeCourseLinks{}, notifier)

	entity := personRef()
	advanced := types.ProficiencyAdvanced
	result, err := assigner.Commit(context.Background(), CommitInput{
		Entity:      entity,
		Identity:    ExistingIdentity{ID: python.ID},
		Proficiency: &advanced,
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Created {
		t.Fatalf("existing competency must not report Created")
	}
	if result.CompetencyID != python.ID {
		t.Fatalf("competency id: want=%s got=%s", python.ID, result.CompetencyID)
	}
	if len(persons.created) != 1 {
		t.Fatalf("links created: want=1 got=%d", len(persons.created))
	}
	link := persons.created[0]
	if link.PersonID != entity.ID || link.CompetencyID != python.ID {
		t.Fatalf("link rows: %#v", link)
	}
	if link.Proficiency == nil || *link.Proficiency != advanced {
		t.Fatalf("link proficiency: %v", link.Proficiency)
	}
	if notifier.createdCalls != 0 || notifier.linkedCalls != 1 {
		t.Fatalf("notifier calls: created=%d linked=%d", notifier.createdCalls, notifier.linkedCalls)
	}
}

func TestCommitExistingCompetencyLinksCourse(t *testing.T) {
	repo := &fakeCompetencyRepo{}
	sql := repo.add(&types.Competency{Name: "SQL", Type: types.CompetencyTypeTechTool})
	courses := &fakeCourseLinks{}
	assigner := newAssignmentFixture(t, repo, &fakePersonLinks{}, courses, &recordingNotifier{})

	entity := types.EntityRef{Kind: types.EntityKindCourse, ID: uuid.New()}
	if _, err := assigner.Commit(context.Background(), CommitInput{
		Entity:   entity,
		Identity: ExistingIdentity{ID: sql.ID},
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(courses.created) != 1 || courses.created[0].CourseID != entity.ID {
		t.Fatalf("course link rows: %#v", courses.created)
	}
}

func TestCommitRejectsUnknownExistingCompetency(t *testing.T) {
	assigner := newAssignmentFixture(t, &fakeCompetencyRepo{}, &fakePersonLinks{}, &fakeCourseLinks{}, &recordingNotifier{})

	_, err := assigner.Commit(context.Background(), CommitInput{
		Entity:   personRef(),
		Identity: ExistingIdentity{ID: uuid.New()},
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCommitRejectsDuplicateLink(t *testing.T) {
	repo := &fakeCompetencyRepo{}
	python := repo.add(&types.Competency{Name: "Python", Type: types.CompetencyTypeTechTool})
	entity := personRef()
	persons := &fakePersonLinks{existing: map[uuid.UUID]map[uuid.UUID]bool{
		entity.ID: {python.ID: true},
	}}
	notifier := &recordingNotifier{}
	assigner := newAssignmentFixture(t, repo, persons, &fakeCourseLinks{}, notifier)

	_, err := assigner.Commit(context.Background(), CommitInput{
		Entity:   entity,
		Identity: ExistingIdentity{ID: python.ID},
	})
	if !errors.Is(err, apperr.ErrDuplicateLink) {
		t.Fatalf("want ErrDuplicateLink, got %v", err)
	}
	if notifier.linkedCalls != 0 {
		t.Fatalf("duplicate link must not notify")
	}
}

func TestCommitRejectsProficiencyOnUnsupportedType(t *testing.T) {
	repo := &fakeCompetencyRepo{}
	integrity := repo.add(&types.Competency{Name: "Integrity", Type: types.CompetencyTypeValue})
	persons := &fakePersonLinks{}
	assigner := newAssignmentFixture(t, repo, persons, &fakeCourseLinks{}, &recordingNotifier{})

	expert := types.ProficiencyExpert
	_, err := assigner.Commit(context.Background(), CommitInput{
		Entity:      personRef(),
		Identity:    ExistingIdentity{ID: integrity.ID},
		Proficiency: &expert,
	})
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if len(persons.created) != 0 {
		t.Fatalf("invalid commit must not create links")
	}
}

func TestCommitProvisionalRequiresDraft(t *testing.T) {
	assigner := newAssignmentFixture(t, &fakeCompetencyRepo{}, &fakePersonLinks{}, &fakeCourseLinks{}, &recordingNotifier{})

	_, err := assigner.Commit(context.Background(), CommitInput{
		Entity:   personRef(),
		Identity: NewProvisionalIdentity(),
	})
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}
