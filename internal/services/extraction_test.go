package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/talentgrid/competency-backend/internal/types"
)

const extractionTestContent = "Maria has spent six years building data pipelines in Python and 'SQL', " +
	"deploying them with Docker and presenting findings to stakeholders."

func modelCompetency(name string, ctype types.CompetencyType, proficiency string) map[string]any {
	return map[string]any{
		"name":                 name,
		"type":                 string(ctype),
		"description":          "About " + name,
		"suggestedProficiency": proficiency,
	}
}

func modelOutput(items ...map[string]any) map[string]any {
	arr := make([]any, 0, len(items))
	for _, item := range items {
		arr = append(arr, item)
	}
	return map[string]any{"competencies": arr}
}

func fiveCompetencies() map[string]any {
	return modelOutput(
		modelCompetency("Python", types.CompetencyTypeTechTool, "ADVANCED"),
		modelCompetency("SQL", types.CompetencyTypeTechTool, "ADVANCED"),
		modelCompetency("Docker", types.CompetencyTypeTechTool, "INTERMEDIATE"),
		modelCompetency("Data Engineering", types.CompetencyTypeSkill, "EXPERT"),
		modelCompetency("Public Speaking", types.CompetencyTypeAbility, ""),
	)
}

func drainEvents(t *testing.T, ch <-chan ExtractionEvent) []ExtractionEvent {
	t.Helper()
	var events []ExtractionEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func personRef() types.EntityRef {
	return types.EntityRef{Kind: types.EntityKindPerson, ID: uuid.New()}
}

func TestExtractStreamsInfoThenSingleResult(t *testing.T) {
	ai := &fakeOpenAI{generateOut: fiveCompetencies()}
	resolver := &fakeResolver{}
	reconciler := &fakeReconciler{}
	svc := NewExtractionService(testLogger(t), ai, resolver, reconciler, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content:    extractionTestContent,
		EntityName: "Maria Lopez",
		Entity:     personRef(),
	}))

	if len(events) < 2 {
		t.Fatalf("expected info events plus a terminal event, got %d", len(events))
	}
	if events[0].Type != ExtractionEventInfo {
		t.Fatalf("first event: want=info got=%s", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != ExtractionEventResult {
		t.Fatalf("terminal event: want=result got=%s (%s)", last.Type, last.Message)
	}
	if last.EntityName != "Maria Lopez" {
		t.Fatalf("result entity name: want=%q got=%q", "Maria Lopez", last.EntityName)
	}
	if len(last.ExtractedCompetencies) != 5 {
		t.Fatalf("result candidates: want=5 got=%d", len(last.ExtractedCompetencies))
	}
	for i, ev := range events[:len(events)-1] {
		if ev.Type != ExtractionEventInfo {
			t.Fatalf("event %d: want=info got=%s", i, ev.Type)
		}
	}
	if resolver.resolveCalls != 5 {
		t.Fatalf("resolve calls: want=5 got=%d", resolver.resolveCalls)
	}
	if reconciler.startCalls != 1 {
		t.Fatalf("reconciliation sessions started: want=1 got=%d", reconciler.startCalls)
	}
}

func TestExtractCandidateShape(t *testing.T) {
	existingID := uuid.New()
	ai := &fakeOpenAI{generateOut: fiveCompetencies()}
	resolver := &fakeResolver{outcomes: map[string]resolveOutcome{
		"Python": {
			identity: ExistingIdentity{ID: existingID},
			options:  []SimilarOption{},
		},
	}}
	svc := NewExtractionService(testLogger(t), ai, resolver, &fakeReconciler{}, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: extractionTestContent,
		Entity:  personRef(),
	}))
	result := events[len(events)-1]
	if result.Type != ExtractionEventResult {
		t.Fatalf("terminal event: want=result got=%s", result.Type)
	}

	byName := make(map[string]*ExtractedCandidate)
	for _, c := range result.ExtractedCompetencies {
		if c.CandidateID == uuid.Nil {
			t.Fatalf("candidate %q missing id", c.Name)
		}
		byName[c.Name] = c
	}

	python := byName["Python"]
	if python.ProvisionalID != existingID.String() {
		t.Fatalf("exact match wire id: want=%s got=%s", existingID, python.ProvisionalID)
	}
	if python.SuggestedProficiency == nil || *python.SuggestedProficiency != types.ProficiencyAdvanced {
		t.Fatalf("python proficiency: got=%v", python.SuggestedProficiency)
	}

	sql := byName["SQL"]
	if !types.IsProvisionalID(sql.ProvisionalID) {
		t.Fatalf("new candidate must carry a provisional id, got %q", sql.ProvisionalID)
	}

	speaking := byName["Public Speaking"]
	if speaking.SuggestedProficiency != nil {
		t.Fatalf("empty model proficiency must stay nil, got %v", *speaking.SuggestedProficiency)
	}
}

func TestExtractDropsProficiencyForUnsupportedType(t *testing.T) {
	out := fiveCompetencies()
	out["competencies"] = append(out["competencies"].([]any),
		modelCompetency("Integrity", types.CompetencyTypeValue, "EXPERT"))
	ai := &fakeOpenAI{generateOut: out}
	svc := NewExtractionService(testLogger(t), ai, &fakeResolver{}, &fakeReconciler{}, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: extractionTestContent,
		Entity:  personRef(),
	}))
	result := events[len(events)-1]
	for _, c := range result.ExtractedCompetencies {
		if c.Name == "Integrity" {
			if c.SuggestedProficiency != nil {
				t.Fatalf("VALUE competency must not carry a proficiency, got %v", *c.SuggestedProficiency)
			}
			return
		}
	}
	t.Fatalf("Integrity candidate missing from result")
}

func TestExtractRejectsShortContent(t *testing.T) {
	ai := &fakeOpenAI{generateOut: fiveCompetencies()}
	svc := NewExtractionService(testLogger(t), ai, &fakeResolver{}, &fakeReconciler{}, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: "too short",
		Entity:  personRef(),
	}))
	if len(events) != 1 || events[0].Type != ExtractionEventError {
		t.Fatalf("short content: want a single error event, got %#v", events)
	}
	if ai.generateCalls != 0 {
		t.Fatalf("short content must not reach the model, got %d calls", ai.generateCalls)
	}
}

func TestExtractModelFailureIsTerminalError(t *testing.T) {
	ai := &fakeOpenAI{generateErr: errors.New("upstream 500")}
	resolver := &fakeResolver{}
	svc := NewExtractionService(testLogger(t), ai, resolver, &fakeReconciler{}, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: extractionTestContent,
		Entity:  personRef(),
	}))
	last := events[len(events)-1]
	if last.Type != ExtractionEventError {
		t.Fatalf("terminal event: want=error got=%s", last.Type)
	}
	if resolver.resolveCalls != 0 {
		t.Fatalf("model failure must skip resolution, got %d calls", resolver.resolveCalls)
	}
}

func TestExtractRejectsOutOfRangeCandidateCount(t *testing.T) {
	ai := &fakeOpenAI{generateOut: modelOutput(
		modelCompetency("Python", types.CompetencyTypeTechTool, ""),
		modelCompetency("SQL", types.CompetencyTypeTechTool, ""),
	)}
	svc := NewExtractionService(testLogger(t), ai, &fakeResolver{}, &fakeReconciler{}, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: extractionTestContent,
		Entity:  personRef(),
	}))
	last := events[len(events)-1]
	if last.Type != ExtractionEventError {
		t.Fatalf("undersized proposal set: want terminal error, got %s", last.Type)
	}
}

func TestExtractRejectsUnknownEnumValues(t *testing.T) {
	badType := fiveCompetencies()
	badType["competencies"] = append(badType["competencies"].([]any),
		modelCompetency("Chaos", "WIZARDRY", ""))

	badProficiency := fiveCompetencies()
	badProficiency["competencies"] = append(badProficiency["competencies"].([]any),
		modelCompetency("SQL Tuning", types.CompetencyTypeSkill, "GRANDMASTER"))

	for name, out := range map[string]map[string]any{"type": badType, "proficiency": badProficiency} {
		ai := &fakeOpenAI{generateOut: out}
		svc := NewExtractionService(testLogger(t), ai, &fakeResolver{}, &fakeReconciler{}, nil)
		events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
			Content: extractionTestContent,
			Entity:  personRef(),
		}))
		last := events[len(events)-1]
		if last.Type != ExtractionEventError {
			t.Fatalf("unknown %s: want terminal error, got %s", name, last.Type)
		}
	}
}

func TestExtractDropsFailedCandidatesAndKeepsRest(t *testing.T) {
	ai := &fakeOpenAI{generateOut: fiveCompetencies()}
	resolver := &fakeResolver{outcomes: map[string]resolveOutcome{
		"Docker": {err: errors.New("similarity query timed out")},
	}}
	reconciler := &fakeReconciler{}
	svc := NewExtractionService(testLogger(t), ai, resolver, reconciler, nil)

	events := drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: extractionTestContent,
		Entity:  personRef(),
	}))
	last := events[len(events)-1]
	if last.Type != ExtractionEventResult {
		t.Fatalf("partial failure must still end in a result, got %s (%s)", last.Type, last.Message)
	}
	if len(last.ExtractedCompetencies) != 4 {
		t.Fatalf("surviving candidates: want=4 got=%d", len(last.ExtractedCompetencies))
	}
	for _, c := range last.ExtractedCompetencies {
		if c.Name == "Docker" {
			t.Fatalf("failed candidate leaked into the result")
		}
	}
	if len(reconciler.lastCandidates) != 4 {
		t.Fatalf("session candidates: want=4 got=%d", len(reconciler.lastCandidates))
	}
}

func TestExtractSeedsSessionWithLinkedCompetencies(t *testing.T) {
	linkedID := uuid.New()
	ai := &fakeOpenAI{generateOut: fiveCompetencies()}
	reconciler := &fakeReconciler{}
	svc := NewExtractionService(testLogger(t), ai, &fakeResolver{}, reconciler, nil)
	entity := personRef()

	drainEvents(t, svc.Extract(context.Background(), ExtractionRequest{
		Content: extractionTestContent,
		Entity:  entity,
		ExcludeCompetencies: []ExcludedCompetency{
			{ID: linkedID, Name: "Python", Type: types.CompetencyTypeTechTool},
		},
	}))

	if reconciler.lastEntity != entity {
		t.Fatalf("session entity: want=%s got=%s", entity, reconciler.lastEntity)
	}
	if len(reconciler.lastLinked) != 1 || reconciler.lastLinked[0] != linkedID {
		t.Fatalf("session linked set: want=[%s] got=%v", linkedID, reconciler.lastLinked)
	}
	if !strings.Contains(ai.lastUser, "Python") {
		t.Fatalf("exclusions missing from model prompt:\n%s", ai.lastUser)
	}
}

func TestExtractStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ai := &fakeOpenAI{generateOut: fiveCompetencies()}
	resolver := &fakeResolver{}
	reconciler := &fakeReconciler{}
	svc := NewExtractionService(testLogger(t), ai, resolver, reconciler, nil)

	events := drainEvents(t, svc.Extract(ctx, ExtractionRequest{
		Content: extractionTestContent,
		Entity:  personRef(),
	}))
	for _, ev := range events {
		if ev.Type == ExtractionEventResult {
			t.Fatalf("cancelled extraction must not emit a result")
		}
	}
	if resolver.resolveCalls != 0 {
		t.Fatalf("cancelled extraction must not resolve candidates, got %d calls", resolver.resolveCalls)
	}
	if reconciler.startCalls != 0 {
		t.Fatalf("cancelled extraction must not open a session")
	}
}
