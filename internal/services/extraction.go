package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/repos"
  "github.com/talentgrid/competency-backend/internal/types"
)

const (
  ExtractionEventInfo   = "info"
  ExtractionEventResult = "result"
  ExtractionEventError  = "error"
)

// ExcludedCompetency names a competency already linked to the target entity;
// the model is told not to propose it again.
type ExcludedCompetency struct {
  ID   uuid.UUID            `json:"id"`
  Name string               `json:"name"`
  Type types.CompetencyType `json:"type"`
}

type ExtractionRequest struct {
  Content             string
  ContextHint         string
  EntityName          string
  Entity              types.EntityRef
  ExcludeCompetencies []ExcludedCompetency
}

// ExtractedCandidate is one reconciled model proposal: the candidate itself
// plus the existing competencies it may duplicate. ProvisionalID is either a
// persisted competency id (exact match) or a marker-prefixed provisional id.
type ExtractedCandidate struct {
  CandidateID          uuid.UUID            `json:"candidateId"`
  Name                 string               `json:"name"`
  Type                 types.CompetencyType `json:"type"`
  Description          string               `json:"description"`
  SuggestedProficiency *types.Proficiency   `json:"suggestedProficiency,omitempty"`
  ProvisionalID        string               `json:"provisionalId"`
  SimilarOptions       []SimilarOption      `json:"similarOptions"`
}

type ExtractionEvent struct {
  Type                  string                `json:"type"`
  Message               string                `json:"message,omitempty"`
  ExtractedCompetencies []*ExtractedCandidate `json:"extractedCompetencies,omitempty"`
  EntityName            string                `json:"entityName,omitempty"`
}

// ExtractionService drives the whole pipeline: one model call, then
// sequential identity resolution per candidate, streamed as events. The
// stream carries zero or more info events and exactly one terminal result or
// error event.
type ExtractionService interface {
  Extract(ctx context.Context, req ExtractionRequest) <-chan ExtractionEvent
}

type extractionService struct {
  log        *logger.Logger
  ai         OpenAIClient
  resolver   IdentityResolver
  reconciler ReconciliationService
  runRepo    repos.ExtractionRunRepo
}

func NewExtractionService(baseLog *logger.Logger, ai OpenAIClient, resolver IdentityResolver, reconciler ReconciliationService, runRepo repos.ExtractionRunRepo) ExtractionService {
  return &extractionService{
    log:        baseLog.With("service", "ExtractionService"),
    ai:         ai,
    resolver:   resolver,
    reconciler: reconciler,
    runRepo:    runRepo,
  }
}

// beginRun opens the audit record for one extraction invocation. Auditing is
// best-effort; a failure here never blocks the extraction itself.
func (s *extractionService) beginRun(ctx context.Context, req ExtractionRequest) *types.ExtractionRun {
  if s.runRepo == nil {
    return nil
  }
  meta, _ := json.Marshal(map[string]any{
    "entityName":    req.EntityName,
    "contextHint":   req.ContextHint,
    "contentLength": len(req.Content),
    "excludedCount": len(req.ExcludeCompetencies),
  })
  run := &types.ExtractionRun{
    ID:         uuid.New(),
    EntityKind: req.Entity.Kind,
    EntityID:   req.Entity.ID,
    Status:     types.ExtractionRunStatusRunning,
    Metadata:   datatypes.JSON(meta),
  }
  if _, err := s.runRepo.Create(ctx, nil, []*types.ExtractionRun{run}); err != nil {
    s.log.Warn("Failed to record extraction run", "entity", req.Entity.String(), "error", err)
    return nil
  }
  return run
}

func (s *extractionService) finishRun(run *types.ExtractionRun, status string, candidateCount, droppedCount int, errMsg string) {
  if s.runRepo == nil || run == nil {
    return
  }
  // The caller's context may already be cancelled by the time the run ends.
  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := s.runRepo.UpdateStatus(ctx, nil, run.ID, status, candidateCount, droppedCount, errMsg); err != nil {
    s.log.Warn("Failed to finalize extraction run", "runID", run.ID, "error", err)
  }
}

func (s *extractionService) Extract(ctx context.Context, req ExtractionRequest) <-chan ExtractionEvent {
  events := make(chan ExtractionEvent, 8)

  go func() {
    defer close(events)

    emit := func(ev ExtractionEvent) bool {
      select {
      case events <- ev:
        return true
      case <-ctx.Done():
        return false
      }
    }

    if len(strings.TrimSpace(req.Content)) < MinExtractionContentLength {
      emit(ExtractionEvent{Type: ExtractionEventError, Message: fmt.Sprintf("content too short, need at least %d characters", MinExtractionContentLength)})
      return
    }

    if !emit(ExtractionEvent{Type: ExtractionEventInfo, Message: "Starting competency extraction"}) {
      return
    }

    run := s.beginRun(ctx, req)

    proposals, err := s.proposeCandidates(ctx, req)
    if err != nil {
      s.log.Error("Model call failed", "entity", req.Entity.String(), "error", err)
      s.finishRun(run, types.ExtractionRunStatusFailed, 0, 0, err.Error())
      emit(ExtractionEvent{Type: ExtractionEventError, Message: fmt.Sprintf("competency extraction failed: %v", err)})
      return
    }

    resolved := make([]*ExtractedCandidate, 0, len(proposals))
    total := len(proposals)
    for i, proposal := range proposals {
      if ctx.Err() != nil {
        // Caller went away; resolution so far is read-only apart from
        // idempotent embedding backfills, so there is nothing to undo.
        s.log.Debug("Extraction cancelled mid-stream", "processed", i, "total", total)
        s.finishRun(run, types.ExtractionRunStatusCancelled, len(resolved), total-len(resolved), "")
        return
      }
      if !emit(ExtractionEvent{Type: ExtractionEventInfo, Message: fmt.Sprintf("Processing %d/%d: %s", i+1, total, proposal.Name)}) {
        return
      }

      identity, options, err := s.resolver.Resolve(ctx, CandidateDraft{
        Name:        proposal.Name,
        Type:        proposal.Type,
        Description: proposal.Description,
      })
      if err != nil {
        // One bad candidate never aborts its siblings.
        s.log.Warn("Dropping candidate after resolution failure", "name", proposal.Name, "error", err)
        continue
      }

      resolved = append(resolved, &ExtractedCandidate{
        CandidateID:          uuid.New(),
        Name:                 proposal.Name,
        Type:                 proposal.Type,
        Description:          proposal.Description,
        SuggestedProficiency: proposal.suggestedProficiency(),
        ProvisionalID:        identity.WireID(),
        SimilarOptions:       options,
      })
    }

    if s.reconciler != nil {
      linked := make([]uuid.UUID, 0, len(req.ExcludeCompetencies))
      for _, ex := range req.ExcludeCompetencies {
        linked = append(linked, ex.ID)
      }
      s.reconciler.StartSession(req.Entity, req.EntityName, resolved, linked)
    }

    s.finishRun(run, types.ExtractionRunStatusSucceeded, len(resolved), total-len(resolved), "")

    emit(ExtractionEvent{
      Type:                  ExtractionEventResult,
      ExtractedCompetencies: resolved,
      EntityName:            req.EntityName,
    })
  }()

  return events
}

// modelProposal mirrors one item of the structured model output.
type modelProposal struct {
  Name                 string               `json:"name"`
  Type                 types.CompetencyType `json:"type"`
  Description          string               `json:"description"`
  SuggestedProficiency string               `json:"suggestedProficiency"`
}

func (p modelProposal) suggestedProficiency() *types.Proficiency {
  if p.SuggestedProficiency == "" || !p.Type.SupportsProficiency() {
    return nil
  }
  prof, err := types.ParseProficiency(p.SuggestedProficiency)
  if err != nil {
    return nil
  }
  return &prof
}

type modelProposalSet struct {
  Competencies []modelProposal `json:"competencies"`
}

func (s *extractionService) proposeCandidates(ctx context.Context, req ExtractionRequest) ([]modelProposal, error) {
  raw, err := s.ai.GenerateJSON(ctx, extractionSystemPrompt, s.buildUserPrompt(req), "competency_extraction", extractionSchema())
  if err != nil {
    return nil, err
  }

  // Round-trip through JSON to apply the typed shape to the generic map.
  encoded, err := json.Marshal(raw)
  if err != nil {
    return nil, err
  }
  var set modelProposalSet
  if err := json.Unmarshal(encoded, &set); err != nil {
    return nil, fmt.Errorf("model output did not match schema: %w", err)
  }

  if len(set.Competencies) < MinExtractedCandidates || len(set.Competencies) > MaxExtractedCandidates {
    return nil, fmt.Errorf("model returned %d competencies, want between %d and %d", len(set.Competencies), MinExtractedCandidates, MaxExtractedCandidates)
  }
  for _, p := range set.Competencies {
    if p.Name == "" {
      return nil, fmt.Errorf("model returned a competency without a name")
    }
    if !p.Type.Valid() {
      return nil, fmt.Errorf("model returned unknown competency type %q for %q", string(p.Type), p.Name)
    }
    if p.SuggestedProficiency != "" {
      if _, err := types.ParseProficiency(p.SuggestedProficiency); err != nil {
        return nil, fmt.Errorf("model returned unknown proficiency %q for %q", p.SuggestedProficiency, p.Name)
      }
    }
  }
  return set.Competencies, nil
}

const extractionSystemPrompt = `You analyse free-form text (CVs, course descriptions, project briefs) and extract the organizational competencies it demonstrates or teaches.

A competency has a name, a type and a short description. Types:
- KNOWLEDGE: a field or body of knowledge (e.g. "Machine Learning")
- SKILL: a learned practical skill (e.g. "Statistical Analysis")
- TECH_TOOL: a concrete technology or tool (e.g. "Python", "Docker")
- ABILITY: a broad personal ability (e.g. "Public Speaking")
- VALUE: a held value (e.g. "Integrity")
- BEHAVIOUR: an observable behaviour (e.g. "Mentoring")
- ENABLER: an enabling trait or circumstance (e.g. "Growth Mindset")

For KNOWLEDGE, SKILL, TECH_TOOL and ABILITY also suggest a proficiency level (BEGINNER, INTERMEDIATE, ADVANCED or EXPERT) supported by the text; leave it empty for other types or when the text gives no signal.

Prefer short, canonical competency names. Propose between 5 and 20 competencies.`

func (s *extractionService) buildUserPrompt(req ExtractionRequest) string {
  var b strings.Builder
  if req.EntityName != "" {
    fmt.Fprintf(&b, "Target: %s\n", req.EntityName)
  }
  if req.ContextHint != "" {
    fmt.Fprintf(&b, "Context: %s\n", req.ContextHint)
  }
  if len(req.ExcludeCompetencies) > 0 {
    b.WriteString("The following competencies are already recorded; do not propose them again:\n")
    for _, ex := range req.ExcludeCompetencies {
      fmt.Fprintf(&b, "- %s (%s)\n", ex.Name, ex.Type)
    }
  }
  b.WriteString("\nSource text:\n")
  b.WriteString(req.Content)
  return b.String()
}

func extractionSchema() map[string]any {
  typeNames := make([]string, 0, len(types.AllCompetencyTypes))
  for _, t := range types.AllCompetencyTypes {
    typeNames = append(typeNames, string(t))
  }
  profNames := []string{""}
  for _, p := range types.AllProficiencies {
    profNames = append(profNames, string(p))
  }

  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "competencies": map[string]any{
        "type":     "array",
        "minItems": MinExtractedCandidates,
        "maxItems": MaxExtractedCandidates,
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "name":                 map[string]any{"type": "string"},
            "type":                 map[string]any{"type": "string", "enum": typeNames},
            "description":          map[string]any{"type": "string"},
            "suggestedProficiency": map[string]any{"type": "string", "enum": profNames},
          },
          "required":             []string{"name", "type", "description", "suggestedProficiency"},
          "additionalProperties": false,
        },
      },
    },
    "required":             []string{"competencies"},
    "additionalProperties": false,
  }
}
