package services

import (
  "context"
  "errors"
  "fmt"
  "sync"

  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/types"
)

type ReconcileAction string

const (
  ReconcileActionPending ReconcileAction = "pending"
  ReconcileActionAdding  ReconcileAction = "adding"
  ReconcileActionAdded   ReconcileAction = "added"
  ReconcileActionIgnored ReconcileAction = "ignored"
)

// ReconcileItem is the externally visible state of one candidate under
// reconciliation.
type ReconcileItem struct {
  Candidate            *ExtractedCandidate `json:"candidate"`
  SelectedOptionID     string              `json:"selectedOptionId"`
  Proficiency          *types.Proficiency  `json:"proficiency,omitempty"`
  Action               ReconcileAction     `json:"action"`
  AlreadyLinked        bool                `json:"alreadyLinked"`
  CommittedCompetency  *uuid.UUID          `json:"committedCompetencyId,omitempty"`
  LastError            string              `json:"lastError,omitempty"`
}

// DraftEdit mutates the provisional candidate's own fields. Nil fields are
// left untouched.
type DraftEdit struct {
  Name        *string `json:"name,omitempty"`
  Type        *string `json:"type,omitempty"`
  Description *string `json:"description,omitempty"`
}

// ReconciliationService holds one mutable session per entity: the state
// machine between extraction results arriving and the user committing or
// ignoring each candidate. Sessions are replaced wholesale when extraction is
// re-run and carry no state across runs.
type ReconciliationService interface {
  StartSession(entity types.EntityRef, entityName string, candidates []*ExtractedCandidate, linked []uuid.UUID)
  EndSession(entity types.EntityRef)
  List(entity types.EntityRef, includeIgnored bool) ([]*ReconcileItem, error)
  SelectOption(entity types.EntityRef, candidateID uuid.UUID, optionID string) error
  EditDraft(entity types.EntityRef, candidateID uuid.UUID, edit DraftEdit) error
  SetProficiency(entity types.EntityRef, candidateID uuid.UUID, proficiency types.Proficiency) error
  Ignore(entity types.EntityRef, candidateID uuid.UUID) error
  Restore(entity types.EntityRef, candidateID uuid.UUID) error
  Commit(ctx context.Context, entity types.EntityRef, candidateID uuid.UUID) (*ReconcileItem, error)
}

type reconcileItem struct {
  candidate           *ExtractedCandidate
  selectedOptionID    string
  proficiency         *types.Proficiency
  action              ReconcileAction
  committedCompetency *uuid.UUID
  lastError           string
}

type reconcileSession struct {
  entity     types.EntityRef
  entityName string
  items      []*reconcileItem
  byID       map[uuid.UUID]*reconcileItem
  linked     map[uuid.UUID]bool
}

type reconciliationService struct {
  mu       sync.Mutex
  log      *logger.Logger
  assigner CompetencyAssigner
  resolver IdentityResolver
  sessions map[string]*reconcileSession
}

func NewReconciliationService(baseLog *logger.Logger, assigner CompetencyAssigner, resolver IdentityResolver) ReconciliationService {
  return &reconciliationService{
    log:      baseLog.With("service", "ReconciliationService"),
    assigner: assigner,
    resolver: resolver,
    sessions: make(map[string]*reconcileSession),
  }
}

func (s *reconciliationService) StartSession(entity types.EntityRef, entityName string, candidates []*ExtractedCandidate, linked []uuid.UUID) {
  session := &reconcileSession{
    entity:     entity,
    entityName: entityName,
    byID:       make(map[uuid.UUID]*reconcileItem, len(candidates)),
    linked:     make(map[uuid.UUID]bool, len(linked)),
  }
  for _, id := range linked {
    session.linked[id] = true
  }
  for _, candidate := range candidates {
    item := &reconcileItem{
      candidate:        candidate,
      selectedOptionID: candidate.ProvisionalID,
      proficiency:      candidate.SuggestedProficiency,
      action:           ReconcileActionPending,
    }
    session.items = append(session.items, item)
    session.byID[candidate.CandidateID] = item
  }

  s.mu.Lock()
  defer s.mu.Unlock()
  // Re-running extraction discards all prior candidate state unconditionally.
  s.sessions[entity.String()] = session
  s.log.Info("Reconciliation session started", "entity", entity.String(), "candidates", len(candidates))
}

func (s *reconciliationService) EndSession(entity types.EntityRef) {
  s.mu.Lock()
  defer s.mu.Unlock()
  delete(s.sessions, entity.String())
}

func (s *reconciliationService) session(entity types.EntityRef) (*reconcileSession, error) {
  session, ok := s.sessions[entity.String()]
  if !ok {
    return nil, fmt.Errorf("%w: no reconciliation session for %s", apperr.ErrNotFound, entity.String())
  }
  return session, nil
}

func (s *reconciliationService) item(entity types.EntityRef, candidateID uuid.UUID) (*reconcileSession, *reconcileItem, error) {
  session, err := s.session(entity)
  if err != nil {
    return nil, nil, err
  }
  item, ok := session.byID[candidateID]
  if !ok {
    return nil, nil, fmt.Errorf("%w: unknown candidate %s", apperr.ErrNotFound, candidateID)
  }
  return session, item, nil
}

// alreadyLinked reports whether the item's currently selected option refers
// to a competency already linked to the entity. This guards rendering and
// selection independently of the server-side uniqueness constraint.
func (session *reconcileSession) alreadyLinked(item *reconcileItem) bool {
  if id, ok := types.ParsePersistedID(item.selectedOptionID); ok {
    return session.linked[id]
  }
  return false
}

func (session *reconcileSession) snapshot(item *reconcileItem) *ReconcileItem {
  return &ReconcileItem{
    Candidate:           item.candidate,
    SelectedOptionID:    item.selectedOptionID,
    Proficiency:         item.proficiency,
    Action:              item.action,
    AlreadyLinked:       session.alreadyLinked(item),
    CommittedCompetency: item.committedCompetency,
    LastError:           item.lastError,
  }
}

func (s *reconciliationService) List(entity types.EntityRef, includeIgnored bool) ([]*ReconcileItem, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  session, err := s.session(entity)
  if err != nil {
    return nil, err
  }
  out := make([]*ReconcileItem, 0, len(session.items))
  for _, item := range session.items {
    if item.action == ReconcileActionIgnored && !includeIgnored {
      continue
    }
    out = append(out, session.snapshot(item))
  }
  return out, nil
}

// selectedOptionType is the competency type the commit would apply to: the
// draft's own type when the provisional candidate is selected, otherwise the
// type of the chosen similar option.
func (item *reconcileItem) selectedOptionType() (types.CompetencyType, error) {
  if item.selectedOptionID == item.candidate.ProvisionalID {
    return item.candidate.Type, nil
  }
  for _, opt := range item.candidate.SimilarOptions {
    if opt.ID.String() == item.selectedOptionID {
      return opt.Type, nil
    }
  }
  return "", fmt.Errorf("%w: option %s does not belong to candidate", apperr.ErrInvalidArgument, item.selectedOptionID)
}

func (s *reconciliationService) SelectOption(entity types.EntityRef, candidateID uuid.UUID, optionID string) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  _, item, err := s.item(entity, candidateID)
  if err != nil {
    return err
  }
  if item.action != ReconcileActionPending {
    return fmt.Errorf("%w: option can only change while pending", apperr.ErrInvalidArgument)
  }
  valid := optionID == item.candidate.ProvisionalID
  if !valid {
    for _, opt := range item.candidate.SimilarOptions {
      if opt.ID.String() == optionID {
        valid = true
        break
      }
    }
  }
  if !valid {
    return fmt.Errorf("%w: option %s does not belong to candidate %s", apperr.ErrInvalidArgument, optionID, candidateID)
  }
  item.selectedOptionID = optionID
  item.lastError = ""
  return nil
}

func (s *reconciliationService) EditDraft(entity types.EntityRef, candidateID uuid.UUID, edit DraftEdit) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  _, item, err := s.item(entity, candidateID)
  if err != nil {
    return err
  }
  if item.action != ReconcileActionPending {
    return fmt.Errorf("%w: draft can only change while pending", apperr.ErrInvalidArgument)
  }
  if !types.IsProvisionalID(item.candidate.ProvisionalID) || item.selectedOptionID != item.candidate.ProvisionalID {
    return fmt.Errorf("%w: draft is only editable while the new competency itself is selected", apperr.ErrInvalidArgument)
  }

  if edit.Name != nil {
    if *edit.Name == "" {
      return fmt.Errorf("%w: competency name cannot be empty", apperr.ErrInvalidArgument)
    }
    item.candidate.Name = *edit.Name
  }
  if edit.Type != nil {
    ctype, err := types.ParseCompetencyType(*edit.Type)
    if err != nil {
      return fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
    }
    item.candidate.Type = ctype
    if !ctype.SupportsProficiency() {
      item.proficiency = nil
    }
  }
  if edit.Description != nil {
    item.candidate.Description = *edit.Description
  }
  item.lastError = ""
  return nil
}

func (s *reconciliationService) SetProficiency(entity types.EntityRef, candidateID uuid.UUID, proficiency types.Proficiency) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  _, item, err := s.item(entity, candidateID)
  if err != nil {
    return err
  }
  if item.action != ReconcileActionPending {
    return fmt.Errorf("%w: proficiency can only change while pending", apperr.ErrInvalidArgument)
  }
  if !proficiency.Valid() {
    return fmt.Errorf("%w: unknown proficiency %q", apperr.ErrInvalidArgument, string(proficiency))
  }
  ctype, err := item.selectedOptionType()
  if err != nil {
    return err
  }
  if !ctype.SupportsProficiency() {
    return fmt.Errorf("%w: competency type %s does not take a proficiency", apperr.ErrInvalidArgument, ctype)
  }
  item.proficiency = &proficiency
  return nil
}

func (s *reconciliationService) Ignore(entity types.EntityRef, candidateID uuid.UUID) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  _, item, err := s.item(entity, candidateID)
  if err != nil {
    return err
  }
  if item.action != ReconcileActionPending {
    return fmt.Errorf("%w: only pending candidates can be ignored", apperr.ErrInvalidArgument)
  }
  item.action = ReconcileActionIgnored
  return nil
}

func (s *reconciliationService) Restore(entity types.EntityRef, candidateID uuid.UUID) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  _, item, err := s.item(entity, candidateID)
  if err != nil {
    return err
  }
  if item.action != ReconcileActionIgnored {
    return fmt.Errorf("%w: only ignored candidates can be restored", apperr.ErrInvalidArgument)
  }
  item.action = ReconcileActionPending
  return nil
}

func (s *reconciliationService) Commit(ctx context.Context, entity types.EntityRef, candidateID uuid.UUID) (*ReconcileItem, error) {
  input, err := s.beginCommit(entity, candidateID)
  if err != nil {
    return nil, err
  }

  result, commitErr := s.assigner.Commit(ctx, *input)
  return s.finishCommit(ctx, entity, candidateID, result, commitErr)
}

// beginCommit validates the item and moves it pending -> adding while
// holding the lock; the assigner call itself runs unlocked.
func (s *reconciliationService) beginCommit(entity types.EntityRef, candidateID uuid.UUID) (*CommitInput, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  session, item, err := s.item(entity, candidateID)
  if err != nil {
    return nil, err
  }
  if item.action == ReconcileActionAdding {
    return nil, fmt.Errorf("%w: commit already in progress", apperr.ErrConflict)
  }
  if item.action != ReconcileActionPending {
    return nil, fmt.Errorf("%w: candidate is %s, only pending candidates commit", apperr.ErrInvalidArgument, item.action)
  }
  if session.alreadyLinked(item) {
    return nil, fmt.Errorf("%w: selected competency is already linked", apperr.ErrDuplicateLink)
  }

  identity, err := ParseIdentity(item.selectedOptionID)
  if err != nil {
    return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
  }

  input := CommitInput{
    Entity:      entity,
    Identity:    identity,
    Proficiency: item.proficiency,
  }
  if _, provisional := identity.(ProvisionalIdentity); provisional {
    draft := CandidateDraft{
      Name:        item.candidate.Name,
      Type:        item.candidate.Type,
      Description: item.candidate.Description,
    }
    if err := draft.Validate(); err != nil {
      item.lastError = err.Error()
      return nil, err
    }
    input.Draft = &draft
  }
  if item.proficiency != nil {
    ctype, err := item.selectedOptionType()
    if err != nil {
      return nil, err
    }
    if !ctype.SupportsProficiency() {
      err := fmt.Errorf("%w: competency type %s does not take a proficiency", apperr.ErrInvalidArgument, ctype)
      item.lastError = err.Error()
      return nil, err
    }
  }

  item.action = ReconcileActionAdding
  item.lastError = ""
  return &input, nil
}

func (s *reconciliationService) finishCommit(ctx context.Context, entity types.EntityRef, candidateID uuid.UUID, result *CommitResult, commitErr error) (*ReconcileItem, error) {
  s.mu.Lock()
  session, item, err := s.item(entity, candidateID)
  if err != nil {
    s.mu.Unlock()
    return nil, err
  }

  switch {
  case commitErr == nil:
    item.action = ReconcileActionAdded
    item.committedCompetency = &result.CompetencyID
    item.lastError = ""
    session.linked[result.CompetencyID] = true
    s.mu.Unlock()
    return s.snapshotOf(entity, candidateID)

  case errors.Is(commitErr, apperr.ErrDuplicateLink):
    // Expected race outcome, not an exceptional path: surface as already
    // added and make the item non-committable.
    item.action = ReconcileActionPending
    item.lastError = "already added"
    if id, ok := types.ParsePersistedID(item.selectedOptionID); ok {
      session.linked[id] = true
    }
    s.mu.Unlock()
    return nil, commitErr

  case errors.Is(commitErr, apperr.ErrNameConflict):
    // Another session created the same (name, type) first. Re-resolve so the
    // retry finds the now-existing competency instead of resubmitting the
    // stale provisional id.
    item.action = ReconcileActionPending
    item.lastError = "a competency with this name was just created; options refreshed"
    draft := CandidateDraft{
      Name:        item.candidate.Name,
      Type:        item.candidate.Type,
      Description: item.candidate.Description,
    }
    s.mu.Unlock()

    identity, options, resolveErr := s.resolver.Resolve(ctx, draft)
    if resolveErr != nil {
      s.log.Warn("Re-resolution after name conflict failed", "candidateID", candidateID, "error", resolveErr)
      return nil, commitErr
    }
    s.mu.Lock()
    if _, latest, lookupErr := s.item(entity, candidateID); lookupErr == nil {
      latest.candidate.ProvisionalID = identity.WireID()
      latest.candidate.SimilarOptions = options
      latest.selectedOptionID = identity.WireID()
    }
    s.mu.Unlock()
    return nil, commitErr

  default:
    item.action = ReconcileActionPending
    item.lastError = commitErr.Error()
    s.mu.Unlock()
    return nil, commitErr
  }
}

func (s *reconciliationService) snapshotOf(entity types.EntityRef, candidateID uuid.UUID) (*ReconcileItem, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  session, item, err := s.item(entity, candidateID)
  if err != nil {
    return nil, err
  }
  return session.snapshot(item), nil
}
