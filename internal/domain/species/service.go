// Package species provides the domain service orchestrating the species
// submission pipeline: identifier resolution, normalization, cross-field
// validation, persistence, and event publication.
package species

import (
	"context"

	"github.com/tckdb/tckdb-go/internal/chem/validate"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

// ─────────────────────────────────────────────────────────────────────────────
// Capability interfaces
// ─────────────────────────────────────────────────────────────────────────────

// IdentifierResolver normalizes and cross-derives the four molecular
// descriptors of a submission.
type IdentifierResolver interface {
	Resolve(ctx context.Context, ids stypes.IdentifierSet, multiplicity, charge int) (stypes.IdentifierSet, error)
}

// EventPublisher delivers domain events to downstream consumers.  Publication
// is best effort: a failed publish never rolls back an accepted record.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// LogArchive stores the electronic-structure log files referenced by an
// accepted record.  Archival is best effort.
type LogArchive interface {
	ArchiveLogs(ctx context.Context, speciesID common.ID, paths []string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service coordinates species business logic across the resolver, validation
// pipeline, repository, and downstream infrastructure.
type Service struct {
	repo      Repository
	resolver  IdentifierResolver
	publisher EventPublisher
	archive   LogArchive
	logger    logging.Logger
}

// NewService constructs a species domain service.  The publisher and archive
// are optional; pass nil to disable event publication or log archival.
func NewService(repo Repository, res IdentifierResolver, publisher EventPublisher, archive LogArchive, logger logging.Logger) *Service {
	return &Service{
		repo:      repo,
		resolver:  res,
		publisher: publisher,
		archive:   archive,
		logger:    logger,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submission pipeline
// ─────────────────────────────────────────────────────────────────────────────

// Submit runs the full submission pipeline and persists the record on
// success.  The request is mutated in place: descriptors are replaced by
// their resolved forms and the geometry is normalized.
func (s *Service) Submit(ctx context.Context, req *stypes.CreateRequest) (*Species, error) {
	resolved, violations, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.logger.Info("species submission rejected",
			logging.String("label", req.Label),
			logging.Int("violations", len(violations)))
		s.publish(ctx, RejectedEvent{Label: req.Label, Violations: violations})
		return nil, validate.AsError(req.Label, violations)
	}

	sp := NewSpecies(req, resolved)
	if err := s.repo.Save(ctx, sp); err != nil {
		return nil, err
	}

	s.logger.Info("species accepted",
		logging.String("id", string(sp.ID)),
		logging.String("label", sp.Label),
		logging.String("inchi_key", resolved.InChIKey))

	s.publishPending(ctx, sp)
	s.archiveLogs(ctx, sp)
	return sp, nil
}

// DryRun executes resolution and validation without persisting anything.
// Resolution failures are reported as violations rather than errors, so a
// dry run only errs on infrastructure failures.
func (s *Service) DryRun(ctx context.Context, req *stypes.CreateRequest) (*stypes.ValidationReport, error) {
	resolved, violations, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &stypes.ValidationReport{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
	if report.Valid {
		report.Resolved = &resolved
	}
	return report, nil
}

// prepare runs the shared front half of the pipeline: resolve identifiers,
// normalize the record, validate.  Resolution failures surface as field
// violations; only malformed-input errors from the resolver abort outright.
func (s *Service) prepare(ctx context.Context, req *stypes.CreateRequest) (stypes.IdentifierSet, []common.FieldViolation, error) {
	var violations []common.FieldViolation

	ids := stypes.IdentifierSet{
		SMILES:   req.SMILES,
		InChI:    req.InChI,
		InChIKey: req.InChIKey,
		Graph:    req.Graph,
	}

	resolved, err := s.resolver.Resolve(ctx, ids, req.Multiplicity, req.Charge)
	if err != nil {
		violations = append(violations, resolutionViolation(err))
	} else {
		req.SMILES = resolved.SMILES
		req.InChI = resolved.InChI
		req.InChIKey = resolved.InChIKey
		req.Graph = resolved.Graph
	}

	validate.Normalize(req)
	violations = append(violations, validate.Validate(req)...)
	return resolved, violations, nil
}

// resolutionViolation maps a resolver error onto the field it concerns.
func resolutionViolation(err error) common.FieldViolation {
	field := "identifiers"
	switch {
	case errors.IsCode(err, errors.ErrCodeMultiplicityMismatch):
		field = "multiplicity"
	case errors.IsCode(err, errors.ErrCodeAdjlistFormat):
		field = "graph"
	}
	return common.FieldViolation{Field: field, Message: err.Error()}
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────────────────

// Get retrieves a species by ID.
func (s *Service) Get(ctx context.Context, id common.ID) (*Species, error) {
	if err := id.Validate(); err != nil {
		return nil, errors.InvalidParam("invalid species ID").WithCause(err)
	}
	return s.repo.FindByID(ctx, id)
}

// GetByInChIKey retrieves every species sharing an InChIKey.
func (s *Service) GetByInChIKey(ctx context.Context, inchiKey string) ([]*Species, error) {
	if inchiKey == "" {
		return nil, errors.InvalidParam("InChIKey cannot be empty")
	}
	return s.repo.FindByInChIKey(ctx, inchiKey)
}

// List returns a filtered, paginated listing.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Species, int64, error) {
	filter.Page.Normalize()
	return s.repo.List(ctx, filter)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle operations
// ─────────────────────────────────────────────────────────────────────────────

// Review marks a record as reviewed with the given approval outcome.
func (s *Service) Review(ctx context.Context, id common.ID, approved bool) (*Species, error) {
	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sp.Review(approved); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}

	s.logger.Info("species reviewed",
		logging.String("id", string(id)),
		logging.Bool("approved", approved))

	s.publishPending(ctx, sp)
	return sp, nil
}

// Retract marks a record as retracted.  The record stays in the repository
// with its retraction reason; it is filtered from default listings.
func (s *Service) Retract(ctx context.Context, id common.ID, reason string) (*Species, error) {
	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sp.Retract(reason); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}

	s.logger.Info("species retracted",
		logging.String("id", string(id)),
		logging.String("reason", reason))

	s.publishPending(ctx, sp)
	return sp, nil
}

// Delete removes a record permanently.
func (s *Service) Delete(ctx context.Context, id common.ID) error {
	if err := id.Validate(); err != nil {
		return errors.InvalidParam("invalid species ID").WithCause(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("species deleted", logging.String("id", string(id)))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) publish(ctx context.Context, event DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			logging.String("event", event.EventType()),
			logging.Err(err))
	}
}

func (s *Service) publishPending(ctx context.Context, sp *Species) {
	for _, e := range sp.Events() {
		s.publish(ctx, e)
	}
	sp.ClearEvents()
}

func (s *Service) archiveLogs(ctx context.Context, sp *Species) {
	if s.archive == nil {
		return
	}
	paths := sp.LogPaths()
	if len(paths) == 0 {
		return
	}
	if err := s.archive.ArchiveLogs(ctx, sp.ID, paths); err != nil {
		s.logger.Warn("failed to archive job logs",
			logging.String("id", string(sp.ID)),
			logging.Int("paths", len(paths)),
			logging.Err(err))
	}
}
