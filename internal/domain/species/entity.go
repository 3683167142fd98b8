// Package species provides the core domain model of the TCKDB backend.  The
// Species aggregate root carries a chemical species record through its
// lifecycle: submission, identifier resolution, validation, review, and
// retraction.
package species

import (
	"time"

	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

// ─────────────────────────────────────────────────────────────────────────────
// Domain Events
// ─────────────────────────────────────────────────────────────────────────────

// DomainEvent is a marker interface for all species-related domain events.
type DomainEvent interface {
	EventType() string
}

// AcceptedEvent is published when a submission passes resolution and
// validation and is persisted.
type AcceptedEvent struct {
	SpeciesID common.ID
	Label     string
	InChIKey  string
}

func (e AcceptedEvent) EventType() string { return "species.accepted" }

// RejectedEvent is published when a committed submission fails validation.
type RejectedEvent struct {
	Label      string
	Violations []common.FieldViolation
}

func (e RejectedEvent) EventType() string { return "species.rejected" }

// ReviewedEvent is published when a reviewer marks a record as reviewed.
type ReviewedEvent struct {
	SpeciesID common.ID
	Approved  bool
}

func (e ReviewedEvent) EventType() string { return "species.reviewed" }

// RetractedEvent is published when a record is retracted.
type RetractedEvent struct {
	SpeciesID common.ID
	Reason    string
}

func (e RetractedEvent) EventType() string { return "species.retracted" }

// ─────────────────────────────────────────────────────────────────────────────
// Species Aggregate Root
// ─────────────────────────────────────────────────────────────────────────────

// Species is the aggregate root for a stored chemical species record.  All
// descriptor fields are the resolved forms: by the time an aggregate exists,
// SMILES, InChI, InChIKey, and the adjacency-list graph are mutually
// consistent and the record has passed cross-field validation.
type Species struct {
	common.BaseEntity

	Label string `json:"label,omitempty"`

	Charge       int `json:"charge"`
	Multiplicity int `json:"multiplicity"`

	Identifiers stypes.IdentifierSet `json:"identifiers"`

	ElectronicState string `json:"electronic_state"`

	Coordinates *stypes.Coordinates `json:"coordinates"`

	Fragments           [][]int                 `json:"fragments,omitempty"`
	FragmentOrientation []stypes.Orientation    `json:"fragment_orientation,omitempty"`
	Chirality           []stypes.ChiralityEntry `json:"chirality,omitempty"`
	ConformationMethod  string                  `json:"conformation_method,omitempty"`

	IsWell      bool `json:"is_well"`
	IsGlobalMin bool `json:"is_global_min,omitempty"`
	IsTS        bool `json:"is_ts"`

	GlobalMinGeometry *stypes.Coordinates    `json:"global_min_geometry,omitempty"`
	IRCTrajectories   [][]stypes.Coordinates `json:"irc_trajectories,omitempty"`

	OptPath   string            `json:"opt_path,omitempty"`
	FreqPath  string            `json:"freq_path,omitempty"`
	SPPath    string            `json:"sp_path,omitempty"`
	ScanPaths []stypes.ScanPath `json:"scan_paths,omitempty"`
	IRCPaths  []string          `json:"irc_paths,omitempty"`

	UnconvergedJobs []stypes.UnconvergedJob `json:"unconverged_jobs,omitempty"`

	Extras        common.Metadata   `json:"extras,omitempty"`
	ReviewerFlags map[string]string `json:"reviewer_flags,omitempty"`

	// Server-owned lifecycle fields.  Clients never set these; they advance
	// only through the Review and Retract methods.
	Reviewed  bool    `json:"reviewed"`
	Approved  bool    `json:"approved"`
	Retracted string  `json:"retracted,omitempty"`
	Timestamp float64 `json:"timestamp"`

	// Pending domain events (not persisted, cleared after publishing).
	events []DomainEvent
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory
// ─────────────────────────────────────────────────────────────────────────────

// NewSpecies assembles an aggregate from a normalized, validated submission
// and its resolved identifier set.  The request must already have passed the
// validation pipeline; this factory does not re-validate.
func NewSpecies(req *stypes.CreateRequest, resolved stypes.IdentifierSet) *Species {
	now := time.Now().UTC()
	sp := &Species{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		Label:        req.Label,
		Charge:       req.Charge,
		Multiplicity: req.Multiplicity,
		Identifiers:  resolved,

		ElectronicState: req.ElectronicState,
		Coordinates:     req.Coordinates,

		Fragments:           req.Fragments,
		FragmentOrientation: req.FragmentOrientation,
		Chirality:           req.Chirality,
		ConformationMethod:  req.ConformationMethod,

		IsWell:      req.IsWell,
		IsGlobalMin: req.IsGlobalMin,
		IsTS:        req.IsTS,

		GlobalMinGeometry: req.GlobalMinGeometry,
		IRCTrajectories:   req.IRCTrajectories,

		OptPath:   req.OptPath,
		FreqPath:  req.FreqPath,
		SPPath:    req.SPPath,
		ScanPaths: req.ScanPaths,
		IRCPaths:  req.IRCPaths,

		UnconvergedJobs: req.UnconvergedJobs,

		Extras:        req.Extras,
		ReviewerFlags: req.ReviewerFlags,

		Timestamp: float64(now.UnixNano()) / 1e9,
	}

	sp.recordEvent(AcceptedEvent{
		SpeciesID: sp.ID,
		Label:     sp.Label,
		InChIKey:  resolved.InChIKey,
	})
	return sp
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle transitions
// ─────────────────────────────────────────────────────────────────────────────

// Review marks the record as reviewed with the given approval outcome.
// Reviewing an already-retracted record is rejected.
func (s *Species) Review(approved bool) error {
	if s.Retracted != "" {
		return errors.New(errors.ErrCodeSpeciesRetracted, "cannot review a retracted species")
	}
	s.Reviewed = true
	s.Approved = approved
	s.touch()
	s.recordEvent(ReviewedEvent{SpeciesID: s.ID, Approved: approved})
	return nil
}

// Retract marks the record as retracted with a reason.  Retraction is
// idempotent on the reason but a second retraction is rejected so that the
// original reason is never silently overwritten.
func (s *Species) Retract(reason string) error {
	if reason == "" {
		return errors.InvalidParam("retraction reason cannot be empty")
	}
	if s.Retracted != "" {
		return errors.New(errors.ErrCodeSpeciesRetracted, "species is already retracted")
	}
	s.Retracted = reason
	s.touch()
	s.recordEvent(RetractedEvent{SpeciesID: s.ID, Reason: reason})
	return nil
}

// IsRetracted reports whether the record has been retracted.
func (s *Species) IsRetracted() bool {
	return s.Retracted != ""
}

// AtomCount returns the number of atoms in the primary geometry.
func (s *Species) AtomCount() int {
	return s.Coordinates.AtomCount()
}

func (s *Species) touch() {
	s.UpdatedAt = time.Now().UTC()
	s.Version++
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain event accessors
// ─────────────────────────────────────────────────────────────────────────────

func (s *Species) recordEvent(e DomainEvent) {
	s.events = append(s.events, e)
}

// Events returns the pending domain events without clearing them.
func (s *Species) Events() []DomainEvent {
	return s.events
}

// ClearEvents drops the pending events after they have been published.
func (s *Species) ClearEvents() {
	s.events = nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DTO conversion
// ─────────────────────────────────────────────────────────────────────────────

// ToDTO converts the aggregate into its client-facing representation.
func (s *Species) ToDTO() stypes.DTO {
	flags := s.ReviewerFlags
	if flags == nil {
		flags = map[string]string{}
	}
	return stypes.DTO{
		BaseEntity: s.BaseEntity,

		Label:        s.Label,
		Charge:       s.Charge,
		Multiplicity: s.Multiplicity,

		IdentifierSet: s.Identifiers,

		ElectronicState: s.ElectronicState,
		Coordinates:     s.Coordinates,

		Fragments:           s.Fragments,
		FragmentOrientation: s.FragmentOrientation,
		Chirality:           s.Chirality,
		ConformationMethod:  s.ConformationMethod,

		IsWell:      s.IsWell,
		IsGlobalMin: s.IsGlobalMin,
		IsTS:        s.IsTS,

		GlobalMinGeometry: s.GlobalMinGeometry,
		IRCTrajectories:   s.IRCTrajectories,

		OptPath:   s.OptPath,
		FreqPath:  s.FreqPath,
		SPPath:    s.SPPath,
		ScanPaths: s.ScanPaths,
		IRCPaths:  s.IRCPaths,

		UnconvergedJobs: s.UnconvergedJobs,

		Extras:        s.Extras,
		ReviewerFlags: flags,

		Reviewed:  s.Reviewed,
		Approved:  s.Approved,
		Retracted: s.Retracted,
		Timestamp: s.Timestamp,
	}
}

// LogPaths collects every job-log path referenced by the record, in a stable
// order, for archival.
func (s *Species) LogPaths() []string {
	var paths []string
	for _, p := range []string{s.OptPath, s.FreqPath, s.SPPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	for _, sp := range s.ScanPaths {
		if sp.Path != "" {
			paths = append(paths, sp.Path)
		}
	}
	paths = append(paths, s.IRCPaths...)
	for _, job := range s.UnconvergedJobs {
		if p := job["path"]; p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
