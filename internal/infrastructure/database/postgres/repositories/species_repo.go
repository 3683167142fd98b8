// Package repositories provides the PostgreSQL implementations of the domain
// repository interfaces.  Scalar descriptor fields live in relational
// columns for indexed lookup; nested structures (geometries, fragments,
// trajectories) are stored as JSONB.
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
)

const uniqueViolation = "23505"

const speciesColumns = `
	id, label, charge, multiplicity,
	smiles, inchi, inchi_key, graph,
	electronic_state, coordinates,
	fragments, fragment_orientation, chirality, conformation_method,
	is_well, is_global_min, is_ts,
	global_min_geometry, irc_trajectories,
	opt_path, freq_path, sp_path, scan_paths, irc_paths,
	unconverged_jobs, extras, reviewer_flags,
	reviewed, approved, retracted, submitted_ts,
	created_at, updated_at, version`

// SpeciesRepository is the PostgreSQL implementation of the species domain's
// Repository interface.
type SpeciesRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewSpeciesRepository constructs a ready-to-use SpeciesRepository.
func NewSpeciesRepository(pool *pgxpool.Pool, logger logging.Logger) *SpeciesRepository {
	return &SpeciesRepository{pool: pool, logger: logger}
}

var _ species.Repository = (*SpeciesRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Save
// ─────────────────────────────────────────────────────────────────────────────

// Save persists a new species record.
func (r *SpeciesRepository) Save(ctx context.Context, sp *species.Species) error {
	r.logger.Debug("SpeciesRepository.Save", logging.String("id", string(sp.ID)))

	args, err := encodeSpecies(sp)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO species (
			id, label, charge, multiplicity,
			smiles, inchi, inchi_key, graph,
			electronic_state, coordinates,
			fragments, fragment_orientation, chirality, conformation_method,
			is_well, is_global_min, is_ts,
			global_min_geometry, irc_trajectories,
			opt_path, freq_path, sp_path, scan_paths, irc_paths,
			unconverged_jobs, extras, reviewer_flags,
			reviewed, approved, retracted, submitted_ts,
			created_at, updated_at, version
		) VALUES (
			$1,$2,$3,$4,
			$5,$6,$7,$8,
			$9,$10,
			$11,$12,$13,$14,
			$15,$16,$17,
			$18,$19,
			$20,$21,$22,$23,$24,
			$25,$26,$27,
			$28,$29,$30,$31,
			$32,$33,$34
		)`, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.New(errors.ErrCodeSpeciesExists, "species already exists")
		}
		r.logger.Error("SpeciesRepository.Save", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert species")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByID
// ─────────────────────────────────────────────────────────────────────────────

func (r *SpeciesRepository) FindByID(ctx context.Context, id common.ID) (*species.Species, error) {
	r.logger.Debug("SpeciesRepository.FindByID", logging.String("id", string(id)))

	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM species WHERE id = $1`, speciesColumns), id)
	return r.scanSpecies(row)
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByInChIKey
// ─────────────────────────────────────────────────────────────────────────────

func (r *SpeciesRepository) FindByInChIKey(ctx context.Context, inchiKey string) ([]*species.Species, error) {
	r.logger.Debug("SpeciesRepository.FindByInChIKey", logging.String("inchi_key", inchiKey))

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM species WHERE inchi_key = $1 ORDER BY created_at`, speciesColumns),
		inchiKey)
	if err != nil {
		r.logger.Error("SpeciesRepository.FindByInChIKey", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query species by InChIKey")
	}
	defer rows.Close()

	return r.scanSpeciesRows(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// List
// ─────────────────────────────────────────────────────────────────────────────

func (r *SpeciesRepository) List(ctx context.Context, filter species.ListFilter) ([]*species.Species, int64, error) {
	r.logger.Debug("SpeciesRepository.List",
		logging.String("label", filter.Label),
		logging.String("inchi_key", filter.InChIKey))

	whereClause, args := buildListFilter(filter)

	var total int64
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM species %s`, whereClause), args...,
	).Scan(&total); err != nil {
		r.logger.Error("SpeciesRepository.List: count", logging.Err(err))
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count failed")
	}

	filter.Page.Normalize()
	args = append(args, filter.Page.PageSize, filter.Page.Offset())
	dataSQL := fmt.Sprintf(`
		SELECT %s FROM species %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		speciesColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		r.logger.Error("SpeciesRepository.List: query", logging.Err(err))
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list query failed")
	}
	defer rows.Close()

	out, err := r.scanSpeciesRows(rows)
	return out, total, err
}

// buildListFilter renders the WHERE clause and argument list of a listing.
func buildListFilter(filter species.ListFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	nextArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeRetracted {
		conditions = append(conditions, "retracted = ''")
	}
	if filter.Label != "" {
		ph := nextArg("%" + strings.ToLower(filter.Label) + "%")
		conditions = append(conditions, fmt.Sprintf("LOWER(label) LIKE %s", ph))
	}
	if filter.InChIKey != "" {
		ph := nextArg(filter.InChIKey)
		conditions = append(conditions, fmt.Sprintf("inchi_key = %s", ph))
	}
	if filter.IsTS != nil {
		ph := nextArg(*filter.IsTS)
		conditions = append(conditions, fmt.Sprintf("is_ts = %s", ph))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update persists lifecycle changes with optimistic locking on Version.
// The aggregate's Version has already been advanced by the lifecycle
// transition, so the previous version is matched in the WHERE clause.
func (r *SpeciesRepository) Update(ctx context.Context, sp *species.Species) error {
	r.logger.Debug("SpeciesRepository.Update",
		logging.String("id", string(sp.ID)),
		logging.Int("version", sp.Version))

	flagsJSON, err := json.Marshal(sp.ReviewerFlags)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode reviewer flags")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE species SET
			reviewed=$1, approved=$2, retracted=$3, reviewer_flags=$4,
			updated_at=$5, version=$6
		WHERE id=$7 AND version=$8`,
		sp.Reviewed, sp.Approved, sp.Retracted, flagsJSON,
		sp.UpdatedAt, sp.Version,
		sp.ID, sp.Version-1,
	)
	if err != nil {
		r.logger.Error("SpeciesRepository.Update", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update species")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM species WHERE id = $1)`, sp.ID,
		).Scan(&exists); err == nil && !exists {
			return errors.New(errors.ErrCodeSpeciesNotFound, "species not found")
		}
		return errors.Conflict("species version mismatch")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

func (r *SpeciesRepository) Delete(ctx context.Context, id common.ID) error {
	r.logger.Debug("SpeciesRepository.Delete", logging.String("id", string(id)))

	tag, err := r.pool.Exec(ctx, `DELETE FROM species WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("SpeciesRepository.Delete", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete species")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeSpeciesNotFound, "species not found")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Count
// ─────────────────────────────────────────────────────────────────────────────

func (r *SpeciesRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM species`).Scan(&count); err != nil {
		r.logger.Error("SpeciesRepository.Count", logging.Err(err))
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count species")
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row encoding / decoding
// ─────────────────────────────────────────────────────────────────────────────

// encodeSpecies renders the aggregate into the positional argument list of
// the INSERT statement.
func encodeSpecies(sp *species.Species) ([]interface{}, error) {
	jsonCols := make(map[string][]byte, 9)
	for name, v := range map[string]interface{}{
		"coordinates":          sp.Coordinates,
		"fragments":            sp.Fragments,
		"fragment_orientation": sp.FragmentOrientation,
		"chirality":            sp.Chirality,
		"global_min_geometry":  sp.GlobalMinGeometry,
		"irc_trajectories":     sp.IRCTrajectories,
		"scan_paths":           sp.ScanPaths,
		"unconverged_jobs":     sp.UnconvergedJobs,
		"extras":               sp.Extras,
		"reviewer_flags":       sp.ReviewerFlags,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization,
				fmt.Sprintf("failed to encode species column %s", name))
		}
		jsonCols[name] = b
	}

	return []interface{}{
		sp.ID, sp.Label, sp.Charge, sp.Multiplicity,
		sp.Identifiers.SMILES, sp.Identifiers.InChI, sp.Identifiers.InChIKey, sp.Identifiers.Graph,
		sp.ElectronicState, jsonCols["coordinates"],
		jsonCols["fragments"], jsonCols["fragment_orientation"], jsonCols["chirality"], sp.ConformationMethod,
		sp.IsWell, sp.IsGlobalMin, sp.IsTS,
		jsonCols["global_min_geometry"], jsonCols["irc_trajectories"],
		sp.OptPath, sp.FreqPath, sp.SPPath, jsonCols["scan_paths"], sp.IRCPaths,
		jsonCols["unconverged_jobs"], jsonCols["extras"], jsonCols["reviewer_flags"],
		sp.Reviewed, sp.Approved, sp.Retracted, sp.Timestamp,
		sp.CreatedAt, sp.UpdatedAt, sp.Version,
	}, nil
}

func (r *SpeciesRepository) scanSpecies(row pgx.Row) (*species.Species, error) {
	sp, err := decodeSpecies(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeSpeciesNotFound, "species not found")
		}
		r.logger.Error("scanSpecies", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan species")
	}
	return sp, nil
}

func (r *SpeciesRepository) scanSpeciesRows(rows pgx.Rows) ([]*species.Species, error) {
	var out []*species.Species
	for rows.Next() {
		sp, err := decodeSpecies(rows)
		if err != nil {
			r.logger.Error("scanSpeciesRows", logging.Err(err))
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan species row")
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "row iteration error")
	}
	return out, nil
}

// decodeSpecies scans one row in speciesColumns order back into an
// aggregate.
func decodeSpecies(row pgx.Row) (*species.Species, error) {
	var (
		sp                                       species.Species
		coordsJSON, fragsJSON, orientJSON        []byte
		chiralJSON, gmJSON, ircJSON              []byte
		scanJSON, jobsJSON, extrasJSON, flagJSON []byte
	)

	err := row.Scan(
		&sp.ID, &sp.Label, &sp.Charge, &sp.Multiplicity,
		&sp.Identifiers.SMILES, &sp.Identifiers.InChI, &sp.Identifiers.InChIKey, &sp.Identifiers.Graph,
		&sp.ElectronicState, &coordsJSON,
		&fragsJSON, &orientJSON, &chiralJSON, &sp.ConformationMethod,
		&sp.IsWell, &sp.IsGlobalMin, &sp.IsTS,
		&gmJSON, &ircJSON,
		&sp.OptPath, &sp.FreqPath, &sp.SPPath, &scanJSON, &sp.IRCPaths,
		&jobsJSON, &extrasJSON, &flagJSON,
		&sp.Reviewed, &sp.Approved, &sp.Retracted, &sp.Timestamp,
		&sp.CreatedAt, &sp.UpdatedAt, &sp.Version,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		data []byte
		dest interface{}
	}{
		{coordsJSON, &sp.Coordinates},
		{fragsJSON, &sp.Fragments},
		{orientJSON, &sp.FragmentOrientation},
		{chiralJSON, &sp.Chirality},
		{gmJSON, &sp.GlobalMinGeometry},
		{ircJSON, &sp.IRCTrajectories},
		{scanJSON, &sp.ScanPaths},
		{jobsJSON, &sp.UnconvergedJobs},
		{extrasJSON, &sp.Extras},
		{flagJSON, &sp.ReviewerFlags},
	} {
		if len(col.data) > 0 && string(col.data) != "null" {
			if err := json.Unmarshal(col.data, col.dest); err != nil {
				return nil, err
			}
		}
	}

	return &sp, nil
}
