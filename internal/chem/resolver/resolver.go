// Package resolver derives the full chemical identifier set of a species from
// whatever descriptors the submitter declared.  It chains oracle conversions
// in a fixed order, fills only missing fields, and reconciles the adjacency
// list's embedded multiplicity with the declared value.
package resolver

import (
	"context"

	"github.com/tckdb/tckdb-go/internal/chem/adjlist"
	"github.com/tckdb/tckdb-go/internal/chem/oracle"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/species"
)

// Resolver runs the identifier resolution pipeline against one oracle.
type Resolver struct {
	oracle oracle.Oracle
	logger logging.Logger
}

// New constructs a Resolver.  A nil logger discards output.
func New(o oracle.Oracle, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{oracle: o, logger: logger.Named("resolver")}
}

// Resolve fills the missing members of ids through oracle conversions and
// returns the enriched set.  Declared values are never overwritten.  The
// steps fire in a fixed order, each only when its output is still missing:
//
//  1. graph → SMILES and InChI (pair, fill whichever is missing)
//  2. InChI → SMILES
//  3. SMILES → graph (using the now-resolved SMILES)
//  4. SMILES → graph and SMILES → InChI
//  5. InChIKey → InChI, then cascade SMILES and graph from it
//  6. InChI → InChIKey
//
// After the pipeline, a species with neither SMILES nor InChI is rejected
// with ErrCodeNoDescriptor.  A resolved graph must parse as an adjacency
// list; its intrinsic multiplicity is then reconciled against the declared
// one: equal is accepted, an even difference at charge zero rewrites the
// graph's multiplicity header, anything else is ErrCodeMultiplicityMismatch.
func (r *Resolver) Resolve(
	ctx context.Context,
	ids species.IdentifierSet,
	multiplicity, charge int,
) (species.IdentifierSet, error) {
	out := ids

	if out.Graph != "" && (out.SMILES == "" || out.InChI == "") {
		r.fillFromGraph(ctx, &out)
	}

	if out.InChI != "" && out.SMILES == "" {
		if v, ok, err := r.oracle.InChIToSMILES(ctx, out.InChI); err == nil && ok {
			out.SMILES = v
		}
	}

	if out.SMILES != "" {
		if out.Graph == "" {
			if v, ok, err := r.oracle.SMILESToGraph(ctx, out.SMILES); err == nil && ok {
				out.Graph = v
			}
		}
		if out.InChI == "" {
			if v, ok, err := r.oracle.SMILESToInChI(ctx, out.SMILES); err == nil && ok {
				out.InChI = v
			}
		}
	}

	if out.InChIKey != "" && out.InChI == "" {
		if v, ok, err := r.oracle.InChIKeyToInChI(ctx, out.InChIKey); err == nil && ok {
			out.InChI = v
			if out.SMILES == "" {
				if s, ok, err := r.oracle.InChIToSMILES(ctx, out.InChI); err == nil && ok {
					out.SMILES = s
				}
			}
			if out.Graph == "" && out.SMILES != "" {
				if g, ok, err := r.oracle.SMILESToGraph(ctx, out.SMILES); err == nil && ok {
					out.Graph = g
				}
			}
		}
	}

	if out.InChIKey == "" && out.InChI != "" {
		if v, ok, err := r.oracle.InChIToInChIKey(ctx, out.InChI); err == nil && ok {
			out.InChIKey = v
		}
	}

	if out.SMILES == "" && out.InChI == "" {
		return species.IdentifierSet{}, errors.New(errors.ErrCodeNoDescriptor,
			"no valid species descriptor: a graph, SMILES, InChI, or resolvable InChIKey is required")
	}

	if out.Graph != "" {
		reconciled, err := reconcileMultiplicity(out.Graph, multiplicity, charge)
		if err != nil {
			return species.IdentifierSet{}, err
		}
		out.Graph = reconciled
	}

	return out, nil
}

// fillFromGraph backfills SMILES and InChI from the graph.  The oracle
// produces the pair atomically, but each member is only applied to a missing
// field.
func (r *Resolver) fillFromGraph(ctx context.Context, ids *species.IdentifierSet) {
	smiles, inchi, ok, err := r.oracle.GraphToDescriptors(ctx, ids.Graph)
	if err != nil || !ok {
		if err != nil {
			r.logger.Debug("graph conversion failed", logging.Err(err))
		}
		return
	}
	if ids.SMILES == "" {
		ids.SMILES = smiles
	}
	if ids.InChI == "" {
		ids.InChI = inchi
	}
}

// reconcileMultiplicity parses the graph and compares its intrinsic
// multiplicity to the declared value.  An even difference with zero net
// charge is a chemically equivalent electronic-state relabeling and updates
// the header; anything else is a mismatch.
func reconcileMultiplicity(graph string, declared, charge int) (string, error) {
	g, err := adjlist.Parse(graph)
	if err != nil {
		return "", err
	}
	intrinsic := g.Multiplicity()
	if intrinsic == declared {
		return graph, nil
	}

	diff := declared - intrinsic
	if diff < 0 {
		diff = -diff
	}
	if diff%2 == 0 && charge == 0 {
		return adjlist.RewriteMultiplicity(graph, declared), nil
	}
	return "", errors.Newf(errors.ErrCodeMultiplicityMismatch,
		"declared multiplicity %d is irreconcilable with the graph-implied value %d at charge %d",
		declared, intrinsic, charge)
}
