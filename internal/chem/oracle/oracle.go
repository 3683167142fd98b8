// Package oracle abstracts the external cheminformatics service that converts
// between chemical descriptor formats.  The conversions are advisory: an
// implementation that cannot produce a result reports ok=false rather than an
// error, and callers fall back gracefully.  Errors are reserved for malformed
// input that no implementation could convert.
package oracle

import (
	"context"
	"strings"

	"github.com/tckdb/tckdb-go/pkg/errors"
)

// Oracle converts between chemical descriptor formats.  Every method returns
// (value, ok, err): ok=false means the conversion was unavailable or produced
// nothing, which is not an error condition.  A non-nil err indicates the input
// itself is malformed.
type Oracle interface {
	// SMILESToInChI derives an InChI descriptor from a SMILES string.
	SMILESToInChI(ctx context.Context, smiles string) (string, bool, error)

	// SMILESToGraph derives an adjacency-list graph from a SMILES string.
	SMILESToGraph(ctx context.Context, smiles string) (string, bool, error)

	// GraphToDescriptors derives a SMILES and an InChI from an adjacency-list
	// graph.  The two results are produced atomically: either both are
	// returned with ok=true or neither is.
	GraphToDescriptors(ctx context.Context, graph string) (smiles, inchi string, ok bool, err error)

	// InChIKeyToInChI looks up the InChI behind an InChIKey.
	InChIKeyToInChI(ctx context.Context, inchiKey string) (string, bool, error)

	// InChIToInChIKey hashes an InChI into its InChIKey.
	InChIToInChIKey(ctx context.Context, inchi string) (string, bool, error)

	// InChIToSMILES derives a SMILES string from an InChI descriptor.
	InChIToSMILES(ctx context.Context, inchi string) (string, bool, error)
}

func checkInput(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Newf(errors.ErrCodeOracleBadInput, "empty %s input", kind)
	}
	return nil
}

// Unavailable is an Oracle that can never convert anything.  Deployments
// without a conversion service use it; the resolution pipeline then keeps
// whatever descriptors the submitter declared.
type Unavailable struct{}

// NewUnavailable returns the always-unavailable Oracle.
func NewUnavailable() *Unavailable { return &Unavailable{} }

func (*Unavailable) SMILESToInChI(_ context.Context, smiles string) (string, bool, error) {
	return "", false, checkInput("SMILES", smiles)
}

func (*Unavailable) SMILESToGraph(_ context.Context, smiles string) (string, bool, error) {
	return "", false, checkInput("SMILES", smiles)
}

func (*Unavailable) GraphToDescriptors(_ context.Context, graph string) (string, string, bool, error) {
	return "", "", false, checkInput("graph", graph)
}

func (*Unavailable) InChIKeyToInChI(_ context.Context, inchiKey string) (string, bool, error) {
	return "", false, checkInput("InChIKey", inchiKey)
}

func (*Unavailable) InChIToInChIKey(_ context.Context, inchi string) (string, bool, error) {
	return "", false, checkInput("InChI", inchi)
}

func (*Unavailable) InChIToSMILES(_ context.Context, inchi string) (string, bool, error) {
	return "", false, checkInput("InChI", inchi)
}
