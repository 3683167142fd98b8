package oracle

import (
	"context"
	"time"
)

// CallRecorder receives the outcome of one oracle call.  The operation is
// the conversion name, ok and err carry the oracle's result, duration the
// wall time of the call.
type CallRecorder func(operation string, ok bool, err error, duration time.Duration)

// Instrumented wraps another Oracle and reports every call to a recorder.
// It sits outermost in the decorator chain so cache hits are observed the
// same way as real conversions.
type Instrumented struct {
	inner  Oracle
	record CallRecorder
}

// NewInstrumented wraps inner with call recording.  A nil recorder returns
// inner unchanged.
func NewInstrumented(inner Oracle, record CallRecorder) Oracle {
	if record == nil {
		return inner
	}
	return &Instrumented{inner: inner, record: record}
}

func (o *Instrumented) observe(op string, start time.Time, ok bool, err error) {
	o.record(op, ok, err, time.Since(start))
}

func (o *Instrumented) SMILESToInChI(ctx context.Context, smiles string) (string, bool, error) {
	start := time.Now()
	v, ok, err := o.inner.SMILESToInChI(ctx, smiles)
	o.observe("smiles_to_inchi", start, ok, err)
	return v, ok, err
}

func (o *Instrumented) SMILESToGraph(ctx context.Context, smiles string) (string, bool, error) {
	start := time.Now()
	v, ok, err := o.inner.SMILESToGraph(ctx, smiles)
	o.observe("smiles_to_graph", start, ok, err)
	return v, ok, err
}

func (o *Instrumented) GraphToDescriptors(ctx context.Context, graph string) (string, string, bool, error) {
	start := time.Now()
	smiles, inchi, ok, err := o.inner.GraphToDescriptors(ctx, graph)
	o.observe("graph_to_descriptors", start, ok, err)
	return smiles, inchi, ok, err
}

func (o *Instrumented) InChIKeyToInChI(ctx context.Context, inchiKey string) (string, bool, error) {
	start := time.Now()
	v, ok, err := o.inner.InChIKeyToInChI(ctx, inchiKey)
	o.observe("inchikey_to_inchi", start, ok, err)
	return v, ok, err
}

func (o *Instrumented) InChIToInChIKey(ctx context.Context, inchi string) (string, bool, error) {
	start := time.Now()
	v, ok, err := o.inner.InChIToInChIKey(ctx, inchi)
	o.observe("inchi_to_inchikey", start, ok, err)
	return v, ok, err
}

func (o *Instrumented) InChIToSMILES(ctx context.Context, inchi string) (string, bool, error) {
	start := time.Now()
	v, ok, err := o.inner.InChIToSMILES(ctx, inchi)
	o.observe("inchi_to_smiles", start, ok, err)
	return v, ok, err
}
