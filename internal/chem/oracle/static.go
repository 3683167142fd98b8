package oracle

import (
	"context"
	"sync"
)

// Static is a map-backed Oracle for tests and air-gapped deployments.  Each
// conversion table is keyed by the exact input string; a missing entry yields
// ok=false.
type Static struct {
	mu              sync.RWMutex
	smilesToInChI   map[string]string
	smilesToGraph   map[string]string
	graphToSMILES   map[string]string
	graphToInChI    map[string]string
	inchiKeyToInChI map[string]string
	inchiToKey      map[string]string
	inchiToSMILES   map[string]string
}

// NewStatic returns an empty Static oracle.
func NewStatic() *Static {
	return &Static{
		smilesToInChI:   make(map[string]string),
		smilesToGraph:   make(map[string]string),
		graphToSMILES:   make(map[string]string),
		graphToInChI:    make(map[string]string),
		inchiKeyToInChI: make(map[string]string),
		inchiToKey:      make(map[string]string),
		inchiToSMILES:   make(map[string]string),
	}
}

// AddSpecies registers the full descriptor set of one species so that every
// conversion between its representations succeeds.  Empty arguments skip the
// corresponding tables.
func (s *Static) AddSpecies(smiles, inchi, inchiKey, graph string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if smiles != "" && inchi != "" {
		s.smilesToInChI[smiles] = inchi
		s.inchiToSMILES[inchi] = smiles
	}
	if smiles != "" && graph != "" {
		s.smilesToGraph[smiles] = graph
		s.graphToSMILES[graph] = smiles
	}
	if graph != "" && inchi != "" {
		s.graphToInChI[graph] = inchi
	}
	if inchi != "" && inchiKey != "" {
		s.inchiToKey[inchi] = inchiKey
		s.inchiKeyToInChI[inchiKey] = inchi
	}
}

func (s *Static) lookup(table map[string]string, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := table[key]
	return v, ok
}

func (s *Static) SMILESToInChI(_ context.Context, smiles string) (string, bool, error) {
	if err := checkInput("SMILES", smiles); err != nil {
		return "", false, err
	}
	v, ok := s.lookup(s.smilesToInChI, smiles)
	return v, ok, nil
}

func (s *Static) SMILESToGraph(_ context.Context, smiles string) (string, bool, error) {
	if err := checkInput("SMILES", smiles); err != nil {
		return "", false, err
	}
	v, ok := s.lookup(s.smilesToGraph, smiles)
	return v, ok, nil
}

func (s *Static) GraphToDescriptors(_ context.Context, graph string) (string, string, bool, error) {
	if err := checkInput("graph", graph); err != nil {
		return "", "", false, err
	}
	smiles, okS := s.lookup(s.graphToSMILES, graph)
	inchi, okI := s.lookup(s.graphToInChI, graph)
	if !okS || !okI {
		return "", "", false, nil
	}
	return smiles, inchi, true, nil
}

func (s *Static) InChIKeyToInChI(_ context.Context, inchiKey string) (string, bool, error) {
	if err := checkInput("InChIKey", inchiKey); err != nil {
		return "", false, err
	}
	v, ok := s.lookup(s.inchiKeyToInChI, inchiKey)
	return v, ok, nil
}

func (s *Static) InChIToInChIKey(_ context.Context, inchi string) (string, bool, error) {
	if err := checkInput("InChI", inchi); err != nil {
		return "", false, err
	}
	v, ok := s.lookup(s.inchiToKey, inchi)
	return v, ok, nil
}

func (s *Static) InChIToSMILES(_ context.Context, inchi string) (string, bool, error) {
	if err := checkInput("InChI", inchi); err != nil {
		return "", false, err
	}
	v, ok := s.lookup(s.inchiToSMILES, inchi)
	return v, ok, nil
}
