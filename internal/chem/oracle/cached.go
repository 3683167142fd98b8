package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// KV is the cache contract used by CachedOracle.  The Redis cache in
// internal/infrastructure/database/redis implements it; tests use a map.
// Lookup misses and storage failures are silent, the oracle simply falls
// through to the backing implementation.
type KV interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// CachedOracle wraps another Oracle and memoizes successful conversions.
// Conversions are deterministic for a given input, so entries never need
// invalidation beyond TTL expiry handled by the KV implementation.
type CachedOracle struct {
	inner Oracle
	kv    KV
}

// NewCachedOracle wraps inner with the given cache.
func NewCachedOracle(inner Oracle, kv KV) *CachedOracle {
	return &CachedOracle{inner: inner, kv: kv}
}

func cacheKey(operation, input string) string {
	return fmt.Sprintf("oracle:%s:%s", operation, strings.TrimSpace(input))
}

func (c *CachedOracle) cached(
	ctx context.Context,
	operation, input string,
	fn func(context.Context, string) (string, bool, error),
) (string, bool, error) {
	key := cacheKey(operation, input)
	if v, ok := c.kv.Get(ctx, key); ok {
		return v, true, nil
	}
	v, ok, err := fn(ctx, input)
	if err != nil || !ok {
		return v, ok, err
	}
	c.kv.Set(ctx, key, v)
	return v, true, nil
}

func (c *CachedOracle) SMILESToInChI(ctx context.Context, smiles string) (string, bool, error) {
	return c.cached(ctx, "smiles_to_inchi", smiles, c.inner.SMILESToInChI)
}

func (c *CachedOracle) SMILESToGraph(ctx context.Context, smiles string) (string, bool, error) {
	return c.cached(ctx, "smiles_to_graph", smiles, c.inner.SMILESToGraph)
}

type descriptorPair struct {
	SMILES string `json:"smiles"`
	InChI  string `json:"inchi"`
}

func (c *CachedOracle) GraphToDescriptors(ctx context.Context, graph string) (string, string, bool, error) {
	key := cacheKey("graph_to_descriptors", graph)
	if v, ok := c.kv.Get(ctx, key); ok {
		var pair descriptorPair
		if err := json.Unmarshal([]byte(v), &pair); err == nil {
			return pair.SMILES, pair.InChI, true, nil
		}
	}
	smiles, inchi, ok, err := c.inner.GraphToDescriptors(ctx, graph)
	if err != nil || !ok {
		return smiles, inchi, ok, err
	}
	if data, err := json.Marshal(descriptorPair{SMILES: smiles, InChI: inchi}); err == nil {
		c.kv.Set(ctx, key, string(data))
	}
	return smiles, inchi, true, nil
}

func (c *CachedOracle) InChIKeyToInChI(ctx context.Context, inchiKey string) (string, bool, error) {
	return c.cached(ctx, "inchi_key_to_inchi", inchiKey, c.inner.InChIKeyToInChI)
}

func (c *CachedOracle) InChIToInChIKey(ctx context.Context, inchi string) (string, bool, error) {
	return c.cached(ctx, "inchi_to_inchi_key", inchi, c.inner.InChIToInChIKey)
}

func (c *CachedOracle) InChIToSMILES(ctx context.Context, inchi string) (string, bool, error) {
	return c.cached(ctx, "inchi_to_smiles", inchi, c.inner.InChIToSMILES)
}
