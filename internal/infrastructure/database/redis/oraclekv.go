package redis

import (
	"context"
	"time"

	"github.com/tckdb/tckdb-go/internal/chem/oracle"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
)

// OracleKV adapts Cache to the key-value contract of the cached conversion
// oracle.  Conversions are deterministic, so failures on either side are
// swallowed and the oracle falls through to its backing implementation.
type OracleKV struct {
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

var _ oracle.KV = (*OracleKV)(nil)

// NewOracleKV builds the adapter.  A zero ttl falls back to the cache's
// default TTL.
func NewOracleKV(cache Cache, ttl time.Duration, log logging.Logger) *OracleKV {
	return &OracleKV{cache: cache, ttl: ttl, logger: log}
}

func (k *OracleKV) Get(ctx context.Context, key string) (string, bool) {
	var value string
	if err := k.cache.Get(ctx, key, &value); err != nil {
		if err != ErrCacheMiss {
			k.logger.Warn("Oracle cache lookup failed", logging.String("key", key), logging.Err(err))
		}
		return "", false
	}
	return value, true
}

func (k *OracleKV) Set(ctx context.Context, key, value string) {
	if err := k.cache.Set(ctx, key, value, k.ttl); err != nil {
		k.logger.Warn("Oracle cache store failed", logging.String("key", key), logging.Err(err))
	}
}
