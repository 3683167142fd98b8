package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
)

// HTTPConfig tunes the HTTP-backed Oracle.
type HTTPConfig struct {
	// BaseURL is the root of the conversion service, e.g.
	// "http://localhost:8770".
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`

	// Timeout bounds a single conversion request.  Defaults to 5s.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// RequestsPerSecond caps the request rate against the service.
	// Defaults to 10.
	RequestsPerSecond int `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
}

// DefaultHTTPConfig returns production-ready defaults.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:           5 * time.Second,
		RequestsPerSecond: 10,
	}
}

type rateLimiter struct {
	tokens   chan struct{}
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func newRateLimiter(rps int) *rateLimiter {
	rl := &rateLimiter{
		tokens:   make(chan struct{}, rps),
		interval: time.Second / time.Duration(rps),
		stop:     make(chan struct{}),
	}
	for i := 0; i < rps; i++ {
		rl.tokens <- struct{}{}
	}
	go func() {
		ticker := time.NewTicker(rl.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case rl.tokens <- struct{}{}:
				default:
				}
			case <-rl.stop:
				return
			}
		}
	}()
	return rl
}

func (rl *rateLimiter) Acquire(ctx context.Context) error {
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rl *rateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// HTTPOracle converts descriptors by calling a remote cheminformatics service
// over its JSON conversion endpoint.  Transport failures, non-2xx responses,
// and empty results are treated as conversion unavailability, never as errors.
type HTTPOracle struct {
	cfg     HTTPConfig
	client  *http.Client
	limiter *rateLimiter
	logger  logging.Logger
}

// NewHTTPOracle constructs an HTTPOracle.  A nil client uses a default with
// the configured timeout; a nil logger discards output.
func NewHTTPOracle(cfg HTTPConfig, client *http.Client, logger logging.Logger) *HTTPOracle {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HTTPOracle{
		cfg:     cfg,
		client:  client,
		limiter: newRateLimiter(cfg.RequestsPerSecond),
		logger:  logger.Named("oracle"),
	}
}

// Close releases the rate limiter's refill goroutine.
func (o *HTTPOracle) Close() {
	o.limiter.Close()
}

type convertRequest struct {
	Operation string `json:"operation"`
	Input     string `json:"input"`
}

type convertResponse struct {
	Result string `json:"result"`
	SMILES string `json:"smiles"`
	InChI  string `json:"inchi"`
}

// convert performs one rate-limited, timeout-bounded call against the
// conversion endpoint.  The returned bool follows Oracle soft-fail semantics.
func (o *HTTPOracle) convert(ctx context.Context, operation, input string) (*convertResponse, bool) {
	if err := o.limiter.Acquire(ctx); err != nil {
		o.logger.Debug("rate limiter interrupted", logging.Err(err))
		return nil, false
	}

	tctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(convertRequest{Operation: operation, Input: input})
	if err != nil {
		return nil, false
	}

	url := fmt.Sprintf("%s/api/v1/convert", o.cfg.BaseURL)
	req, err := http.NewRequestWithContext(tctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		o.logger.Debug("bad conversion request", logging.Err(err))
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Debug("conversion service unreachable",
			logging.String("operation", operation), logging.Err(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.logger.Debug("conversion rejected",
			logging.String("operation", operation), logging.Int("status", resp.StatusCode))
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false
	}
	var out convertResponse
	if err := json.Unmarshal(data, &out); err != nil {
		o.logger.Debug("malformed conversion response", logging.Err(err))
		return nil, false
	}
	return &out, true
}

func (o *HTTPOracle) single(ctx context.Context, operation, kind, input string) (string, bool, error) {
	if err := checkInput(kind, input); err != nil {
		return "", false, err
	}
	resp, ok := o.convert(ctx, operation, input)
	if !ok || resp.Result == "" {
		return "", false, nil
	}
	return resp.Result, true, nil
}

func (o *HTTPOracle) SMILESToInChI(ctx context.Context, smiles string) (string, bool, error) {
	return o.single(ctx, "smiles_to_inchi", "SMILES", smiles)
}

func (o *HTTPOracle) SMILESToGraph(ctx context.Context, smiles string) (string, bool, error) {
	return o.single(ctx, "smiles_to_graph", "SMILES", smiles)
}

func (o *HTTPOracle) GraphToDescriptors(ctx context.Context, graph string) (string, string, bool, error) {
	if err := checkInput("graph", graph); err != nil {
		return "", "", false, err
	}
	resp, ok := o.convert(ctx, "graph_to_descriptors", graph)
	if !ok || resp.SMILES == "" || resp.InChI == "" {
		return "", "", false, nil
	}
	return resp.SMILES, resp.InChI, true, nil
}

func (o *HTTPOracle) InChIKeyToInChI(ctx context.Context, inchiKey string) (string, bool, error) {
	return o.single(ctx, "inchi_key_to_inchi", "InChIKey", inchiKey)
}

func (o *HTTPOracle) InChIToInChIKey(ctx context.Context, inchi string) (string, bool, error) {
	return o.single(ctx, "inchi_to_inchi_key", "InChI", inchi)
}

func (o *HTTPOracle) InChIToSMILES(ctx context.Context, inchi string) (string, bool, error) {
	return o.single(ctx, "inchi_to_smiles", "InChI", inchi)
}
