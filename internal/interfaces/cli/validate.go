package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tckdb/tckdb-go/internal/chem/oracle"
	"github.com/tckdb/tckdb-go/internal/chem/resolver"
	"github.com/tckdb/tckdb-go/internal/config"
	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

// oracleFromConfig builds the conversion oracle the CLI resolves against.
// The CLI talks to the oracle directly and skips the Redis result cache; a
// one-shot process gains nothing from warming it.
func oracleFromConfig(cfg *config.Config, logger logging.Logger) oracle.Oracle {
	if cfg.Oracle.Mode == "http" {
		return oracle.NewHTTPOracle(oracle.HTTPConfig{
			BaseURL:           cfg.Oracle.BaseURL,
			Timeout:           cfg.Oracle.Timeout,
			RequestsPerSecond: cfg.Oracle.RequestsPerSecond,
		}, nil, logger)
	}
	return oracle.NewUnavailable()
}

func newValidateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <record.json>",
		Short: "Run the submission pipeline on a species record without persisting it",
		Long:  "validate reads a species submission from a JSON file (or stdin with \"-\"),\nresolves its identifiers, and reports every validation violation.  The exit\ncode is non-zero when the record would be rejected.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, opts)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("reading record: %w", err)
			}
			var req stypes.CreateRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parsing record: %w", err)
			}

			res := resolver.New(oracleFromConfig(cfg, logger), logger)
			svc := species.NewService(nil, res, nil, nil, logger)

			report, err := svc.DryRun(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("record failed validation with %d violation(s)", len(report.Violations))
			}
			return nil
		},
	}
}
