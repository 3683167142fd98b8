package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tckdb/tckdb-go/internal/chem/resolver"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

func newResolveCmd(opts *RootOptions) *cobra.Command {
	var (
		smiles       string
		inchi        string
		inchiKey     string
		graphFile    string
		multiplicity int
		charge       int
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a partial identifier set into its full descriptor forms",
		Long:  "resolve takes any subset of SMILES, InChI, InChIKey, and an adjacency-list\ngraph file, cross-derives the missing descriptors through the configured\nconversion oracle, and prints the completed set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, opts)
			if err != nil {
				return err
			}

			ids := stypes.IdentifierSet{
				SMILES:   smiles,
				InChI:    inchi,
				InChIKey: inchiKey,
			}
			if graphFile != "" {
				data, err := readInput(cmd, graphFile)
				if err != nil {
					return fmt.Errorf("reading graph: %w", err)
				}
				ids.Graph = string(data)
			}

			res := resolver.New(oracleFromConfig(cfg, logger), logger)
			resolved, err := res.Resolve(cmd.Context(), ids, multiplicity, charge)
			if err != nil {
				return err
			}
			return printJSON(cmd, resolved)
		},
	}

	f := cmd.Flags()
	f.StringVar(&smiles, "smiles", "", "SMILES descriptor")
	f.StringVar(&inchi, "inchi", "", "InChI descriptor")
	f.StringVar(&inchiKey, "inchi-key", "", "InChIKey descriptor")
	f.StringVar(&graphFile, "graph-file", "", "adjacency-list graph file (\"-\" for stdin)")
	f.IntVar(&multiplicity, "multiplicity", 1, "declared spin multiplicity")
	f.IntVar(&charge, "charge", 0, "net charge")

	return cmd
}
