package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tckdb/tckdb-go/internal/chem/coords"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

func newCoordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coords",
		Short: "Convert between coordinate text blocks and structured records",
	}
	cmd.AddCommand(newCoordsParseCmd(), newCoordsFormatCmd())
	return cmd
}

func newCoordsParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <coords.txt>",
		Short: "Parse a coordinate text block into a structured JSON record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("reading coordinates: %w", err)
			}

			rec, err := coords.Parse(string(data))
			if err != nil {
				return err
			}
			if err := coords.BackfillIsotopes(rec); err != nil {
				return err
			}
			if err := coords.Validate(rec); err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
}

func newCoordsFormatCmd() *cobra.Command {
	var isotopes string

	cmd := &cobra.Command{
		Use:   "format <record.json>",
		Short: "Render a structured coordinate record as a text block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("reading record: %w", err)
			}
			var rec stypes.Coordinates
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("parsing record: %w", err)
			}

			text, err := coords.Format(&rec, coords.IsotopeStyle(isotopes))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&isotopes, "isotopes", "", `isotope annotation style ("gaussian" or empty)`)
	return cmd
}
