package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tckdb/tckdb-go/internal/config"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/internal/infrastructure/storage/minio"
	"github.com/tckdb/tckdb-go/pkg/types/common"
)

func newLogsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the archived electronic-structure log files",
	}
	cmd.AddCommand(newLogsListCmd(opts), newLogsGetCmd(opts), newLogsPruneCmd(opts))
	return cmd
}

func archiveFromConfig(cmd *cobra.Command, cfg *config.Config, logger logging.Logger) (*minio.LogArchive, error) {
	if !cfg.MinIO.Enabled {
		return nil, fmt.Errorf("object storage is disabled in the configuration")
	}
	client, err := minio.NewClient(cmd.Context(), cfg.MinIO, logger)
	if err != nil {
		return nil, err
	}
	return minio.NewLogArchive(client, logger), nil
}

func newLogsListCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <species-id>",
		Short: "List the archived log files of a species record",
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
			archive, err := archiveFromConfig(cmd, cfg, logger)
			if err != nil {
				return err
			}

			entries, err := archive.ListLogs(cmd.Context(), common.ID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		},
	}
}

func newLogsGetCmd(opts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Download one archived log file",
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
			archive, err := archiveFromConfig(cmd, cfg, logger)
			if err != nil {
				return err
			}

			data, err := archive.DownloadLog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `destination file ("-" for stdout)`)
	return cmd
}

func newLogsPruneCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <species-id>",
		Short: "Delete every archived log file of a species record",
		Long:  "prune removes the archived files of one species from object storage.\nRetraction does not delete archives; this is the explicit cleanup path\nfor records archived by mistake.",
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
			archive, err := archiveFromConfig(cmd, cfg, logger)
			if err != nil {
				return err
			}

			removed, err := archive.DeleteLogs(cmd.Context(), common.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d archived file(s)\n", removed)
			return nil
		},
	}
}
