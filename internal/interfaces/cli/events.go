package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tckdb/tckdb-go/internal/infrastructure/messaging/kafka"
)

func newEventsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the species lifecycle event stream",
	}
	cmd.AddCommand(newEventsTailCmd(opts))
	return cmd
}

func newEventsTailCmd(opts *RootOptions) *cobra.Command {
	var (
		group        string
		fromEarliest bool
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the lifecycle topics and print each event envelope",
		Long:  "tail subscribes to the accepted, rejected, reviewed, and retracted topics\nand prints every event envelope as JSON until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if !cfg.Kafka.Enabled {
				return fmt.Errorf("kafka is disabled in the configuration")
			}
			logger, err := newLogger(cfg, opts)
			if err != nil {
				return err
			}

			if group == "" {
				// A unique group per invocation so tails never steal each
				// other's partitions.
				group = "tckdb-cli-" + uuid.New().String()
			}
			offset := "latest"
			if fromEarliest {
				offset = "earliest"
			}

			prefix := cfg.Kafka.TopicPrefix
			topics := []string{
				prefix + kafka.TopicSpeciesAccepted,
				prefix + kafka.TopicSpeciesRejected,
				prefix + kafka.TopicSpeciesReviewed,
				prefix + kafka.TopicSpeciesRetracted,
			}

			consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:         cfg.Kafka.Brokers,
				GroupID:         group,
				Topics:          topics,
				AutoOffsetReset: offset,
			}, logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			print := func(_ context.Context, msg *kafka.Message) error {
				envelope, err := kafka.MessageToEventEnvelope(msg)
				if err != nil {
					return err
				}
				return printJSON(cmd, envelope)
			}
			for _, topic := range topics {
				consumer.Subscribe(topic, print)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := consumer.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "tailing %d topic(s); press Ctrl-C to stop\n", len(topics))
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "consumer group ID (default: a unique per-invocation group)")
	cmd.Flags().BoolVar(&fromEarliest, "from-earliest", false, "start from the earliest retained events instead of new ones")
	return cmd
}
