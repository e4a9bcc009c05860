package cli

import (
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/infra"
)

var (
	eventsTopic string
	eventsGroup string
)

func init() {
	eventsTailCmd.Flags().StringVar(&eventsTopic, "topic",
		infra.OutboxTopic(domain.AggregateUser, domain.EventXPAwarded), "topic to read")
	eventsTailCmd.Flags().StringVar(&eventsGroup, "group", "", "consumer group, reads from the tail when empty")

	eventsCmd.AddCommand(eventsTailCmd)
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published gamification events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print events from a Kafka topic until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runEventsTail,
}

func runEventsTail(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	consumer, err := infra.NewKafkaConsumer(cfg.KafkaBrokers, eventsTopic, eventsGroup, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	out := cmd.OutOrStdout()
	return consumer.Each(cmd.Context(), func(msg kafka.Message) error {
		_, err := fmt.Fprintf(out, "%s\t%d/%d\t%s\t%s\n",
			msg.Time.Format("2006-01-02T15:04:05Z07:00"), msg.Partition, msg.Offset, msg.Key, msg.Value)
		return err
	})
}
