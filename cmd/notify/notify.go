// Package notify provides a CLI command that sends one test transient
// event through internal/notify's MQTT/push fanout, for verifying a
// deployment's notification configuration without running a full
// detection session.
package notify

import (
	"fmt"
	"time"

	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/notify"
	"github.com/onsetgo/correntropy/internal/transient"
	"github.com/spf13/cobra"
)

// Command returns a cobra command that sends a test transient event
// through the configured notification fanout.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		kind    string
		index   int
		fitness float64
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test transient event through the configured MQTT/push notifiers",
		Long: `Send a synthetic onset/offset event through the configured notification
fanout (MQTT and/or shoutrrr push), to verify a deployment's notification
configuration without running a full detection session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k transient.Kind
			switch kind {
			case "onset":
				k = transient.Onset
			case "offset":
				k = transient.Offset
			default:
				return fmt.Errorf("invalid kind: %s (want onset|offset)", kind)
			}

			fanout, err := notify.New(notify.Config{
				MQTT: notify.MQTTConfig(settings.Notify.MQTT),
				Push: notify.ShoutrrrConfig(settings.Notify.Shoutrrr),
			})
			if err != nil {
				return fmt.Errorf("failed to build notification fanout: %w", err)
			}
			defer fanout.Close()

			event := events.TransientEvent{
				SessionID: "cli-test",
				Kind:      k,
				Index:     index,
				Fitness:   fitness,
				Time:      time.Now(),
			}
			if err := fanout.Process(cmd.Context(), event); err != nil {
				return fmt.Errorf("failed to send test notification: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "test %s event sent (index=%d fitness=%.3f)\n", kind, index, fitness)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "onset", "Transient kind: onset|offset")
	cmd.Flags().IntVar(&index, "index", 0, "Detection-function sample index to report")
	cmd.Flags().Float64Var(&fitness, "fitness", 1.0, "Fitness score to report")

	return cmd
}
