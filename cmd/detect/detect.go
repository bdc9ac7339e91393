// Package detect provides the detect command: it wires an
// audiosource.Source through an engine.Session into the event bus, with
// internal/datastore and internal/notify subscribed as consumers, and
// optionally internal/httpserver for a control-plane API and
// internal/scheduler to gate a live mic session to dawn/dusk.
package detect

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onsetgo/correntropy/internal/audiosource"
	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/onsetgo/correntropy/internal/cpuspec"
	"github.com/onsetgo/correntropy/internal/datastore"
	"github.com/onsetgo/correntropy/internal/detfunc"
	"github.com/onsetgo/correntropy/internal/engine"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/httpserver"
	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/onsetgo/correntropy/internal/monitor"
	"github.com/onsetgo/correntropy/internal/notify"
	"github.com/onsetgo/correntropy/internal/scheduler"
	"github.com/onsetgo/correntropy/internal/transient"
	"github.com/spf13/cobra"
)

// Command returns the detect command: run one streaming session against
// the configured audio source, publishing every detected transient
// through the configured consumers.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run a streaming onset/offset detection session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, settings)
		},
	}
	return cmd
}

func runDetect(cmd *cobra.Command, settings *conf.Settings) error {
	logger := logging.ForService("detect")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detCfg := detfunc.Config{
		NumChannels:      settings.FilterBank.NumChannels,
		MinFreq:          settings.FilterBank.MinFreq,
		MaxFreq:          settings.FilterBank.MaxFreq,
		Samplerate:       settings.FilterBank.Samplerate,
		CorrWinSize:      settings.DetFunc.CorrWinSize,
		Hopsize:          settings.DetFunc.Hopsize,
		SigWinSize:       settings.DetFunc.SigWinSize,
		ScaleFactor:      settings.DetFunc.ScaleFactor,
		DedicatedThreads: dedicatedThreads(settings),
	}

	// The transient kernel search currently runs with a single fixed
	// window rather than spec.md's full [MinKernel,MaxKernel] sweep; the
	// widest configured kernel subsumes narrower ones for a fixed-window
	// match. See DESIGN.md's Open Question entry.
	transCfg := transient.Config{
		WindowSize:  settings.Transient.MaxKernel,
		KernelShape: 1.15,
		MinFitness:  0,
	}

	firstLen, normalLen := detCfg.ChunkSchedule()
	source, err := openSource(settings, firstLen, normalLen)
	if err != nil {
		return err
	}
	defer source.Close()

	bus := events.New(events.DefaultConfig())
	bus.Start(ctx)
	defer bus.Stop()

	var store *datastore.Store
	if settings.Datastore.Driver != "" || settings.Datastore.DSN != "" {
		store, err = datastore.Open(settings.Datastore.Driver, settings.Datastore.DSN)
		if err != nil {
			return fmt.Errorf("failed to open datastore: %w", err)
		}
		bus.Subscribe(datastore.EventConsumer{Store: store})
	}

	if settings.Notify.MQTT.Enabled || settings.Notify.Shoutrrr.Enabled {
		fanout, err := notify.New(notify.Config{
			MQTT: notify.MQTTConfig(settings.Notify.MQTT),
			Push: notify.ShoutrrrConfig(settings.Notify.Shoutrrr),
		})
		if err != nil {
			return fmt.Errorf("failed to build notification fanout: %w", err)
		}
		defer fanout.Close()
		bus.Subscribe(fanout)
	}

	if settings.HTTPServer.Enabled && store != nil {
		mon := monitor.New("/", 15*time.Second)
		mon.Start(ctx)
		srv := httpserver.New(store, mon, engine.Registry()...)
		go func() {
			if err := srv.Start(settings.HTTPServer.Listen); err != nil {
				logger.Error("http server stopped", "error", err)
			}
		}()
		defer srv.Shutdown()
	}

	if settings.AudioSource.Kind == "mic" && settings.Scheduler.Enabled {
		gate := scheduler.New(scheduler.Config{
			Enabled:   settings.Scheduler.Enabled,
			Latitude:  settings.Scheduler.Latitude,
			Longitude: settings.Scheduler.Longitude,
		})
		active, err := gate.InActiveWindow(time.Now())
		if err != nil {
			return fmt.Errorf("failed to evaluate dawn-chorus window: %w", err)
		}
		if !active {
			logger.Info("outside configured dawn/dusk window, exiting")
			return nil
		}
	}

	session := engine.New(engine.Config{DetFunc: detCfg, Transient: transCfg}, source, bus)

	if store != nil {
		sessionID, err := store.CreateSession(settings.AudioSource.Path, source.Samplerate())
		if err != nil {
			logger.Error("failed to record session start", "error", err)
		} else {
			defer func() {
				if err := store.EndSession(sessionID); err != nil {
					logger.Error("failed to record session end", "error", err)
				}
			}()
		}
	}

	detected, err := session.Run(ctx)
	if err != nil {
		return fmt.Errorf("detection session failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "session %s complete: %d chunks, %d transients\n", session.ID, session.ChunksProcessed(), len(detected))
	for _, e := range detected {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s at sample %d (fitness %.3f)\n", e.Kind, e.Index, e.Fitness)
	}
	return nil
}

func dedicatedThreads(settings *conf.Settings) int {
	if settings.DetFunc.DedicatedThreads > 0 {
		return settings.DetFunc.DedicatedThreads
	}
	return cpuspec.GetCPUSpec().RecommendedThreads()
}

func openSource(settings *conf.Settings, firstLen, normalLen int) (audiosource.Source, error) {
	switch settings.AudioSource.Kind {
	case "file":
		return audiosource.Open(settings.AudioSource.Path, firstLen, normalLen)
	case "mic":
		return audiosource.NewMic(audiosource.MicConfig{
			DeviceName: settings.AudioSource.Device,
			Samplerate: settings.FilterBank.Samplerate,
		}, firstLen, normalLen)
	default:
		return nil, errors.New(errors.NewStd("unsupported audio source kind")).
			Component("detect").
			Category(errors.CategoryConfiguration).
			Context("kind", settings.AudioSource.Kind).
			Build()
	}
}
