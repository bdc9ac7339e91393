// Package benchmark measures this module's own detection-function
// throughput over synthetic audio, replacing the teacher's BirdNET
// TFLite inference benchmark (out of scope per SPEC_FULL's non-goals:
// no ML species classification) with a benchmark of the thing this
// repo actually computes.
package benchmark

import (
	"fmt"
	"math"
	"time"

	"github.com/onsetgo/correntropy/internal/audiosource"
	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/onsetgo/correntropy/internal/detfunc"
	"github.com/onsetgo/correntropy/internal/transient"
	"github.com/spf13/cobra"
)

// Command returns a cobra command that runs the detection function over
// a synthetic sine wave for a fixed duration and reports throughput.
func Command(settings *conf.Settings) *cobra.Command {
	var runFor time.Duration
	var toneHz float64

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Benchmark detection-function throughput over synthetic audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, settings, runFor, toneHz)
		},
	}

	cmd.Flags().DurationVar(&runFor, "for", 10*time.Second, "how long to run the benchmark")
	cmd.Flags().Float64Var(&toneHz, "tone", 800, "frequency, in Hz, of the synthetic test tone")

	return cmd
}

func runBenchmark(cmd *cobra.Command, settings *conf.Settings, runFor time.Duration, toneHz float64) error {
	cfg := detfunc.Config{
		NumChannels:      settings.FilterBank.NumChannels,
		MinFreq:          settings.FilterBank.MinFreq,
		MaxFreq:          settings.FilterBank.MaxFreq,
		Samplerate:       settings.FilterBank.Samplerate,
		CorrWinSize:      settings.DetFunc.CorrWinSize,
		Hopsize:          settings.DetFunc.Hopsize,
		SigWinSize:       settings.DetFunc.SigWinSize,
		ScaleFactor:      settings.DetFunc.ScaleFactor,
		DedicatedThreads: settings.DetFunc.DedicatedThreads,
	}
	firstLen, normalLen := cfg.ChunkSchedule()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running for %s, channels=%d samplerate=%d tone=%.0fHz\n", runFor, cfg.NumChannels, cfg.Samplerate, toneHz)

	var totalSamples int
	var totalChunks int
	start := time.Now()

	for time.Since(start) < runFor {
		core, err := detfunc.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to build detfunc core: %w", err)
		}

		sched := audiosource.NewScheduler(firstLen, normalLen)
		// Run enough chunks to make a realistic multi-buffer pass: five
		// normal-length hops past the initial buffer.
		remaining := firstLen + normalLen*5
		offset := 0
		phase := 0.0
		step := 2 * math.Pi * toneHz / float64(cfg.Samplerate)

		for remaining > 0 {
			length, isLast := sched.Next(remaining)
			chunk := make([]float64, length)
			for i := range chunk {
				chunk[i] = math.Sin(phase)
				phase += step
			}
			if err := core.ProcessChunk(chunk, isLast); err != nil {
				return fmt.Errorf("process chunk failed: %w", err)
			}
			totalSamples += length
			totalChunks++
			offset += length
			remaining -= length
			if isLast {
				break
			}
		}

		detFunc, err := core.GetDetectionFunction()
		if err != nil {
			return fmt.Errorf("retrieve detection function failed: %w", err)
		}
		if _, err := transient.Detect(detFunc, transient.Config{
			WindowSize:  settings.Transient.MaxKernel,
			KernelShape: 1.15,
			MinFitness:  math.Inf(-1),
		}); err != nil {
			return fmt.Errorf("transient detection failed: %w", err)
		}
	}

	elapsed := time.Since(start)
	samplesPerSec := float64(totalSamples) / elapsed.Seconds()
	realtimeFactor := samplesPerSec / float64(cfg.Samplerate)

	fmt.Fprintf(out, "\nresults:\n")
	fmt.Fprintf(out, "chunks processed:      %d\n", totalChunks)
	fmt.Fprintf(out, "samples processed:     %d\n", totalSamples)
	fmt.Fprintf(out, "throughput:            %.0f samples/sec\n", samplesPerSec)
	fmt.Fprintf(out, "realtime factor:       %.2fx\n", realtimeFactor)
	return nil
}
