// =======================
// report/benchmarks.go
// =======================

package report

import (
	"fmt"
	"io"
	"time"

	"shaviz/v2/engine"
)

// BenchmarkInfo holds trace-building metrics for one configuration
type BenchmarkInfo struct {
	Rounds      int           `json:"rounds"`
	Standard    bool          `json:"standard"`
	DataSize    int           `json:"data_size_bytes"`
	Steps       int           `json:"steps"`
	ComputeTime time.Duration `json:"compute_time"`
	Throughput  float64       `json:"throughput_mbps"`
	StepRate    float64       `json:"steps_per_second"`
}

// DefaultBenchmarkConfigs covers the standard mode and a few reduced ones.
func DefaultBenchmarkConfigs() []engine.Config {
	return []engine.Config{
		engine.DefaultConfig(),
		{RoundCount: 32},
		{RoundCount: 16},
		{RoundCount: 8},
	}
}

// Benchmark times trace construction for each configuration
func Benchmark(message string, iterations int, configs []engine.Config) ([]BenchmarkInfo, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	results := make([]BenchmarkInfo, 0, len(configs))

	for _, cfg := range configs {
		e, err := engine.NewEngine(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create engine for %d rounds: %w", cfg.Rounds(), err)
		}

		start := time.Now()
		var steps int
		for i := 0; i < iterations; i++ {
			trace, err := e.Hash(message)
			if err != nil {
				return nil, fmt.Errorf("hashing failed at iteration %d: %w", i, err)
			}
			steps = len(trace)
		}
		duration := time.Since(start)

		seconds := duration.Seconds()
		if seconds == 0 {
			seconds = 1e-9
		}
		totalBytes := float64(len(message) * iterations)

		results = append(results, BenchmarkInfo{
			Rounds:      cfg.Rounds(),
			Standard:    cfg.UseStandardParameters,
			DataSize:    len(message),
			Steps:       steps,
			ComputeTime: duration / time.Duration(iterations),
			Throughput:  (totalBytes / (1024 * 1024)) / seconds,
			StepRate:    float64(steps*iterations) / seconds,
		})
	}

	return results, nil
}

// PrintBenchmarkResults displays benchmark results in a formatted table
func PrintBenchmarkResults(w io.Writer, results []BenchmarkInfo) {
	fmt.Fprintln(w, "SHA-256 Trace Benchmark Results")
	fmt.Fprintln(w, "===============================")
	fmt.Fprintf(w, "%-8s | %-10s | %-8s | %-12s | %-12s | %-15s\n",
		"Rounds", "Params", "Steps", "Time/Hash", "Throughput", "Steps/sec")
	fmt.Fprintln(w, "---------|------------|----------|--------------|--------------|----------------")

	for _, r := range results {
		params := "simple"
		if r.Standard {
			params = "standard"
		}
		fmt.Fprintf(w, "%-8d | %-10s | %-8d | %-12s | %-12.2f | %-15.0f\n",
			r.Rounds,
			params,
			r.Steps,
			r.ComputeTime.String(),
			r.Throughput,
			r.StepRate)
	}
}
