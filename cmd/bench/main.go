// Command bench drives the queue and list implementations in ebr, hp
// and nothing through the same three scenarios and reports per-sample
// latencies plus a summary line, so the three reclamation schemes can
// be compared on equal footing. It is deliberately thin: no
// reclamation logic of its own, only flag parsing, timing loops and
// output formatting -- the core lives in ebr/, hp/ and nothing/.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/facebookgo/stackerr"
	flag "github.com/spf13/pflag"

	"github.com/skipor/comere/log"
)

func main() {
	var threads []int
	var outputDir string
	var filter string
	var stdout bool

	flag.IntSliceVar(&threads, "threads", []int{1, 2, 4, 8}, "thread counts to benchmark, comma separated")
	flag.StringVar(&outputDir, "output-dir", ".", "directory samples and summaries are written to")
	flag.StringVar(&filter, "filter", "", "only run benchmarks whose name contains this substring")
	flag.BoolVar(&stdout, "stdout", false, "write samples to stdout instead of files")
	flag.Parse()

	logger, err := log.NewProductionLogger(log.InfoLevel)
	if err != nil {
		// zap's own config/encoder setup failed; fall back to the
		// stdlib sink rather than leave the harness without any logger.
		logger = log.NewLogger(log.InfoLevel, os.Stderr)
		logger.Errorf("falling back to the stdlib logger: %v", err)
	}

	if err := run(logger, threads, outputDir, filter, stdout); err != nil {
		logger.Fatal(stackerr.Wrap(err))
	}
}

func run(logger log.Logger, threads []int, outputDir string, filter string, stdout bool) error {
	if !stdout {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return stackerr.Wrap(err)
		}
	}

	for _, b := range benches {
		if filter != "" && !strings.Contains(b.name, filter) {
			continue
		}
		for _, v := range variants {
			for _, n := range threads {
				logger.Infof("Running %s/%s with %d threads.", v.name, b.name, n)
				samples := runOnce(logger, b, v, n)
				if err := report(outputDir, v.name, b.name, n, samples, stdout); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// runOnce recovers a panicking benchmark the way conn.go's serve
// recovers a panicking connection loop: log it with a stack trace and
// propagate, rather than letting one bad (variant, bench, threads)
// triple take the whole run down silently.
func runOnce(logger log.Logger, b bench, v variant, threads int) (samples []int64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic: ", stackerr.Newf("%s", r))
			panic(r)
		}
	}()
	return b.run(v, threads)
}

func report(outputDir, variantName, benchName string, threads int, samples []int64, stdout bool) error {
	s := summarize(samples)
	lines := make([]string, 0, len(samples)+1)
	for _, v := range samples {
		lines = append(lines, strconv.FormatInt(v, 10))
	}
	lines = append(lines, s.csv())
	content := strings.Join(lines, "\n") + "\n"

	if stdout {
		fmt.Print(content)
		return nil
	}

	name := fmt.Sprintf("s:%s-b:%s-t:%02d", variantName, benchName, threads)
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return stackerr.Wrap(err)
	}
	return nil
}
