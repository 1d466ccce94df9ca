// Package runner wires the scan components together and executes a full
// scan from resolved options to rendered output.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/deepdir/deepdir/internal/antiwaf"
	"github.com/deepdir/deepdir/internal/config"
	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/netutil"
	"github.com/deepdir/deepdir/internal/output"
	"github.com/deepdir/deepdir/internal/pipeline"
	"github.com/deepdir/deepdir/internal/probe"
	"github.com/deepdir/deepdir/internal/scan"
	"github.com/deepdir/deepdir/internal/wordlist"
)

// Run executes a scan with the given options. It blocks until the scan
// terminates or ctx is cancelled; on cancellation the results collected
// so far are still written out.
func Run(ctx context.Context, opts *config.Options) error {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := setupLogging(opts); err != nil {
		return err
	}

	targets, err := ResolveTargets(opts)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.New("no targets supplied (use -u, -l, --cidr, or pipe URLs on stdin)")
	}

	mon := monitor.New(time.Second)
	defer mon.Stop()

	req, err := probe.NewRequester(opts, mon)
	if err != nil {
		return err
	}
	if opts.AntiWAF {
		rotator := antiwaf.NewRotator(time.Now().UnixNano())
		req.SetHook(rotator.Apply)
	}

	sources, err := buildSources(opts, req)
	if err != nil {
		return err
	}

	results, err := pipeline.New(pipeline.FilterConfig{
		IncludeStatus: opts.IncludeStatus,
		ExcludeStatus: opts.ExcludeStatus,
		MinSize:       opts.MinResponseSize,
		MaxSize:       opts.MaxResponseSize,
		ExcludeSizes:  opts.ExcludeSizes,
		ExcludeText:   opts.ExcludeText,
		ExcludeRegex:  opts.ExcludeRegex,
	})
	if err != nil {
		return err
	}

	writer, err := output.NewWriter(opts.OutputFormat, opts.OutputFile, opts.OutputFile != "", opts.Quiet)
	if err != nil {
		return err
	}
	defer writer.Close()

	progress := output.NewProgress(opts.Quiet || opts.Verbose)
	mon.Subscribe(progress.Update)

	var extractor scan.LinkExtractor
	if opts.Recursive {
		extractor = scan.Extractor{}
	}

	seeds := make([]scan.Target, 0, len(targets))
	for _, t := range targets {
		seeds = append(seeds, scan.Target{URL: t, Depth: 0})
	}

	logrus.WithFields(logrus.Fields{
		"targets": len(seeds),
		"threads": opts.Threads,
		"sources": len(sources),
	}).Info("starting scan")

	sched := scan.NewScheduler(opts, sources, results, mon, extractor)
	ranked, runErr := sched.Run(ctx, seeds)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if errors.Is(runErr, context.Canceled) {
		logrus.Warn("scan interrupted, writing partial results")
	}

	stats := mon.Stop()
	progress.Finish()

	if err := writer.WriteHeader(); err != nil {
		return err
	}
	for i := range ranked {
		if err := writer.WriteResult(&ranked[i]); err != nil {
			return err
		}
	}
	if err := writer.WriteFooter(stats); err != nil {
		return err
	}
	return nil
}

// buildSources constructs the enabled probe sources in their fixed run
// order: brute force, then crawler, then fuzzer.
func buildSources(opts *config.Options, req *probe.Requester) ([]probe.Source, error) {
	var sources []probe.Source
	if opts.BruteForce {
		words, err := wordlist.Load(opts.Wordlists, opts.Extensions, opts.ForceExtensions)
		if err != nil {
			return nil, err
		}
		logrus.Debugf("wordlist loaded, %d entries", len(words))
		sources = append(sources, probe.NewBruteForcer(req, words, opts.Method))
	}
	if opts.Crawl {
		sources = append(sources, probe.NewCrawler(req, 0))
	}
	if opts.FuzzPatterns {
		fuzzer := probe.NewFuzzer(req, opts.Extensions)
		logrus.Debugf("fuzzer generated %d patterns", fuzzer.Patterns())
		sources = append(sources, fuzzer)
	}
	if len(sources) == 0 {
		return nil, errors.New("no scan mode enabled")
	}
	return sources, nil
}

// ResolveTargets merges the target sources: -u URLs, a URL file, a CIDR
// expansion, and piped stdin. Bare hosts get an http:// scheme.
func ResolveTargets(opts *config.Options) ([]string, error) {
	var targets []string

	for _, u := range opts.URLs {
		targets = append(targets, normalizeTarget(u))
	}

	if opts.URLFile != "" {
		fromFile, err := readTargetFile(opts.URLFile)
		if err != nil {
			return nil, err
		}
		targets = append(targets, fromFile...)
	}

	if opts.CIDR != "" {
		expanded, err := netutil.ExpandTargets(opts.CIDR, opts.Ports, "http")
		if err != nil {
			return nil, err
		}
		logrus.Debugf("CIDR %s expanded to %d targets", opts.CIDR, len(expanded))
		targets = append(targets, expanded...)
	}

	// Read piped input only when nothing else provided targets, so an
	// accidental pipe never silently widens an explicit scan.
	if len(targets) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			targets = append(targets, normalizeTarget(line))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	}

	return dedupe(targets), nil
}

func readTargetFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL file %s: %w", path, err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, normalizeTarget(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file %s: %w", path, err)
	}
	return targets, nil
}

func normalizeTarget(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func dedupe(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	var out []string
	for _, t := range targets {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// setupLogging configures logrus from the verbosity options. Logs go to
// stderr so they never mix with result output on stdout.
func setupLogging(opts *config.Options) error {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	switch {
	case opts.Verbose:
		logrus.SetLevel(logrus.DebugLevel)
	case opts.Quiet:
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", opts.LogFile, err)
		}
		logrus.SetOutput(f)
	}
	return nil
}
