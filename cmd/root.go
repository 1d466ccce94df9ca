package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/deepdir/deepdir/internal/config"
	"github.com/deepdir/deepdir/internal/runner"
	"github.com/deepdir/deepdir/pkg/version"
)

var (
	opts       config.Options
	configFile string
	saveConfig string
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "url-file", "cidr", "ports"}},
	{"WORDLIST", []string{"wordlist", "extensions", "force-extensions"}},
	{"SCAN MODES", []string{"brute", "crawl", "fuzz"}},
	{"RECURSION", []string{"recursive", "max-depth", "recursion-status"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "delay", "random-delay-min", "random-delay-max", "max-rate", "adaptive-throttle"}},
	{"FILTERS", []string{"include-status", "exclude-status", "min-size", "max-size", "exclude-size", "exclude-text", "exclude-regex"}},
	{"HTTP", []string{"method", "header", "cookie", "user-agent", "proxy", "follow-redirects", "anti-waf"}},
	{"OUTPUT", []string{"output", "format", "quiet", "verbose", "log-file"}},
	{"CONFIGURATION", []string{"config", "save-config"}},
}

var rootCmd = &cobra.Command{
	Use:     "deepdir -u <url> [flags]",
	Short:   "Recursive web content discovery with crawling and pattern fuzzing",
	Version: version.Version,
	Long: `deepdir discovers hidden paths and files on web servers by combining
wordlist brute-forcing, same-origin crawling, and pattern-based fuzzing
(backups, date stamps, common mutations). Results are deduplicated,
collapsed by content, and ranked by how interesting they are.`,
	Example: `  deepdir -u https://example.com
  deepdir -u https://example.com -e php,html -t 50 --recursive
  deepdir -u https://example.com --fuzz --brute=false --crawl=false
  deepdir -l urls.txt -o results.json --format json
  deepdir --cidr 192.168.1.0/24 --ports 80,8080
  deepdir -u https://example.com --max-rate 20 --anti-waf
  cat urls.txt | deepdir --recursive --max-depth 3`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			mergeConfig(cmd, loaded)
		}

		if err := parseKeyValues(cmd, "header", &opts.Headers); err != nil {
			return err
		}
		if err := parseKeyValues(cmd, "cookie", &opts.Cookies); err != nil {
			return err
		}

		opts.SetDefaults()
		if err := opts.Validate(); err != nil {
			return err
		}

		if saveConfig != "" {
			if err := opts.Save(saveConfig); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "[*] Configuration written to %s\n", saveConfig)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// --save-config without a target just writes the file.
		if saveConfig != "" && len(opts.URLs) == 0 && opts.URLFile == "" && opts.CIDR == "" {
			return nil
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, &opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringSliceVarP(&opts.URLs, "url", "u", nil, "Target URL (repeatable)")
	f.StringVarP(&opts.URLFile, "url-file", "l", "", "File with one URL per line")
	f.StringVar(&opts.CIDR, "cidr", "", "CIDR range to scan (e.g. 192.168.1.0/24)")
	f.StringVar(&opts.Ports, "ports", "", "Ports for CIDR targets (comma-separated, e.g. 80,8080)")

	// Wordlist
	f.StringSliceVarP(&opts.Wordlists, "wordlist", "w", nil, "Wordlist paths (default: built-in)")
	f.StringSliceVarP(&opts.Extensions, "extensions", "e", nil, "File extensions to test (default php,html,js,txt)")
	f.BoolVarP(&opts.ForceExtensions, "force-extensions", "f", false, "Append extensions to every wordlist entry")

	// Scan modes
	f.BoolVar(&opts.BruteForce, "brute", true, "Enable wordlist brute-forcing")
	f.BoolVar(&opts.Crawl, "crawl", true, "Enable same-origin crawling")
	f.BoolVar(&opts.FuzzPatterns, "fuzz", false, "Enable pattern fuzzing (backups, date stamps, mutations)")

	// Recursion
	f.BoolVarP(&opts.Recursive, "recursive", "r", false, "Recurse into discovered paths")
	f.IntVar(&opts.MaxDepth, "max-depth", 2, "Maximum recursion depth")
	f.Var(&intSliceValue{target: &opts.RecursionStatus}, "recursion-status", "Status codes eligible for recursion (default 200,301,302,403)")

	// Performance
	f.IntVarP(&opts.Threads, "threads", "t", 10, "Number of concurrent workers")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.DurationVar(&opts.Delay, "delay", 0, "Fixed delay before each request")
	f.DurationVar(&opts.RandomDelayMin, "random-delay-min", 0, "Minimum random delay before each request")
	f.DurationVar(&opts.RandomDelayMax, "random-delay-max", 0, "Maximum random delay before each request")
	f.IntVar(&opts.MaxRate, "max-rate", 0, "Global request rate cap in req/s (0 = unlimited)")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Auto back-off on 429/503 responses")

	// Filtering
	f.VarP(&intSliceValue{target: &opts.IncludeStatus}, "include-status", "i", "Only keep these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Drop these status codes (default 404,429)")
	f.Int64Var(&opts.MinResponseSize, "min-size", 0, "Drop responses smaller than this many bytes")
	f.Int64Var(&opts.MaxResponseSize, "max-size", 0, "Drop responses larger than this many bytes (0 = no limit)")
	f.StringSliceVar(&opts.ExcludeSizes, "exclude-size", nil, "Drop responses with these formatted sizes (e.g. 0B,4KB)")
	f.StringSliceVar(&opts.ExcludeText, "exclude-text", nil, "Drop responses whose body contains this text")
	f.StringSliceVar(&opts.ExcludeRegex, "exclude-regex", nil, "Drop responses whose body matches this regex")

	// HTTP
	f.StringVarP(&opts.Method, "method", "m", "GET", "HTTP method")
	f.StringSliceVarP(new([]string), "header", "H", nil, "Custom headers (Key: Value)")
	f.StringSliceVar(new([]string), "cookie", nil, "Cookies (name=value)")
	f.StringVar(&opts.UserAgent, "user-agent", "", "Custom User-Agent string")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	f.BoolVar(&opts.FollowRedirects, "follow-redirects", false, "Follow HTTP redirects")
	f.BoolVar(&opts.AntiWAF, "anti-waf", false, "Randomize request headers to evade WAF fingerprinting")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, csv, html")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output, results only")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")
	f.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")

	// Configuration
	f.StringVar(&configFile, "config", "", "Load options from a YAML config file")
	f.StringVar(&saveConfig, "save-config", "", "Write the resolved options to a YAML config file")

	// Custom help: categorized flags like httpx.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// mergeConfig overlays values from a config file onto opts. CLI flags the
// user set explicitly win; file values fill the rest.
func mergeConfig(cmd *cobra.Command, loaded *config.Options) {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}

	set("url", func() {
		if len(loaded.URLs) > 0 {
			opts.URLs = loaded.URLs
		}
	})
	set("url-file", func() {
		if loaded.URLFile != "" {
			opts.URLFile = loaded.URLFile
		}
	})
	set("cidr", func() {
		if loaded.CIDR != "" {
			opts.CIDR = loaded.CIDR
		}
	})
	set("ports", func() {
		if loaded.Ports != "" {
			opts.Ports = loaded.Ports
		}
	})
	set("wordlist", func() {
		if len(loaded.Wordlists) > 0 {
			opts.Wordlists = loaded.Wordlists
		}
	})
	set("extensions", func() {
		if len(loaded.Extensions) > 0 {
			opts.Extensions = loaded.Extensions
		}
	})
	set("force-extensions", func() { opts.ForceExtensions = opts.ForceExtensions || loaded.ForceExtensions })
	set("brute", func() {
		if loaded.BruteForce || loaded.Crawl || loaded.FuzzPatterns {
			opts.BruteForce = loaded.BruteForce
		}
	})
	set("crawl", func() {
		if loaded.BruteForce || loaded.Crawl || loaded.FuzzPatterns {
			opts.Crawl = loaded.Crawl
		}
	})
	set("fuzz", func() { opts.FuzzPatterns = opts.FuzzPatterns || loaded.FuzzPatterns })
	set("recursive", func() { opts.Recursive = opts.Recursive || loaded.Recursive })
	set("max-depth", func() {
		if loaded.MaxDepth > 0 {
			opts.MaxDepth = loaded.MaxDepth
		}
	})
	set("recursion-status", func() {
		if len(loaded.RecursionStatus) > 0 {
			opts.RecursionStatus = loaded.RecursionStatus
		}
	})
	set("threads", func() {
		if loaded.Threads > 0 {
			opts.Threads = loaded.Threads
		}
	})
	set("timeout", func() {
		if loaded.Timeout > 0 {
			opts.Timeout = loaded.Timeout
		}
	})
	set("delay", func() {
		if loaded.Delay > 0 {
			opts.Delay = loaded.Delay
		}
	})
	set("random-delay-min", func() {
		if loaded.RandomDelayMin > 0 {
			opts.RandomDelayMin = loaded.RandomDelayMin
		}
	})
	set("random-delay-max", func() {
		if loaded.RandomDelayMax > 0 {
			opts.RandomDelayMax = loaded.RandomDelayMax
		}
	})
	set("max-rate", func() {
		if loaded.MaxRate > 0 {
			opts.MaxRate = loaded.MaxRate
		}
	})
	set("adaptive-throttle", func() { opts.AdaptiveThrottle = opts.AdaptiveThrottle || loaded.AdaptiveThrottle })
	set("include-status", func() {
		if len(loaded.IncludeStatus) > 0 {
			opts.IncludeStatus = loaded.IncludeStatus
		}
	})
	set("exclude-status", func() {
		if len(loaded.ExcludeStatus) > 0 {
			opts.ExcludeStatus = loaded.ExcludeStatus
		}
	})
	set("min-size", func() {
		if loaded.MinResponseSize > 0 {
			opts.MinResponseSize = loaded.MinResponseSize
		}
	})
	set("max-size", func() {
		if loaded.MaxResponseSize > 0 {
			opts.MaxResponseSize = loaded.MaxResponseSize
		}
	})
	set("exclude-size", func() {
		if len(loaded.ExcludeSizes) > 0 {
			opts.ExcludeSizes = loaded.ExcludeSizes
		}
	})
	set("exclude-text", func() {
		if len(loaded.ExcludeText) > 0 {
			opts.ExcludeText = loaded.ExcludeText
		}
	})
	set("exclude-regex", func() {
		if len(loaded.ExcludeRegex) > 0 {
			opts.ExcludeRegex = loaded.ExcludeRegex
		}
	})
	set("method", func() {
		if loaded.Method != "" {
			opts.Method = loaded.Method
		}
	})
	set("follow-redirects", func() { opts.FollowRedirects = opts.FollowRedirects || loaded.FollowRedirects })
	set("user-agent", func() {
		if loaded.UserAgent != "" {
			opts.UserAgent = loaded.UserAgent
		}
	})
	set("proxy", func() {
		if loaded.Proxy != "" {
			opts.Proxy = loaded.Proxy
		}
	})
	set("anti-waf", func() { opts.AntiWAF = opts.AntiWAF || loaded.AntiWAF })
	set("output", func() {
		if loaded.OutputFile != "" {
			opts.OutputFile = loaded.OutputFile
		}
	})
	set("format", func() {
		if loaded.OutputFormat != "" {
			opts.OutputFormat = loaded.OutputFormat
		}
	})
	set("quiet", func() { opts.Quiet = opts.Quiet || loaded.Quiet })
	set("verbose", func() { opts.Verbose = opts.Verbose || loaded.Verbose })
	set("log-file", func() {
		if loaded.LogFile != "" {
			opts.LogFile = loaded.LogFile
		}
	})
	if len(loaded.Headers) > 0 && opts.Headers == nil {
		opts.Headers = loaded.Headers
	}
	if len(loaded.Cookies) > 0 && opts.Cookies == nil {
		opts.Cookies = loaded.Cookies
	}
}

// parseKeyValues turns repeated "Key: Value" or "key=value" flags into a
// map on opts.
func parseKeyValues(cmd *cobra.Command, flag string, target *map[string]string) error {
	values, _ := cmd.Flags().GetStringSlice(flag)
	if len(values) == 0 {
		return nil
	}
	if *target == nil {
		*target = make(map[string]string, len(values))
	}
	for _, v := range values {
		var parts []string
		if strings.Contains(v, ":") {
			parts = strings.SplitN(v, ":", 2)
		} else {
			parts = strings.SplitN(v, "=", 2)
		}
		if len(parts) != 2 {
			return fmt.Errorf("invalid --%s value %q, expected 'Key: Value'", flag, v)
		}
		(*target)[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return nil
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid status code %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
     ____                  ____  _
    / __ \___  ___  ____  / __ \(_)____
   / / / / _ \/ _ \/ __ \/ / / / / ___/
  / /_/ /  __/  __/ /_/ / /_/ / / /
 /_____/\___/\___/ .___/_____/_/_/      %s
                /_/

`, ver)
}
