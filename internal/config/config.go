package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds all configuration for a deepdir scan. Every field has a
// documented default applied by SetDefaults; Validate is called once
// before any scheduling begins.
type Options struct {
	// Target
	URLs    []string `yaml:"urls"`
	URLFile string   `yaml:"url_file"`
	CIDR    string   `yaml:"cidr"`
	Ports   string   `yaml:"ports"`

	// Wordlist
	Wordlists       []string `yaml:"wordlists"`
	Extensions      []string `yaml:"extensions"`
	ForceExtensions bool     `yaml:"force_extensions"`

	// Scan modes
	BruteForce   bool `yaml:"brute_force"`
	Crawl        bool `yaml:"crawl"`
	FuzzPatterns bool `yaml:"fuzz_patterns"`

	// Recursion
	Recursive       bool  `yaml:"recursive"`
	MaxDepth        int   `yaml:"max_depth"`
	RecursionStatus []int `yaml:"recursion_status_codes"`

	// Performance
	Threads          int           `yaml:"threads"`
	Timeout          time.Duration `yaml:"timeout"`
	Delay            time.Duration `yaml:"delay"`
	RandomDelayMin   time.Duration `yaml:"random_delay_min"`
	RandomDelayMax   time.Duration `yaml:"random_delay_max"`
	MaxRate          int           `yaml:"max_rate"` // requests/sec across all workers, 0 = unlimited
	AdaptiveThrottle bool          `yaml:"adaptive_throttle"`

	// Filtering
	IncludeStatus   []int    `yaml:"include_status_codes"`
	ExcludeStatus   []int    `yaml:"exclude_status_codes"`
	MinResponseSize int64    `yaml:"min_response_size"`
	MaxResponseSize int64    `yaml:"max_response_size"`
	ExcludeSizes    []string `yaml:"exclude_sizes"` // formatted tokens: "0B", "4KB", "1MB"
	ExcludeText     []string `yaml:"exclude_text"`
	ExcludeRegex    []string `yaml:"exclude_regex"`

	// HTTP
	Method          string            `yaml:"http_method"`
	FollowRedirects bool              `yaml:"follow_redirects"`
	UserAgent       string            `yaml:"user_agent"`
	Headers         map[string]string `yaml:"headers"`
	Cookies         map[string]string `yaml:"cookies"`
	Proxy           string            `yaml:"proxy"`
	AntiWAF         bool              `yaml:"anti_waf"`

	// Output
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"` // text, json, csv, html
	Quiet        bool   `yaml:"quiet"`
	Verbose      bool   `yaml:"verbose"`
	LogFile      string `yaml:"log_file"`
}

// SetDefaults fills zero-valued fields with their documented defaults.
func (o *Options) SetDefaults() {
	if len(o.Extensions) == 0 {
		o.Extensions = []string{"php", "html", "js", "txt"}
	}
	if len(o.RecursionStatus) == 0 {
		o.RecursionStatus = []int{200, 301, 302, 403}
	}
	if len(o.ExcludeStatus) == 0 && len(o.IncludeStatus) == 0 {
		o.ExcludeStatus = []int{404, 429}
	}
	if o.Threads == 0 {
		o.Threads = 10
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = 2
	}
	if o.Method == "" {
		o.Method = "GET"
	}
	if o.UserAgent == "" {
		o.UserAgent = "DeepDir/5.0"
	}
	if o.OutputFormat == "" {
		o.OutputFormat = "text"
	}
	// Hybrid mode is the default when no mode flag is set.
	if !o.BruteForce && !o.Crawl && !o.FuzzPatterns {
		o.BruteForce = true
		o.Crawl = true
	}
}

// Validate checks the configuration for fatal errors. It does not verify
// targets; target resolution happens in the runner and reports its own
// error when the final set is empty.
func (o *Options) Validate() error {
	if o.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", o.Threads)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("max-depth must be >= 0, got %d", o.MaxDepth)
	}
	if o.MaxRate < 0 {
		return fmt.Errorf("max-rate must be >= 0, got %d", o.MaxRate)
	}
	if len(o.IncludeStatus) > 0 && len(o.ExcludeStatus) > 0 {
		return fmt.Errorf("include-status and exclude-status are mutually exclusive")
	}
	if o.RandomDelayMax < o.RandomDelayMin {
		return fmt.Errorf("random delay max (%s) below min (%s)", o.RandomDelayMax, o.RandomDelayMin)
	}
	if o.MinResponseSize < 0 || o.MaxResponseSize < 0 {
		return fmt.Errorf("response size bounds must be >= 0")
	}
	if o.MaxResponseSize > 0 && o.MaxResponseSize < o.MinResponseSize {
		return fmt.Errorf("max-size (%d) below min-size (%d)", o.MaxResponseSize, o.MinResponseSize)
	}
	switch o.OutputFormat {
	case "text", "json", "csv", "html":
	default:
		return fmt.Errorf("unknown output format %q (want text, json, csv, or html)", o.OutputFormat)
	}
	return nil
}

// Load reads options from a YAML config file, leaving unset fields zero so
// CLI flags and defaults can still apply.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &opts, nil
}

// Save writes the current options to a YAML file.
func (o *Options) Save(path string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
