package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if opts.Threads != 10 {
		t.Errorf("Threads = %d, want 10", opts.Threads)
	}
	if opts.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", opts.Timeout)
	}
	if opts.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", opts.MaxDepth)
	}
	if opts.UserAgent != "DeepDir/5.0" {
		t.Errorf("UserAgent = %q", opts.UserAgent)
	}
	if len(opts.Extensions) != 4 {
		t.Errorf("Extensions = %v, want php,html,js,txt", opts.Extensions)
	}
	if len(opts.RecursionStatus) != 4 {
		t.Errorf("RecursionStatus = %v, want 200,301,302,403", opts.RecursionStatus)
	}
	if len(opts.ExcludeStatus) != 2 {
		t.Errorf("ExcludeStatus = %v, want 404,429", opts.ExcludeStatus)
	}
	if !opts.BruteForce || !opts.Crawl {
		t.Error("hybrid mode (brute + crawl) should be the default")
	}
	if opts.FuzzPatterns {
		t.Error("fuzzing should be off by default")
	}
}

func TestSetDefaults_IncludeStatusSuppressesDefaultExcludes(t *testing.T) {
	opts := Options{IncludeStatus: []int{200}}
	opts.SetDefaults()
	if len(opts.ExcludeStatus) != 0 {
		t.Errorf("ExcludeStatus = %v, want empty when an include list is set", opts.ExcludeStatus)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"zero threads", func(o *Options) { o.Threads = -1 }, true},
		{"negative rate", func(o *Options) { o.MaxRate = -5 }, true},
		{"include and exclude", func(o *Options) {
			o.IncludeStatus = []int{200}
			o.ExcludeStatus = []int{404}
		}, true},
		{"random delay inverted", func(o *Options) {
			o.RandomDelayMin = time.Second
			o.RandomDelayMax = time.Millisecond
		}, true},
		{"size bounds inverted", func(o *Options) {
			o.MinResponseSize = 100
			o.MaxResponseSize = 50
		}, true},
		{"bad format", func(o *Options) { o.OutputFormat = "xml" }, true},
		{"html format", func(o *Options) { o.OutputFormat = "html" }, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var opts Options
			opts.SetDefaults()
			c.mutate(&opts)
			err := opts.Validate()
			if c.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !c.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepdir.yml")

	var opts Options
	opts.SetDefaults()
	opts.URLs = []string{"http://example.com"}
	opts.Threads = 25
	opts.MaxRate = 50
	opts.Headers = map[string]string{"X-Scan": "deepdir"}
	opts.Recursive = true

	if err := opts.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.URLs) != 1 || loaded.URLs[0] != "http://example.com" {
		t.Errorf("URLs = %v", loaded.URLs)
	}
	if loaded.Threads != 25 {
		t.Errorf("Threads = %d, want 25", loaded.Threads)
	}
	if loaded.MaxRate != 50 {
		t.Errorf("MaxRate = %d, want 50", loaded.MaxRate)
	}
	if loaded.Headers["X-Scan"] != "deepdir" {
		t.Errorf("Headers = %v", loaded.Headers)
	}
	if !loaded.Recursive {
		t.Error("Recursive flag lost in round trip")
	}
	if loaded.Timeout != opts.Timeout {
		t.Errorf("Timeout = %s, want %s", loaded.Timeout, opts.Timeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
