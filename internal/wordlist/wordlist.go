// Package wordlist loads and expands the brute-force path lists.
package wordlist

import (
	"fmt"
	"os"
	"strings"
)

// Load merges the given wordlist files into one de-duplicated path list.
// If paths is empty, the embedded default list is used. Entries with an
// %EXT% placeholder are expanded per extension; forceExtensions appends
// every extension to every plain entry as well.
func Load(paths []string, extensions []string, forceExtensions bool) ([]string, error) {
	var raw strings.Builder
	if len(paths) == 0 {
		raw.WriteString(defaultWordlist)
	} else {
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
			}
			raw.Write(data)
			raw.WriteByte('\n')
		}
	}

	lines := strings.Split(raw.String(), "\n")
	seen := make(map[string]struct{}, len(lines))
	var result []string

	add := func(entry string) {
		if entry == "" {
			return
		}
		if _, ok := seen[entry]; !ok {
			seen[entry] = struct{}{}
			result = append(result, entry)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "%EXT%") {
			for _, ext := range extensions {
				ext = strings.TrimPrefix(ext, ".")
				add(strings.ReplaceAll(line, "%EXT%", ext))
			}
			// Also add the bare version without extension placeholder.
			bare := strings.ReplaceAll(line, ".%EXT%", "")
			bare = strings.ReplaceAll(bare, "%EXT%", "")
			add(bare)
		} else if forceExtensions && len(extensions) > 0 {
			add(line)
			for _, ext := range extensions {
				ext = strings.TrimPrefix(ext, ".")
				add(line + "." + ext)
			}
			add(line + "/")
		} else {
			add(line)
		}
	}

	return result, nil
}
