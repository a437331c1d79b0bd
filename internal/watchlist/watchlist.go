package watchlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads symbols from r. Symbols may be one per line or comma
// separated; blank lines and text after '#' are ignored. Symbols are
// upper-cased and de-duplicated, keeping the first occurrence.
func Parse(r io.Reader) ([]string, error) {
	var symbols []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Split(line, ",") {
			sym := strings.ToUpper(strings.TrimSpace(field))
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return symbols, nil
}

// Load reads the watchlist file at path, if any, and appends the inline
// symbols. A missing file is not an error when inline symbols exist.
func Load(path string, inline []string) ([]string, error) {
	var symbols []string
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			symbols, err = Parse(f)
			if err != nil {
				return nil, err
			}
		case os.IsNotExist(err) && len(inline) > 0:
		default:
			return nil, fmt.Errorf("open watchlist: %w", err)
		}
	}

	extra, _ := Parse(strings.NewReader(strings.Join(inline, "\n")))
	return Merge(symbols, extra), nil
}

// Merge appends b to a, dropping symbols already present.
func Merge(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
