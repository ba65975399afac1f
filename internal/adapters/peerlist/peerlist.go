// Package peerlist reads the newline-delimited list of peer ids to report on.
package peerlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Load reads the peer ids in path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open peer list: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read returns one id per non-blank line of r. Surrounding whitespace is
// trimmed and lines starting with '#' are skipped.
func Read(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read peer list: %w", err)
	}
	return ids, nil
}

// Merge returns the ids given on the command line, or the file's ids when
// none were given, without duplicates.
func Merge(explicit, fromFile []string) []string {
	src := explicit
	if len(src) == 0 {
		src = fromFile
	}
	seen := make(map[string]struct{}, len(src))
	out := make([]string, 0, len(src))
	for _, id := range src {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
