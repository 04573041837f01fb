package metadata

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DirStore reads URLs from a crawler output directory where the file named
// after a document id holds the URL on its first line.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{
		dir:    dir,
		logger: slog.Default().With("component", "metadata-dir", "dir", dir),
	}
}

// Lookup treats a missing or unreadable file, or an empty first line, as a
// miss.
func (s *DirStore) Lookup(ctx context.Context, docID int) (string, bool, error) {
	path := filepath.Join(s.dir, strconv.Itoa(docID))
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("document file unreadable", "doc_id", docID, "error", err)
		}
		return "", false, nil
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("document file unreadable", "doc_id", docID, "error", err)
		return "", false, nil
	}
	url := strings.TrimRight(line, "\r\n")
	if url == "" {
		return "", false, nil
	}
	return url, true, nil
}

// Ping checks that the directory exists.
func (s *DirStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("metadata dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("metadata dir %s is not a directory", s.dir)
	}
	return nil
}

// DocIDs lists the documents in the directory in ascending order. Entries
// whose names are not non-negative integers are ignored.
func (s *DirStore) DocIDs() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil || id < 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *DirStore) Close() error {
	return nil
}
