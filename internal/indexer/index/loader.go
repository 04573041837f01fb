package index

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

const maxLineSize = 16 * 1024 * 1024

// LoadFile reads an index in the TSE text format from path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", apperrors.ErrIndexLoad, path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses the TSE text format: one word per line,
//
//	<word> <numDocs> <docID> <freq> [<docID> <freq> ...]
//
// Postings may appear in any order; they are sorted by DocID. Duplicate doc
// ids, a pair count that disagrees with numDocs and non-numeric fields are
// rejected. Blank lines are ignored.
func Load(r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	entries := make([]TermEntry, 0, 1024)
	seen := make(map[string]int)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		entry, err := parseLine(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrIndexLoad, lineNo, err)
		}
		if prev, dup := seen[entry.Term]; dup {
			return nil, fmt.Errorf("%w: line %d: word %q already defined on line %d",
				apperrors.ErrIndexLoad, lineNo, entry.Term, prev)
		}
		seen[entry.Term] = lineNo
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading: %v", apperrors.ErrIndexLoad, err)
	}
	idx, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrIndexLoad, err)
	}
	return idx, nil
}

func parseLine(fields []string) (TermEntry, error) {
	if len(fields) < 2 {
		return TermEntry{}, fmt.Errorf("word %q has no document count", fields[0])
	}
	word := fields[0]
	numDocs, err := strconv.Atoi(fields[1])
	if err != nil || numDocs < 0 {
		return TermEntry{}, fmt.Errorf("word %q: bad document count %q", word, fields[1])
	}
	pairs := fields[2:]
	if len(pairs)%2 != 0 || len(pairs)/2 != numDocs {
		return TermEntry{}, fmt.Errorf("word %q: expected %d doc/freq pairs, found %d fields",
			word, numDocs, len(pairs))
	}
	postings := make(PostingList, 0, numDocs)
	for i := 0; i < len(pairs); i += 2 {
		docID, err := strconv.Atoi(pairs[i])
		if err != nil {
			return TermEntry{}, fmt.Errorf("word %q: bad doc id %q", word, pairs[i])
		}
		freq, err := strconv.Atoi(pairs[i+1])
		if err != nil || freq < 0 {
			return TermEntry{}, fmt.Errorf("word %q: bad frequency %q", word, pairs[i+1])
		}
		postings = append(postings, Posting{DocID: docID, Frequency: freq})
	}
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].DocID < postings[j].DocID
	})
	for i := 1; i < len(postings); i++ {
		if postings[i].DocID == postings[i-1].DocID {
			return TermEntry{}, fmt.Errorf("word %q: duplicate doc id %d", word, postings[i].DocID)
		}
	}
	return TermEntry{Term: word, Postings: postings}, nil
}

// Save writes idx in the TSE text format, words in lexical order.
func Save(w io.Writer, idx *Index) error {
	bw := bufio.NewWriter(w)
	for _, entry := range idx.Entries() {
		if _, err := fmt.Fprintf(bw, "%s %d", entry.Term, len(entry.Postings)); err != nil {
			return fmt.Errorf("writing word %q: %w", entry.Term, err)
		}
		for _, p := range entry.Postings {
			if _, err := fmt.Fprintf(bw, " %d %d", p.DocID, p.Frequency); err != nil {
				return fmt.Errorf("writing word %q: %w", entry.Term, err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing word %q: %w", entry.Term, err)
		}
	}
	return bw.Flush()
}
