package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

type Reader struct {
	file     *os.File
	filePath string
	header   SegmentHeader
	dict     []DictEntry
	postBase int64
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment file: %w", err)
	}
	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading segment header: %w", err)
	}
	magic := binary.LittleEndian.Uint32(headerBytes[0:4])
	if magic != MagicBytes {
		f.Close()
		return nil, fmt.Errorf("invalid segment file: bad magic bytes %x", magic)
	}
	header := SegmentHeader{
		Magic:      magic,
		Version:    binary.LittleEndian.Uint32(headerBytes[4:8]),
		TermCount:  binary.LittleEndian.Uint32(headerBytes[8:12]),
		DocCount:   binary.LittleEndian.Uint32(headerBytes[12:16]),
		DictOffset: int64(binary.LittleEndian.Uint64(headerBytes[16:24])),
		DictSize:   int64(binary.LittleEndian.Uint64(headerBytes[24:32])),
		PostOffset: int64(binary.LittleEndian.Uint64(headerBytes[32:40])),
		PostSize:   int64(binary.LittleEndian.Uint64(headerBytes[40:48])),
		CreatedAt:  int64(binary.LittleEndian.Uint64(headerBytes[48:56])),
	}
	if header.Version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("unsupported segment version %d", header.Version)
	}
	dictBytes := make([]byte, header.DictSize)
	if _, err := f.ReadAt(dictBytes, header.DictOffset); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	footer := make([]byte, FooterSize)
	if _, err := f.ReadAt(footer, header.DictOffset+header.DictSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading footer: %w", err)
	}
	if want, got := binary.LittleEndian.Uint32(footer[0:4]), crc32.ChecksumIEEE(dictBytes); want != got {
		f.Close()
		return nil, fmt.Errorf("dictionary checksum mismatch: stored %08x, computed %08x", want, got)
	}
	var dict []DictEntry
	if err := json.Unmarshal(dictBytes, &dict); err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	return &Reader{
		file:     f,
		filePath: path,
		header:   header,
		dict:     dict,
		postBase: header.PostOffset,
	}, nil
}

// Search reads one term's posting list from disk. A missing term returns a
// nil list and no error.
func (r *Reader) Search(term string) (index.PostingList, error) {
	idx := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].Term >= term
	})
	if idx >= len(r.dict) || r.dict[idx].Term != term {
		return nil, nil
	}
	return r.readPostings(r.dict[idx])
}

// ReadAll loads every term into an in-memory Index.
func (r *Reader) ReadAll() (*index.Index, error) {
	entries := make([]index.TermEntry, 0, len(r.dict))
	for _, entry := range r.dict {
		postings, err := r.readPostings(entry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, index.TermEntry{Term: entry.Term, Postings: postings})
	}
	return index.New(entries)
}

func (r *Reader) readPostings(entry DictEntry) (index.PostingList, error) {
	postingsBytes := make([]byte, entry.PostLen)
	if _, err := r.file.ReadAt(postingsBytes, r.postBase+entry.PostOffset); err != nil {
		return nil, fmt.Errorf("reading postings for %q: %w", entry.Term, err)
	}
	var postings index.PostingList
	if err := json.Unmarshal(postingsBytes, &postings); err != nil {
		return nil, fmt.Errorf("parsing postings for %q: %w", entry.Term, err)
	}
	if len(postings) != entry.DocFreq {
		return nil, fmt.Errorf("postings for %q: expected %d documents, found %d",
			entry.Term, entry.DocFreq, len(postings))
	}
	return postings, nil
}

func (r *Reader) Terms() int {
	return len(r.dict)
}

func (r *Reader) DocCount() uint32 {
	return r.header.DocCount
}

func (r *Reader) Header() SegmentHeader {
	return r.header
}

func (r *Reader) Close() error {
	return r.file.Close()
}

// Load opens the segment at path, reads it fully and closes it.
func Load(path string) (*index.Index, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexLoad, path, err)
	}
	defer r.Close()
	idx, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexLoad, path, err)
	}
	return idx, nil
}
