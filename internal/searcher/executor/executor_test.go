package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/metadata"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/metrics"
)

const fixtureIndex = `cat 3 1 3 2 1 4 2
dog 3 2 5 3 1 4 2
bird 2 3 4 5 4
a 2 1 1 6 1
c 2 6 2 7 2
fish 1 8 9
`

func newFixture(t *testing.T, opts ...Option) (*Executor, *index.Index) {
	t.Helper()
	idx, err := index.Load(strings.NewReader(fixtureIndex))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for id := 1; id <= 7; id++ {
		body := "http://example.com/" + strconv.Itoa(id) + "\n<html></html>\n"
		if err := os.WriteFile(filepath.Join(dir, strconv.Itoa(id)), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return New(idx, metadata.NewDirStore(dir), opts...), idx
}

func output(ids ...int) string {
	if len(ids) == 0 {
		return "\nNo found matches.\n\n"
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, id := range ids {
		b.WriteString("Document ID:" + strconv.Itoa(id) + " URL:http://example.com/" + strconv.Itoa(id) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func TestRun(t *testing.T) {
	e, _ := newFixture(t)
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single word", "cat", output(1, 4, 2)},
		{"single word case folded", "CAT", output(1, 4, 2)},
		{"and", "cat AND dog", output(2, 4)},
		{"implicit and", "cat dog", output(2, 4)},
		{"or", "cat OR dog", output(2, 4, 1, 3)},
		{"or of the same word", "cat OR cat", output(1, 4, 2)},
		{"missing word empties its group", "cat AND nonexistentword", output()},
		{"missing word only drops its group", "a AND b OR c", output(7, 6)},
		{"ties in reverse input order", "bird", output(5, 3)},
		{"repeated word in a group", "cat AND cat AND dog", output(2, 4)},
		{"unknown single word", "unicorn", output()},
		{"every group missing", "x OR y AND z", output()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := e.Run(context.Background(), tt.query, &buf); err != nil {
				t.Fatalf("Run(%q): %v", tt.query, err)
			}
			if buf.String() != tt.want {
				t.Errorf("Run(%q) =\n%q\nwant\n%q", tt.query, buf.String(), tt.want)
			}
		})
	}
}

func TestRunInvalidQueryWritesNothing(t *testing.T) {
	e, _ := newFixture(t)
	for _, q := range []string{"", "   ", " AND cat", "cat AND ", "cat AND OR dog", "OR", "cat OR"} {
		var buf bytes.Buffer
		err := e.Run(context.Background(), q, &buf)
		if !errors.Is(err, apperrors.ErrInvalidQuery) {
			t.Errorf("Run(%q) err = %v, want ErrInvalidQuery", q, err)
		}
		if apperrors.ExitCode(err) != apperrors.ExitInvalid {
			t.Errorf("Run(%q) exit code = %d", q, apperrors.ExitCode(err))
		}
		if buf.Len() != 0 {
			t.Errorf("Run(%q) wrote %q", q, buf.String())
		}
	}
}

func TestEvaluateResult(t *testing.T) {
	e, _ := newFixture(t)
	res, err := e.Evaluate(context.Background(), "cat AND zzz OR c OR fish")
	if err != nil {
		t.Fatal(err)
	}
	if res.Groups != 2 || res.Discarded != 1 {
		t.Errorf("groups = %d discarded = %d, want 2 and 1", res.Groups, res.Discarded)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "zzz" {
		t.Errorf("missing = %v", res.Missing)
	}
	// fish (doc 8, freq 9) ranks first but has no URL.
	if len(res.Ranked) != 3 || res.Ranked[0].DocID != 8 {
		t.Errorf("ranked = %v", res.Ranked)
	}
	if len(res.Hits) != 2 || res.Hits[0].DocID != 7 || res.Hits[1].DocID != 6 {
		t.Errorf("hits = %v", res.Hits)
	}
	if res.Latency <= 0 {
		t.Error("latency not recorded")
	}
}

func TestSingleWordResultIsIndependentCopy(t *testing.T) {
	e, idx := newFixture(t)
	q, err := parser.Parse("cat", e.normalizer)
	if err != nil {
		t.Fatal(err)
	}
	list := e.fold(context.Background(), q, &Result{})
	list[0].Frequency = 1000
	list[0].DocID = 99

	entry, _ := idx.Lookup("cat")
	if entry.Postings[0] != (index.Posting{DocID: 1, Frequency: 3}) {
		t.Errorf("index was modified through the result: %v", entry.Postings)
	}
}

type failingStore struct{}

func (failingStore) Lookup(ctx context.Context, docID int) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) Close() error { return nil }

func TestMetadataFailure(t *testing.T) {
	idx, _ := index.Load(strings.NewReader(fixtureIndex))
	e := New(idx, failingStore{})
	var buf bytes.Buffer
	err := e.Run(context.Background(), "cat", &buf)
	if !errors.Is(err, apperrors.ErrMetadataUnavailable) {
		t.Fatalf("err = %v, want ErrMetadataUnavailable", err)
	}
	if apperrors.ExitCode(err) != apperrors.ExitFailure {
		t.Errorf("exit code = %d", apperrors.ExitCode(err))
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q on failure", buf.String())
	}
}

func TestUnreadablePageIsSkipped(t *testing.T) {
	idx, err := index.Load(strings.NewReader(fixtureIndex))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1"), []byte("http://example.com/1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "2"), 0o755); err != nil {
		t.Fatal(err)
	}
	e := New(idx, metadata.NewDirStore(dir))
	var buf bytes.Buffer
	if err := e.Run(context.Background(), "cat", &buf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.String() != output(1) {
		t.Errorf("Run(cat) = %q, want %q", buf.String(), output(1))
	}
}

type panickingIndex struct{}

func (panickingIndex) Lookup(word string) (index.WordEntry, bool) {
	panic("corrupt index")
}

func TestPanicBecomesEvaluationError(t *testing.T) {
	e := New(panickingIndex{}, failingStore{})
	_, err := e.Evaluate(context.Background(), "cat AND dog")
	if !errors.Is(err, apperrors.ErrEvaluation) {
		t.Fatalf("err = %v, want ErrEvaluation", err)
	}
	// The executor stays usable after a recovered panic.
	if _, err := e.Evaluate(context.Background(), "AND"); !errors.Is(err, apperrors.ErrInvalidQuery) {
		t.Errorf("second evaluation err = %v", err)
	}
}

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.QueryEvent
}

func (r *recordingTracker) Track(event analytics.QueryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestMetricsAndTracking(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tracker := &recordingTracker{}
	e, _ := newFixture(t, WithMetrics(m), WithTracker(tracker))
	ctx := context.Background()

	e.Evaluate(ctx, "cat AND dog")
	e.Evaluate(ctx, "unicorn")
	e.Evaluate(ctx, "cat AND")
	e.Evaluate(ctx, "fish")

	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("zero_result")); got != 2 {
		t.Errorf("zero_result queries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("invalid")); got != 1 {
		t.Errorf("invalid queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.MetadataMisses); got != 1 {
		t.Errorf("metadata misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IndexLookups); got != 4 {
		t.Errorf("index lookups = %v, want 4", got)
	}

	wantTypes := []analytics.EventType{
		analytics.EventQuery, analytics.EventZeroResult, analytics.EventInvalid, analytics.EventZeroResult,
	}
	if len(tracker.events) != len(wantTypes) {
		t.Fatalf("tracked %d events, want %d", len(tracker.events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if tracker.events[i].Type != want {
			t.Errorf("event %d type = %s, want %s", i, tracker.events[i].Type, want)
		}
	}
	if tracker.events[0].Hits != 2 || len(tracker.events[0].Terms) != 2 {
		t.Errorf("first event = %+v", tracker.events[0])
	}
}

func BenchmarkEvaluate(b *testing.B) {
	idx, err := index.Load(strings.NewReader(fixtureIndex))
	if err != nil {
		b.Fatal(err)
	}
	e := New(idx, metadata.NewDirStore(b.TempDir()))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(ctx, "cat AND dog OR bird OR a c")
	}
}
