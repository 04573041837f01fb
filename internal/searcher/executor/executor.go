// Package executor evaluates one boolean query line end to end: validate,
// tokenize, fold AND-groups, OR-fold, rank, then resolve URLs.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/metadata"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/planner"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/resolver"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/tracing"
)

// Tracker receives one event per evaluation; *analytics.Collector
// satisfies it.
type Tracker interface {
	Track(event analytics.QueryEvent)
}

type Result struct {
	Query string   `json:"query"`
	Terms []string `json:"terms"`
	// Hits are the ranked documents that have a URL.
	Hits []resolver.Hit `json:"results"`
	// Ranked is the full ranked list before metadata resolution.
	Ranked    []index.Posting `json:"-"`
	Groups    int             `json:"groups"`
	Discarded int             `json:"discarded_groups"`
	Missing   []string        `json:"missing_words,omitempty"`
	Latency   time.Duration   `json:"-"`
}

type Executor struct {
	mu         sync.Mutex
	idx        planner.Lookuper
	resolver   *resolver.Resolver
	normalizer parser.Normalizer
	metrics    *metrics.Metrics
	tracker    Tracker
	logLevel   slog.Level
	logger     *slog.Logger
}

type Option func(*Executor)

func WithNormalizer(n parser.Normalizer) Option {
	return func(e *Executor) { e.normalizer = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func WithTracker(t Tracker) Option {
	return func(e *Executor) { e.tracker = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithQueryLogLevel sets the level of the per-query "query evaluated" record.
func WithQueryLogLevel(level slog.Level) Option {
	return func(e *Executor) { e.logLevel = level }
}

func New(idx planner.Lookuper, store metadata.Store, opts ...Option) *Executor {
	e := &Executor{
		idx:        idx,
		resolver:   resolver.New(store),
		normalizer: tokenizer.Lowercase,
		logLevel:   slog.LevelInfo,
		logger:     slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs one query. Evaluations are serialized. An invalid line fails
// with an error matching ErrInvalidQuery before any index lookup; a panic
// during evaluation is reported as ErrEvaluation.
func (e *Executor) Evaluate(ctx context.Context, line string) (res *Result, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	traceID := logger.RequestID(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	ctx, root := tracing.StartSpan(ctx, "evaluate", traceID)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("query evaluation panicked",
				"query", line,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			res, err = nil, fmt.Errorf("%w: %v", apperrors.ErrEvaluation, r)
		}
		root.End()
		if res != nil {
			res.Latency = root.Duration
		}
		e.observe(ctx, line, res, err, root.Duration)
		root.Log(ctx, e.logger)
	}()

	_, span := tracing.StartChildSpan(ctx, "parse")
	q, err := parser.Parse(line, e.normalizer)
	span.End()
	if err != nil {
		return nil, err
	}
	root.SetAttr("tokens", len(q.Tokens))

	res = &Result{Query: line, Terms: q.Words()}
	postings := e.fold(ctx, q, res)

	_, span = tracing.StartChildSpan(ctx, "rank")
	res.Ranked = ranker.Rank(postings)
	span.SetAttr("documents", len(res.Ranked))
	span.End()

	resolveCtx, span := tracing.StartChildSpan(ctx, "resolve")
	hits, err := e.resolver.Resolve(resolveCtx, res.Ranked)
	span.SetAttr("hits", len(hits))
	span.End()
	if err != nil {
		return nil, err
	}
	res.Hits = hits
	return res, nil
}

// fold reduces the query to one posting list. A single word bypasses the
// planner: its postings are copied out of the index as they are.
func (e *Executor) fold(ctx context.Context, q *parser.Query, res *Result) index.PostingList {
	_, span := tracing.StartChildSpan(ctx, "plan")
	if q.IsSingleTerm() {
		defer span.End()
		term := q.Tokens[0].Term
		span.SetAttr("lookups", 1)
		if e.metrics != nil {
			e.metrics.IndexLookups.Inc()
		}
		entry, found := e.idx.Lookup(term)
		if !found {
			res.Discarded = 1
			res.Missing = []string{term}
			return index.PostingList{}
		}
		res.Groups = 1
		return entry.Detach().Postings
	}

	plan := planner.Build(e.idx, q.Tokens)
	span.SetAttr("groups", plan.TotalGroups)
	span.SetAttr("lookups", plan.Lookups)
	span.End()
	if e.metrics != nil {
		e.metrics.IndexLookups.Add(float64(plan.Lookups))
	}
	res.Groups = len(plan.Groups)
	res.Discarded = plan.Discarded
	res.Missing = plan.Missing

	_, span = tracing.StartChildSpan(ctx, "fold")
	defer span.End()
	return merger.FoldOr(plan.Groups)
}

// Run evaluates line and writes the hits to w. Nothing is written when the
// evaluation fails.
func (e *Executor) Run(ctx context.Context, line string, w io.Writer) error {
	res, err := e.Evaluate(ctx, line)
	if err != nil {
		return err
	}
	return resolver.Write(w, res.Hits)
}

func (e *Executor) observe(ctx context.Context, line string, res *Result, err error, latency time.Duration) {
	log := e.logger
	if id := logger.RequestID(ctx); id != "" {
		log = log.With("request_id", id)
	}

	var event analytics.QueryEvent
	outcome := "hit"
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidQuery):
		outcome = "invalid"
		event = analytics.NewQueryEvent(analytics.EventInvalid, line)
		log.Debug("query rejected", "query", line, "error", err)
	case err != nil:
		outcome = "error"
		event = analytics.NewQueryEvent(analytics.EventFailed, line)
		log.Error("query failed", "query", line, "error", err, "latency", latency)
	default:
		typ := analytics.EventQuery
		if len(res.Hits) == 0 {
			outcome = "zero_result"
			typ = analytics.EventZeroResult
		}
		event = analytics.NewQueryEvent(typ, line)
		event.Groups = res.Groups
		event.Discarded = res.Discarded
		event.Ranked = len(res.Ranked)
		event.Hits = len(res.Hits)
		log.Log(ctx, e.logLevel, "query evaluated",
			"query", line,
			"groups", res.Groups,
			"discarded_groups", res.Discarded,
			"ranked", len(res.Ranked),
			"hits", len(res.Hits),
			"latency", latency,
		)
	}

	if e.metrics != nil {
		e.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
		e.metrics.QueryLatency.Observe(latency.Seconds())
		if res != nil {
			e.metrics.QueryResultsCount.Observe(float64(len(res.Hits)))
			e.metrics.GroupsDiscarded.Add(float64(res.Discarded))
			e.metrics.MetadataMisses.Add(float64(len(res.Ranked) - len(res.Hits)))
		}
	}
	if e.tracker != nil {
		event.LatencyUs = latency.Microseconds()
		event.RequestID = logger.RequestID(ctx)
		if res != nil {
			event.Terms = res.Terms
		}
		e.tracker.Track(event)
	}
}
