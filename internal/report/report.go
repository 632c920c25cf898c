// Package report replays persona questions against the upstream model and
// aggregates which sites surface in the answers: domain ranking, intent
// buckets, trend keywords, and heuristic visibility scores.
package report

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yukiharu/aivis/internal/generate"
	"github.com/yukiharu/aivis/internal/llmjson"
	"github.com/yukiharu/aivis/internal/model"
	"github.com/yukiharu/aivis/pkg/openai"
)

// Limits are the aggregation thresholds. Configurable rather than inlined;
// the defaults are canonical.
type Limits struct {
	MaxItemsPerQuestion int
	TopDomains          int
	TopTrendKeywords    int
}

// DefaultLimits returns the canonical aggregation thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxItemsPerQuestion: 5,
		TopDomains:          15,
		TopTrendKeywords:    30,
	}
}

// Runner fans (persona, question) units out to the upstream under a bounded
// worker pool and folds the settled results into one ReportResult.
type Runner struct {
	llm         generate.Completer
	concurrency int
	unitTimeout time.Duration
	limiter     *rate.Limiter
	limits      Limits
}

// NewRunner builds a Runner. ratePerSec <= 0 disables rate limiting.
func NewRunner(llm generate.Completer, concurrency int, unitTimeout time.Duration, ratePerSec float64, limits Limits) *Runner {
	if concurrency <= 0 {
		concurrency = 4
	}
	if unitTimeout <= 0 {
		unitTimeout = 25 * time.Second
	}
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Runner{
		llm:         llm,
		concurrency: concurrency,
		unitTimeout: unitTimeout,
		limiter:     limiter,
		limits:      limits,
	}
}

const reportSystem = `너는 한국 병원/시술 정보를 추천하는 검색 도우미야.
사용자 질문에 대해 추천할 만한 사이트를 최대 5개 JSON ONLY로 답해.
출력: {"items":[{"name":"사이트명","url":"https://...","reason":"추천 이유 한 문장","keywords":["키워드"]}]}
실제로 존재할 법한 한국 사이트 위주로, 질문과 무관한 사이트는 제외.`

// unit is one (persona, question) pair of pending work.
type unit struct {
	personaIdx  int
	questionIdx int
	question    string
	context     string
}

// Run executes every (persona, question) unit and aggregates the settled
// results. A unit's failure degrades to zero items and never aborts the run;
// Run itself fails only on a top-level fault.
func (r *Runner) Run(ctx context.Context, personas []model.ReportPersona) (*model.ReportResult, error) {
	units := make([]unit, 0, len(personas)*3)
	for pi, p := range personas {
		pctx := personaContext(p)
		for qi, q := range p.Questions {
			if strings.TrimSpace(q) == "" {
				continue
			}
			units = append(units, unit{personaIdx: pi, questionIdx: qi, question: q, context: pctx})
		}
	}

	results := make([]model.QuestionResult, len(units))
	var failures atomic.Int64

	// Fixed-size pool over a FIFO unit list; the aggregation below only
	// starts after every unit has settled.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			items, err := r.askUnit(gctx, u)
			if err != nil {
				failures.Add(1)
				zap.L().Warn("report unit failed",
					zap.Int("persona", u.personaIdx),
					zap.Int("question", u.questionIdx),
					zap.Error(err),
				)
				results[i] = model.QuestionResult{Question: u.question, Items: []model.ReportItem{}, Failed: true}
				return nil // a failed unit never aborts the run
			}
			results[i] = model.QuestionResult{Question: u.question, Items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("report units settled",
		zap.Int("total", len(units)),
		zap.Int64("failed", failures.Load()),
	)

	// Fan-in: all aggregation state is owned by this invocation and mutated
	// only after the barrier above.
	traces := buildTraces(personas, units, results)
	allItems := make([]model.ReportItem, 0, len(units))
	for _, qr := range results {
		allItems = append(allItems, qr.Items...)
	}

	return &model.ReportResult{
		OK:             true,
		RunID:          uuid.NewString(),
		Personas:       traces,
		Ranking:        rankDomains(results, r.limits.TopDomains),
		Intents:        classifyIntents(results),
		Trend:          trendKeywords(allItems, r.limits.TopTrendKeywords),
		Visibility:     visibilityScores(allItems),
		TotalQuestions: len(units),
	}, nil
}

// askUnit issues one upstream call for a single (persona, question) pair.
func (r *Runner) askUnit(ctx context.Context, u unit) ([]model.ReportItem, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	user := u.question
	if u.context != "" {
		user = fmt.Sprintf("질문자: %s\n질문: %s", u.context, u.question)
	}
	content, err := r.llm.Complete(ctx, openai.CompleteRequest{
		Messages: []openai.Message{
			{Role: "system", Content: reportSystem},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		JSONObject:  true,
		Timeout:     r.unitTimeout,
	})
	if err != nil {
		return nil, err
	}

	var env struct {
		Items []model.ReportItem `json:"items"`
	}
	if !llmjson.Decode(content, &env) {
		return nil, generate.ErrUpstreamEmpty
	}
	items := env.Items
	if max := r.limits.MaxItemsPerQuestion; len(items) > max {
		items = items[:max]
	}
	out := items[:0]
	for _, item := range items {
		if item.URL != "" || item.Name != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// personaContext renders the short natural-language paragraph describing who
// is asking. Absent fields are simply omitted.
func personaContext(p model.ReportPersona) string {
	parts := make([]string, 0, 4)
	if p.AgeRange != "" || p.Gender != "" {
		parts = append(parts, strings.TrimSpace(p.AgeRange+" "+p.Gender))
	}
	if len(p.Jobs) > 0 {
		parts = append(parts, strings.Join(p.Jobs, "/"))
	}
	if len(p.Purposes) > 0 {
		parts = append(parts, strings.Join(p.Purposes, ", ")+" 목적")
	}
	if p.Budget > 0 {
		parts = append(parts, fmt.Sprintf("예산 %d만원대", p.Budget))
	}
	return strings.Join(parts, ", ")
}

func buildTraces(personas []model.ReportPersona, units []unit, results []model.QuestionResult) []model.PersonaTrace {
	traces := make([]model.PersonaTrace, len(personas))
	for i, p := range personas {
		traces[i] = model.PersonaTrace{ID: p.ID, Name: p.Name, Results: []model.QuestionResult{}}
	}
	for i, u := range units {
		traces[u.personaIdx].Results = append(traces[u.personaIdx].Results, results[i])
	}
	return traces
}
