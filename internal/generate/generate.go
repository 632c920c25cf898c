// Package generate implements the persona, question, and summary pipelines.
// Every pipeline follows the same shape: one primary completion, lenient
// decode, at most one strict retry, and shape enforcement. The question
// pipeline additionally has a deterministic local synthesizer of last resort.
package generate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yukiharu/aivis/pkg/openai"
)

// Completer is the slice of the LLM gateway the pipelines need. Satisfied by
// *openai.Gateway.
type Completer interface {
	Complete(ctx context.Context, req openai.CompleteRequest) (string, error)
}

// ErrUpstreamEmpty means the upstream produced nothing usable after the full
// recovery chain. Surfaced to clients as 502 upstream_empty.
var ErrUpstreamEmpty = eris.New("upstream returned no usable content")

// stage names one step of the generate → validate → repair → synthesize
// machine. Stages advance strictly forward; there are no racing retries.
type stage string

const (
	stagePrimary      stage = "primary"
	stageRetrying     stage = "retrying"
	stageShapeFixing  stage = "shape_fixing"
	stageSynthesizing stage = "synthesizing"
)

// Params are the pipeline thresholds, configurable rather than inlined.
// DefaultParams holds the canonical values.
type Params struct {
	PersonaCount        int // personas per batch
	QuestionsPerPersona int // questions attached to each persona
	QuestionCount       int // questions per question-generation call
	QuestionMinRunes    int
	QuestionMaxRunes    int

	BatchMaxTokens    int
	PersonaMaxTokens  int
	QuestionMaxTokens int

	BatchTemp    float64
	RetryTemp    float64
	PersonaTemp  float64
	QuestionTemp float64
	SummaryTemp  float64
}

// DefaultParams returns the canonical thresholds.
func DefaultParams() Params {
	return Params{
		PersonaCount:        10,
		QuestionsPerPersona: 3,
		QuestionCount:       3,
		QuestionMinRunes:    10,
		QuestionMaxRunes:    80,
		BatchMaxTokens:      900,
		PersonaMaxTokens:    400,
		QuestionMaxTokens:   350,
		BatchTemp:           0.4,
		RetryTemp:           0.2,
		PersonaTemp:         0.5,
		QuestionTemp:        0.5,
		SummaryTemp:         0.3,
	}
}

// SiteFetcher reduces a website to prompt-ready text. Satisfied by
// *scrape.Fetcher. A fetch failure is an empty string, never an error.
type SiteFetcher interface {
	FetchText(ctx context.Context, url string) string
}

// Generator runs the generation pipelines against one injected gateway.
type Generator struct {
	llm     Completer
	fetcher SiteFetcher
	params  Params
}

// New builds a Generator. fetcher may be nil when the summarize pipeline is
// not used.
func New(llm Completer, fetcher SiteFetcher, params Params) *Generator {
	return &Generator{llm: llm, fetcher: fetcher, params: params}
}

func logStage(pipeline string, s stage) {
	zap.L().Debug("pipeline stage", zap.String("pipeline", pipeline), zap.String("stage", string(s)))
}
