package generate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yukiharu/aivis/internal/llmjson"
	"github.com/yukiharu/aivis/internal/model"
	"github.com/yukiharu/aivis/pkg/openai"
)

// QuestionsRequest carries the context for recommendation-style question
// generation. Services is the only content source the questions may draw on.
type QuestionsRequest struct {
	Persona          model.Persona
	Services         []string
	LocationKeyword  string
	FallbackLocation string
	Tone             string
	ClinicIntro      string
}

const defaultTone = "실제 친근한 AI와 대화하듯"

// questionRetryTemp is slightly below the primary temperature; the retry asks
// for format compliance, not fresh creativity.
const questionRetryTemp = 0.4

// toneRule is one labeled pattern in an ordered rule table.
type toneRule struct {
	label   string
	pattern *regexp.Regexp
}

// recommendTone must match at least one generated question: the questions are
// supposed to read like asking an assistant for a recommendation.
var recommendTone = []toneRule{
	{"recommend", regexp.MustCompile(`추천`)},
	{"where_good", regexp.MustCompile(`어디가 좋`)},
	{"is_it_ok", regexp.MustCompile(`괜찮을까요`)},
	{"tell_me", regexp.MustCompile(`알려주`)},
	{"would_be_good", regexp.MustCompile(`좋을까요`)},
}

// faqForbidden must match no generated question: encyclopedic FAQ phrasing is
// the opposite of search-style intent.
var faqForbidden = []toneRule{
	{"definition", regexp.MustCompile(`무엇인가요|무엇입니까|이란 무엇`)},
	{"encyclopedic", regexp.MustCompile(`원리가 뭔가요|역사에 대해`)},
}

// GenerateQuestions produces exactly 3 search-style questions satisfying the
// structural rules: length bounds, a service keyword in every question, the
// location token in exactly one (when a location is configured), and the
// recommendation tone. The upstream gets two chances; after that a
// deterministic template synthesizer guarantees the rules by construction.
func (g *Generator) GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]string, error) {
	services := cleanServices(req.Services)
	loc := firstNonEmpty(req.LocationKeyword, req.FallbackLocation)
	rules := questionRules(req, services)

	logStage("questions", stagePrimary)
	qs, perr := g.completeQuestions(ctx, rules, g.params.QuestionTemp)
	if perr == nil {
		if ok, _ := g.validateQuestions(qs, services, loc); ok {
			return g.patchQuestions(qs, services, req.LocationKeyword, req.FallbackLocation), nil
		}
	}

	logStage("questions", stageRetrying)
	retryQs, rerr := g.completeQuestions(ctx, rules+questionsCorrection, questionRetryTemp)
	if rerr == nil {
		if ok, reason := g.validateQuestions(retryQs, services, loc); ok {
			return g.patchQuestions(retryQs, services, req.LocationKeyword, req.FallbackLocation), nil
		} else if reason != "" {
			zap.L().Debug("question retry still invalid", zap.String("reason", reason))
		}
	}
	if perr != nil && rerr != nil {
		return nil, rerr
	}

	// Both attempts produced content that failed validation: fall back to the
	// local synthesizer, which cannot fail and never touches the network.
	logStage("questions", stageSynthesizing)
	qs = g.synthesizeQuestions(services, loc)
	return g.patchQuestions(qs, services, req.LocationKeyword, req.FallbackLocation), nil
}

func (g *Generator) completeQuestions(ctx context.Context, rules string, temp float64) ([]string, error) {
	content, err := g.llm.Complete(ctx, openai.CompleteRequest{
		Messages: []openai.Message{
			{Role: "system", Content: questionsSystem},
			{Role: "user", Content: rules},
		},
		Temperature: temp,
		MaxTokens:   g.params.QuestionMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		return nil, err
	}
	var env struct {
		Questions []any `json:"questions"`
	}
	if !llmjson.Decode(content, &env) {
		return nil, nil
	}
	return coerceStrings(env.Questions, 0), nil
}

// questionRules builds the user message: the persona line, the content
// sources, and the generation rules the validator re-checks afterwards.
func questionRules(req QuestionsRequest, services []string) string {
	tone := req.Tone
	if tone == "" {
		tone = defaultTone
	}
	var b strings.Builder
	b.WriteString("입력\n")
	fmt.Fprintf(&b, "persona: %s / %s\n", req.Persona.AgeRange, req.Persona.Gender)
	fmt.Fprintf(&b, "services: %s\n", strings.Join(services, ", "))
	fmt.Fprintf(&b, "locationKeyword: %s\n", req.LocationKeyword)
	fmt.Fprintf(&b, "fallbackLocation: %s\n", req.FallbackLocation)
	fmt.Fprintf(&b, "tone: %s\n", tone)
	if req.ClinicIntro != "" {
		fmt.Fprintf(&b, "clinicIntro: %s\n", req.ClinicIntro)
	}
	b.WriteString(`
생성 규칙
- 정확히 3문장. 각 20~60자, 최대 2문장 허용.
- 3개 중 정확히 1개만 위치를 자연스럽게 포함. 우선순위: locationKeyword → 없으면 fallbackLocation.
- 나머지 2개는 위치 언급 금지.
- 모든 질문에 services 중 1~2개를 꼭 녹여 쓸 것(과장 금지, 정보 확인 중심).
- 연령대/성별 말투 반영, 표현·문두 다양화.
- 사이트 콘텐츠는 쓰지 말고, services만 근거로.
- 추천을 묻는 말투로, 백과사전식 질문 금지.
- 중복/유사 패턴 금지.
출력: JSON ONLY {"questions":["q1","q2","q3"]}`)
	return b.String()
}

// validateQuestions applies the structural checklist in its fixed order.
// The returned reason names the first failed check.
func (g *Generator) validateQuestions(qs []string, services []string, loc string) (bool, string) {
	if len(qs) != g.params.QuestionCount {
		return false, "count"
	}
	for _, q := range qs {
		n := utf8.RuneCountInString(q)
		if n < g.params.QuestionMinRunes || n > g.params.QuestionMaxRunes {
			return false, "length"
		}
	}
	if len(services) > 0 {
		for _, q := range qs {
			if !containsAny(q, services) {
				return false, "service"
			}
		}
	}
	if loc != "" {
		count := 0
		for _, q := range qs {
			if strings.Contains(q, loc) {
				count++
			}
		}
		if count != 1 {
			return false, "location"
		}
	}
	toneHit := false
	for _, q := range qs {
		for _, rule := range faqForbidden {
			if rule.pattern.MatchString(q) {
				return false, "tone:" + rule.label
			}
		}
		if !toneHit {
			for _, rule := range recommendTone {
				if rule.pattern.MatchString(q) {
					toneHit = true
					break
				}
			}
		}
	}
	if !toneHit {
		return false, "tone:recommend"
	}
	return true, ""
}

// synthesizeQuestions is the fallback of last resort: a closed template set
// over already-known context. It is pure, touches no network, and satisfies
// every structural rule by construction.
func (g *Generator) synthesizeQuestions(services []string, loc string) []string {
	if len(services) == 0 {
		services = []string{"상담"}
	}
	svc := func(i int) string { return services[i%len(services)] }

	first := fmt.Sprintf("요즘 %s 잘하는 곳 추천해 주실 수 있나요?", svc(0))
	if loc != "" {
		first = fmt.Sprintf("%s 근처에서 %s 잘하는 곳 추천해 주실 수 있나요?", loc, svc(0))
	}
	qs := []string{
		first,
		fmt.Sprintf("%s 시술 전에 미리 확인해야 할 점을 알려주실 수 있나요?", svc(1)),
		fmt.Sprintf("%s 받고 나면 관리는 어떻게 하는 게 좋을까요?", svc(2)),
	}
	for i, q := range qs {
		qs[i] = clampRunes(q, g.params.QuestionMaxRunes)
	}
	return qs[:g.params.QuestionCount]
}

// patchQuestions is the final safety pass over every return path: exactly one
// location mention, a service keyword in each question, hard length clamp.
func (g *Generator) patchQuestions(qs []string, services []string, locKeyword, fallbackLoc string) []string {
	want := g.params.QuestionCount
	if len(qs) > want {
		qs = qs[:want]
	}
	for len(qs) < want {
		qs = append(qs, "상담 예약, 시술 전 확인할 점을 알려주실 수 있나요?")
	}

	loc := firstNonEmpty(locKeyword, fallbackLoc)
	if loc != "" {
		hasIdx := -1
		for i, q := range qs {
			if strings.Contains(q, loc) {
				hasIdx = i
				break
			}
		}
		if hasIdx == -1 {
			subject := "상담"
			if len(services) > 0 {
				subject = services[0]
			}
			qs[0] = fmt.Sprintf("%s 근처에서 %s 관련해 여쭤보고 싶은데, 예약은 어떻게 하면 좋을까요?", loc, subject)
		} else {
			for i, q := range qs {
				if i == hasIdx {
					continue
				}
				qs[i] = strings.TrimSpace(strings.ReplaceAll(q, loc, ""))
			}
		}
	}

	if len(services) > 0 {
		for i, q := range qs {
			if !containsAny(q, services) {
				qs[i] = fmt.Sprintf("%s 관련해서, %s", services[0], q)
			}
		}
	}

	for i, q := range qs {
		qs[i] = clampRunes(q, g.params.QuestionMaxRunes)
	}
	return qs
}

func cleanServices(services []string) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(q string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(q, s) {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func clampRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
