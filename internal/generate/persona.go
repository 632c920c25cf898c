package generate

import (
	"context"
	"regexp"
	"strings"

	"github.com/yukiharu/aivis/internal/llmjson"
	"github.com/yukiharu/aivis/internal/model"
	"github.com/yukiharu/aivis/pkg/openai"
)

// PersonaRequest carries the context for single-persona generation. Hints are
// contracts, not suggestions: when set, the returned persona's fields are
// overwritten with them no matter what the upstream produced.
type PersonaRequest struct {
	Form          model.HospitalForm
	WebSummary    *model.SummaryLines
	Index         *int
	HintGender    string
	HintAgeRange  string
	ClinicSummary string
}

// koreanNamePool replaces names the upstream writes in ASCII or as English
// demographic labels. Indexed by the request's persona index for stability.
var koreanNamePool = []string{
	"김서연", "이수민", "박지훈", "최유진", "정현우",
	"한소희", "오지민", "유다인", "서지우", "강민서",
}

var (
	asciiNameRe   = regexp.MustCompile(`^[\x00-\x7F]+$`)
	englishLikeRe = regexp.MustCompile(`(?i)female|male|young`)
	ageDigitsRe   = regexp.MustCompile(`(\d{2})`)
)

// GeneratePersona produces exactly one persona. One strict retry on upstream
// failure or empty parse; still nothing usable is ErrUpstreamEmpty.
func (g *Generator) GeneratePersona(ctx context.Context, req PersonaRequest) (*model.Persona, error) {
	user := formContext(req.Form, req.WebSummary, req.Index, req.ClinicSummary)

	logStage("persona", stagePrimary)
	rp, perr := g.completeSingle(ctx, user, g.params.PersonaTemp)
	if perr != nil || rp == nil {
		logStage("persona", stageRetrying)
		retryRP, rerr := g.completeSingle(ctx, user, g.params.RetryTemp)
		if rerr != nil && perr != nil {
			return nil, rerr
		}
		if retryRP != nil {
			rp = retryRP
		}
	}
	if rp == nil {
		return nil, ErrUpstreamEmpty
	}

	idx := 0
	if req.Index != nil {
		idx = *req.Index
	}
	p := coercePersona(*rp, g.params.QuestionsPerPersona)
	p.Name = normalizeName(p.Name, idx)
	p.Gender = toKoGender(p.Gender)
	p.AgeRange = toKoAge(p.AgeRange)

	// Hints always win.
	if req.HintGender != "" {
		p.Gender = req.HintGender
	}
	if req.HintAgeRange != "" {
		p.AgeRange = req.HintAgeRange
	}
	return &p, nil
}

func (g *Generator) completeSingle(ctx context.Context, user string, temp float64) (*rawPersona, error) {
	content, err := g.llm.Complete(ctx, openai.CompleteRequest{
		Messages: []openai.Message{
			{Role: "system", Content: personaSingleSystem},
			{Role: "user", Content: user},
		},
		Temperature: temp,
		MaxTokens:   g.params.PersonaMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		return nil, err
	}
	var env personaEnvelope
	if !llmjson.Decode(content, &env) {
		return nil, nil
	}
	if env.Persona != nil {
		return env.Persona, nil
	}
	if len(env.Personas) > 0 {
		return &env.Personas[0], nil
	}
	return nil, nil
}

func normalizeName(name string, idx int) string {
	pick := koreanNamePool[((idx%len(koreanNamePool))+len(koreanNamePool))%len(koreanNamePool)]
	if name == "" {
		return pick
	}
	if asciiNameRe.MatchString(name) || englishLikeRe.MatchString(name) {
		return pick
	}
	return name
}

func toKoGender(g string) string {
	s := strings.ToLower(g)
	if strings.Contains(s, "여") || strings.Contains(s, "female") {
		return "여성"
	}
	if strings.Contains(s, "남") || strings.Contains(s, "male") {
		return "남성"
	}
	return "여성"
}

func toKoAge(a string) string {
	if m := ageDigitsRe.FindStringSubmatch(a); m != nil {
		return m[1] + "대"
	}
	if a != "" {
		return a
	}
	return "20대"
}
