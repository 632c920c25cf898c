package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yukiharu/aivis/internal/llmjson"
	"github.com/yukiharu/aivis/internal/model"
	"github.com/yukiharu/aivis/pkg/openai"
)

// PersonaBatchRequest carries the context for a persona batch.
type PersonaBatchRequest struct {
	Form       model.HospitalForm
	WebSummary *model.SummaryLines
}

// rawPersona tolerates the loose shapes the upstream emits: questions may be
// plain strings or {text: "..."} objects, interests may be missing.
type rawPersona struct {
	Name      string `json:"name"`
	AgeRange  string `json:"age_range"`
	Gender    string `json:"gender"`
	Interests []any  `json:"interests"`
	Goal      string `json:"goal"`
	Questions []any  `json:"questions"`
}

type personaEnvelope struct {
	Persona  *rawPersona  `json:"persona"`
	Personas []rawPersona `json:"personas"`
}

// GeneratePersonas produces the full persona batch. The pipeline retries once
// with a stricter prompt when the primary attempt fails or parses to nothing,
// then enforces shape. It never fabricates persona identities: zero usable
// personas is ErrUpstreamEmpty, not synthetic people.
func (g *Generator) GeneratePersonas(ctx context.Context, req PersonaBatchRequest) ([]model.Persona, error) {
	user := formContext(req.Form, req.WebSummary, nil, "")

	logStage("personas", stagePrimary)
	raw, perr := g.completeBatch(ctx, personaBatchSystem, user, g.params.BatchTemp)
	if perr != nil || len(raw) == 0 {
		logStage("personas", stageRetrying)
		retryRaw, rerr := g.completeBatch(ctx, personaBatchStrictSystem, user, g.params.RetryTemp)
		if rerr != nil && perr != nil {
			return nil, rerr
		}
		if len(retryRaw) > 0 {
			raw = retryRaw
		}
	}
	if len(raw) == 0 {
		return nil, ErrUpstreamEmpty
	}

	raw = g.enforceBatchShape(ctx, raw)

	personas := make([]model.Persona, 0, len(raw))
	for _, rp := range raw {
		personas = append(personas, coercePersona(rp, g.params.QuestionsPerPersona))
	}
	return personas, nil
}

func (g *Generator) completeBatch(ctx context.Context, system, user string, temp float64) ([]rawPersona, error) {
	content, err := g.llm.Complete(ctx, openai.CompleteRequest{
		Messages: []openai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temp,
		MaxTokens:   g.params.BatchMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		return nil, err
	}
	var env personaEnvelope
	if !llmjson.Decode(content, &env) {
		return nil, nil
	}
	return env.Personas, nil
}

// enforceBatchShape normalizes question entries and, when the persona count
// is off but content exists, asks the upstream once to reshape its own output
// without inventing new topics. Failures here are non-fatal: the current
// content stands.
func (g *Generator) enforceBatchShape(ctx context.Context, raw []rawPersona) []rawPersona {
	want := g.params.PersonaCount
	if len(raw) > want {
		raw = raw[:want]
	}
	if len(raw) == want {
		return raw
	}

	logStage("personas", stageShapeFixing)
	current, err := json.Marshal(personaEnvelope{Personas: raw})
	if err != nil {
		return raw
	}
	payload := string(current)
	if len(payload) > 12000 {
		payload = payload[:12000]
	}

	content, err := g.llm.Complete(ctx, openai.CompleteRequest{
		Messages: []openai.Message{
			{Role: "system", Content: personaBatchShapeFixSystem},
			{Role: "user", Content: payload},
		},
		Temperature: g.params.RetryTemp,
		MaxTokens:   g.params.BatchMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		return raw
	}
	var env personaEnvelope
	if !llmjson.Decode(content, &env) || len(env.Personas) == 0 {
		return raw
	}
	if len(env.Personas) > want {
		env.Personas = env.Personas[:want]
	}
	return env.Personas
}

// coercePersona turns a loosely-shaped upstream persona into the response
// type, capping questions at the configured count.
func coercePersona(rp rawPersona, maxQuestions int) model.Persona {
	return model.Persona{
		Name:      rp.Name,
		AgeRange:  rp.AgeRange,
		Gender:    rp.Gender,
		Interests: coerceStrings(rp.Interests, 0),
		Goal:      rp.Goal,
		Questions: coerceStrings(rp.Questions, maxQuestions),
	}
}

// coerceStrings flattens a mixed list into non-empty strings. Entries may be
// strings, {text: "..."} objects, or anything else printable. max <= 0 means
// no cap.
func coerceStrings(items []any, max int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case map[string]any:
			s, _ = v["text"].(string)
		default:
			if v != nil {
				s = fmt.Sprint(v)
			}
		}
		if s == "" {
			continue
		}
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// formContext serializes the request context for user messages the way the
// upstream prompts expect it.
func formContext(form model.HospitalForm, summary *model.SummaryLines, index *int, clinicSummary string) string {
	formJSON, err := json.Marshal(form)
	if err != nil || form == nil {
		formJSON = []byte("{}")
	}
	summaryJSON := []byte("{}")
	if summary != nil {
		if b, err := json.Marshal(summary); err == nil {
			summaryJSON = b
		}
	}
	user := fmt.Sprintf("formData: %s\nwebSummary: %s", formJSON, summaryJSON)
	if index != nil {
		user += fmt.Sprintf("\nindex:%d", *index)
	}
	if clinicSummary != "" {
		user += "\nclinicSummary: " + clinicSummary
	}
	return user
}
