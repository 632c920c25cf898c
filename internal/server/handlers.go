package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yukiharu/aivis/internal/generate"
	"github.com/yukiharu/aivis/internal/model"
)

// timing captures the diagnostic header values for generation endpoints.
// Informational only; not part of the functional contract.
type timing struct {
	start    time.Time
	upstream time.Duration
}

func newTiming() *timing { return &timing{start: time.Now()} }

func (t *timing) measure(fn func()) {
	u := time.Now()
	fn()
	t.upstream = time.Since(u)
}

func (t *timing) write(w http.ResponseWriter) {
	w.Header().Set("X-Timing-Upstream-ms", strconv.FormatInt(t.upstream.Milliseconds(), 10))
	w.Header().Set("X-Timing-Total-ms", strconv.FormatInt(time.Since(t.start).Milliseconds(), 10))
}

func setPayloadHeaders(w http.ResponseWriter, form model.HospitalForm, summary *model.SummaryLines) {
	if b, err := json.Marshal(form); err == nil {
		w.Header().Set("X-Payload-Form-Bytes", strconv.Itoa(len(b)))
	}
	if summary != nil {
		if b, err := json.Marshal(summary); err == nil {
			w.Header().Set("X-Payload-WebSummary-Bytes", strconv.Itoa(len(b)))
		}
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.requireKey(w) {
		return
	}
	var body struct {
		Form       model.HospitalForm  `json:"form"`
		WebSummary *model.SummaryLines `json:"webSummary"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	t := newTiming()
	var personas []model.Persona
	var err error
	t.measure(func() {
		personas, err = s.gen.GeneratePersonas(r.Context(), generate.PersonaBatchRequest{
			Form:       body.Form,
			WebSummary: body.WebSummary,
		})
	})
	if err != nil {
		writeFailure(w, "generate", err)
		return
	}

	t.write(w)
	setPayloadHeaders(w, body.Form, body.WebSummary)
	writeJSON(w, http.StatusOK, map[string]any{"personas": personas})
}

func (s *Server) handleGeneratePersona(w http.ResponseWriter, r *http.Request) {
	if !s.requireKey(w) {
		return
	}
	var body struct {
		Form          model.HospitalForm  `json:"form"`
		WebSummary    *model.SummaryLines `json:"webSummary"`
		Index         *int                `json:"index"`
		HintGender    string              `json:"hintGender"`
		HintAgeRange  string              `json:"hintAgeRange"`
		ClinicSummary string              `json:"clinicSummary"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	t := newTiming()
	var persona *model.Persona
	var err error
	t.measure(func() {
		persona, err = s.gen.GeneratePersona(r.Context(), generate.PersonaRequest{
			Form:          body.Form,
			WebSummary:    body.WebSummary,
			Index:         body.Index,
			HintGender:    body.HintGender,
			HintAgeRange:  body.HintAgeRange,
			ClinicSummary: body.ClinicSummary,
		})
	})
	if err != nil {
		writeFailure(w, "generate/persona", err)
		return
	}

	t.write(w)
	setPayloadHeaders(w, body.Form, body.WebSummary)
	writeJSON(w, http.StatusOK, map[string]any{"persona": persona})
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if !s.requireKey(w) {
		return
	}
	var body struct {
		Persona          model.Persona `json:"persona"`
		Services         any           `json:"services"`
		LocationKeyword  string        `json:"locationKeyword"`
		FallbackLocation string        `json:"fallbackLocation"`
		Tone             string        `json:"tone"`
		ClinicIntro      string        `json:"clinicIntro"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	t := newTiming()
	var questions []string
	var err error
	t.measure(func() {
		questions, err = s.gen.GenerateQuestions(r.Context(), generate.QuestionsRequest{
			Persona:          body.Persona,
			Services:         coerceServices(body.Services),
			LocationKeyword:  body.LocationKeyword,
			FallbackLocation: body.FallbackLocation,
			Tone:             body.Tone,
			ClinicIntro:      body.ClinicIntro,
		})
	})
	if err != nil {
		writeFailure(w, "generate/questions", err)
		return
	}

	t.write(w)
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// coerceServices accepts both a JSON array and a comma-separated string.
func coerceServices(v any) []string {
	switch s := v.(type) {
	case string:
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, strings.TrimSpace(str))
			}
		}
		return out
	default:
		return nil
	}
}

func (s *Server) handleSummarizePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.summarize(w, r, body.URL)
}

func (s *Server) handleSummarizeGet(w http.ResponseWriter, r *http.Request) {
	s.summarize(w, r, r.URL.Query().Get("url"))
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request, url string) {
	if strings.TrimSpace(url) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing_url"})
		return
	}
	if !s.requireKey(w) {
		return
	}

	t := newTiming()
	var lines *model.SummaryLines
	var err error
	t.measure(func() {
		lines, err = s.gen.SummarizeSite(r.Context(), url)
	})
	if err != nil {
		writeFailure(w, "summarize", err)
		return
	}

	t.write(w)
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleReportRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireKey(w) {
		return
	}
	var body struct {
		Personas []model.ReportPersona `json:"personas"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.runner.Run(r.Context(), body.Personas)
	if err != nil {
		writeFailure(w, "report/run", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
