package model

// AgeRanges lists the accepted persona age bands, youngest first.
var AgeRanges = []string{"10대", "20대", "30대", "40대", "50대", "60대", "70대 이상"}

// Persona is a synthetic customer profile generated for one request.
// Personas are never persisted server-side; callers may cache them.
type Persona struct {
	Name      string   `json:"name"`
	AgeRange  string   `json:"age_range"`
	Gender    string   `json:"gender"`
	Interests []string `json:"interests"`
	Goal      string   `json:"goal,omitempty"`
	Questions []string `json:"questions"`
}

// HospitalForm is the user-supplied marketing context. It is an opaque bag:
// the pipelines serialize it verbatim into prompts and only read a few named
// fields, tolerating their absence.
type HospitalForm map[string]any

func (f HospitalForm) str(key string) string {
	if f == nil {
		return ""
	}
	s, _ := f[key].(string)
	return s
}

func (f HospitalForm) strs(key string) []string {
	if f == nil {
		return nil
	}
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Website returns the hospital website URL, if present.
func (f HospitalForm) Website() string { return f.str("website") }

// HospitalName returns the hospital display name, if present.
func (f HospitalForm) HospitalName() string { return f.str("hospitalName") }

// ServiceKeywords returns the configured service keywords, if present.
func (f HospitalForm) ServiceKeywords() []string { return f.strs("serviceKeywords") }

// LocationKeywords returns the configured location keywords, if present.
func (f HospitalForm) LocationKeywords() []string { return f.strs("locationKeywords") }

// SummaryLines is the scraped-website summary. Lines is never empty in a
// successful response; the summarizer substitutes a placeholder line when the
// site could not be summarized.
type SummaryLines struct {
	Lines []string `json:"lines"`
}

// SummaryPlaceholder is returned when no usable summary could be produced.
const SummaryPlaceholder = "요약을 불러오지 못했습니다."
