package model

// ReportPersona is the slim persona payload the report endpoint accepts.
// Budget, purposes and jobs are optional and only feed the persona context
// paragraph sent to the upstream model.
type ReportPersona struct {
	ID        int      `json:"id,omitempty"`
	Name      string   `json:"name"`
	AgeRange  string   `json:"ageRange,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Budget    int      `json:"budget,omitempty"`
	Purposes  []string `json:"purposes,omitempty"`
	Jobs      []string `json:"jobs,omitempty"`
	Questions []string `json:"questions"`
}

// ReportItem is one site the upstream model claims it would recommend for a
// single question. At most five per question.
type ReportItem struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Reason   string   `json:"reason"`
	Keywords []string `json:"keywords"`
}

// QuestionResult is the per-unit trace: one question asked on behalf of one
// persona and the items surfaced for it. Failed units carry zero items.
type QuestionResult struct {
	Question string       `json:"question"`
	Items    []ReportItem `json:"items"`
	Failed   bool         `json:"failed,omitempty"`
}

// PersonaTrace groups a persona's question results in the report output.
type PersonaTrace struct {
	ID      int              `json:"id,omitempty"`
	Name    string           `json:"name"`
	Results []QuestionResult `json:"results"`
}

// DomainRankingEntry aggregates all items sharing one normalized hostname.
type DomainRankingEntry struct {
	Domain    string   `json:"domain"`
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	SampleURL string   `json:"sampleUrl"`
	Keywords  []string `json:"keywords"`
}

// IntentBucket is one classified question-intent tally.
type IntentBucket struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	AvgLinks float64 `json:"avgLinks"`
}

// TrendKeyword is one keyword with its frequency across all report items.
type TrendKeyword struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// VisibilityScores are rough heuristic 0..1 proxies for how well each topic
// family is represented across the aggregated answers.
type VisibilityScores struct {
	Procedure      float64 `json:"procedure"`
	Reviews        float64 `json:"reviews"`
	Clarity        float64 `json:"clarity"`
	InternalLinks  float64 `json:"internalLinks"`
	StructuredData float64 `json:"structuredData"`
}

// ReportResult is the composed output of one aggregator run.
type ReportResult struct {
	OK             bool                 `json:"ok"`
	RunID          string               `json:"runId"`
	Personas       []PersonaTrace       `json:"personas"`
	Ranking        []DomainRankingEntry `json:"ranking"`
	Intents        []IntentBucket       `json:"intents"`
	Trend          []TrendKeyword       `json:"trend"`
	Visibility     VisibilityScores     `json:"visibility"`
	TotalQuestions int                  `json:"totalQuestions"`
}
