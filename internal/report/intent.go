package report

import (
	"regexp"

	"github.com/yukiharu/aivis/internal/model"
)

// Intent labels, in classification priority order. A question gets exactly
// one label: first matching pattern group wins, info is the default.
const (
	IntentReview    = "review"
	IntentPrice     = "price"
	IntentRecovery  = "recovery"
	IntentNatural   = "natural"
	IntentInsurance = "insurance"
	IntentInfo      = "info"
)

type intentRule struct {
	label   string
	pattern *regexp.Regexp
}

// intentRules is evaluated top to bottom. Keep price free of bare "얼마":
// "얼마나 걸리나요" is a duration question, not a price one.
var intentRules = []intentRule{
	{IntentReview, regexp.MustCompile(`후기|리뷰|평판|만족도|경험담`)},
	{IntentPrice, regexp.MustCompile(`가격|비용|견적|할인|이벤트|얼마예요|얼마인가요`)},
	{IntentRecovery, regexp.MustCompile(`회복|붓기|멍|통증|부작용|다운타임|아프`)},
	{IntentNatural, regexp.MustCompile(`자연스럽|티 안|티가 안|어색하지`)},
	{IntentInsurance, regexp.MustCompile(`보험|실비|급여`)},
}

// ClassifyIntent labels a single question text.
func ClassifyIntent(question string) string {
	for _, rule := range intentRules {
		if rule.pattern.MatchString(question) {
			return rule.label
		}
	}
	return IntentInfo
}

// classifyIntents buckets every question and tracks the running average of
// surfaced items per question ("avgLinks"). Buckets keep priority order, with
// info last; empty buckets are omitted.
func classifyIntents(results []model.QuestionResult) []model.IntentBucket {
	type tally struct {
		count int
		items int
	}
	tallies := make(map[string]*tally)
	for _, qr := range results {
		label := ClassifyIntent(qr.Question)
		t, ok := tallies[label]
		if !ok {
			t = &tally{}
			tallies[label] = t
		}
		t.count++
		t.items += len(qr.Items)
	}

	order := []string{IntentReview, IntentPrice, IntentRecovery, IntentNatural, IntentInsurance, IntentInfo}
	out := make([]model.IntentBucket, 0, len(order))
	for _, label := range order {
		t, ok := tallies[label]
		if !ok {
			continue
		}
		out = append(out, model.IntentBucket{
			Label:    label,
			Count:    t.count,
			AvgLinks: round2(float64(t.items) / float64(t.count)),
		})
	}
	return out
}
