package report

import (
	"math"
	"regexp"
	"strings"

	"github.com/yukiharu/aivis/internal/model"
)

// Visibility families: each is an independent topical signal scanned over an
// item's reason and keywords. One item increments a family's tally at most
// once; the score is hits divided by total items.
var (
	procedureRe      = regexp.MustCompile(`임플란트|교정|보톡스|필러|리프팅|라식|라섹|시술|수술|치료|식립|임상`)
	reviewSignalRe   = regexp.MustCompile(`후기|리뷰|평점|만족|사례|체험`)
	clarityRe        = regexp.MustCompile(`설명|자세|상세|안내|정리|가이드|비교`)
	internalLinkRe   = regexp.MustCompile(`링크|관련 글|관련 페이지|추가 정보|바로가기|목차`)
	structuredDataRe = regexp.MustCompile(`(?i)FAQ|스키마|구조화|메타|검색 최적화|SEO|schema`)
)

// visibilityScores computes the per-family 0..1 heuristic over all items.
// Zero items means all zeros, not NaN.
func visibilityScores(items []model.ReportItem) model.VisibilityScores {
	if len(items) == 0 {
		return model.VisibilityScores{}
	}

	var procedure, reviews, clarity, internal, structured int
	for _, item := range items {
		text := item.Reason + " " + strings.Join(item.Keywords, " ")
		if procedureRe.MatchString(text) {
			procedure++
		}
		if reviewSignalRe.MatchString(text) {
			reviews++
		}
		if clarityRe.MatchString(text) {
			clarity++
		}
		if internalLinkRe.MatchString(text) {
			internal++
		}
		if structuredDataRe.MatchString(text) {
			structured++
		}
	}

	total := float64(len(items))
	return model.VisibilityScores{
		Procedure:      round2(float64(procedure) / total),
		Reviews:        round2(float64(reviews) / total),
		Clarity:        round2(float64(clarity) / total),
		InternalLinks:  round2(float64(internal) / total),
		StructuredData: round2(float64(structured) / total),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
