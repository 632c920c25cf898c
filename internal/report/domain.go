package report

import (
	"net/url"
	"sort"
	"strings"

	"github.com/yukiharu/aivis/internal/model"
)

// normalizeDomain reduces an item URL to a bare hostname: scheme dropped,
// leading "www." dropped, lowercased. Returns "" for unusable URLs.
func normalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return host
}

// rankDomains tallies items per normalized hostname and returns the top n by
// count descending. Ties keep insertion order.
func rankDomains(results []model.QuestionResult, n int) []model.DomainRankingEntry {
	type acc struct {
		entry    model.DomainRankingEntry
		keywords map[string]bool
		order    []string
	}
	byDomain := make(map[string]*acc)
	insertion := make([]string, 0)

	for _, qr := range results {
		for _, item := range qr.Items {
			domain := normalizeDomain(item.URL)
			if domain == "" {
				continue
			}
			a, ok := byDomain[domain]
			if !ok {
				a = &acc{
					entry: model.DomainRankingEntry{
						Domain:    domain,
						Name:      item.Name,
						SampleURL: item.URL,
					},
					keywords: make(map[string]bool),
				}
				byDomain[domain] = a
				insertion = append(insertion, domain)
			}
			a.entry.Count++
			for _, kw := range item.Keywords {
				if kw != "" && !a.keywords[kw] {
					a.keywords[kw] = true
					a.order = append(a.order, kw)
				}
			}
		}
	}

	out := make([]model.DomainRankingEntry, 0, len(insertion))
	for _, domain := range insertion {
		a := byDomain[domain]
		a.entry.Keywords = a.order
		if a.entry.Keywords == nil {
			a.entry.Keywords = []string{}
		}
		out = append(out, a.entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// trendKeywords counts keyword frequency across all items and returns the top
// n by frequency descending, insertion order on ties.
func trendKeywords(items []model.ReportItem, n int) []model.TrendKeyword {
	counts := make(map[string]int)
	insertion := make([]string, 0)
	for _, item := range items {
		for _, kw := range item.Keywords {
			if kw == "" {
				continue
			}
			if counts[kw] == 0 {
				insertion = append(insertion, kw)
			}
			counts[kw]++
		}
	}

	out := make([]model.TrendKeyword, 0, len(insertion))
	for _, kw := range insertion {
		out = append(out, model.TrendKeyword{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
