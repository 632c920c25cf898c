package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukiharu/aivis/internal/llmjson"
	"github.com/yukiharu/aivis/internal/model"
	"github.com/yukiharu/aivis/pkg/openai"
)

// SummarizeSite scrapes target and asks the upstream for 3-5 short narrative
// lines about it. A site that cannot be fetched still gets summarized from
// whatever context the URL provides; only an upstream failure is an error.
// The returned lines are never empty: unusable output degrades to the
// placeholder line.
func (g *Generator) SummarizeSite(ctx context.Context, target string) (*model.SummaryLines, error) {
	url := target
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	text := ""
	if g.fetcher != nil {
		text = g.fetcher.FetchText(ctx, url)
	}

	content, err := g.llm.Complete(ctx, openai.CompleteRequest{
		Messages: []openai.Message{
			{Role: "system", Content: summarizeSystem},
			{Role: "user", Content: fmt.Sprintf("URL: %s\nTEXT: %s", url, text)},
		},
		Temperature: g.params.SummaryTemp,
		JSONObject:  true,
	})
	if err != nil {
		return nil, err
	}

	var out model.SummaryLines
	if !llmjson.Decode(content, &out) || len(out.Lines) == 0 {
		return &model.SummaryLines{Lines: []string{model.SummaryPlaceholder}}, nil
	}
	return &out, nil
}
