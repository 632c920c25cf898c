package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukiharu/aivis/internal/model"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"임플란트 후기 좋은 곳 추천해 주실 수 있나요?", IntentReview},
		{"임플란트 가격이 얼마인가요?", IntentPrice},
		{"요즘 할인 이벤트 하는 곳 있을까요?", IntentPrice},
		{"회복 기간이 얼마나 걸리나요?", IntentRecovery},
		{"시술 후 붓기는 며칠이면 빠지나요?", IntentRecovery},
		{"필러 맞으면 자연스럽게 나올까요?", IntentNatural},
		{"실비 보험 처리가 되는 시술인가요?", IntentInsurance},
		{"진료 시간이 어떻게 되나요?", IntentInfo},
		// Review wins over price when both appear.
		{"후기 많고 가격 합리적인 곳 추천해 주실 수 있나요?", IntentReview},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyIntent(tt.question), "question %q", tt.question)
	}
}

func TestClassifyIntents(t *testing.T) {
	results := []model.QuestionResult{
		{Question: "임플란트 후기 좋은 곳 추천해 주실 수 있나요?", Items: make([]model.ReportItem, 3)},
		{Question: "보톡스 후기 믿을 만한 곳 어디가 좋을까요?", Items: make([]model.ReportItem, 2)},
		{Question: "회복 기간이 얼마나 걸리나요?", Items: make([]model.ReportItem, 4)},
		{Question: "진료 시간이 어떻게 되나요?"},
	}

	buckets := classifyIntents(results)
	require.Len(t, buckets, 3)

	assert.Equal(t, model.IntentBucket{Label: IntentReview, Count: 2, AvgLinks: 2.5}, buckets[0])
	assert.Equal(t, model.IntentBucket{Label: IntentRecovery, Count: 1, AvgLinks: 4}, buckets[1])
	assert.Equal(t, model.IntentBucket{Label: IntentInfo, Count: 1, AvgLinks: 0}, buckets[2])
}

func TestClassifyIntentsEmpty(t *testing.T) {
	assert.Empty(t, classifyIntents(nil))
}
