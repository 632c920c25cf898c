package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yukiharu/aivis/internal/model"
)

func batchJSON(t *testing.T, count int) string {
	t.Helper()
	personas := make([]map[string]any, count)
	for i := range personas {
		personas[i] = map[string]any{
			"name":      fmt.Sprintf("페르소나%d", i),
			"age_range": "20대",
			"gender":    "여성",
			"interests": []string{"임플란트"},
			"goal":      "상담 예약",
			"questions": []string{"질문 하나", "질문 둘", "질문 셋"},
		}
	}
	raw, err := json.Marshal(map[string]any{"personas": personas})
	require.NoError(t, err)
	return string(raw)
}

func TestGeneratePersonasHappyPath(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return(batchJSON(t, 10), nil).Once()

	g := New(llm, nil, DefaultParams())
	personas, err := g.GeneratePersonas(context.Background(), PersonaBatchRequest{
		Form: model.HospitalForm{"hospitalName": "테스트의원"},
	})
	require.NoError(t, err)
	assert.Len(t, personas, 10)
	for _, p := range personas {
		assert.Len(t, p.Questions, 3)
	}
	llm.AssertExpectations(t)
}

func TestGeneratePersonasStrictRetryOnEmpty(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return(`{"personas":[]}`, nil).Once()
	llm.On("Complete", mock.Anything, mock.Anything).Return(batchJSON(t, 10), nil).Once()

	g := New(llm, nil, DefaultParams())
	personas, err := g.GeneratePersonas(context.Background(), PersonaBatchRequest{})
	require.NoError(t, err)
	assert.Len(t, personas, 10)
	llm.AssertExpectations(t)
}

func TestGeneratePersonasUpstreamEmpty(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return("not json", nil).Twice()

	g := New(llm, nil, DefaultParams())
	_, err := g.GeneratePersonas(context.Background(), PersonaBatchRequest{})
	require.ErrorIs(t, err, ErrUpstreamEmpty)
	llm.AssertExpectations(t)
}

func TestGeneratePersonasShapeFix(t *testing.T) {
	llm := &mockLLM{}
	// Primary returns 7 personas; the pipeline asks once for a reshape.
	llm.On("Complete", mock.Anything, mock.Anything).Return(batchJSON(t, 7), nil).Once()
	llm.On("Complete", mock.Anything, mock.Anything).Return(batchJSON(t, 10), nil).Once()

	g := New(llm, nil, DefaultParams())
	personas, err := g.GeneratePersonas(context.Background(), PersonaBatchRequest{})
	require.NoError(t, err)
	assert.Len(t, personas, 10)
	llm.AssertExpectations(t)
}

func TestGeneratePersonasShapeFixFailureKeepsContent(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return(batchJSON(t, 7), nil).Once()
	llm.On("Complete", mock.Anything, mock.Anything).Return("garbage", nil).Once()

	g := New(llm, nil, DefaultParams())
	personas, err := g.GeneratePersonas(context.Background(), PersonaBatchRequest{})
	require.NoError(t, err)
	// Reshape failed: the 7 real personas stand, nothing is fabricated.
	assert.Len(t, personas, 7)
	llm.AssertExpectations(t)
}

func TestGeneratePersonasTruncatesOverlongBatch(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return(batchJSON(t, 12), nil).Once()

	g := New(llm, nil, DefaultParams())
	personas, err := g.GeneratePersonas(context.Background(), PersonaBatchRequest{})
	require.NoError(t, err)
	assert.Len(t, personas, 10)
	llm.AssertExpectations(t)
}

func TestCoerceStringsMixedShapes(t *testing.T) {
	out := coerceStrings([]any{
		"plain",
		map[string]any{"text": "from object"},
		map[string]any{"other": "ignored"},
		42,
		nil,
		"",
		"extra",
	}, 3)
	assert.Equal(t, []string{"plain", "from object", "42"}, out)
}
