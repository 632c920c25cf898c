package generate

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validQuestionsJSON = `{"questions":[
  "강남 근처에서 임플란트 잘하는 치과 추천해 주실 수 있나요?",
  "임플란트 시술 전에 확인할 점이 뭔지 알려주실 수 있나요?",
  "임플란트 하고 나서 관리는 어떻게 하는 게 좋을까요?"
]}`

func TestGenerateQuestionsHappyPath(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return(validQuestionsJSON, nil).Once()

	g := New(llm, nil, DefaultParams())
	qs, err := g.GenerateQuestions(context.Background(), QuestionsRequest{
		Services:        []string{"임플란트"},
		LocationKeyword: "강남",
	})
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, "강남 근처에서 임플란트 잘하는 치과 추천해 주실 수 있나요?", qs[0])
	llm.AssertExpectations(t)
}

// Even when the upstream returns garbage twice, the structural guarantees
// still hold on the synthesized output.
func TestGenerateQuestionsGarbageUpstreamStillStructurallyValid(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return("definitely not json", nil).Twice()

	g := New(llm, nil, DefaultParams())
	qs, err := g.GenerateQuestions(context.Background(), QuestionsRequest{
		Services:        []string{"임플란트"},
		LocationKeyword: "강남",
	})
	require.NoError(t, err)
	require.Len(t, qs, 3)

	locCount := 0
	for _, q := range qs {
		if strings.Contains(q, "강남") {
			locCount++
		}
		assert.Contains(t, q, "임플란트")
		n := utf8.RuneCountInString(q)
		assert.GreaterOrEqual(t, n, 10)
		assert.LessOrEqual(t, n, 80)
	}
	assert.Equal(t, 1, locCount)
	llm.AssertExpectations(t)
}

func TestGenerateQuestionsNoLocation(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).Return("{}", nil).Twice()

	g := New(llm, nil, DefaultParams())
	qs, err := g.GenerateQuestions(context.Background(), QuestionsRequest{
		Services: []string{"라식"},
	})
	require.NoError(t, err)
	require.Len(t, qs, 3)
	for _, q := range qs {
		assert.Contains(t, q, "라식")
	}
}

func TestGenerateQuestionsBothAttemptsFail(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).
		Return("", eris.New("upstream down")).Twice()

	g := New(llm, nil, DefaultParams())
	_, err := g.GenerateQuestions(context.Background(), QuestionsRequest{
		Services: []string{"임플란트"},
	})
	require.Error(t, err)
	llm.AssertExpectations(t)
}

// A transport failure on the first call but usable content on the retry is a
// success, not an error.
func TestGenerateQuestionsRetryRecovers(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Complete", mock.Anything, mock.Anything).
		Return("", eris.New("timeout")).Once()
	llm.On("Complete", mock.Anything, mock.Anything).
		Return(validQuestionsJSON, nil).Once()

	g := New(llm, nil, DefaultParams())
	qs, err := g.GenerateQuestions(context.Background(), QuestionsRequest{
		Services:        []string{"임플란트"},
		LocationKeyword: "강남",
	})
	require.NoError(t, err)
	assert.Len(t, qs, 3)
	llm.AssertExpectations(t)
}

func TestValidateQuestions(t *testing.T) {
	g := New(nil, nil, DefaultParams())
	services := []string{"임플란트"}

	tests := []struct {
		name   string
		qs     []string
		loc    string
		ok     bool
		reason string
	}{
		{
			name: "valid",
			qs: []string{
				"강남 근처에서 임플란트 잘하는 곳 추천해 주실 수 있나요?",
				"임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
				"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
			},
			loc: "강남", ok: true,
		},
		{
			name:   "wrong count",
			qs:     []string{"임플란트 추천해 주실 수 있나요?"},
			loc:    "강남",
			reason: "count",
		},
		{
			name: "too short",
			qs: []string{
				"임플란트?",
				"임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
				"강남 임플란트 후 관리는 어떻게 하는 게 좋을까요?",
			},
			loc:    "강남",
			reason: "length",
		},
		{
			name: "missing service",
			qs: []string{
				"강남 근처에서 치아 교정 잘하는 곳 추천해 주실 수 있나요?",
				"임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
				"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
			},
			loc:    "강남",
			reason: "service",
		},
		{
			name: "location twice",
			qs: []string{
				"강남 근처에서 임플란트 잘하는 곳 추천해 주실 수 있나요?",
				"강남 임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
				"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
			},
			loc:    "강남",
			reason: "location",
		},
		{
			name: "faq phrasing forbidden",
			qs: []string{
				"강남 근처에서 임플란트 잘하는 곳 추천해 주실 수 있나요?",
				"임플란트란 무엇인가요? 간단히 설명 부탁드립니다.",
				"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
			},
			loc:    "강남",
			reason: "tone:definition",
		},
		{
			name: "no recommend tone",
			qs: []string{
				"강남에서 임플란트 시술을 받아본 적이 있습니다만 어떨까요.",
				"임플란트 시술은 보통 어느 정도 걸리는지 궁금합니다요.",
				"임플란트 시술 후에 음식은 언제부터 먹어도 되는지요.",
			},
			loc:    "강남",
			reason: "tone:recommend",
		},
		{
			name: "no location configured is vacuous",
			qs: []string{
				"임플란트 잘하는 곳 추천해 주실 수 있나요?",
				"임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
				"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
			},
			loc: "", ok: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := g.validateQuestions(tt.qs, services, tt.loc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestPatchQuestionsInjectsMissingLocation(t *testing.T) {
	g := New(nil, nil, DefaultParams())
	qs := g.patchQuestions([]string{
		"임플란트 잘하는 곳 추천해 주실 수 있나요?",
		"임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
		"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
	}, []string{"임플란트"}, "강남", "")

	require.Len(t, qs, 3)
	assert.Contains(t, qs[0], "강남")
	assert.NotContains(t, qs[1], "강남")
	assert.NotContains(t, qs[2], "강남")
}

func TestPatchQuestionsStripsExtraLocations(t *testing.T) {
	g := New(nil, nil, DefaultParams())
	qs := g.patchQuestions([]string{
		"강남 근처에서 임플란트 잘하는 곳 추천해 주실 수 있나요?",
		"강남 임플란트 시술 전 준비 사항을 알려주실 수 있나요?",
		"임플란트 후 관리는 어떻게 하는 게 좋을까요?",
	}, []string{"임플란트"}, "강남", "")

	require.Len(t, qs, 3)
	assert.Contains(t, qs[0], "강남")
	assert.NotContains(t, qs[1], "강남")
}

func TestPatchQuestionsPadsToCount(t *testing.T) {
	g := New(nil, nil, DefaultParams())
	qs := g.patchQuestions([]string{"임플란트 추천해 주실 수 있나요?"}, []string{"임플란트"}, "", "")
	require.Len(t, qs, 3)
	for _, q := range qs {
		assert.Contains(t, q, "임플란트")
	}
}

func TestSynthesizeQuestionsWithoutServices(t *testing.T) {
	g := New(nil, nil, DefaultParams())
	qs := g.synthesizeQuestions(nil, "역삼")
	require.Len(t, qs, 3)
	assert.Contains(t, qs[0], "역삼")
	for _, q := range qs {
		assert.Contains(t, q, "상담")
	}
}
