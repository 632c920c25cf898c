package generate

import (
	"context"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/yukiharu/aivis/pkg/openai"
)

// --- Completer mock ---

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, req openai.CompleteRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// fnLLM adapts a function to Completer and counts calls; handy when the
// scripted behavior depends on the request.
type fnLLM struct {
	fn    func(ctx context.Context, req openai.CompleteRequest) (string, error)
	calls atomic.Int64
}

func (f *fnLLM) Complete(ctx context.Context, req openai.CompleteRequest) (string, error) {
	f.calls.Add(1)
	return f.fn(ctx, req)
}

// --- SiteFetcher stub ---

type stubFetcher struct {
	text string
}

func (s *stubFetcher) FetchText(ctx context.Context, url string) string {
	return s.text
}
