package translate

import (
	"context"
	"fmt"
	"sync"
)

// Mock is an in-memory Translator for tests. Unknown texts come back
// bracketed with the target language so assertions can tell translated
// output from pass-through.
type Mock struct {
	mu           sync.Mutex
	Translations map[string]string
	CallCount    int
	FailTexts    map[string]bool // texts whose batch should fail
}

func NewMock() *Mock {
	return &Mock{Translations: map[string]string{}, FailTexts: map[string]bool{}}
}

func (m *Mock) Translate(_ context.Context, texts []string, targetLang, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++

	out := make([]string, len(texts))
	for i, t := range texts {
		if m.FailTexts[t] {
			return nil, fmt.Errorf("mock translator: forced failure for %q", t)
		}
		if tr, ok := m.Translations[t]; ok {
			out[i] = tr
			continue
		}
		out[i] = fmt.Sprintf("[%s]%s", targetLang, t)
	}
	return out, nil
}

// Calls returns how many batches were requested.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
