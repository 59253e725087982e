package core_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/crystallen/memchat/pkg/llm"
	"github.com/crystallen/memchat/pkg/memstore"
	"github.com/crystallen/memchat/pkg/prompt"
)

type storedMemory struct {
	userID string
	text   string
}

type fakeStore struct {
	mu        sync.Mutex
	results   []memstore.Record
	searchErr error
	storeErr  error
	searches  []memstore.SearchRequest
	stored    []storedMemory
	listLimit int
	closed    bool
}

func (s *fakeStore) Search(_ context.Context, req memstore.SearchRequest) ([]memstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, req)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func (s *fakeStore) Store(_ context.Context, text, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return "", s.storeErr
	}
	s.stored = append(s.stored, storedMemory{userID: userID, text: text})
	return fmt.Sprintf("mem-%d", len(s.stored)), nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*memstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.stored {
		if fmt.Sprintf("mem-%d", i+1) == id {
			return &memstore.Record{ID: id, Text: m.text}, nil
		}
	}
	return nil, fmt.Errorf("Get: %w", memstore.ErrNotFound)
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return nil
}

func (s *fakeStore) List(_ context.Context, userID string, limit int) ([]memstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listLimit = limit
	var out []memstore.Record
	for i := len(s.stored) - 1; i >= 0 && len(out) < limit; i-- {
		if s.stored[i].userID == userID {
			out = append(out, memstore.Record{ID: fmt.Sprintf("mem-%d", i+1), Text: s.stored[i].text})
		}
	}
	return out, nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

func (s *fakeStore) storedTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.stored))
	for i, m := range s.stored {
		out[i] = m.text
	}
	return out
}

type fakeLLM struct {
	mu      sync.Mutex
	reply   func(prompt string) (string, error)
	prompts []string
	closed  bool
}

func (f *fakeLLM) Generate(_ context.Context, p string, _ ...llm.GenerateOption) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	return f.reply(p)
}

func (f *fakeLLM) Close() error {
	f.closed = true
	return nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func staticReply(raw string) func(string) (string, error) {
	return func(string) (string, error) { return raw, nil }
}

// questionOf returns the user question embedded in an assembled prompt.
func questionOf(p string) string {
	i := strings.Index(p, prompt.QuestionMarker)
	if i < 0 {
		return ""
	}
	rest := p[i+len(prompt.QuestionMarker):]
	if j := strings.Index(rest, "\n\n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
