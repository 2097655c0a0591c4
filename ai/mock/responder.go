// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"context"
	"sync"
)

// MockResponder is a test double for ai.Responder. It records the
// prompts it receives and returns either a canned reply or the result
// of an injected function.
type MockResponder struct {
	mu          sync.Mutex
	reply       string
	respondFunc func(ctx context.Context, prompt string) (string, error)
	prompts     []string
	closed      bool
}

// NewMockResponder creates a mock responder with a default canned reply.
//
// Returns the concrete type so tests can inject behavior and assert on
// recorded prompts.
func NewMockResponder() *MockResponder {
	return &MockResponder{reply: "mock reply"}
}

// WithReply sets the canned reply and returns the mock for chaining.
func (m *MockResponder) WithReply(reply string) *MockResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
	return m
}

// WithRespondFunc injects a custom respond function, overriding the
// canned reply.
func (m *MockResponder) WithRespondFunc(fn func(ctx context.Context, prompt string) (string, error)) *MockResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respondFunc = fn
	return m
}

// Respond records the prompt and returns the configured reply.
func (m *MockResponder) Respond(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	fn := m.respondFunc
	m.prompts = append(m.prompts, prompt)
	reply := m.reply
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return reply, nil
}

// Close marks the responder closed.
func (m *MockResponder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Prompts returns a copy of the recorded prompts.
func (m *MockResponder) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns how many times Respond was called.
func (m *MockResponder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Closed reports whether Close was called.
func (m *MockResponder) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reset clears recorded prompts and the closed flag.
func (m *MockResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.closed = false
}
