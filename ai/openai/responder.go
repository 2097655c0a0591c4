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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/helpdesk/ai"
)

// Responder implements ai.Responder using OpenAI-compatible completion
// services.
type Responder struct {
	llm    *openai.LLM
	logger *slog.Logger
}

// NewResponder creates a responder from the provided configuration.
// The config is validated and normalized before use.
//
// Returns ai.Responder interface (not *Responder) to enforce abstraction.
func NewResponder(config *ai.Config) (ai.Responder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Responder{
		llm:    llm,
		logger: slog.Default().With("component", "openai-responder"),
	}, nil
}

// Respond generates a single completion for the prompt.
func (r *Responder) Respond(ctx context.Context, prompt string) (string, error) {
	r.logger.Debug("generating completion", "prompt_length", len(prompt))

	completion, err := llms.GenerateFromSinglePrompt(ctx, r.llm, prompt)
	if err != nil {
		r.logger.Error("completion failed", "err", err)
		return "", err
	}

	return strings.TrimSpace(completion), nil
}

// Close releases resources held by the responder.
// Currently a no-op as the underlying client doesn't require cleanup.
func (r *Responder) Close() error {
	r.logger.Debug("closing OpenAI responder")
	return nil
}
