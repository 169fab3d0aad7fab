// Package ai exposes the backend's mail-analysis endpoints to the UI
// as streaming operations that can be cancelled mid-flight.
package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
)

// Reply tones accepted by the backend.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
	ToneCasual       = "casual"
)

// Tones lists the reply tones in menu order.
var Tones = []string{ToneProfessional, ToneFriendly, ToneFormal, ToneCasual}

// StreamChunk represents a piece of an AI response being streamed back.
type StreamChunk struct {
	Text string
	Done bool
	Err  error
}

// Assist wraps the backend's analysis endpoints. Results arrive on
// channels so the UI can show progress and honor cancellation.
type Assist struct {
	client *api.Client
	log    zerolog.Logger
}

// New creates an Assist service backed by the given API client.
func New(client *api.Client, log zerolog.Logger) *Assist {
	return &Assist{client: client, log: log}
}

// Summarize requests a summary of the email. The returned channel
// receives the result and is closed when the response is complete.
func (a *Assist) Summarize(
	ctx context.Context,
	email model.EmailMessage,
) <-chan StreamChunk {
	return a.stream(ctx, "summarize", func(ctx context.Context) (string, error) {
		return a.client.Summarize(ctx, email)
	})
}

// GenerateReply requests a draft reply in the given tone. An empty
// tone falls back to professional.
func (a *Assist) GenerateReply(
	ctx context.Context,
	email model.EmailMessage,
	tone string,
) <-chan StreamChunk {
	if tone == "" {
		tone = ToneProfessional
	}
	return a.stream(ctx, "generate reply", func(ctx context.Context) (string, error) {
		return a.client.GenerateReply(ctx, email, tone)
	})
}

// DetectPriority classifies a single email and returns its priority.
func (a *Assist) DetectPriority(
	ctx context.Context,
	email model.EmailMessage,
) (string, error) {
	priority, err := a.client.DetectPriority(ctx, email)
	if err != nil {
		return "", fmt.Errorf("detecting priority: %w", err)
	}
	return priority, nil
}

// AnalyzeAll classifies a batch of emails in one backend call and
// returns the priorities keyed by email id.
func (a *Assist) AnalyzeAll(
	ctx context.Context,
	emails []model.EmailMessage,
) (map[int64]string, error) {
	results, err := a.client.BatchAnalyze(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("batch analysis: %w", err)
	}

	priorities := make(map[int64]string, len(results))
	for _, r := range results {
		priorities[r.EmailID] = r.Priority
	}
	return priorities, nil
}

// stream runs a single analysis call in a goroutine and delivers the
// outcome as chunks. Cancelling ctx abandons the call; the final chunk
// then carries the context error.
func (a *Assist) stream(
	ctx context.Context,
	operation string,
	call func(context.Context) (string, error),
) <-chan StreamChunk {
	ch := make(chan StreamChunk, 4)

	go func() {
		defer close(ch)

		text, err := call(ctx)
		if err != nil {
			a.log.Warn().Err(err).Str("operation", operation).Msg("ai request failed")
			select {
			case ch <- StreamChunk{Err: err, Done: true}:
			case <-ctx.Done():
			}
			return
		}

		select {
		case ch <- StreamChunk{Text: text, Done: true}:
		case <-ctx.Done():
		}
	}()

	return ch
}
