// Package llm is the language-model gateway. It builds the prompts for chat,
// journal insight, and mood analysis, drives the generative model through
// langchaingo, and issues short-lived credentials for realtime voice
// sessions.
//
// All upstream failures are wrapped with ErrModelUnavailable.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// ErrModelUnavailable marks any failure of the upstream model API.
var ErrModelUnavailable = errors.New("language model unavailable")

// chatAck is the canned model turn that follows the system instruction.
const chatAck = "I understand. I'm here to listen and support you with compassion and empathy."

// Generation settings.
const (
	chatTemperature    = 0.7
	chatTopP           = 0.9
	chatMaxTokens      = 1024
	insightTemperature = 0.7
	insightMaxTokens   = 256
	moodRecentEntries  = 10
)

// generator is the subset of llms.Model the gateway needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Prompts holds the fixed instruction texts.
type Prompts struct {
	ChatSystem     string
	JournalInsight string
	MoodAnalysis   string
}

// Options configures a Gateway.
type Options struct {
	APIKey    string
	Model     string
	LiveModel string
	Prompts   Prompts

	// VoiceTokenTTL is the lifetime of credentials from EphemeralToken.
	VoiceTokenTTL time.Duration
	// MintVoiceTokens selects real provider-issued tokens. When false the
	// gateway hands out the API key itself, which is only fit for local use.
	MintVoiceTokens bool

	// HTTPClient and BaseURL override the transport and host used when
	// minting voice tokens (tests).
	HTTPClient *http.Client
	BaseURL    string
}

// Gateway talks to the generative model.
type Gateway struct {
	gen  generator
	opts Options
	now  func() time.Time
}

// New creates a Gateway backed by the Google AI API.
func New(ctx context.Context, opts Options) (*Gateway, error) {
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(opts.APIKey),
		googleai.WithDefaultModel(opts.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init googleai client: %w", err)
	}
	return newGateway(client, opts), nil
}

func newGateway(gen generator, opts Options) *Gateway {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.VoiceTokenTTL <= 0 {
		opts.VoiceTokenTTL = 10 * time.Minute
	}
	return &Gateway{gen: gen, opts: opts, now: time.Now}
}

// ChatPrompt builds the chat transcript: system instruction, canned
// acknowledgement, prior turns, then the new user message.
func (g *Gateway) ChatPrompt(message string, history []domain.Message) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+3)
	msgs = append(msgs,
		llms.TextParts(llms.ChatMessageTypeHuman, "System: "+g.opts.Prompts.ChatSystem),
		llms.TextParts(llms.ChatMessageTypeAI, chatAck),
	)
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role != domain.RoleUser {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, message))
}

// StreamChat streams the model's reply, calling onChunk once per non-empty
// fragment in arrival order. If onChunk returns an error the stream stops
// and that error is returned unwrapped. It returns the full text.
func (g *Gateway) StreamChat(ctx context.Context, message string, history []domain.Message, onChunk func(string) error) (string, error) {
	var (
		sb      strings.Builder
		sinkErr error
	)
	_, err := g.gen.GenerateContent(ctx, g.ChatPrompt(message, history),
		llms.WithTemperature(chatTemperature),
		llms.WithTopP(chatTopP),
		llms.WithMaxTokens(chatMaxTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			if err := onChunk(string(chunk)); err != nil {
				sinkErr = err
				return err
			}
			sb.Write(chunk)
			return nil
		}),
	)
	if sinkErr != nil {
		return sb.String(), sinkErr
	}
	observe("chat", err)
	if err != nil {
		return sb.String(), fmt.Errorf("%w: chat: %v", ErrModelUnavailable, err)
	}
	return sb.String(), nil
}

// JournalInsight returns a short reflection on a journal entry.
func (g *Gateway) JournalInsight(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nJournal Entry:\n%s\n\nProvide a brief, supportive reflection:",
		g.opts.Prompts.JournalInsight, content)
	return g.complete(ctx, "journal_insight", prompt)
}

// MoodStats are the aggregates included in the mood analysis prompt.
type MoodStats struct {
	AverageScore float64
	TotalEntries int
	Trend        domain.Trend
}

// MoodPrompt renders the analysis prompt. Only the most recent ten entries
// are listed; entries must be ordered oldest first.
func (g *Gateway) MoodPrompt(stats MoodStats, entries []domain.MoodEntry) string {
	recent := entries
	if len(recent) > moodRecentEntries {
		recent = recent[len(recent)-moodRecentEntries:]
	}
	lines := make([]string, 0, len(recent))
	for _, e := range recent {
		note := e.Note
		if note == "" {
			note = "no note"
		}
		lines = append(lines, fmt.Sprintf("- %s: Score %s/5 (%s)",
			e.Date.UTC().Format("2006-01-02"), formatScore(e.Score), note))
	}
	return fmt.Sprintf(`%s

Mood Data Summary:
- Period: %d days
- Average Score: %.1f/5
- Total Entries: %d
- Trend: %s

Recent Entries:
%s

Provide a supportive analysis:`,
		g.opts.Prompts.MoodAnalysis, len(entries), stats.AverageScore,
		stats.TotalEntries, stats.Trend, strings.Join(lines, "\n"))
}

// MoodAnalysis returns a supportive summary of a mood series.
func (g *Gateway) MoodAnalysis(ctx context.Context, stats MoodStats, entries []domain.MoodEntry) (string, error) {
	return g.complete(ctx, "mood_analysis", g.MoodPrompt(stats, entries))
}

func (g *Gateway) complete(ctx context.Context, op, prompt string) (string, error) {
	resp, err := g.gen.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(insightTemperature),
		llms.WithMaxTokens(insightMaxTokens),
	)
	if err == nil && len(resp.Choices) == 0 {
		err = errors.New("empty response")
	}
	observe(op, err)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("model request failed")
		return "", fmt.Errorf("%w: %s: %v", ErrModelUnavailable, op, err)
	}
	return resp.Choices[0].Content, nil
}

// formatScore prints whole scores without a fraction ("4") and others with
// the shortest exact representation ("3.5").
func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
