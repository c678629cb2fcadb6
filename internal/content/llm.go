package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/llm"
	"github.com/google/uuid"
)

// LLMProvider generates content through an llm.Provider. Image edits go to
// a separate llm.ImageEditor, which may be nil.
type LLMProvider struct {
	text   llm.Provider
	images llm.ImageEditor
	http   *http.Client
	logger *slog.Logger
}

// Option configures an LLMProvider.
type Option func(*LLMProvider)

// WithImageEditor sets the backend for sticker edits.
func WithImageEditor(e llm.ImageEditor) Option {
	return func(p *LLMProvider) { p.images = e }
}

// WithHTTPClient sets the client used to fetch URL sticker sources.
func WithHTTPClient(c *http.Client) Option {
	return func(p *LLMProvider) { p.http = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *LLMProvider) { p.logger = l }
}

// NewLLMProvider creates a content provider over text.
func NewLLMProvider(text llm.Provider, opts ...Option) *LLMProvider {
	p := &LLMProvider{
		text:   text,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerateQuestions asks the model for count questions. Structural
// validation is left to the quiz engine; this only decodes the payload and
// assigns ids where the model left them out or repeated them.
func (p *LLMProvider) GenerateQuestions(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, error) {
	if p.text == nil {
		return nil, ErrUnavailable
	}

	resp, err := p.text.Generate(ctx, &llm.Request{
		System:      questionSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: questionPrompt(topics, theme, count)}},
		MaxTokens:   4096,
		Temperature: 0.8,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions, err := parseQuestions(resp.Content)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("questions generated", "provider", p.text.Name(), "count", len(questions))
	return questions, nil
}

// GenerateEncouragement asks for a short message for the result screen.
func (p *LLMProvider) GenerateEncouragement(ctx context.Context, name string, succeeded bool) (string, error) {
	if p.text == nil {
		return "", ErrUnavailable
	}

	resp, err := p.text.Generate(ctx, &llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: encouragementPrompt(name, succeeded)}},
		MaxTokens:   50,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("generate encouragement: %w", err)
	}

	text := strings.Trim(strings.TrimSpace(resp.Content), `"`)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// EditImage applies instruction to source and returns the result as a PNG
// data URI. URL sources are fetched first.
func (p *LLMProvider) EditImage(ctx context.Context, source domain.ImageData, instruction string) (domain.ImageData, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", ErrEmptyInstruction
	}
	if p.images == nil {
		return "", fmt.Errorf("%w: no image editor configured", ErrUnavailable)
	}

	var (
		mimeType string
		data     []byte
		err      error
	)
	if source.IsDataURI() {
		mimeType, data, err = decodeDataURI(source)
	} else {
		mimeType, data, err = fetchImage(ctx, p.http, string(source))
	}
	if err != nil {
		return "", err
	}

	resp, err := p.images.EditImage(ctx, &llm.ImageRequest{
		Image:    data,
		MIMEType: mimeType,
		Prompt:   imageEditPrompt(instruction),
	})
	if err != nil {
		return "", fmt.Errorf("edit image: %w", err)
	}
	if len(resp.Image) == 0 {
		return "", ErrEmptyResponse
	}

	out := resp.MIMEType
	if out == "" {
		out = "image/png"
	}
	return encodeDataURI(out, resp.Image), nil
}

// number accepts JSON numbers and numeric strings.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type wireQuestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText"`
	Options       []number `json:"options"`
	CorrectAnswer number   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// parseQuestions decodes either a bare array or an object wrapping it under
// "questions". Markdown code fences are stripped first.
func parseQuestions(raw string) ([]domain.Question, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	var wire []wireQuestion
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	} else {
		var wrapped struct {
			Questions []wireQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		wire = wrapped.Questions
	}

	seen := make(map[string]bool, len(wire))
	out := make([]domain.Question, 0, len(wire))
	for _, w := range wire {
		id := strings.TrimSpace(w.ID)
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		seen[id] = true

		opts := make([]float64, len(w.Options))
		for i, o := range w.Options {
			opts[i] = float64(o)
		}
		out = append(out, domain.Question{
			ID:            id,
			Text:          strings.TrimSpace(w.QuestionText),
			Options:       opts,
			CorrectAnswer: float64(w.CorrectAnswer),
			Explanation:   strings.TrimSpace(w.Explanation),
		})
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ Provider = (*LLMProvider)(nil)
