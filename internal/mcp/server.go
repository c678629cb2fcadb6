package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"
)

const (
	defaultPracticeCount = 5
	maxPracticeCount     = 20
)

// QuestionLoader loads a question batch. *quiz.Engine satisfies it.
type QuestionLoader interface {
	Questions(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, bool, error)
}

// Server exposes read-mostly MatekKaland tools to parents over MCP.
type Server struct {
	mcpServer *server.Server
	store     player.Store
	questions QuestionLoader
}

// Config contains configuration for the MCP server
type Config struct {
	Store     player.Store
	Questions QuestionLoader
	Version   string
}

// NewServer creates a new MCP server
func NewServer(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		questions: cfg.Questions,
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "matekkaland",
		Version: version,
	}, server.WithInstructions(`
MatekKaland is a math practice game for young children (Hungarian UI).
These tools let a parent or teacher look at the child's progress.

Available tools:
- matek_progress: Answer totals, accuracy and games played
- matek_album: Collected stickers in album order
- matek_practice: A short set of practice questions for a topic mix

The tools never change the child's progress.
`))

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("matek_progress").
		Description("Show the player's answer totals, accuracy and album progress").
		Handler(s.handleProgress)

	s.mcpServer.Tool("matek_album").
		Description("List the sticker album in the player's order with collected flags").
		Handler(s.handleAlbum)

	s.mcpServer.Tool("matek_practice").
		Description("Generate practice questions for the given topics and adventure").
		Handler(s.handlePractice)
}

// ProgressInput is the input for matek_progress
type ProgressInput struct{}

// ProgressOutput is the output for matek_progress
type ProgressOutput struct {
	Name    string           `json:"name"`
	Avatar  string           `json:"avatar"`
	Design  string           `json:"design_theme"`
	Summary progress.Summary `json:"summary"`
	Message string           `json:"message"`
}

// AlbumInput is the input for matek_album
type AlbumInput struct {
	CollectedOnly bool `json:"collected_only,omitempty" jsonschema:"description=Only list stickers that have been collected"`
}

// AlbumSticker is one album slot.
type AlbumSticker struct {
	Position  int    `json:"position"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Collected bool   `json:"collected"`
	Custom    bool   `json:"custom"`
}

// AlbumOutput is the output for matek_album
type AlbumOutput struct {
	Theme    string         `json:"theme"`
	Progress int            `json:"progress"`
	Stickers []AlbumSticker `json:"stickers"`
}

// PracticeInput is the input for matek_practice
type PracticeInput struct {
	Topics    []string `json:"topics" jsonschema:"required,description=Math topics (addition, subtraction, multiplication, division, rounding_10, rounding_100, mixed)"`
	Adventure string   `json:"adventure,omitempty" jsonschema:"description=Adventure theme id used as story context (default: space)"`
	Count     int      `json:"count,omitempty" jsonschema:"description=Number of questions (1-20, default 5)"`
}

// PracticeQuestion is a practice question with its answer.
type PracticeQuestion struct {
	Text    string    `json:"text"`
	Options []float64 `json:"options"`
	Answer  float64   `json:"answer"`
}

// PracticeOutput is the output for matek_practice
type PracticeOutput struct {
	Adventure string             `json:"adventure"`
	Fallback  bool               `json:"fallback"`
	Questions []PracticeQuestion `json:"questions"`
}

func (s *Server) loadPlayer(ctx context.Context) (*domain.Player, error) {
	if s.store == nil {
		return nil, fmt.Errorf("player store not configured")
	}
	p, err := s.store.Load(ctx)
	if errors.Is(err, player.ErrNotFound) {
		return nil, fmt.Errorf("no player yet: finish onboarding first")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return p, nil
}

func (s *Server) handleProgress(ctx context.Context, _ ProgressInput) (ProgressOutput, error) {
	p, err := s.loadPlayer(ctx)
	if err != nil {
		return ProgressOutput{}, err
	}

	sum := progress.Summarize(p.Stats)
	msg := fmt.Sprintf("%s has played %d games with %d%% accuracy.", p.Name, sum.GamesPlayed, sum.Accuracy)
	if sum.Empty {
		msg = fmt.Sprintf("%s has not answered any questions yet.", p.Name)
	}

	return ProgressOutput{
		Name:    p.Name,
		Avatar:  p.Avatar,
		Design:  string(p.DesignTheme),
		Summary: sum,
		Message: msg,
	}, nil
}

func (s *Server) handleAlbum(ctx context.Context, input AlbumInput) (AlbumOutput, error) {
	p, err := s.loadPlayer(ctx)
	if err != nil {
		return AlbumOutput{}, err
	}

	out := AlbumOutput{
		Theme:    string(p.Stats.AlbumThemeID),
		Progress: progress.AlbumProgress(p.Stats),
		Stickers: []AlbumSticker{},
	}
	for i, id := range p.Stats.StickerOrder {
		st, ok := catalog.Sticker(id)
		if !ok {
			continue
		}
		collected := p.Stats.HasSticker(id)
		if input.CollectedOnly && !collected {
			continue
		}
		_, custom := p.Stats.CustomStickerImages[id]
		out.Stickers = append(out.Stickers, AlbumSticker{
			Position:  i,
			ID:        string(st.ID),
			Name:      st.Name,
			Collected: collected,
			Custom:    custom,
		})
	}
	return out, nil
}

func (s *Server) handlePractice(ctx context.Context, input PracticeInput) (PracticeOutput, error) {
	if s.questions == nil {
		return PracticeOutput{}, fmt.Errorf("question source not configured")
	}

	topics := make([]domain.MathTopic, 0, len(input.Topics))
	for _, raw := range input.Topics {
		t := domain.MathTopic(strings.ToLower(strings.TrimSpace(raw)))
		if _, ok := catalog.Topic(t); !ok {
			return PracticeOutput{}, fmt.Errorf("%w: %q", domain.ErrUnknownTopic, raw)
		}
		topics = append(topics, t)
	}

	advID := domain.AdventureThemeID(input.Adventure)
	if advID == "" {
		advID = "space"
	}
	adv, ok := catalog.Adventure(advID)
	if !ok {
		return PracticeOutput{}, fmt.Errorf("%w: %q", domain.ErrUnknownAdventure, input.Adventure)
	}

	count := input.Count
	if count <= 0 {
		count = defaultPracticeCount
	}
	count = min(count, maxPracticeCount)

	qs, fallback, err := s.questions.Questions(ctx, topics, adv, count)
	if err != nil {
		return PracticeOutput{}, fmt.Errorf("failed to load questions: %w", err)
	}

	out := PracticeOutput{
		Adventure: adv.Name,
		Fallback:  fallback,
		Questions: make([]PracticeQuestion, 0, len(qs)),
	}
	for _, q := range qs {
		out.Questions = append(out.Questions, PracticeQuestion{
			Text:    q.Text,
			Options: append([]float64(nil), q.Options...),
			Answer:  q.CorrectAnswer,
		})
	}
	return out, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
