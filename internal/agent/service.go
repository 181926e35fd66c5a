package agent

import (
	"context"
	"fmt"

	"github.com/nightjar-app/nightjar/internal/chat"
	"github.com/nightjar-app/nightjar/internal/graph"
	"github.com/nightjar-app/nightjar/internal/indexing"
	"github.com/nightjar-app/nightjar/internal/journal"
	"github.com/nightjar-app/nightjar/internal/llm"
)

const titleLimit = 60

// Service ties conversations together: it resolves agents through the
// cache, persists turns, and fronts the indexing pipeline.
type Service struct {
	model        llm.LLM
	journal      *journal.Store
	chats        *chat.Store
	graphs       *graph.Manager
	pipeline     *indexing.Pipeline
	cache        *Cache
	systemPrompt string
}

func NewService(model llm.LLM, store *journal.Store, chats *chat.Store, graphs *graph.Manager, pipeline *indexing.Pipeline, systemPrompt string) *Service {
	return &Service{
		model:        model,
		journal:      store,
		chats:        chats,
		graphs:       graphs,
		pipeline:     pipeline,
		cache:        NewCache(),
		systemPrompt: systemPrompt,
	}
}

// SendMessage runs one user turn against a conversation, creating the
// conversation when chatID is empty. It returns the reply and the
// conversation ID the turn landed in.
func (s *Service) SendMessage(ctx context.Context, userID int64, chatID, text string, images []llm.ImageContent) (*Reply, string, error) {
	if chatID == "" {
		id, err := s.chats.Create(userID, deriveTitle(text))
		if err != nil {
			return nil, "", fmt.Errorf("create conversation: %w", err)
		}
		chatID = id
	} else {
		ok, err := s.chats.Exists(userID, chatID)
		if err != nil {
			return nil, "", fmt.Errorf("look up conversation: %w", err)
		}
		if !ok {
			return nil, "", fmt.Errorf("conversation %s not found", chatID)
		}
	}

	userTurn := chat.Message{Role: "user", Content: text}
	if len(images) > 0 {
		userTurn.Content = "[Image attached] " + text
	}
	if err := s.chats.AddMessage(chatID, userTurn); err != nil {
		return nil, "", fmt.Errorf("persist user turn: %w", err)
	}

	a, err := s.resolveAgent(userID, chatID)
	if err != nil {
		return nil, "", err
	}

	reply := a.Chat(ctx, text, images)

	if err := s.chats.AddMessage(chatID, chat.Message{
		Role:      "assistant",
		Content:   reply.Answer,
		QueryType: reply.QueryType,
		Sources:   reply.Sources,
	}); err != nil {
		return nil, "", fmt.Errorf("persist assistant turn: %w", err)
	}

	return reply, chatID, nil
}

// resolveAgent returns the live agent for a conversation. A cache miss
// rebuilds the agent and replays every persisted turn except the one
// just written, which the agent processes as the incoming message. A hit
// rebinds the agent's handles to the current stores.
func (s *Service) resolveAgent(userID int64, chatID string) (*Agent, error) {
	a, created := s.cache.GetOrCreate(userID, chatID, func() *Agent {
		return New(s.model, userID, s.journal, s.graphs, s.systemPrompt)
	})
	if !created {
		a.Rebind(s.journal, s.graphs)
		return a, nil
	}

	persisted, err := s.chats.Messages(chatID)
	if err != nil {
		return nil, fmt.Errorf("replay conversation: %w", err)
	}
	if len(persisted) > 0 {
		persisted = persisted[:len(persisted)-1]
	}
	replay := make([]llm.Message, 0, len(persisted))
	for _, m := range persisted {
		replay = append(replay, llm.Message{Role: m.Role, Content: m.Content})
	}
	a.ReplayHistory(replay)
	return a, nil
}

// Conversations lists the user's conversations, newest first.
func (s *Service) Conversations(userID int64) ([]chat.Conversation, error) {
	return s.chats.List(userID)
}

// History returns the persisted turns of one conversation.
func (s *Service) History(userID int64, chatID string) ([]chat.Message, error) {
	ok, err := s.chats.Exists(userID, chatID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", chatID)
	}
	return s.chats.Messages(chatID)
}

// ClearContext drops the in-memory history of a live conversation.
// Persisted turns are untouched.
func (s *Service) ClearContext(userID int64, chatID string) {
	if a := s.cache.Get(userID, chatID); a != nil {
		a.ClearHistory()
	}
}

// DeleteConversation removes the conversation's persisted turns and
// evicts its agent.
func (s *Service) DeleteConversation(userID int64, chatID string) error {
	if err := s.chats.Delete(userID, chatID); err != nil {
		return err
	}
	s.cache.Delete(userID, chatID)
	return nil
}

func (s *Service) IndexPending(ctx context.Context, userID int64) (*indexing.Outcome, error) {
	return s.pipeline.IndexPending(ctx, userID)
}

func (s *Service) ReindexAll(ctx context.Context, userID int64) (*indexing.Outcome, error) {
	return s.pipeline.ReindexAll(ctx, userID)
}

func deriveTitle(text string) string {
	if len(text) <= titleLimit {
		return text
	}
	return text[:titleLimit]
}
