package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// ChatService drives the two conversational endpoints. Exchanges are recorded
// on the session transcript: the user turn immediately, the assistant turn
// once the response resolves. A remote failure becomes a user-facing string
// in the transcript, never an error to the page.
type ChatService struct {
	api      domain.SuitesAPI
	sessions *Sessions
}

func NewChatService(api domain.SuitesAPI, sessions *Sessions) *ChatService {
	return &ChatService{api: api, sessions: sessions}
}

// Ask sends a bookings question to the chat endpoint. The reply is displayed
// as the API returns it.
func (s *ChatService) Ask(ctx context.Context, sess *Session, question string) string {
	return s.exchange(ctx, sess, &sess.BookingsChat, question, func() (string, error) {
		return s.api.Chat(ctx, question)
	})
}

// AskCopilot sends a maintenance message to the copilot endpoint and formats
// the reply for display.
func (s *ChatService) AskCopilot(ctx context.Context, sess *Session, message string) string {
	return s.exchange(ctx, sess, &sess.CopilotChat, message, func() (string, error) {
		reply, err := s.api.CopilotChat(ctx, message)
		if err != nil {
			return "", err
		}
		return Format(reply), nil
	})
}

func (s *ChatService) exchange(ctx context.Context, sess *Session, transcript *[]domain.ChatMessage, message string, call func() (string, error)) string {
	*transcript = append(*transcript, domain.ChatMessage{
		Role: domain.RoleUser, Content: message, At: time.Now().UTC(),
	})
	// Persist the user turn before the remote call so it survives even when
	// the call itself times out.
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("saving user turn failed")
	}

	reply, err := call()
	if err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("chat call failed")
		reply = domain.UserMessage(err)
	}

	*transcript = append(*transcript, domain.ChatMessage{
		Role: domain.RoleAssistant, Content: reply, At: time.Now().UTC(),
	})
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("saving assistant turn failed")
	}
	return reply
}
