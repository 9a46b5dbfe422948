package chathistory

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// Service records answered queries so past conversations can be replayed
type Service struct {
	storage interfaces.ChatStorage
	logger  arbor.ILogger
}

func NewService(storage interfaces.ChatStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// SaveChat stores one query/response exchange and returns the stored record
func (s *Service) SaveChat(query, response string, tickers []string) (*models.ChatRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("chat query cannot be empty")
	}

	record := &models.ChatRecord{
		ID:        common.NewChatID(),
		Query:     query,
		Response:  response,
		Tickers:   tickers,
		CreatedAt: time.Now(),
	}

	if err := s.storage.SaveChat(record); err != nil {
		return nil, fmt.Errorf("failed to save chat record: %w", err)
	}

	s.logger.Debug().
		Str("chat_id", record.ID).
		Strs("tickers", tickers).
		Msg("Chat saved")

	return record, nil
}

// ListChats returns all saved chats, oldest first
func (s *Service) ListChats() ([]*models.ChatRecord, error) {
	return s.storage.ListChats()
}

// DeleteChat removes one chat by id
func (s *Service) DeleteChat(id string) error {
	if id == "" {
		return fmt.Errorf("chat id cannot be empty")
	}
	if err := s.storage.DeleteChat(id); err != nil {
		return fmt.Errorf("failed to delete chat %s: %w", id, err)
	}

	s.logger.Debug().
		Str("chat_id", id).
		Msg("Chat deleted")

	return nil
}
