package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// ChatStorage implements the ChatStorage interface for Badger
type ChatStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChatStorage creates a new ChatStorage instance
func NewChatStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChatStorage {
	return &ChatStorage{
		db:     db,
		logger: logger,
	}
}

// SaveChat persists one query/response exchange
func (s *ChatStorage) SaveChat(record *models.ChatRecord) error {
	if record.ID == "" {
		return fmt.Errorf("chat record ID is required")
	}
	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save chat record: %w", err)
	}
	return nil
}

// ListChats returns chat records oldest-first
func (s *ChatStorage) ListChats() ([]*models.ChatRecord, error) {
	var records []*models.ChatRecord
	if err := s.db.Store().Find(&records, (&badgerhold.Query{}).SortBy("CreatedAt")); err != nil {
		return nil, fmt.Errorf("failed to list chat records: %w", err)
	}
	return records, nil
}

// DeleteChat removes a chat record by ID
func (s *ChatStorage) DeleteChat(id string) error {
	err := s.db.Store().Delete(id, models.ChatRecord{})
	if err == badgerhold.ErrNotFound {
		return fmt.Errorf("chat record %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete chat record %s: %w", id, err)
	}
	return nil
}
