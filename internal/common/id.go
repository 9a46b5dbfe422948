package common

import (
	"github.com/google/uuid"
)

// NewTradeID generates a unique trade ID with the "trade_" prefix
func NewTradeID() string {
	return "trade_" + uuid.New().String()
}

// NewChatID generates a unique chat record ID with the "chat_" prefix
func NewChatID() string {
	return "chat_" + uuid.New().String()
}
