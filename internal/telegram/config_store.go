package telegram

import (
	"context"
	"errors"

	"apartinvest/server/internal/models"
	"apartinvest/server/internal/storage"
)

// ConfigDoc is the document holding bot settings changed at runtime.
const ConfigDoc = "telegram_config"

// ConfigStore persists the Telegram settings so that runtime changes survive restarts.
type ConfigStore struct {
	docs storage.Store
}

func NewConfigStore(docs storage.Store) *ConfigStore {
	return &ConfigStore{docs: docs}
}

// Load returns the stored settings, or nil when none were saved.
func (s *ConfigStore) Load(ctx context.Context) (*models.TelegramConfig, error) {
	var cfg models.TelegramConfig
	err := storage.ReadJSON(ctx, s.docs, ConfigDoc, &cfg)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *ConfigStore) Save(ctx context.Context, cfg *models.TelegramConfig) error {
	return storage.WriteJSON(ctx, s.docs, ConfigDoc, cfg)
}
