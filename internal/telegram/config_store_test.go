package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/models"
	"apartinvest/server/internal/storage"
)

func TestConfigStore(t *testing.T) {
	docs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	s := NewConfigStore(docs)
	ctx := context.Background()

	cfg, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	saved := &models.TelegramConfig{IsEnabled: true, BotToken: "123456:ABCDEF", ChatID: "-100500", APIBase: "http://ignored"}
	require.NoError(t, s.Save(ctx, saved))

	cfg, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "123456:ABCDEF", cfg.BotToken)
	assert.Equal(t, "-100500", cfg.ChatID)
	assert.True(t, cfg.IsEnabled)
	assert.Empty(t, cfg.APIBase, "the API base is never persisted")
}

func TestTelegramConfig_Masked(t *testing.T) {
	assert.Equal(t, "••••CDEF", models.TelegramConfig{BotToken: "123456:ABCDEF"}.Masked().BotToken)
	assert.Equal(t, "••••", models.TelegramConfig{BotToken: "abc"}.Masked().BotToken)
	assert.Empty(t, models.TelegramConfig{}.Masked().BotToken)
}
