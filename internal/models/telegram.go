package models

// TelegramConfig stores the bot credentials used for operator notifications.
type TelegramConfig struct {
	IsEnabled bool   `json:"isEnabled"`
	BotToken  string `json:"botToken"`
	ChatID    string `json:"chatId"`
	// APIBase overrides https://api.telegram.org, used by tests and proxies.
	APIBase string `json:"-"`
}

// Configured reports whether messages can be sent at all.
func (c *TelegramConfig) Configured() bool {
	return c != nil && c.IsEnabled && c.BotToken != "" && c.ChatID != ""
}

// Masked returns a copy safe to show to operators: only the last four token characters remain.
func (c TelegramConfig) Masked() TelegramConfig {
	if n := len(c.BotToken); n > 4 {
		c.BotToken = "••••" + c.BotToken[n-4:]
	} else if n > 0 {
		c.BotToken = "••••"
	}
	return c
}

// TelegramConfigRequest is the body of a Telegram configuration update.
type TelegramConfigRequest struct {
	IsEnabled bool   `json:"isEnabled"`
	BotToken  string `json:"botToken" binding:"required"`
	ChatID    string `json:"chatId" binding:"required"`
}
