package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
)

const defaultAPIBase = "https://api.telegram.org"

type Service struct {
	logger *logrus.Logger
	client *http.Client
	mu     sync.RWMutex
	config *models.TelegramConfig
}

func NewService(config *models.TelegramConfig, logger *logrus.Logger) *Service {
	return &Service{
		logger: logging.OrDefault(logger),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: config,
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// Config returns a copy of the current settings, or nil when none are set.
func (s *Service) Config() *models.TelegramConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return nil
	}
	cfg := *s.config
	return &cfg
}

// Enabled reports whether notifications are switched on at all.
func (s *Service) Enabled() bool {
	cfg := s.Config()
	return cfg != nil && cfg.IsEnabled
}

// SendMessage sends an HTML message to the configured chat. Disabled notifications are a no-op.
func (s *Service) SendMessage(ctx context.Context, message string) error {
	cfg := s.Config()
	if cfg == nil || !cfg.IsEnabled {
		return nil
	}
	return s.SendWith(ctx, cfg, message)
}

// SendWith sends message using cfg instead of the current settings, whether or not cfg is enabled.
// It is used to check new credentials before they are saved.
func (s *Service) SendWith(ctx context.Context, cfg *models.TelegramConfig, message string) error {
	if cfg.BotToken == "" {
		return errors.New("telegram bot token is not configured")
	}

	if cfg.ChatID == "" {
		return errors.New("telegram chat ID is not configured")
	}

	base := cfg.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(base, "/"), cfg.BotToken)
	payload := map[string]interface{}{
		"chat_id":                  cfg.ChatID,
		"text":                     message,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		observability.ObserveExternal("telegram", 0, time.Since(start))
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("telegram", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		case http.StatusTooManyRequests:
			return fmt.Errorf("telegram rate limit hit: %s", string(body))
		default:
			return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyLead tells the operator about a new lead. project may be nil when the lead
// names no project or an unknown one.
func (s *Service) NotifyLead(ctx context.Context, lead *models.Lead, project *models.Property) error {
	return s.SendMessage(ctx, FormatLead(lead, project))
}

// FormatLead renders the operator message of a lead. All user input is HTML-escaped.
func FormatLead(lead *models.Lead, project *models.Property) string {
	var b strings.Builder
	b.WriteString("<b>Новая заявка</b>\n\n")
	fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(lead.Name))
	if lead.Phone != "" {
		fmt.Fprintf(&b, "📞 %s\n", html.EscapeString(lead.Phone))
	}
	if lead.Email != "" {
		fmt.Fprintf(&b, "✉️ %s\n", html.EscapeString(lead.Email))
	}
	if lead.Budget != nil {
		fmt.Fprintf(&b, "💰 Бюджет: %s ₽\n", groupThousands(*lead.Budget))
	}

	switch {
	case project != nil:
		fmt.Fprintf(&b, "\n🏨 %s (%s)\n", html.EscapeString(project.Title), html.EscapeString(project.City))
		fmt.Fprintf(&b, "💵 %s ₽", groupThousands(project.Price))
		if project.HasYield() {
			fmt.Fprintf(&b, " · %s ₽/м² в месяц", groupThousands(project.RevPerM2Month))
		}
		if project.Occupancy > 0 {
			fmt.Fprintf(&b, " · загрузка %.0f%%", project.Occupancy)
		}
		b.WriteString("\n")
	case lead.ProjectSlug != "":
		fmt.Fprintf(&b, "\n🏨 %s\n", html.EscapeString(lead.ProjectSlug))
	}

	if lead.Message != "" {
		fmt.Fprintf(&b, "\n💬 %s\n", html.EscapeString(lead.Message))
	}
	if lead.Source != "" {
		fmt.Fprintf(&b, "\n🔗 %s", html.EscapeString(lead.Source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// groupThousands prints v rounded to an integer with thin-space digit groups, e.g. 10 000 000.
func groupThousands(v float64) string {
	digits := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
