package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSendMessage(t *testing.T) {
	var got map[string]interface{}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewService(&models.TelegramConfig{IsEnabled: true, BotToken: "123:abc", ChatID: "-100", APIBase: srv.URL}, quietLogger())
	require.NoError(t, s.SendMessage(context.Background(), "<b>hi</b>"))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "-100", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendMessage_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{status: http.StatusUnauthorized, want: "invalid bot token"},
		{status: http.StatusBadRequest, want: "invalid chat ID"},
		{status: http.StatusForbidden, want: "blocked"},
		{status: http.StatusNotFound, want: "bot not found"},
		{status: http.StatusTooManyRequests, want: "rate limit"},
		{status: http.StatusBadGateway, want: "status 502"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			s := NewService(&models.TelegramConfig{IsEnabled: true, BotToken: "t", ChatID: "c", APIBase: srv.URL}, quietLogger())
			err := s.SendMessage(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSendMessage_Configuration(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	disabled := NewService(&models.TelegramConfig{IsEnabled: false, APIBase: srv.URL}, quietLogger())
	assert.NoError(t, disabled.SendMessage(context.Background(), "x"))

	noConfig := NewService(nil, nil)
	assert.NoError(t, noConfig.SendMessage(context.Background(), "x"))

	noToken := NewService(&models.TelegramConfig{IsEnabled: true, ChatID: "c", APIBase: srv.URL}, quietLogger())
	assert.Error(t, noToken.SendMessage(context.Background(), "x"))

	noChat := NewService(&models.TelegramConfig{IsEnabled: true, BotToken: "t", APIBase: srv.URL}, quietLogger())
	assert.Error(t, noChat.SendMessage(context.Background(), "x"))

	assert.False(t, called)
}

func TestFormatLead(t *testing.T) {
	budget := 12_500_000.0
	lead := &models.Lead{
		Name:        "Анна <script>",
		Phone:       "+7 999 000-00-00",
		ProjectSlug: "park-siti",
		Budget:      &budget,
		Message:     "Интересует доходность & сроки",
	}
	project := &models.Property{Title: "Park Siti", City: "Сочи", Price: 10_000_000, RevPerM2Month: 2500, Occupancy: 75}

	msg := FormatLead(lead, project)
	assert.Contains(t, msg, "Анна &lt;script&gt;")
	assert.Contains(t, msg, "12 500 000 ₽")
	assert.Contains(t, msg, "Park Siti (Сочи)")
	assert.Contains(t, msg, "10 000 000 ₽ · 2 500 ₽/м² в месяц · загрузка 75%")
	assert.Contains(t, msg, "доходность &amp; сроки")
	assert.NotContains(t, msg, "✉️")

	unknown := FormatLead(&models.Lead{Name: "Олег", Email: "o@example.com", ProjectSlug: "gone"}, nil)
	assert.Contains(t, unknown, "🏨 gone")
	assert.Contains(t, unknown, "✉️ o@example.com")
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "950", groupThousands(950))
	assert.Equal(t, "1 000", groupThousands(1000))
	assert.Equal(t, "10 000 000", groupThousands(9_999_999.6))
	assert.Equal(t, "-12 345", groupThousands(-12345))
}

func TestSendWith_IgnoresCurrentSettings(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewService(nil, quietLogger())
	assert.False(t, s.Enabled())
	assert.Nil(t, s.Config())

	probe := &models.TelegramConfig{BotToken: "999:new", ChatID: "42", APIBase: srv.URL}
	require.NoError(t, s.SendWith(context.Background(), probe, "ping"))
	assert.Equal(t, "/bot999:new/sendMessage", path)
	assert.Nil(t, s.Config(), "probing does not change the settings")
}

func TestConfig_ReturnsCopy(t *testing.T) {
	s := NewService(&models.TelegramConfig{IsEnabled: true, BotToken: "1:a", ChatID: "2"}, quietLogger())
	cfg := s.Config()
	cfg.IsEnabled = false
	assert.True(t, s.Enabled())
}
