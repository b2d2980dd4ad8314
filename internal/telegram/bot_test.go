package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-price-tracker/internal/notify"
)

type fakeBotAPI struct {
	mu   sync.Mutex
	sent []map[string]string
	fail bool
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch r.URL.Path {
	case "/bottest-token/getMe":
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"tracker","username":"tracker_bot"}}`))
	case "/bottest-token/sendMessage":
		if f.fail {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
			return
		}
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestBot(t *testing.T, api *fakeBotAPI) *Bot {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	t.Cleanup(srv.Close)

	bot, err := NewBot(BotConfig{Token: "test-token", ChatID: 42, Endpoint: srv.URL + "/bot%s/%s"})
	require.NoError(t, err)
	return bot
}

func TestNotifySendsMarkdownMessage(t *testing.T) {
	api := &fakeBotAPI{}
	bot := newTestBot(t, api)

	err := bot.Notify(context.Background(), notify.PriceDrop("https://www.amazon.in/dp/B0", 950, 999))
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "42", api.sent[0]["chat_id"])
	assert.Equal(t, "MarkdownV2", api.sent[0]["parse_mode"])
	assert.Contains(t, api.sent[0]["text"], "950\\.00")
	assert.Contains(t, api.sent[0]["text"], "www\\.amazon\\.in")
}

func TestNotifyEscapesLinkTarget(t *testing.T) {
	api := &fakeBotAPI{}
	bot := newTestBot(t, api)

	err := bot.Notify(context.Background(), notify.PriceDrop("https://a.example/p_(1)", 1499.5, 1500))
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Contains(t, api.sent[0]["text"], "(https://a.example/p_(1\\))")
	assert.Contains(t, api.sent[0]["text"], "1,499\\.50")
}

func TestNotifyReportsAPIError(t *testing.T) {
	api := &fakeBotAPI{fail: true}
	bot := newTestBot(t, api)

	assert.Error(t, bot.Notify(context.Background(), notify.PriceDrop("https://a.example/p1", 1, 2)))
}
