package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() schema.Notification {
	return schema.Notification{
		Metric:          schema.NewMetric(schema.PullsKind, "jhumanj/opnform-api"),
		Date:            time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		DailyDelta:      42,
		CumulativeTotal: 1042,
	}
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "opnform-api\nMonday 10 June 2024\nToday: 42\nTotal: 1042", FormatMessage(sample()))

	stars := sample()
	stars.Metric = schema.NewMetric(schema.StarsKind, "opnform/opnform")
	stars.DailyDelta = -1
	assert.Equal(t, "opnform/opnform\nMonday 10 June 2024\nToday: -1\nTotal: 1042", FormatMessage(stars))
}

func TestTelegram_Notify(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL+"/", "TOKEN", "-100123", time.Second)
	require.NoError(t, tg.Notify(context.Background(), sample()))

	assert.Equal(t, "-100123", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.True(t, got.DisableWebPagePreview)
	assert.Contains(t, got.Text, "Today: 42")
}

func TestTelegram_NotifyFailures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
		}))
		defer srv.Close()

		err := NewTelegram(srv.URL, "TOKEN", "1", time.Second).Notify(context.Background(), sample())
		require.Error(t, err)
		assert.True(t, errors.Is(err, contract.ErrNotificationFailure))
		assert.Contains(t, err.Error(), "chat not found")
	})

	t.Run("ok false with 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":false,"description":"flood"}`))
		}))
		defer srv.Close()

		err := NewTelegram(srv.URL, "TOKEN", "1", time.Second).Notify(context.Background(), sample())
		assert.ErrorIs(t, err, contract.ErrNotificationFailure)
	})

	t.Run("transport error hides token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		err := NewTelegram(url, "SECRETTOKEN", "1", time.Second).Notify(context.Background(), sample())
		require.Error(t, err)
		assert.ErrorIs(t, err, contract.ErrNotificationFailure)
		assert.NotContains(t, err.Error(), "SECRETTOKEN")
	})
}

func TestFromConfig(t *testing.T) {
	cfg := &contract.Config{}
	assert.IsType(t, Noop{}, FromConfig(cfg))

	cfg.TelegramBotToken = "t"
	assert.IsType(t, Noop{}, FromConfig(cfg))

	cfg.TelegramChatID = "c"
	assert.IsType(t, &Telegram{}, FromConfig(cfg))
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), sample()))
}
