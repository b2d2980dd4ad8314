package telegram

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"smart-price-tracker/internal/notify"
	"smart-price-tracker/lib/helpers"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(c.Token, endpoint, &http.Client{})
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:    bot,
		Config: c,
	}, nil
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}

// Notify implements notify.Notifier.
func (b *Bot) Notify(_ context.Context, n notify.Notification) error {
	text := fmt.Sprintf(
		"🚨 *%s*\n\n%s\nCurrent Price: *$%s*\nYour Threshold: *$%s*\n\n[%s](%s)",
		helpers.EscapeMarkdownV2(n.Title),
		helpers.EscapeMarkdownV2(n.Message),
		helpers.FormatPriceUS(n.Price, true),
		helpers.FormatPriceUS(n.Threshold, true),
		helpers.EscapeMarkdownV2(helpers.Host(n.URL)),
		helpers.EscapeMarkdownV2URL(n.URL),
	)

	if err := b.SendMessage(Message{ChatID: b.Config.ChatID, Text: text}); err != nil {
		return err
	}

	log.Debugf("✅ Price alert notification sent to Chat ID: %d", b.Config.ChatID)
	return nil
}
