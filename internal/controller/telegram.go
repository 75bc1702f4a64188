package controller

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/models"
)

// TelegramController long-polls Telegram's getUpdates endpoint and feeds
// every text message into the shared command handler.
type TelegramController struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	logger  zerolog.Logger
}

func NewTelegramController(bot *tgbotapi.BotAPI, handler *Handler, logger zerolog.Logger) *TelegramController {
	return &TelegramController{bot: bot, handler: handler, logger: logger}
}

func (c *TelegramController) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := c.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			c.handleMessage(ctx, update.Message)
		}
	}
}

func (c *TelegramController) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	channel := models.TelegramChannel(msg.Chat.ID)

	var userID *int64
	if msg.From != nil {
		id := msg.From.ID
		userID = &id
	}
	owner := models.TelegramOwner(userID)

	reply := c.handler.Handle(ctx, IncomingMessage{Channel: channel, Owner: owner, Text: msg.Text})
	if reply == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	if _, err := c.bot.Send(out); err != nil {
		c.logger.Warn().Err(err).Msg("failed to send telegram reply")
	}
}
