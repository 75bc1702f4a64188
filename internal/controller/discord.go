package controller

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/models"
)

// DiscordController registers a MessageCreate handler on a discordgo
// session and feeds every non-bot message into the shared command
// handler. The session is expected to already be constructed (with
// intents set) by the caller; Start only opens/closes the connection.
type DiscordController struct {
	session *discordgo.Session
	handler *Handler
	logger  zerolog.Logger
}

func NewDiscordController(session *discordgo.Session, handler *Handler, logger zerolog.Logger) *DiscordController {
	c := &DiscordController{session: session, handler: handler, logger: logger}
	session.AddHandler(c.onMessageCreate)
	return c
}

func (c *DiscordController) Start(ctx context.Context) {
	if err := c.session.Open(); err != nil {
		c.logger.Error().Err(err).Msg("failed to open discord session")
		return
	}
	defer c.session.Close()

	<-ctx.Done()
}

func (c *DiscordController) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	channelID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		c.logger.Warn().Err(err).Str("channel_id", m.ChannelID).Msg("unparseable discord channel id")
		return
	}
	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", m.Author.ID).Msg("unparseable discord user id")
		return
	}

	channel := models.DiscordChannel(channelID)
	owner := models.DiscordOwner(userID)

	reply := c.handler.Handle(context.Background(), IncomingMessage{Channel: channel, Owner: owner, Text: m.Content})
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		c.logger.Warn().Err(err).Msg("failed to send discord reply")
	}
}
