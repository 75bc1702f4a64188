package notifier

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/adred-codev/adwatch/internal/models"
)

// TelegramNotifier delivers notifications over the Telegram Bot API using
// MarkdownV2 formatting.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramNotifier(bot *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

func (t *TelegramNotifier) NotifyNewListing(_ context.Context, sub models.Subscription, meta models.ScrapeMetadata, listing models.Listing, channel models.ChannelId) error {
	text := formatTelegramMessage(sub, meta, listing)

	msg := tgbotapi.NewMessage(channel.TelegramChatId, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := t.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatTelegramMessage(sub models.Subscription, meta models.ScrapeMetadata, listing models.Listing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s*\n", escapeMarkdownV2(formattedPrice(listing)))
	fmt.Fprintf(&b, "[%s](%s)\n", escapeMarkdownV2(listing.Title), escapeMarkdownV2Url(listing.Url))
	fmt.Fprintf(&b, "Cities: %s\n", escapeMarkdownV2(citiesLine(listing)))
	fmt.Fprintf(&b, "Seller: %s\n", escapeMarkdownV2(sellerLine(listing)))
	if line := priceRangeLine(meta); line != "" {
		fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(line))
	}
	fmt.Fprintf(&b, "Subscription: %s \\(\\#%d\\)", escapeMarkdownV2(subscriptionDisplayName(sub)), sub.Id)

	return b.String()
}

// telegramMarkdownV2Special is the set of characters MarkdownV2 requires
// escaping with a preceding backslash outside of entities.
const telegramMarkdownV2Special = "_*[]()~`>#+-=|{}.!"

func escapeMarkdownV2(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(telegramMarkdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeMarkdownV2Url escapes the characters Telegram requires inside a
// link target: backslash and closing parenthesis.
func escapeMarkdownV2Url(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `)`, `\)`)
	return s
}
