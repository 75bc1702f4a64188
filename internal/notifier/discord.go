package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/adred-codev/adwatch/internal/models"
)

// DiscordNotifier delivers notifications as Discord channel messages using
// discordgo's Markdown dialect.
type DiscordNotifier struct {
	session *discordgo.Session
}

func NewDiscordNotifier(session *discordgo.Session) *DiscordNotifier {
	return &DiscordNotifier{session: session}
}

func (d *DiscordNotifier) NotifyNewListing(_ context.Context, sub models.Subscription, meta models.ScrapeMetadata, listing models.Listing, channel models.ChannelId) error {
	embed := &discordgo.MessageEmbed{
		Title: listing.Title,
		URL:   listing.Url,
		Color: 0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Price", Value: escapeDiscordMarkdown(formattedPrice(listing)), Inline: true},
			{Name: "Cities", Value: escapeDiscordMarkdown(citiesLine(listing)), Inline: true},
			{Name: "Seller", Value: escapeDiscordMarkdown(sellerLine(listing)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s (#%d)", subscriptionDisplayName(sub), sub.Id),
		},
	}
	if line := priceRangeLine(meta); line != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Range", Value: escapeDiscordMarkdown(line), Inline: true,
		})
	}

	chatID := formatDiscordChannelID(channel.DiscordChannelId)
	_, err := d.session.ChannelMessageSendEmbed(chatID, embed)
	if err != nil {
		return fmt.Errorf("send discord embed: %w", err)
	}
	return nil
}

func formatDiscordChannelID(id int64) string {
	return fmt.Sprintf("%d", id)
}

// escapeDiscordMarkdown escapes the characters that trigger Discord's
// Markdown renderer so listing text never changes the message's structure.
func escapeDiscordMarkdown(s string) string {
	const special = "*_~`|>"
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
