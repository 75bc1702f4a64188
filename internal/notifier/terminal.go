package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/adred-codev/adwatch/internal/models"
)

// TerminalNotifier writes a formatted block to an io.Writer (stdout by
// default). Intended for local testing but fully functional as a real
// destination.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

func (t *TerminalNotifier) NotifyNewListing(_ context.Context, sub models.Subscription, meta models.ScrapeMetadata, listing models.Listing, _ models.ChannelId) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.w, "[%s #%d] New listing: %s\n", subscriptionDisplayName(sub), sub.Id, listing.Title)
	fmt.Fprintf(t.w, "  %s\n", listing.Url)
	fmt.Fprintf(t.w, "  Price: %s\n", formattedPrice(listing))
	fmt.Fprintf(t.w, "  Cities: %s\n", citiesLine(listing))
	fmt.Fprintf(t.w, "  Seller: %s\n", sellerLine(listing))
	if line := priceRangeLine(meta); line != "" {
		fmt.Fprintf(t.w, "  %s\n", line)
	}
	return nil
}
