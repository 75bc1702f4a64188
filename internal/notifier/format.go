package notifier

import (
	"fmt"
	"strings"

	"github.com/adred-codev/adwatch/internal/models"
)

// priceRangeLine renders the four {both, only-min, only-max, neither}
// cases for a subscription's price floor/ceiling, or "" when neither is set.
func priceRangeLine(meta models.ScrapeMetadata) string {
	switch {
	case meta.MinPrice != nil && meta.MaxPrice != nil:
		return fmt.Sprintf("Price range: %.0f - %.0f Ft", *meta.MinPrice, *meta.MaxPrice)
	case meta.MinPrice != nil:
		return fmt.Sprintf("Price range: from %.0f Ft", *meta.MinPrice)
	case meta.MaxPrice != nil:
		return fmt.Sprintf("Price range: up to %.0f Ft", *meta.MaxPrice)
	default:
		return ""
	}
}

func subscriptionDisplayName(sub models.Subscription) string {
	if sub.Name != nil && *sub.Name != "" {
		return *sub.Name
	}
	return "(unnamed)"
}

func formattedPrice(listing models.Listing) string {
	if listing.Price == 0 {
		return "Free"
	}
	return fmt.Sprintf("%.0f Ft", listing.Price)
}

func citiesLine(listing models.Listing) string {
	return strings.Join(listing.Cities, ", ")
}

func sellerLine(listing models.Listing) string {
	return fmt.Sprintf("%s (+%d)", listing.SellerName, listing.SellerRatings)
}
