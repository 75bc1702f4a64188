// Package parser implements the tolerant HTML → ParsedPage extraction for
// hardverapro-style listing search pages. A malformed ad row yields a
// models.ParseFailure but never halts the page; parsing is pure and safe
// to call from many goroutines concurrently.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/adred-codev/adwatch/internal/models"
)

// ParseHardverapro parses a raw HTML body into a ParsedPage.
func ParseHardverapro(body []byte) models.ParsedPage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		// An unparsable document still yields a well-formed, empty page
		// rather than aborting the scrape cycle.
		return models.ParsedPage{}
	}

	metadata := models.ScrapeMetadata{
		Category: textOrNil(doc.Find("div.uad-categories-item.active>a").First()),
		MinPrice: floatAttrOrNil(doc.Find(`input[name="minprice"]`).First(), "value"),
		MaxPrice: floatAttrOrNil(doc.Find(`input[name="maxprice"]`).First(), "value"),
	}

	var listings []models.Listing
	var failures []models.ParseFailure

	doc.Find("li.media").Each(func(_ int, ad *goquery.Selection) {
		listing, err := parseListing(ad)
		if err != nil {
			failures = append(failures, *err)
			return
		}
		listings = append(listings, listing)
	})

	return models.ParsedPage{
		Metadata: metadata,
		Listings: listings,
		Failures: failures,
	}
}

func parseListing(ad *goquery.Selection) (models.Listing, *models.ParseFailure) {
	listingType := parseListingType(ad)

	idStr, ok := ad.Attr("data-uadid")
	if !ok {
		return models.Listing{}, fail(models.MissingFailure(models.FieldId))
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return models.Listing{}, fail(models.InvalidFailure(models.FieldId, idStr))
	}

	titleAnchor := ad.Find("div.uad-col-title>h1>a").First()
	if titleAnchor.Length() == 0 {
		return models.Listing{}, fail(models.MissingFailure(models.FieldUrl))
	}
	url, ok := titleAnchor.Attr("href")
	if !ok {
		return models.Listing{}, fail(models.MissingFailure(models.FieldUrl))
	}
	title := strings.TrimSpace(titleAnchor.Text())

	priceSel := ad.Find("div.uad-price>span").First()
	if priceSel.Length() == 0 {
		return models.Listing{}, fail(models.MissingFailure(models.FieldPrice))
	}
	priceText := strings.ReplaceAll(priceSel.Text(), " ", "")
	priceText = strings.ReplaceAll(priceText, "Ft", "")
	price, failure := parsePrice(priceText)
	if failure != nil {
		return models.Listing{}, failure
	}

	frozen := ad.Find("div.uad-price-iced").Length() > 0

	citiesSel := ad.Find("div.uad-cities").First()
	if citiesSel.Length() == 0 {
		return models.Listing{}, fail(models.MissingFailure(models.FieldCities))
	}
	cities := strings.Split(strings.TrimSpace(citiesSel.Text()), ", ")

	sellerAnchor := ad.Find("span.uad-user-text>a").First()
	if sellerAnchor.Length() == 0 {
		return models.Listing{}, fail(models.MissingFailure(models.FieldSellerName))
	}
	sellerName := strings.TrimSpace(sellerAnchor.Text())
	sellerUrl, ok := sellerAnchor.Attr("href")
	if !ok {
		return models.Listing{}, fail(models.MissingFailure(models.FieldSellerUrl))
	}

	sellerRatings, failure := parseSellerRatings(ad)
	if failure != nil {
		return models.Listing{}, failure
	}

	dateSel := ad.Find("div.uad-time>time").First()
	if dateSel.Length() == 0 {
		return models.Listing{}, fail(models.MissingFailure(models.FieldDate))
	}
	dateText := strings.TrimSpace(dateSel.Text())
	if strings.Contains(dateText, "Előresorolva") {
		return models.Listing{}, fail(models.SkippedFailure(models.FieldDate))
	}
	date, err := parseDate(dateText)
	if err != nil {
		return models.Listing{}, fail(models.InvalidFailure(models.FieldDate, dateText))
	}

	return models.Listing{
		Id:            id,
		Url:           url,
		Title:         title,
		Price:         price,
		Cities:        cities,
		Date:          date,
		Frozen:        frozen,
		SellerName:    sellerName,
		SellerRatings: sellerRatings,
		SellerUrl:     sellerUrl,
		ListingType:   listingType,
	}, nil
}

func fail(f models.ParseFailure) *models.ParseFailure { return &f }

func parseListingType(ad *goquery.Selection) models.ListingType {
	ribbon := ad.Find("a.uad-image>div.uad-corner-ribbon>span").First()
	if ribbon.Length() == 0 {
		return models.ListingRegular
	}
	switch strings.TrimSpace(ribbon.Text()) {
	case "Bazár":
		return models.ListingBazar
	case "Kiemelt":
		return models.ListingFeatured
	default:
		// "Friss" (fresh) and anything unrecognized are undifferentiated.
		return models.ListingRegular
	}
}

// parsePrice implements: "Ingyenes" -> 0, "Csere"/"Keresem" -> Skipped,
// else the cleaned numeric text parsed as float64, or Invalid.
func parsePrice(cleaned string) (float64, *models.ParseFailure) {
	switch cleaned {
	case "Ingyenes":
		return 0.0, nil
	case "Csere", "Keresem":
		return 0, fail(models.SkippedFailure(models.FieldPrice))
	default:
		price, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fail(models.InvalidFailure(models.FieldPrice, cleaned))
		}
		return price, nil
	}
}

// parseSellerRatings implements: absent -> 0, "+N" -> N, else Invalid.
func parseSellerRatings(ad *goquery.Selection) (int64, *models.ParseFailure) {
	sel := ad.Find("span.uad-rating-positive").First()
	if sel.Length() == 0 {
		return 0, nil
	}
	raw := strings.TrimSpace(sel.Text())
	cleaned := strings.ReplaceAll(raw, "+", "")
	ratings, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fail(models.InvalidFailure(models.FieldSellerRatings, raw))
	}
	return ratings, nil
}

// parseDate implements: "ma HH:MM" -> today, "tegnap HH:MM" -> yesterday,
// "YYYY-MM-DD" -> that date at 00:00.
func parseDate(text string) (time.Time, error) {
	now := time.Now()

	switch {
	case strings.HasPrefix(text, "ma"):
		t, err := parseClock(text)
		if err != nil {
			return time.Time{}, err
		}
		return atDate(now, t), nil
	case strings.HasPrefix(text, "tegnap"):
		t, err := parseClock(text)
		if err != nil {
			return time.Time{}, err
		}
		return atDate(now, t).AddDate(0, 0, -1), nil
	default:
		d, err := time.ParseInLocation("2006-01-02", text, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized date format: %q", text)
		}
		return d, nil
	}
}

func parseClock(text string) (time.Time, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("missing time of day in %q", text)
	}
	return time.ParseInLocation("15:04", fields[1], time.Local)
}

func atDate(day time.Time, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
}

func textOrNil(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.Text())
	return &text
}

func floatAttrOrNil(sel *goquery.Selection, attr string) *float64 {
	if sel.Length() == 0 {
		return nil
	}
	raw, ok := sel.Attr(attr)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
