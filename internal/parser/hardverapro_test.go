package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adred-codev/adwatch/internal/models"
)

func page(body string) []byte {
	return []byte(`<html><body>
<div class="uad-categories-item active"><a>Alaplapok</a></div>
<input name="minprice" value="10000">
<input name="maxprice" value="50000">
` + body + `
</body></html>`)
}

func regularListing(id, price string) string {
	return `<li class="media" data-uadid="` + id + `">
		<div class="uad-col-title"><h1><a href="/hirdetes/` + id + `">Gigabyte B550</a></h1></div>
		<div class="uad-price"><span>` + price + `</span></div>
		<div class="uad-cities">Budapest, Debrecen</div>
		<span class="uad-user-text"><a href="/tag/seller1">seller1</a></span>
		<span class="uad-rating-positive">+12</span>
		<div class="uad-time"><time>2024-05-01</time></div>
	</li>`
}

func TestParseHardveraproSuccess(t *testing.T) {
	body := page(regularListing("111", "25 000 Ft"))
	result := ParseHardverapro(body)

	require.Len(t, result.Listings, 1)
	require.Empty(t, result.Failures)

	listing := result.Listings[0]
	assert.Equal(t, models.ListingId(111), listing.Id)
	assert.Equal(t, "Gigabyte B550", listing.Title)
	assert.Equal(t, 25000.0, listing.Price)
	assert.Equal(t, []string{"Budapest", "Debrecen"}, listing.Cities)
	assert.Equal(t, "seller1", listing.SellerName)
	assert.Equal(t, int64(12), listing.SellerRatings)
	assert.Equal(t, models.ListingRegular, listing.ListingType)

	assert.Equal(t, "Alaplapok", *result.Metadata.Category)
	assert.Equal(t, 10000.0, *result.Metadata.MinPrice)
	assert.Equal(t, 50000.0, *result.Metadata.MaxPrice)
}

func TestParseHardveraproMissingIdIsFailure(t *testing.T) {
	body := page(`<li class="media">
		<div class="uad-col-title"><h1><a href="/hirdetes/1">No id</a></h1></div>
		<div class="uad-price"><span>1000</span></div>
	</li>`)
	result := ParseHardverapro(body)

	assert.Empty(t, result.Listings)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.FieldId, result.Failures[0].Field)
	assert.Equal(t, models.FailureMissing, result.Failures[0].Kind)
}

func TestParseHardveraproFreeAndSkippedPrices(t *testing.T) {
	free := `<li class="media" data-uadid="1">
		<div class="uad-col-title"><h1><a href="/hirdetes/1">Free item</a></h1></div>
		<div class="uad-price"><span>Ingyenes</span></div>
		<div class="uad-cities">Szeged</div>
		<span class="uad-user-text"><a href="/tag/s">s</a></span>
		<div class="uad-time"><time>2024-01-01</time></div>
	</li>`
	swap := `<li class="media" data-uadid="2">
		<div class="uad-col-title"><h1><a href="/hirdetes/2">Swap item</a></h1></div>
		<div class="uad-price"><span>Csere</span></div>
		<div class="uad-cities">Pecs</div>
		<span class="uad-user-text"><a href="/tag/s">s</a></span>
		<div class="uad-time"><time>2024-01-01</time></div>
	</li>`

	result := ParseHardverapro(page(free + swap))

	require.Len(t, result.Listings, 1)
	assert.Equal(t, 0.0, result.Listings[0].Price)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.FieldPrice, result.Failures[0].Field)
	assert.Equal(t, models.FailureSkipped, result.Failures[0].Kind)
}

func TestParseHardveraproListingTypeFromRibbon(t *testing.T) {
	bazar := `<li class="media" data-uadid="3">
		<a class="uad-image"><div class="uad-corner-ribbon"><span>Bazár</span></div></a>
		<div class="uad-col-title"><h1><a href="/hirdetes/3">Bazar item</a></h1></div>
		<div class="uad-price"><span>1000</span></div>
		<div class="uad-cities">Gyor</div>
		<span class="uad-user-text"><a href="/tag/s">s</a></span>
		<div class="uad-time"><time>2024-01-01</time></div>
	</li>`

	result := ParseHardverapro(page(bazar))
	require.Len(t, result.Listings, 1)
	assert.Equal(t, models.ListingBazar, result.Listings[0].ListingType)
}

func TestParseHardveraproPinnedDateIsSkipped(t *testing.T) {
	pinned := `<li class="media" data-uadid="4">
		<div class="uad-col-title"><h1><a href="/hirdetes/4">Pinned item</a></h1></div>
		<div class="uad-price"><span>1000</span></div>
		<div class="uad-cities">Gyor</div>
		<span class="uad-user-text"><a href="/tag/s">s</a></span>
		<div class="uad-time"><time>Előresorolva</time></div>
	</li>`

	result := ParseHardverapro(page(pinned))
	assert.Empty(t, result.Listings)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.FieldDate, result.Failures[0].Field)
	assert.Equal(t, models.FailureSkipped, result.Failures[0].Kind)
}
