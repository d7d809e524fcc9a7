package domain

// Shop belongs to exactly one campaign.
type Shop struct {
	ID         string
	CampaignID string
	Name       string
}

// ShopListing is a shop's offer of one item: available stock plus an
// optional per-shop price. PriceOverrideGold <= 0 means the item's base
// price applies. Stock never goes negative.
type ShopListing struct {
	ID                string
	ShopID            string
	ItemID            string
	Stock             int
	PriceOverrideGold int
}

// EffectiveUnitPriceGold resolves the price actually charged per unit: the
// listing override when set, otherwise the item's base price.
func (l ShopListing) EffectiveUnitPriceGold(item Item) int {
	if l.PriceOverrideGold > 0 {
		return l.PriceOverrideGold
	}
	return item.BasePriceGold
}

// ListingView is the read model returned to callers after a trade or a
// listing lookup.
type ListingView struct {
	ListingID          string `json:"listing_id"`
	ItemID             string `json:"item_id"`
	ItemName           string `json:"item_name"`
	Stock              int    `json:"stock"`
	BasePriceGold      int    `json:"base_price_gold"`
	PriceOverrideGold  int    `json:"price_override_gold"`
	EffectivePriceGold int    `json:"effective_price_gold"`
}

// NewListingView builds the view for a listing and its item.
func NewListingView(listing ShopListing, item Item) *ListingView {
	return &ListingView{
		ListingID:          listing.ID,
		ItemID:             item.ID,
		ItemName:           item.Name,
		Stock:              listing.Stock,
		BasePriceGold:      item.BasePriceGold,
		PriceOverrideGold:  listing.PriceOverrideGold,
		EffectivePriceGold: listing.EffectiveUnitPriceGold(item),
	}
}
