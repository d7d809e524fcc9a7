package port

import (
	"context"

	"campaign-shop/internal/core/domain"
)

// TradeStore is the persistent system of record for trades.
type TradeStore interface {
	// Trade runs fn inside a single transaction. Every read the callback
	// performs on a character or listing must lock that row until commit,
	// so two trades touching the same character or listing serialize.
	// If fn returns an error the transaction rolls back with no state
	// change; otherwise all mutations commit together.
	Trade(ctx context.Context, fn func(TradeTx) error) error

	// ListingItem fetches a listing together with its item, outside any
	// transaction. Returns (nil, nil, nil) when the listing does not exist.
	ListingItem(ctx context.Context, listingID string) (*domain.ShopListing, *domain.Item, error)
}

// TradeTx is the set of operations available inside one trade transaction.
// Lookups return nil (with a nil error) for missing rows.
type TradeTx interface {
	// CharacterForUpdate reads a character and locks its row.
	CharacterForUpdate(ctx context.Context, characterID string) (*domain.Character, error)

	// ListingForUpdate reads a shop listing and locks its row.
	ListingForUpdate(ctx context.Context, listingID string) (*domain.ShopListing, error)

	// ShopCampaign resolves the campaign a shop belongs to. Returns ""
	// when the shop does not exist.
	ShopCampaign(ctx context.Context, shopID string) (string, error)

	// Item reads an item definition.
	Item(ctx context.Context, itemID string) (*domain.Item, error)

	// InventoryQuantity returns how many of an item the character holds,
	// zero when there is no entry.
	InventoryQuantity(ctx context.Context, characterID, itemID string) (int, error)

	// SavePurse replaces a character's purse.
	SavePurse(ctx context.Context, characterID string, purse domain.Purse) error

	// AdjustStock changes a listing's stock by delta. The write is
	// conditional on the result staying non-negative.
	AdjustStock(ctx context.Context, listingID string, delta int) error

	// AddInventory increases the character's held quantity, creating the
	// entry if absent. delta must be positive.
	AddInventory(ctx context.Context, characterID, itemID string, delta int) error

	// RemoveInventory decreases the held quantity, deleting the entry when
	// it reaches zero. The write is conditional on quantity >= delta.
	RemoveInventory(ctx context.Context, characterID, itemID string, delta int) error

	// SaveReceipt persists a trade receipt.
	SaveReceipt(ctx context.Context, receipt domain.TradeReceipt) error
}
