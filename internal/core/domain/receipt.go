package domain

import "time"

type TradeKind string

const (
	TradeKindBuy  TradeKind = "buy"
	TradeKindSell TradeKind = "sell"
)

// TradeReceipt is the record written for every committed trade. TotalGold
// is negative for sells, so a shop's receipts sum to its net intake.
type TradeReceipt struct {
	ID            string
	Kind          TradeKind
	ActorID       string
	CharacterID   string
	ShopID        string
	ItemID        string
	Quantity      int
	UnitPriceGold int
	TotalGold     int
	CreatedAt     time.Time
}
