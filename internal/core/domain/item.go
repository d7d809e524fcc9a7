package domain

type ItemSource string

const (
	ItemSourceOfficial ItemSource = "official"
	ItemSourceCustom   ItemSource = "custom"
)

// Item is a purchasable item definition. BasePriceGold is the default unit
// price; listings may override it. Source records provenance only and never
// affects pricing.
type Item struct {
	ID            string
	Name          string
	Category      string
	Rarity        string
	BasePriceGold int
	Source        ItemSource
}
