package domain

// InventoryEntry records how many of one item a character holds. At most
// one entry exists per (character, item) pair, and Quantity is positive for
// as long as the entry persists; an entry driven to zero is deleted.
type InventoryEntry struct {
	CharacterID string
	ItemID      string
	Quantity    int
}
