package domain

// Purse holds a character's currency as five denomination counts.
// Every field is always >= 0.
type Purse struct {
	Platinum int `json:"pp"`
	Gold     int `json:"gp"`
	Electrum int `json:"ep"`
	Silver   int `json:"sp"`
	Copper   int `json:"cp"`
}

// IsValid reports whether no denomination is negative.
func (p Purse) IsValid() bool {
	return p.Platinum >= 0 && p.Gold >= 0 && p.Electrum >= 0 && p.Silver >= 0 && p.Copper >= 0
}

// Character is a playable (or NPC) member of a campaign. PlayerID is empty
// for characters not assigned to a player.
type Character struct {
	ID         string
	Name       string
	CampaignID string
	PlayerID   string
	NPC        bool
	Purse      Purse
}
