// Package money converts between a five-denomination purse and its value in
// copper, the canonical unit all trade arithmetic is done in.
package money

import "campaign-shop/internal/core/domain"

// Denomination weights in copper.
//
// 1 pp = 1000 cp, 1 gp = 100 cp, 1 ep = 50 cp, 1 sp = 10 cp.
const (
	PlatinumCopper = 1000
	GoldCopper     = 100
	ElectrumCopper = 50
	SilverCopper   = 10
)

// ToCopper returns the purse's total value in copper.
func ToCopper(p domain.Purse) int {
	return p.Platinum*PlatinumCopper +
		p.Gold*GoldCopper +
		p.Electrum*ElectrumCopper +
		p.Silver*SilverCopper +
		p.Copper
}

// FromCopper decomposes a copper total into a purse, greedily from the
// largest denomination down. The decomposition is deterministic, so it does
// not generally reproduce the split the total was computed from; only the
// copper value round-trips. Negative totals clamp to an empty purse —
// callers validate balances before debiting, so that path is a fallback,
// not a business rule.
func FromCopper(total int) domain.Purse {
	if total < 0 {
		total = 0
	}

	var p domain.Purse
	p.Platinum = total / PlatinumCopper
	total %= PlatinumCopper

	p.Gold = total / GoldCopper
	total %= GoldCopper

	p.Electrum = total / ElectrumCopper
	total %= ElectrumCopper

	p.Silver = total / SilverCopper
	p.Copper = total % SilverCopper

	return p
}

// GoldToCopper converts a gold-denominated price to copper.
func GoldToCopper(gold int) int {
	return gold * GoldCopper
}
