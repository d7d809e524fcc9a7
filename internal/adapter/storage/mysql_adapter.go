package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campaign-shop/internal/core/domain"
	"campaign-shop/internal/port"
)

// ErrWriteConflict is returned when a guarded UPDATE matches no row. The
// service checks balances and quantities under row locks first, so hitting
// this means a query and its precondition disagree.
var ErrWriteConflict = errors.New("conditional write matched no row")

// MySQLAdapter implements port.TradeStore on MySQL. Each trade runs in one
// transaction; character and listing rows are read with FOR UPDATE so
// concurrent trades on the same rows serialize, and mutation queries carry
// their own guards as a second line of defense.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Trade(ctx context.Context, fn func(port.TradeTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlTradeTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListingItem(ctx context.Context, listingID string) (*domain.ShopListing, *domain.Item, error) {
	var l domain.ShopListing
	var i domain.Item
	var override sql.NullInt64
	err := m.db.QueryRowContext(ctx, `
		SELECT sl.id, sl.shop_id, sl.item_id, sl.stock, sl.price_override_gold,
		       i.id, i.name, i.category, i.rarity, i.base_price_gold, i.source
		FROM shop_listings sl
		JOIN items i ON i.id = sl.item_id
		WHERE sl.id = ?`, listingID,
	).Scan(&l.ID, &l.ShopID, &l.ItemID, &l.Stock, &override,
		&i.ID, &i.Name, &i.Category, &i.Rarity, &i.BasePriceGold, &i.Source)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query listing: %w", err)
	}

	l.PriceOverrideGold = int(override.Int64)
	return &l, &i, nil
}

type mysqlTradeTx struct {
	tx *sql.Tx
}

func (t *mysqlTradeTx) CharacterForUpdate(ctx context.Context, characterID string) (*domain.Character, error) {
	var c domain.Character
	var playerID sql.NullString
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, campaign_id, player_id, npc, pp, gp, ep, sp, cp
		FROM characters WHERE id = ? FOR UPDATE`, characterID,
	).Scan(&c.ID, &c.Name, &c.CampaignID, &playerID, &c.NPC,
		&c.Purse.Platinum, &c.Purse.Gold, &c.Purse.Electrum, &c.Purse.Silver, &c.Purse.Copper)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query character: %w", err)
	}

	c.PlayerID = playerID.String
	return &c, nil
}

func (t *mysqlTradeTx) ListingForUpdate(ctx context.Context, listingID string) (*domain.ShopListing, error) {
	var l domain.ShopListing
	var override sql.NullInt64
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, shop_id, item_id, stock, price_override_gold
		FROM shop_listings WHERE id = ? FOR UPDATE`, listingID,
	).Scan(&l.ID, &l.ShopID, &l.ItemID, &l.Stock, &override)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query listing: %w", err)
	}

	l.PriceOverrideGold = int(override.Int64)
	return &l, nil
}

func (t *mysqlTradeTx) ShopCampaign(ctx context.Context, shopID string) (string, error) {
	var campaignID string
	err := t.tx.QueryRowContext(ctx,
		`SELECT campaign_id FROM shops WHERE id = ?`, shopID,
	).Scan(&campaignID)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query shop: %w", err)
	}
	return campaignID, nil
}

func (t *mysqlTradeTx) Item(ctx context.Context, itemID string) (*domain.Item, error) {
	var i domain.Item
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, category, rarity, base_price_gold, source
		FROM items WHERE id = ?`, itemID,
	).Scan(&i.ID, &i.Name, &i.Category, &i.Rarity, &i.BasePriceGold, &i.Source)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &i, nil
}

func (t *mysqlTradeTx) InventoryQuantity(ctx context.Context, characterID, itemID string) (int, error) {
	var quantity int
	err := t.tx.QueryRowContext(ctx, `
		SELECT quantity FROM character_items
		WHERE character_id = ? AND item_id = ? FOR UPDATE`,
		characterID, itemID,
	).Scan(&quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query inventory: %w", err)
	}
	return quantity, nil
}

func (t *mysqlTradeTx) SavePurse(ctx context.Context, characterID string, purse domain.Purse) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE characters SET pp = ?, gp = ?, ep = ?, sp = ?, cp = ?
		WHERE id = ?`,
		purse.Platinum, purse.Gold, purse.Electrum, purse.Silver, purse.Copper,
		characterID,
	)
	if err != nil {
		return fmt.Errorf("update purse: %w", err)
	}
	return nil
}

func (t *mysqlTradeTx) AdjustStock(ctx context.Context, listingID string, delta int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE shop_listings SET stock = stock + ?
		WHERE id = ? AND stock + ? >= 0`,
		delta, listingID, delta,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 && delta < 0 {
		return ErrWriteConflict
	}
	return nil
}

func (t *mysqlTradeTx) AddInventory(ctx context.Context, characterID, itemID string, delta int) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO character_items (character_id, item_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		characterID, itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

func (t *mysqlTradeTx) RemoveInventory(ctx context.Context, characterID, itemID string, delta int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE character_items SET quantity = quantity - ?
		WHERE character_id = ? AND item_id = ? AND quantity >= ?`,
		delta, characterID, itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrWriteConflict
	}

	// Entries never persist at zero quantity.
	_, err = t.tx.ExecContext(ctx, `
		DELETE FROM character_items
		WHERE character_id = ? AND item_id = ? AND quantity <= 0`,
		characterID, itemID,
	)
	if err != nil {
		return fmt.Errorf("delete empty inventory: %w", err)
	}
	return nil
}

func (t *mysqlTradeTx) SaveReceipt(ctx context.Context, r domain.TradeReceipt) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO trade_receipts
			(id, kind, actor_id, character_id, shop_id, item_id, quantity, unit_price_gold, total_gold, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.ActorID, r.CharacterID, r.ShopID, r.ItemID,
		r.Quantity, r.UnitPriceGold, r.TotalGold, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}
