package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"campaign-shop/internal/core/domain"
	"campaign-shop/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/campaignshop?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return db
}

// seedTrade inserts a fresh campaign, shop, item, character and listing
// with unique IDs and returns them. Rows are removed on cleanup.
type tradeRows struct {
	campaignID  string
	shopID      string
	itemID      string
	characterID string
	listingID   string
	playerID    string
}

func seedTrade(t *testing.T, db *sql.DB, stock, goldPrice, purseGold int) tradeRows {
	t.Helper()
	ctx := context.Background()

	rows := tradeRows{
		campaignID:  uuid.NewString(),
		shopID:      uuid.NewString(),
		itemID:      uuid.NewString(),
		characterID: uuid.NewString(),
		listingID:   uuid.NewString(),
		playerID:    uuid.NewString(),
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	mustExec(`INSERT INTO campaigns (id, name) VALUES (?, 'test campaign')`, rows.campaignID)
	mustExec(`INSERT INTO shops (id, campaign_id, name) VALUES (?, ?, 'test shop')`, rows.shopID, rows.campaignID)
	mustExec(`INSERT INTO items (id, name, base_price_gold, source) VALUES (?, 'test item', ?, 'custom')`, rows.itemID, goldPrice)
	mustExec(`INSERT INTO characters (id, name, campaign_id, player_id, gp) VALUES (?, 'test char', ?, ?, ?)`,
		rows.characterID, rows.campaignID, rows.playerID, purseGold)
	mustExec(`INSERT INTO shop_listings (id, shop_id, item_id, stock) VALUES (?, ?, ?, ?)`,
		rows.listingID, rows.shopID, rows.itemID, stock)

	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM trade_receipts WHERE shop_id = ?`, rows.shopID)
		db.ExecContext(ctx, `DELETE FROM character_items WHERE character_id = ?`, rows.characterID)
		db.ExecContext(ctx, `DELETE FROM shop_listings WHERE id = ?`, rows.listingID)
		db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, rows.characterID)
		db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, rows.itemID)
		db.ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, rows.shopID)
		db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, rows.campaignID)
	})
	return rows
}

func TestTrade_CommitsAllMutations(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	rows := seedTrade(t, db, 5, 3, 10)

	err := adapter.Trade(ctx, func(tx port.TradeTx) error {
		character, err := tx.CharacterForUpdate(ctx, rows.characterID)
		if err != nil {
			return err
		}
		if character == nil || character.Purse.Gold != 10 {
			t.Fatalf("unexpected character: %+v", character)
		}

		if err := tx.SavePurse(ctx, rows.characterID, domain.Purse{Gold: 4}); err != nil {
			return err
		}
		if err := tx.AdjustStock(ctx, rows.listingID, -2); err != nil {
			return err
		}
		return tx.AddInventory(ctx, rows.characterID, rows.itemID, 2)
	})
	if err != nil {
		t.Fatalf("trade failed: %v", err)
	}

	var gp, stock, quantity int
	db.QueryRowContext(ctx, `SELECT gp FROM characters WHERE id = ?`, rows.characterID).Scan(&gp)
	db.QueryRowContext(ctx, `SELECT stock FROM shop_listings WHERE id = ?`, rows.listingID).Scan(&stock)
	db.QueryRowContext(ctx, `SELECT quantity FROM character_items WHERE character_id = ? AND item_id = ?`,
		rows.characterID, rows.itemID).Scan(&quantity)

	if gp != 4 || stock != 3 || quantity != 2 {
		t.Errorf("got gp=%d stock=%d quantity=%d, want 4/3/2", gp, stock, quantity)
	}
}

func TestTrade_RollsBackOnError(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	rows := seedTrade(t, db, 5, 3, 10)

	wantErr := errors.New("abort")
	err := adapter.Trade(ctx, func(tx port.TradeTx) error {
		if err := tx.SavePurse(ctx, rows.characterID, domain.Purse{}); err != nil {
			return err
		}
		if err := tx.AdjustStock(ctx, rows.listingID, -5); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected abort error, got %v", err)
	}

	var gp, stock int
	db.QueryRowContext(ctx, `SELECT gp FROM characters WHERE id = ?`, rows.characterID).Scan(&gp)
	db.QueryRowContext(ctx, `SELECT stock FROM shop_listings WHERE id = ?`, rows.listingID).Scan(&stock)
	if gp != 10 || stock != 5 {
		t.Errorf("rollback left gp=%d stock=%d, want 10/5", gp, stock)
	}
}

func TestAdjustStock_GuardsNegative(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	rows := seedTrade(t, db, 1, 3, 0)

	err := adapter.Trade(ctx, func(tx port.TradeTx) error {
		return tx.AdjustStock(ctx, rows.listingID, -2)
	})
	if !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("expected ErrWriteConflict, got %v", err)
	}

	var stock int
	db.QueryRowContext(ctx, `SELECT stock FROM shop_listings WHERE id = ?`, rows.listingID).Scan(&stock)
	if stock != 1 {
		t.Errorf("stock = %d, want 1", stock)
	}
}

func TestRemoveInventory_DeletesAtZero(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	rows := seedTrade(t, db, 5, 3, 0)

	err := adapter.Trade(ctx, func(tx port.TradeTx) error {
		if err := tx.AddInventory(ctx, rows.characterID, rows.itemID, 2); err != nil {
			return err
		}
		return tx.RemoveInventory(ctx, rows.characterID, rows.itemID, 2)
	})
	if err != nil {
		t.Fatalf("trade failed: %v", err)
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM character_items WHERE character_id = ? AND item_id = ?`,
		rows.characterID, rows.itemID).Scan(&count)
	if count != 0 {
		t.Error("inventory entry persisted at zero quantity")
	}
}

func TestRemoveInventory_Insufficient(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	rows := seedTrade(t, db, 5, 3, 0)

	err := adapter.Trade(ctx, func(tx port.TradeTx) error {
		if err := tx.AddInventory(ctx, rows.characterID, rows.itemID, 1); err != nil {
			return err
		}
		return tx.RemoveInventory(ctx, rows.characterID, rows.itemID, 3)
	})
	if !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("expected ErrWriteConflict, got %v", err)
	}
}

func TestListingItem(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	rows := seedTrade(t, db, 5, 3, 0)

	listing, item, err := adapter.ListingItem(ctx, rows.listingID)
	if err != nil {
		t.Fatalf("ListingItem failed: %v", err)
	}
	if listing == nil || item == nil {
		t.Fatal("expected listing and item")
	}
	if listing.Stock != 5 || item.BasePriceGold != 3 {
		t.Errorf("got stock=%d base=%d, want 5/3", listing.Stock, item.BasePriceGold)
	}

	listing, item, err = adapter.ListingItem(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing != nil || item != nil {
		t.Error("expected nil for nonexistent listing")
	}
}
