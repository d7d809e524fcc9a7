package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campaign-shop/internal/core/domain"
	"campaign-shop/internal/core/money"
	"campaign-shop/internal/port"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPurse         = errors.New("purse denominations must be non-negative")
	ErrNotFound             = errors.New("record not found")
	ErrForbidden            = errors.New("character does not belong to actor")
	ErrCampaignMismatch     = errors.New("shop and character belong to different campaigns")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientQuantity = errors.New("insufficient quantity in inventory")
)

// Config tunes trade behavior.
type Config struct {
	// SellPayoutPercent is the fraction of the effective price, in whole
	// percent, a character is paid per unit when selling. 100 pays full
	// price, 50 is a buy-back rate. Applied per unit with floor division.
	SellPayoutPercent int

	// GameMasterOverride lets a gamemaster trade on behalf of any
	// character. When false, strict ownership is required for everyone.
	GameMasterOverride bool
}

// TradeService executes buy and sell trades between a character and a shop
// listing. Each trade runs as one store transaction: ownership and campaign
// checks, stock and funds checks, then purse, stock, inventory and receipt
// writes commit together or not at all.
type TradeService struct {
	store        port.TradeStore
	cache        port.CacheRepository
	logger       *zap.Logger
	cfg          Config
	refreshQueue chan string
}

func NewTradeService(store port.TradeStore, cache port.CacheRepository, logger *zap.Logger, cfg Config, queueSize int) *TradeService {
	if cfg.SellPayoutPercent <= 0 {
		cfg.SellPayoutPercent = 100
	}
	return &TradeService{
		store:        store,
		cache:        cache,
		logger:       logger,
		cfg:          cfg,
		refreshQueue: make(chan string, queueSize),
	}
}

// Buy exchanges the character's currency for quantity units of the listed
// item. Returns the listing view after the trade.
func (s *TradeService) Buy(ctx context.Context, actor domain.Actor, characterID, listingID string, quantity int) (*domain.ListingView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var view *domain.ListingView
	err := s.store.Trade(ctx, func(tx port.TradeTx) error {
		character, listing, item, err := s.loadTradeParties(ctx, tx, actor, characterID, listingID)
		if err != nil {
			return err
		}

		if listing.Stock < quantity {
			return ErrInsufficientStock
		}

		unitPrice := listing.EffectiveUnitPriceGold(*item)
		totalCopper := money.GoldToCopper(unitPrice * quantity)
		currentCopper := money.ToCopper(character.Purse)
		if currentCopper < totalCopper {
			return ErrInsufficientFunds
		}

		if err := tx.SavePurse(ctx, character.ID, money.FromCopper(currentCopper-totalCopper)); err != nil {
			return fmt.Errorf("save purse: %w", err)
		}
		if err := tx.AdjustStock(ctx, listing.ID, -quantity); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		if err := tx.AddInventory(ctx, character.ID, listing.ItemID, quantity); err != nil {
			return fmt.Errorf("add inventory: %w", err)
		}

		receipt := domain.TradeReceipt{
			ID:            uuid.NewString(),
			Kind:          domain.TradeKindBuy,
			ActorID:       actor.ID,
			CharacterID:   character.ID,
			ShopID:        listing.ShopID,
			ItemID:        listing.ItemID,
			Quantity:      quantity,
			UnitPriceGold: unitPrice,
			TotalGold:     unitPrice * quantity,
			CreatedAt:     time.Now(),
		}
		if err := tx.SaveReceipt(ctx, receipt); err != nil {
			return fmt.Errorf("save receipt: %w", err)
		}

		listing.Stock -= quantity
		view = domain.NewListingView(*listing, *item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("buy committed",
		zap.String("character_id", characterID),
		zap.String("listing_id", listingID),
		zap.Int("quantity", quantity),
		zap.Int("stock", view.Stock),
	)
	s.enqueueRefresh(listingID)
	return view, nil
}

// Sell exchanges quantity units of the character's inventory for currency
// at the configured payout rate. Returns the listing view after the trade.
func (s *TradeService) Sell(ctx context.Context, actor domain.Actor, characterID, listingID string, quantity int) (*domain.ListingView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var view *domain.ListingView
	err := s.store.Trade(ctx, func(tx port.TradeTx) error {
		character, listing, item, err := s.loadTradeParties(ctx, tx, actor, characterID, listingID)
		if err != nil {
			return err
		}

		held, err := tx.InventoryQuantity(ctx, character.ID, listing.ItemID)
		if err != nil {
			return fmt.Errorf("inventory quantity: %w", err)
		}
		if held < quantity {
			return ErrInsufficientQuantity
		}

		unitPrice := listing.EffectiveUnitPriceGold(*item)
		payoutPerUnit := unitPrice * s.cfg.SellPayoutPercent / 100
		totalCopper := money.GoldToCopper(payoutPerUnit * quantity)
		currentCopper := money.ToCopper(character.Purse)

		if err := tx.SavePurse(ctx, character.ID, money.FromCopper(currentCopper+totalCopper)); err != nil {
			return fmt.Errorf("save purse: %w", err)
		}
		if err := tx.RemoveInventory(ctx, character.ID, listing.ItemID, quantity); err != nil {
			return fmt.Errorf("remove inventory: %w", err)
		}
		if err := tx.AdjustStock(ctx, listing.ID, quantity); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}

		receipt := domain.TradeReceipt{
			ID:            uuid.NewString(),
			Kind:          domain.TradeKindSell,
			ActorID:       actor.ID,
			CharacterID:   character.ID,
			ShopID:        listing.ShopID,
			ItemID:        listing.ItemID,
			Quantity:      quantity,
			UnitPriceGold: payoutPerUnit,
			TotalGold:     -payoutPerUnit * quantity,
			CreatedAt:     time.Now(),
		}
		if err := tx.SaveReceipt(ctx, receipt); err != nil {
			return fmt.Errorf("save receipt: %w", err)
		}

		listing.Stock += quantity
		view = domain.NewListingView(*listing, *item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sell committed",
		zap.String("character_id", characterID),
		zap.String("listing_id", listingID),
		zap.Int("quantity", quantity),
		zap.Int("stock", view.Stock),
	)
	s.enqueueRefresh(listingID)
	return view, nil
}

// GetListing returns the listing view, read through the cache.
func (s *TradeService) GetListing(ctx context.Context, listingID string) (*domain.ListingView, error) {
	if cached, err := s.cache.GetListingView(ctx, listingID); err != nil {
		s.logger.Warn("listing cache read failed", zap.String("listing_id", listingID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	listing, item, err := s.store.ListingItem(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return nil, ErrNotFound
	}

	view := domain.NewListingView(*listing, *item)
	if err := s.cache.SetListingView(ctx, view); err != nil {
		s.logger.Warn("listing cache write failed", zap.String("listing_id", listingID), zap.Error(err))
	}
	return view, nil
}

// SetPurse replaces a character's purse wholesale. This is the gamemaster
// adjustment path; players cannot call it even for their own characters.
func (s *TradeService) SetPurse(ctx context.Context, actor domain.Actor, characterID string, purse domain.Purse) error {
	if actor.Role != domain.RoleGameMaster {
		return ErrForbidden
	}
	if !purse.IsValid() {
		return ErrInvalidPurse
	}

	err := s.store.Trade(ctx, func(tx port.TradeTx) error {
		character, err := tx.CharacterForUpdate(ctx, characterID)
		if err != nil {
			return fmt.Errorf("load character: %w", err)
		}
		if character == nil {
			return ErrNotFound
		}
		if err := tx.SavePurse(ctx, character.ID, purse); err != nil {
			return fmt.Errorf("save purse: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("purse adjusted",
		zap.String("character_id", characterID),
		zap.String("actor_id", actor.ID),
		zap.Int("total_copper", money.ToCopper(purse)),
	)
	return nil
}

// RefreshQueue exposes listing IDs whose cached views are stale after a
// committed trade. A worker pool drains it.
func (s *TradeService) RefreshQueue() <-chan string {
	return s.refreshQueue
}

// Close closes the refresh queue. Call only after all trades have returned.
func (s *TradeService) Close() {
	close(s.refreshQueue)
}

// loadTradeParties reads and locks the character and listing, authorizes
// the actor, and verifies the campaign match. Shared by Buy and Sell; the
// check order fixes which error wins when several preconditions fail.
func (s *TradeService) loadTradeParties(ctx context.Context, tx port.TradeTx, actor domain.Actor, characterID, listingID string) (*domain.Character, *domain.ShopListing, *domain.Item, error) {
	character, err := tx.CharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load character: %w", err)
	}
	if character == nil {
		return nil, nil, nil, ErrNotFound
	}

	if err := s.authorize(actor, character); err != nil {
		return nil, nil, nil, err
	}

	listing, err := tx.ListingForUpdate(ctx, listingID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return nil, nil, nil, ErrNotFound
	}

	campaignID, err := tx.ShopCampaign(ctx, listing.ShopID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load shop campaign: %w", err)
	}
	if campaignID == "" || campaignID != character.CampaignID {
		return nil, nil, nil, ErrCampaignMismatch
	}

	item, err := tx.Item(ctx, listing.ItemID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load item: %w", err)
	}
	if item == nil {
		return nil, nil, nil, ErrNotFound
	}

	return character, listing, item, nil
}

func (s *TradeService) authorize(actor domain.Actor, character *domain.Character) error {
	if s.cfg.GameMasterOverride && actor.Role == domain.RoleGameMaster {
		return nil
	}
	if character.PlayerID == "" || character.PlayerID != actor.ID {
		return ErrForbidden
	}
	return nil
}

func (s *TradeService) enqueueRefresh(listingID string) {
	select {
	case s.refreshQueue <- listingID:
	default:
		// Queue full; the cached view expires on its TTL instead.
		s.logger.Warn("refresh queue full, dropping invalidation", zap.String("listing_id", listingID))
	}
}
