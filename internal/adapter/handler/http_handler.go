package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campaign-shop/internal/core/domain"
	"campaign-shop/internal/core/service"
	"campaign-shop/internal/port"
)

// TradeHandler exposes the trade service over HTTP. Identity is taken from
// the X-Actor-ID / X-Actor-Role headers set by the upstream auth layer.
type TradeHandler struct {
	tradeService *service.TradeService
	cache        port.CacheRepository
	logger       *zap.Logger
}

func NewTradeHandler(tradeService *service.TradeService, cache port.CacheRepository, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
		cache:        cache,
		logger:       logger,
	}
}

// RegisterRoutes binds all endpoints on the given engine.
func (h *TradeHandler) RegisterRoutes(e *gin.Engine) {
	e.POST("/api/trades/buy", h.handleBuy)
	e.POST("/api/trades/sell", h.handleSell)
	e.GET("/api/listings/:id", h.handleGetListing)
	e.PUT("/api/characters/:id/purse", h.handleSetPurse)
	e.GET("/health", h.handleHealth)
}

type tradeRequest struct {
	RequestID   string `json:"request_id"`
	CharacterID string `json:"character_id"`
	ListingID   string `json:"listing_id"`
	Quantity    int    `json:"quantity"`
}

type tradeFunc func(ctx context.Context, actor domain.Actor, characterID, listingID string, quantity int) (*domain.ListingView, error)

func (h *TradeHandler) handleBuy(ctx *gin.Context) {
	h.handleTrade(ctx, h.tradeService.Buy)
}

func (h *TradeHandler) handleSell(ctx *gin.Context) {
	h.handleTrade(ctx, h.tradeService.Sell)
}

func (h *TradeHandler) handleTrade(ctx *gin.Context, trade tradeFunc) {
	actor, ok := actorFrom(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	var req tradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind trade request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.RequestID == "" || req.CharacterID == "" || req.ListingID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	ok, err := h.cache.SetIdempotency(ctx.Request.Context(), "trade:"+req.RequestID)
	if err != nil {
		h.logger.Error("idempotency check failed", zap.String("request_id", req.RequestID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !ok {
		ctx.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
		return
	}

	view, err := trade(ctx.Request.Context(), actor, req.CharacterID, req.ListingID, req.Quantity)
	if err != nil {
		h.writeTradeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

func (h *TradeHandler) handleGetListing(ctx *gin.Context) {
	view, err := h.tradeService.GetListing(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.writeTradeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (h *TradeHandler) handleSetPurse(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	var purse domain.Purse
	if err := ctx.ShouldBindJSON(&purse); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if err := h.tradeService.SetPurse(ctx.Request.Context(), actor, ctx.Param("id"), purse); err != nil {
		h.writeTradeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, purse)
}

func (h *TradeHandler) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeTradeError maps service errors onto HTTP statuses. Business-rule
// rejections (stock, funds, inventory) are conflicts: the request was
// well-formed but the world disagreed.
func (h *TradeHandler) writeTradeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPurse),
		errors.Is(err, service.ErrCampaignMismatch):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInsufficientQuantity):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("trade failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func actorFrom(ctx *gin.Context) (domain.Actor, bool) {
	id := ctx.GetHeader("X-Actor-ID")
	if id == "" {
		return domain.Actor{}, false
	}
	role := domain.Role(ctx.GetHeader("X-Actor-Role"))
	if role != domain.RoleGameMaster {
		role = domain.RolePlayer
	}
	return domain.Actor{ID: id, Role: role}, true
}
