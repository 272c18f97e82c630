package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/grindworks/grindstone/internal/database"
	"github.com/grindworks/grindstone/internal/logger"
)

type shopItemResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointCost      int    `json:"point_cost"`
	CurrencyReward int    `json:"currency_reward"`
}

func (s *Server) handleListShop(w http.ResponseWriter, r *http.Request) {
	items, err := s.db.ListShopItems()
	if err != nil {
		logger.Error("Failed to list shop items", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]shopItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, shopItemResponse{
			ID:             item.ID,
			Name:           item.Name,
			Description:    item.Description,
			PointCost:      item.PointCost,
			CurrencyReward: item.CurrencyReward,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePurchase spends task points on a shop item and credits the currency
// reward to the buyer's game session.
func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop item id")
		return
	}

	item, balance, err := s.db.PurchaseShopItem(account.ID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrShopItemNotFound):
			writeError(w, http.StatusNotFound, "shop item not found")
		case errors.Is(err, database.ErrInsufficientPoints):
			writeError(w, http.StatusPaymentRequired, "not enough points")
		default:
			logger.Error("Purchase failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	session, err := s.registry.Get(account.ID)
	if err != nil {
		logger.Error("Failed to load game session for reward", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	session.GrantCurrency(float64(item.CurrencyReward))

	logger.Audit("Shop purchase", "account_id", account.ID, "item", item.Name,
		"points_spent", item.PointCost, "currency_granted", item.CurrencyReward)
	writeJSON(w, http.StatusOK, map[string]any{
		"item":             item.Name,
		"points_balance":   balance,
		"currency_granted": item.CurrencyReward,
	})
}
