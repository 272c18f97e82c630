package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/grindworks/grindstone/internal/game"
	"github.com/grindworks/grindstone/internal/logger"
	"github.com/grindworks/grindstone/internal/progression"
)

// session resolves the caller's game session, writing the error response on
// failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *game.Session {
	account := accountFrom(r)
	session, err := s.registry.Get(account.ID)
	if err != nil {
		logger.Error("Failed to load game session", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	return session
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, session.CurrentView())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	item, autoSold := session.GenerateItem(time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"item":      item,
		"auto_sold": autoSold,
	})
}

func (s *Server) handleEnemies(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, session.EnemiesHere(time.Now()))
}

type fightRequest struct {
	EnemyID int64 `json:"enemy_id"`
}

func (s *Server) handleFight(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req fightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := session.FightEnemy(req.EnemyID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNoWeaponEquipped):
			writeError(w, http.StatusConflict, "no weapon equipped")
		case errors.Is(err, game.ErrTargetNotFound):
			writeError(w, http.StatusNotFound, "enemy not found")
		default:
			logger.Error("Fight failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"victory":            result.Outcome.Victory,
		"player_turns":       result.Outcome.PlayerTurns,
		"player_health_left": result.Outcome.PlayerHealthLeft,
		"exp_gained":         result.Outcome.ExpGained,
		"cash_gained":        result.Outcome.CashGained,
		"levels_gained":      result.LevelsGained,
		"drop":               result.Drop,
		"drop_auto_sold":     result.DropAutoSold,
	})
}

type upgradeRequest struct {
	Track string `json:"track"`
	Count int    `json:"count"`
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req upgradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var track progression.Track
	switch req.Track {
	case "luck":
		track = progression.TrackLuck
	case "mold":
		track = progression.TrackMold
	default:
		writeError(w, http.StatusBadRequest, "track must be luck or mold")
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	cost, err := session.PurchaseUpgrade(track, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, "not enough currency")
		case errors.Is(err, progression.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "count must be positive")
		default:
			logger.Error("Upgrade failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	logger.Audit("Upgrade purchased", "account_id", session.PlayerID,
		"track", req.Track, "count", req.Count, "cost", cost)
	writeJSON(w, http.StatusOK, map[string]any{
		"track": req.Track,
		"count": req.Count,
		"cost":  cost,
	})
}

type itemIDRequest struct {
	ItemID int `json:"item_id"`
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req itemIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.SellItem(req.ItemID, time.Now()); err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

func (s *Server) handleCancelSale(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req itemIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := session.CancelSale(req.ItemID)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not queued")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req itemIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.Equip(req.ItemID); err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "equipped"})
}

type travelRequest struct {
	Area string `json:"area"`
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req travelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.TravelTo(req.Area); err != nil {
		switch {
		case errors.Is(err, game.ErrUnknownArea):
			writeError(w, http.StatusNotFound, "unknown area")
		case errors.Is(err, game.ErrAreaLocked):
			writeError(w, http.StatusForbidden, "level requirement not met")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "traveled", "area": req.Area})
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.areas)
}

type settingsRequest struct {
	AutoSellThreshold float64 `json:"auto_sell_threshold"`
	InventorySort     string  `json:"inventory_sort"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session.SetPreferences(req.AutoSellThreshold, req.InventorySort)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
