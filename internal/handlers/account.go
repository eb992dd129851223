package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
)

// AccountHandler serves account package changes
type AccountHandler struct {
	accounts repository.AccountRepository
	now      func() time.Time
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts repository.AccountRepository) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		now:      time.Now,
	}
}

// PackageChangeRequest is the body of POST /account/package
type PackageChangeRequest struct {
	AccountID string             `json:"account_id,omitempty"`
	Package   models.PackageTier `json:"package"`
}

// PackageChangeResponse reports the account state after the change
type PackageChangeResponse struct {
	Account      *models.Account `json:"account"`
	Slots        int             `json:"slots"`
	MonthlyPrice float64         `json:"monthly_price"`
	Multiplier   float64         `json:"multiplier"`
}

// HandlePackageChange handles POST /account/package
func (h *AccountHandler) HandlePackageChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PackageChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccountID == "" {
		req.AccountID = DefaultAccountID
	}

	account, err := h.accounts.GetAccount(ctx, req.AccountID)
	if errors.Is(err, models.ErrAccountNotFound) {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		logger.LogError(ctx, "Failed to get account", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := account.ChangePackage(req.Package, h.now().UTC()); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.SaveAccount(ctx, account); err != nil {
		logger.LogError(ctx, "Failed to save account", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info(ctx, "Package changed",
		"account_id", account.ID,
		"package", string(account.PackageTier))

	respondJSON(w, http.StatusOK, PackageChangeResponse{
		Account:      account,
		Slots:        account.PackageTier.Slots(),
		MonthlyPrice: account.PackageTier.MonthlyPrice(),
		Multiplier:   account.PackageTier.RankMultiplier(),
	})
}
