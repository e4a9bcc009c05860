package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/handler"
	"github.com/xpump/platform/internal/ledger"
)

// AuditService replays a user's xp entries.
type AuditService interface {
	Verify(ctx context.Context, userID uuid.UUID) (*ledger.VerifyResult, error)
}

// LedgerAdminHandler handles /admin/users/{id}/ledger.
type LedgerAdminHandler struct {
	svc AuditService
}

func NewLedgerAdminHandler(svc AuditService) *LedgerAdminHandler {
	return &LedgerAdminHandler{svc: svc}
}

// Verify handles GET /admin/users/{id}/ledger/verify.
func (h *LedgerAdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid id"))
		return
	}
	res, err := h.svc.Verify(r.Context(), userID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if !res.AllPassed {
		status = http.StatusConflict
	}
	handler.RespondJSON(w, status, res)
}
