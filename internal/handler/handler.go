package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/auth"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	service "github.com/Hemantgithubpro/rewear-1/internal/services"
	"github.com/Hemantgithubpro/rewear-1/internal/validation"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type Handler struct {
	auth    service.AuthService
	catalog service.CatalogService
	ledger  service.LedgerService
	swaps   service.SwapService
}

func NewHandler(authService service.AuthService, catalog service.CatalogService, ledger service.LedgerService, swaps service.SwapService) *Handler {
	return &Handler{auth: authService, catalog: catalog, ledger: ledger, swaps: swaps}
}

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []pkgerrors.FieldError `json:"fields,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrValidation),
		errors.Is(err, pkgerrors.ErrInvalidSwapRequest),
		errors.Is(err, pkgerrors.ErrInsufficientPoints),
		errors.Is(err, pkgerrors.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, pkgerrors.ErrUnauthorized),
		errors.Is(err, pkgerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrConflict),
		errors.Is(err, pkgerrors.ErrEmailExists),
		errors.Is(err, pkgerrors.ErrInvalidTransition),
		errors.Is(err, pkgerrors.ErrConcurrencyConflict),
		errors.Is(err, pkgerrors.ErrItemUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var ve *pkgerrors.ValidationError
	if errors.As(err, &ve) {
		resp.Error = "validation failed"
		resp.Fields = ve.Fields
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Error = "internal server error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerrors.NewValidationError(pkgerrors.FieldError{Field: "body", Message: "Invalid JSON body"})
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, pkgerrors.NewValidationError(pkgerrors.FieldError{Field: "id", Message: "Invalid id"})
	}
	return id, nil
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, r, pkgerrors.ErrUnauthorized)
	}
	return p, ok
}

// RegisterPublicRoutes wires the routes open to anonymous callers. identify
// wraps the item detail route so owners and admins can see unapproved items.
func (h *Handler) RegisterPublicRoutes(r *mux.Router, identify func(http.Handler) http.Handler) {
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	r.Handle("/items/{id}", identify(http.HandlerFunc(h.GetItem))).Methods(http.MethodGet)
}

// RegisterProtectedRoutes wires the routes that need a logged in user. protect
// wraps every handler, normally with the auth middleware.
func (h *Handler) RegisterProtectedRoutes(r *mux.Router, protect func(http.Handler) http.Handler) {
	handle := func(path string, fn http.HandlerFunc, method string) {
		r.Handle(path, protect(fn)).Methods(method)
	}
	handle("/auth/logout", h.Logout, http.MethodPost)
	handle("/profile", h.GetProfile, http.MethodGet)
	handle("/profile", h.UpdateProfile, http.MethodPut)
	handle("/items", h.CreateItem, http.MethodPost)
	handle("/items/{id}/relist", h.RelistItem, http.MethodPost)
	handle("/me/items", h.MyItems, http.MethodGet)
	handle("/balance", h.GetBalance, http.MethodGet)
	handle("/ledger", h.LedgerHistory, http.MethodGet)
	handle("/swaps", h.CreateSwap, http.MethodPost)
	handle("/swaps", h.ListSwaps, http.MethodGet)
	handle("/swaps/{id}", h.GetSwap, http.MethodGet)
	handle("/swaps/{id}/accept", h.AcceptSwap, http.MethodPost)
	handle("/swaps/{id}/reject", h.RejectSwap, http.MethodPost)
	handle("/swaps/{id}/cancel", h.CancelSwap, http.MethodPost)
}

func (h *Handler) RegisterAdminRoutes(r *mux.Router, protect func(http.Handler) http.Handler) {
	r.Handle("/admin/items/pending", protect(http.HandlerFunc(h.PendingItems))).Methods(http.MethodGet)
	r.Handle("/admin/items/{id}/approve", protect(http.HandlerFunc(h.ApproveItem))).Methods(http.MethodPost)
	r.Handle("/admin/items/{id}", protect(http.HandlerFunc(h.RejectItem))).Methods(http.MethodDelete)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req validation.RegisterInput
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginInput
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), p.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	user, err := h.auth.GetProfile(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req validation.ProfileUpdateInput
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.auth.UpdateProfile(r.Context(), p.UserID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListItems browses approved items. Supported query parameters are category,
// size, condition and available.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter models.ItemFilter
	if v := q.Get("category"); v != "" {
		c := models.Category(v)
		filter.Category = &c
	}
	if v := q.Get("size"); v != "" {
		s := models.Size(v)
		filter.Size = &s
	}
	if v := q.Get("condition"); v != "" {
		c := models.Condition(v)
		filter.Condition = &c
	}
	if v := q.Get("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, pkgerrors.NewValidationError(pkgerrors.FieldError{Field: "available", Message: "Expected true or false"}))
			return
		}
		filter.Available = &available
	}

	items, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var viewer *models.Principal
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		viewer = &p
	}
	item, err := h.catalog.Get(r.Context(), viewer, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req validation.ItemInput
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.catalog.Create(r.Context(), p.UserID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) MyItems(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	items, err := h.catalog.ListByOwner(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) RelistItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.catalog.Relist(r.Context(), p, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) PendingItems(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	items, err := h.catalog.ListPending(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.catalog.Approve(r.Context(), p, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) RejectItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalog.Reject(r.Context(), p, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	balance, err := h.ledger.GetBalance(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"balance": balance})
}

func (h *Handler) LedgerHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	entries, err := h.ledger.History(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req validation.SwapRequestInput
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	swap, err := h.swaps.Create(r.Context(), p.UserID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, swap)
}

func (h *Handler) ListSwaps(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var status *models.SwapStatus
	if v := q.Get("status"); v != "" {
		s := models.SwapStatus(v)
		status = &s
	}
	swaps, err := h.swaps.ListForUser(r.Context(), p.UserID, models.SwapDirection(q.Get("direction")), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, swaps)
}

func (h *Handler) GetSwap(w http.ResponseWriter, r *http.Request) {
	h.swapAction(w, r, h.swaps.Get)
}

func (h *Handler) AcceptSwap(w http.ResponseWriter, r *http.Request) {
	h.swapAction(w, r, h.swaps.Accept)
}

func (h *Handler) RejectSwap(w http.ResponseWriter, r *http.Request) {
	h.swapAction(w, r, h.swaps.Reject)
}

func (h *Handler) CancelSwap(w http.ResponseWriter, r *http.Request) {
	h.swapAction(w, r, h.swaps.Cancel)
}

type swapActionFunc func(ctx context.Context, actorID, swapID uuid.UUID) (*models.SwapRequest, error)

func (h *Handler) swapAction(w http.ResponseWriter, r *http.Request, action swapActionFunc) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	swap, err := action(r.Context(), p.UserID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, swap)
}
