package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/logging"
	"github.com/dmitrijs2005/securepass/internal/server/backup"
	"github.com/dmitrijs2005/securepass/internal/server/guard"
	"github.com/dmitrijs2005/securepass/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// Accounts registers users and signs them in.
type Accounts interface {
	Register(ctx context.Context, userName, password string) (string, error)
	Login(ctx context.Context, userName, password string) (string, error)
}

// Vault serves the caller's credential records.
type Vault interface {
	List(ctx context.Context) ([]services.CredentialView, error)
	Get(ctx context.Context, id string) (services.CredentialView, error)
	Add(ctx context.Context, in services.CredentialInput) (services.CredentialView, error)
	AddBatch(ctx context.Context, in []services.CredentialInput) (int, error)
	Update(ctx context.Context, id string, in services.CredentialInput) (services.CredentialView, error)
	Delete(ctx context.Context, id string) error
	Backup(ctx context.Context) (backup.Result, error)
}

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	accounts Accounts
	vault    Vault
	maxBody  int64
	log      logging.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. maxBody is only used to word 413 bodies for
// requests that overrun while being read.
func NewHandler(accounts Accounts, vault Vault, maxBody int64, log logging.Logger) *Handler {
	if maxBody <= 0 {
		maxBody = guard.DefaultMaxBodyBytes
	}
	return &Handler{
		accounts: accounts,
		vault:    vault,
		maxBody:  maxBody,
		log:      log.With("module", "handler"),
		now:      time.Now,
	}
}

type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type credentialRequest struct {
	Site     string `json:"site"`
	UserName string `json:"username"`
	Password string `json:"password"`
}

func (c credentialRequest) input() services.CredentialInput {
	return services.CredentialInput{Site: c.Site, UserName: c.UserName, Password: c.Password}
}

type savedCount struct {
	Saved int `json:"saved"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "UP", Time: h.now().UTC().Format(time.RFC3339)})
}

// Register creates an account and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.accounts.Register(r.Context(), req.UserName, req.Password)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Login exchanges a username and password for a bearer token. Every
// authentication failure gets the same body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.accounts.Login(r.Context(), req.UserName, req.Password)
	if errors.Is(err, common.ErrorUnauthorized) {
		h.log.Info(r.Context(), "login failed", "client", guard.ClientKey(r))
		writeError(w, http.StatusUnauthorized, errBadLogin)
		return
	}
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// ListCredentials returns all of the caller's records, decrypted.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	views, err := h.vault.List(r.Context())
	if err != nil {
		h.fail(w, r, "list credentials", err)
		return
	}
	if views == nil {
		views = []services.CredentialView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// GetCredential returns one record of the caller.
func (h *Handler) GetCredential(w http.ResponseWriter, r *http.Request) {
	view, err := h.vault.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get credential", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddCredential stores a new record for the caller.
func (h *Handler) AddCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.vault.Add(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, "add credential", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddCredentials stores several records at once; either all are saved or
// none.
func (h *Handler) AddCredentials(w http.ResponseWriter, r *http.Request) {
	var req []credentialRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := make([]services.CredentialInput, 0, len(req))
	for _, c := range req {
		in = append(in, c.input())
	}

	n, err := h.vault.AddBatch(r.Context(), in)
	if err != nil {
		h.fail(w, r, "add credentials", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Credentials saved", Data: savedCount{Saved: n}})
}

// UpdateCredential replaces a record of the caller.
func (h *Handler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.vault.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.fail(w, r, "update credential", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteCredential removes a record of the caller.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.vault.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete credential", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted"})
}

// Backup uploads the caller's records, still encrypted, and returns a
// download link.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	res, err := h.vault.Backup(r.Context())
	if err != nil {
		h.fail(w, r, "backup", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads a JSON body into v. It writes the error response itself and
// reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, guard.PayloadTooLarge(h.maxBody))
		return false
	}

	writeError(w, http.StatusBadRequest, errBadJSON)
	return false
}

// fail logs unexpected errors and writes the mapped response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), op+" failed", "error", err)
	}
	writeError(w, status, body)
}
