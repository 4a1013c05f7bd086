package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"church-registry/internal/domain"
	"church-registry/internal/service"

	"go.uber.org/zap"
)

// ClientsHandler serves the client onboarding API. Route shapes and JSON
// field names match the existing admin frontend.
type ClientsHandler struct {
	provisioner *service.Provisioner
	lifecycle   *service.Lifecycle
	logger      *zap.Logger
}

func NewClientsHandler(provisioner *service.Provisioner, lifecycle *service.Lifecycle, logger *zap.Logger) *ClientsHandler {
	return &ClientsHandler{provisioner: provisioner, lifecycle: lifecycle, logger: logger}
}

// statusFor maps the service error taxonomy onto HTTP status classes.
func statusFor(err error) int {
	var ve *service.ValidationError
	var ce *service.ConflictError
	var nf *service.NotFoundError
	switch {
	case errors.As(err, &ve), errors.As(err, &ce):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *ClientsHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		// Internal causes are logged where they happen; the caller only
		// gets the short user-facing message.
		h.logger.Error("request failed", zap.Error(err))
	}
	writeMessage(w, status, err.Error())
}

type registerClientRequest struct {
	ResponsibleName string `json:"nome_responsavel"`
	ChurchName      string `json:"nome_igreja"`
	Email           string `json:"email"`
	TaxID           string `json:"cnpj_cpf"`
	Address         string `json:"endereco"`
}

// Register handles POST /api/clientes.
func (h *ClientsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerClientRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Corpo da requisição inválido.")
		return
	}

	result, err := h.provisioner.Provision(r.Context(), service.RegisterRequest{
		ResponsibleName: req.ResponsibleName,
		ChurchName:      req.ChurchName,
		Email:           req.Email,
		TaxID:           req.TaxID,
		Address:         req.Address,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":     result.Message,
		"chaveAcesso": result.AccessKey,
	})
}

// clientListingJSON is one row of GET /api/listagem. chave_acesso and
// codigo_verificacao come from the per-row tenant lookup and are null when
// that lookup failed.
type clientListingJSON struct {
	ID               int64   `json:"id"`
	ResponsibleName  string  `json:"nome_responsavel"`
	ChurchName       string  `json:"nome_igreja"`
	Email            string  `json:"email"`
	TaxID            string  `json:"cnpj_cpf"`
	Address          string  `json:"endereco"`
	DatabaseName     string  `json:"nome_banco"`
	AccessKeyHash    *string `json:"chave_acesso"`
	VerificationCode *string `json:"codigo_verificacao"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"criado_em"`
}

func listingToJSON(items []*domain.ClientListing) []clientListingJSON {
	out := make([]clientListingJSON, 0, len(items))
	for _, item := range items {
		row := clientListingJSON{
			ID:              item.ID,
			ResponsibleName: item.ResponsibleName,
			ChurchName:      item.ChurchName,
			Email:           item.Email,
			TaxID:           item.TaxID,
			Address:         item.Address,
			DatabaseName:    item.DatabaseName,
			Status:          item.Status,
			CreatedAt:       item.CreatedAt.Format(time.RFC3339),
		}
		if item.LiveAccessKeyHash.Valid {
			v := item.LiveAccessKeyHash.String
			row.AccessKeyHash = &v
		}
		if item.LiveVerificationCode.Valid {
			v := item.LiveVerificationCode.String
			row.VerificationCode = &v
		}
		out = append(out, row)
	}
	return out
}

// List handles GET /api/listagem.
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.lifecycle.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingToJSON(items))
}

type updateClientRequest struct {
	ResponsibleName *string `json:"nome_responsavel"`
	ChurchName      *string `json:"nome_igreja"`
	Email           *string `json:"email"`
	TaxID           *string `json:"cnpj_cpf"`
	Address         *string `json:"endereco"`
	AccessKey       *string `json:"chave_acesso"`
}

// Update handles PUT /api/editClient/{id}. Absent fields keep their stored
// value; an absent chave_acesso rotates the key.
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "ID do cliente não fornecido.")
		return
	}

	var req updateClientRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Corpo da requisição inválido.")
		return
	}

	result, err := h.lifecycle.Update(r.Context(), id, service.UpdateRequest{
		ResponsibleName: req.ResponsibleName,
		ChurchName:      req.ChurchName,
		Email:           req.Email,
		TaxID:           req.TaxID,
		Address:         req.Address,
		AccessKey:       req.AccessKey,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":     result.Message,
		"chaveAcesso": result.AccessKey,
	})
}

// Delete handles DELETE /api/deleteCliente/{id}.
func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "ID do cliente não fornecido.")
		return
	}

	if err := h.lifecycle.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cliente e seu banco de dados deletados com sucesso.")
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/clientes/{id}/status with {"status":
// "ativo"|"inativo"}.
func (h *ClientsHandler) SetStatus(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "ID do cliente não fornecido.")
		return
	}

	var req setStatusRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Corpo da requisição inválido.")
		return
	}

	if err := h.lifecycle.SetStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Status atualizado com sucesso.")
}

type activateRequest struct {
	VerificationCode string `json:"codigo_verificacao"`
}

// Activate handles POST /api/clientes/{id}/verificar.
func (h *ClientsHandler) Activate(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "ID do cliente não fornecido.")
		return
	}

	var req activateRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Corpo da requisição inválido.")
		return
	}

	if err := h.lifecycle.Activate(r.Context(), id, strings.TrimSpace(req.VerificationCode)); err != nil {
		h.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cliente ativado com sucesso.")
}
