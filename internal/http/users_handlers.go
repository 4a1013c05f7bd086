package httpapi

import (
	"errors"
	"net/http"

	"church-registry/internal/credentials"
	"church-registry/internal/domain"
	"church-registry/internal/repository"

	"go.uber.org/zap"
)

// UsersHandler registers operators of the onboarding panel itself (the
// registry database's usuarios table). This is panel-side access control,
// unrelated to the per-client usuarios tables.
type UsersHandler struct {
	repo   repository.AdminUsersRepository
	logger *zap.Logger
}

func NewUsersHandler(repo repository.AdminUsersRepository, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{repo: repo, logger: logger}
}

type registerUserRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
	Role     string `json:"role"`
}

// Register handles POST /api/usuarios.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Corpo da requisição inválido.")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		writeMessage(w, http.StatusBadRequest, "Todos os campos são obrigatórios!")
		return
	}
	if req.Role != domain.AdminRoleAdmin && req.Role != domain.AdminRoleManager {
		writeMessage(w, http.StatusBadRequest, `O campo "role" deve ser "admin" ou "gerente"`)
		return
	}

	existing, err := h.repo.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("admin user lookup failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Erro ao cadastrar usuário!")
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusBadRequest, "Usuário já cadastrado!")
		return
	}

	passwordHash, err := credentials.HashKey(req.Password)
	if err != nil {
		h.logger.Error("password hash failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Erro ao cadastrar usuário!")
		return
	}

	_, err = h.repo.Insert(r.Context(), &domain.AdminUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAdminUserExists) {
			writeMessage(w, http.StatusBadRequest, "Usuário já cadastrado!")
			return
		}
		h.logger.Error("admin user insert failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Erro ao cadastrar usuário!")
		return
	}

	writeMessage(w, http.StatusCreated, "Usuário cadastrado com sucesso!")
}
