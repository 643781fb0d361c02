package handler

import (
	"net/http"

	"siso/internal/apierror"
	"siso/internal/dto"
	"siso/internal/middleware"
	"siso/internal/service"

	"github.com/gin-gonic/gin"
)

type UsuarioHandler struct{ svc service.UsuarioService }

func NewUsuarioHandler(svc service.UsuarioService) *UsuarioHandler {
	return &UsuarioHandler{svc: svc}
}

// BuscarPorID godoc
// @Summary Busca um usuário
// @Tags usuario
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do usuário"
// @Success 200 {object} dto.UsuarioResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/usuario/{id} [get]
func (h *UsuarioHandler) BuscarPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.BuscarPorID(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Criar godoc
// @Summary Cadastra um usuário (admin)
// @Tags usuario
// @Accept json
// @Security BearerAuth
// @Param body body dto.CriarUsuarioRequest true "Usuário"
// @Success 201
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /api/usuario [post]
func (h *UsuarioHandler) Criar(c *gin.Context) {
	var req dto.CriarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", location(c, resp.ID))
	c.Status(http.StatusCreated)
}

// Atualizar godoc
// @Summary Atualiza um usuário
// @Tags usuario
// @Accept json
// @Security BearerAuth
// @Param id path int true "ID do usuário"
// @Param body body dto.AtualizarUsuarioRequest true "Alterações"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/usuario/{id} [put]
func (h *UsuarioHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Atualizar(c.Request.Context(), middleware.GetCaller(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Excluir godoc
// @Summary Exclui um usuário (admin)
// @Tags usuario
// @Security BearerAuth
// @Param id path int true "ID do usuário"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/usuario/{id} [delete]
func (h *UsuarioHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), middleware.GetCaller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BuscarIDPorUsername godoc
// @Summary ID do usuário pelo username
// @Tags usuario
// @Produce json
// @Security BearerAuth
// @Param username query string true "Username"
// @Success 200 {integer} int
// @Failure 404 {object} apierror.APIError
// @Router /api/usuario/username [get]
func (h *UsuarioHandler) BuscarIDPorUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, apierror.New("username é obrigatório"))
		return
	}
	id, err := h.svc.BuscarIDPorUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}
