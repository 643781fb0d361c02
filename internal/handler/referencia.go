package handler

import (
	"net/http"

	"siso/internal/dto"
	"siso/internal/middleware"
	"siso/internal/service"

	"github.com/gin-gonic/gin"
)

// ReferenciaHandler serves one lookup table; the router mounts one per tipo.
type ReferenciaHandler struct {
	svc  service.ReferenciaService
	tipo string
}

func NewReferenciaHandler(svc service.ReferenciaService, tipo string) *ReferenciaHandler {
	return &ReferenciaHandler{svc: svc, tipo: tipo}
}

// Listar godoc
// @Summary Lista receitas, despesas, fornecedores ou dentistas
// @Tags referencia
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ReferenciaResponse
// @Router /api/receita [get]
// @Router /api/despesa [get]
// @Router /api/fornecedor [get]
// @Router /api/dentista [get]
func (h *ReferenciaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), h.tipo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterPorID godoc
// @Summary Busca uma referência
// @Tags referencia
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID"
// @Success 200 {object} dto.ReferenciaResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/receita/{id} [get]
// @Router /api/despesa/{id} [get]
// @Router /api/fornecedor/{id} [get]
// @Router /api/dentista/{id} [get]
func (h *ReferenciaHandler) ObterPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), h.tipo, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Criar godoc
// @Summary Cadastra uma referência (admin)
// @Tags referencia
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CriarReferenciaRequest true "Nome ou descrição"
// @Success 201 {object} dto.ReferenciaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /api/receita [post]
// @Router /api/despesa [post]
// @Router /api/fornecedor [post]
// @Router /api/dentista [post]
func (h *ReferenciaHandler) Criar(c *gin.Context) {
	var req dto.CriarReferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetCaller(c), h.tipo, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", location(c, resp.ID))
	c.JSON(http.StatusCreated, resp)
}
