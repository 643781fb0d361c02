package handler

import (
	"net/http"

	"siso/internal/dto"
	"siso/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemMovimentoHandler struct {
	svc    service.ItemMovimentoService
	caixas service.CaixaService
}

func NewItemMovimentoHandler(svc service.ItemMovimentoService, caixas service.CaixaService) *ItemMovimentoHandler {
	return &ItemMovimentoHandler{svc: svc, caixas: caixas}
}

// Listar godoc
// @Summary Lista todos os movimentos
// @Tags itemMovimento
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ItemMovimentoResponse
// @Router /api/itemMovimento [get]
func (h *ItemMovimentoHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterPorID godoc
// @Summary Busca um movimento
// @Tags itemMovimento
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do movimento"
// @Success 200 {object} dto.ItemMovimentoResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/itemMovimento/{id} [get]
func (h *ItemMovimentoHandler) ObterPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Criar godoc
// @Summary Registra um movimento
// @Tags itemMovimento
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ItemMovimentoRequest true "Movimento"
// @Success 201 {object} dto.ItemMovimentoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/itemMovimento [post]
func (h *ItemMovimentoHandler) Criar(c *gin.Context) {
	var req dto.ItemMovimentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.CaixaID != 0 {
		if _, err := h.caixas.ObterPorID(c.Request.Context(), req.CaixaID); err != nil {
			respondError(c, err)
			return
		}
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", location(c, resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// Atualizar godoc
// @Summary Atualiza um movimento
// @Tags itemMovimento
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do movimento"
// @Param body body dto.ItemMovimentoRequest true "Movimento"
// @Success 200 {object} dto.ItemMovimentoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/itemMovimento/{id} [put]
func (h *ItemMovimentoHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemMovimentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excluir godoc
// @Summary Exclui um movimento
// @Tags itemMovimento
// @Security BearerAuth
// @Param id path int true "ID do movimento"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/itemMovimento/{id} [delete]
func (h *ItemMovimentoHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarPorCaixa godoc
// @Summary Movimentos de um caixa
// @Tags itemMovimento
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do caixa"
// @Success 200 {array} dto.ItemMovimentoResponse
// @Router /api/itemMovimento/caixa/{id} [get]
func (h *ItemMovimentoHandler) ListarPorCaixa(c *gin.Context) {
	caixaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCaixa(c.Request.Context(), caixaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorPeriodo godoc
// @Summary Movimentos de vários caixas no período
// @Tags itemMovimento
// @Produce json
// @Security BearerAuth
// @Param caixas query string true "IDs separados por vírgula"
// @Param inicio query string true "Início (RFC3339)"
// @Param fim query string true "Fim (RFC3339)"
// @Success 200 {array} dto.ItemMovimentoResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/itemMovimento/periodo [get]
func (h *ItemMovimentoHandler) ListarPorPeriodo(c *gin.Context) {
	ids, ok := queryIDs(c, "caixas")
	if !ok {
		return
	}
	inicio, fim, ok := queryPeriodo(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCaixasNoPeriodo(c.Request.Context(), ids, inicio, fim)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
