package handler

import (
	"bytes"
	"net/http"

	"siso/internal/apierror"
	"siso/internal/dto"
	"siso/internal/infra"
	"siso/internal/middleware"
	"siso/internal/service"

	"github.com/gin-gonic/gin"
)

type CaixaHandler struct {
	svc        service.CaixaService
	movimentos service.ItemMovimentoService
}

func NewCaixaHandler(svc service.CaixaService, movimentos service.ItemMovimentoService) *CaixaHandler {
	return &CaixaHandler{svc: svc, movimentos: movimentos}
}

// ObterAberto godoc
// @Summary Caixa aberto do usuário
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do usuário"
// @Success 200 {object} dto.CaixaResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/caixa/{id} [get]
func (h *CaixaHandler) ObterAberto(c *gin.Context) {
	usuarioID, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterAberto(c.Request.Context(), middleware.GetCaller(c), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("o usuário não possui um caixa aberto"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abrir godoc
// @Summary Abre um caixa para o usuário
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do usuário"
// @Success 201 {object} dto.CaixaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /api/caixa/{id} [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	usuarioID, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.GetCaller(c), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", location(c, resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha o caixa aberto do usuário
// @Tags caixa
// @Security BearerAuth
// @Param id path int true "ID do usuário"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /api/caixa/{id} [put]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	usuarioID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Fechar(c.Request.Context(), middleware.GetCaller(c), usuarioID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Listar godoc
// @Summary Lista todos os caixas
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.CaixaResponse
// @Router /api/caixa [get]
func (h *CaixaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorPeriodo godoc
// @Summary Caixas abertos no período
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param inicio query string true "Início (RFC3339)"
// @Param fim query string true "Fim (RFC3339)"
// @Success 200 {array} dto.CaixaResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/caixa/periodo [get]
func (h *CaixaHandler) ListarPorPeriodo(c *gin.Context) {
	inicio, fim, ok := queryPeriodo(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarAbertosNoPeriodo(c.Request.Context(), inicio, fim)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimentos godoc
// @Summary Movimentos de um caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do caixa"
// @Success 200 {array} dto.ItemMovimentoResponse
// @Router /api/caixa/{id}/movimentos [get]
func (h *CaixaHandler) ListarMovimentos(c *gin.Context) {
	caixaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.movimentos.ListarPorCaixa(c.Request.Context(), caixaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CriarMovimento godoc
// @Summary Registra um movimento no caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do caixa"
// @Param body body dto.ItemMovimentoRequest true "Movimento"
// @Success 201 {object} dto.ItemMovimentoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/caixa/{id}/movimentos [post]
func (h *CaixaHandler) CriarMovimento(c *gin.Context) {
	caixaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.ObterPorID(c.Request.Context(), caixaID); err != nil {
		respondError(c, err)
		return
	}
	var req dto.ItemMovimentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.CaixaID = caixaID

	resp, err := h.movimentos.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", location(c, resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// Relatorio godoc
// @Summary Relatório PDF de todos os caixas
// @Tags caixa
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} file
// @Router /api/caixa/caixas [get]
func (h *CaixaHandler) Relatorio(c *gin.Context) {
	caixas, err := h.svc.Relatorio(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	// rendered into memory so a failure can still become a JSON 500
	var buf bytes.Buffer
	if err := infra.EscreverRelatorioPDF(&buf, caixas); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=relatorio_caixas.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
