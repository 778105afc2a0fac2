package http

import (
	"net/http"

	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/service"
	"golang-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PanelHandler handles HTTP requests for analysis panels.
type PanelHandler struct {
	panelManager *service.PanelManager
	logger       *logger.Logger
}

// NewPanelHandler creates a new PanelHandler.
func NewPanelHandler(panelManager *service.PanelManager, logger *logger.Logger) *PanelHandler {
	return &PanelHandler{panelManager: panelManager, logger: logger}
}

// RegisterRoutes registers the panel routes to the Echo group.
func (h *PanelHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:code", h.GetPanel)
	g.POST("/:code/analyze", h.Analyze)
	g.DELETE("/:code", h.Dismiss)
}

// GetPanel godoc
// @Summary Get a panel
// @Description Open (or return the already open) analysis panel for a stock
// @Tags panels
// @Produce  json
// @Param   code  path    string true    "Stock code"
// @Success 200 {object} dto.PanelStateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /panels/{code} [get]
func (h *PanelHandler) GetPanel(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stock code is required"})
	}

	p, err := h.panelManager.Open(c.Request().Context(), code)
	if err != nil {
		h.logger.Error("Failed to open panel", logger.StringField("stock_code", code), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, dto.PanelStateResponse{
		StockCode: p.Subject().Ticker,
		State:     string(p.State()),
		Running:   p.Running(),
		Logs:      p.Logs(),
		Result:    p.Result(),
	})
}

// Analyze godoc
// @Summary Start an analysis
// @Description Start an analysis run on the stock's panel. A run already in flight is left alone.
// @Tags panels
// @Produce  json
// @Param   code  path    string true    "Stock code"
// @Success 202 {object} dto.AnalyzeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /panels/{code}/analyze [post]
func (h *PanelHandler) Analyze(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stock code is required"})
	}

	p, started, err := h.panelManager.Analyze(c.Request().Context(), code)
	if err != nil {
		h.logger.Error("Failed to start analysis", logger.StringField("stock_code", code), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.AnalyzeResponse{
		StockCode: p.Subject().Ticker,
		Started:   started,
		State:     string(p.State()),
	})
}

// Dismiss godoc
// @Summary Dismiss a panel
// @Description Close the panel and delete its stored session
// @Tags panels
// @Produce  json
// @Param   code  path    string true    "Stock code"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Router /panels/{code} [delete]
func (h *PanelHandler) Dismiss(c echo.Context) error {
	code := c.Param("code")
	if !h.panelManager.Dismiss(code) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Panel not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
