package http

import (
	"net/http"
	"strings"

	"golang-stock-insight/internal/entity"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/repository"
	"golang-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StocksHandler handles HTTP requests for the watchlist.
type StocksHandler struct {
	stocksRepo repository.StocksRepository
	logger     *logger.Logger
}

// NewStocksHandler creates a new StocksHandler.
func NewStocksHandler(stocksRepo repository.StocksRepository, logger *logger.Logger) *StocksHandler {
	return &StocksHandler{stocksRepo: stocksRepo, logger: logger}
}

// RegisterRoutes registers the watchlist routes to the Echo group.
func (h *StocksHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetStocks)
	g.POST("", h.CreateStock)
	g.DELETE("/:code", h.DeleteStock)
}

// GetStocks godoc
// @Summary Get the watchlist
// @Description Get all watchlist stocks
// @Tags stocks
// @Produce  json
// @Success 200 {array} entity.Stock
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks [get]
func (h *StocksHandler) GetStocks(c echo.Context) error {
	stocks, err := h.stocksRepo.GetStocks(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get stocks", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get stocks"})
	}
	return c.JSON(http.StatusOK, stocks)
}

// CreateStock godoc
// @Summary Add a stock
// @Description Add a stock to the watchlist
// @Tags stocks
// @Accept  json
// @Produce  json
// @Param   stock  body    dto.CreateStockRequest   true    "Stock to add"
// @Success 201 {object} entity.Stock
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks [post]
func (h *StocksHandler) CreateStock(c echo.Context) error {
	var req dto.CreateStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stock code is required"})
	}

	stock := &entity.Stock{Code: code, Name: req.Name}
	if err := h.stocksRepo.Create(c.Request().Context(), stock); err != nil {
		h.logger.Error("Failed to create stock", logger.StringField("code", code), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, stock)
}

// DeleteStock godoc
// @Summary Remove a stock
// @Description Remove a stock from the watchlist
// @Tags stocks
// @Produce  json
// @Param   code  path    string true    "Stock code"
// @Success 204 {object} nil
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks/{code} [delete]
func (h *StocksHandler) DeleteStock(c echo.Context) error {
	code := c.Param("code")
	if err := h.stocksRepo.Delete(c.Request().Context(), code); err != nil {
		h.logger.Error("Failed to delete stock", logger.StringField("code", code), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete stock"})
	}
	return c.NoContent(http.StatusNoContent)
}
