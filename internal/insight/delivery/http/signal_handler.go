package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/internal/insight/repository"
	"golang-stock-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalHandler handles HTTP requests for stored analysis signals.
type SignalHandler struct {
	signalRepo repository.SignalRepository
	logger     *logger.Logger
}

// NewSignalHandler creates a new SignalHandler.
func NewSignalHandler(signalRepo repository.SignalRepository, logger *logger.Logger) *SignalHandler {
	return &SignalHandler{signalRepo: signalRepo, logger: logger}
}

// RegisterRoutes registers the signal routes to the Echo group.
func (h *SignalHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetSignals)
}

// GetSignals godoc
// @Summary Get latest signals
// @Description Get the latest analysis signals, optionally filtered by stock code
// @Tags signals
// @Produce  json
// @Param   stock_code  query    string false    "Stock code filter"
// @Param   limit       query    int    false    "Max rows to return"
// @Success 200 {array} dto.SignalResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals [get]
func (h *SignalHandler) GetSignals(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	signals, err := h.signalRepo.GetLatest(c.Request().Context(), c.QueryParam("stock_code"), limit)
	if err != nil {
		h.logger.Error("Failed to get signals", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get signals"})
	}

	resp := make([]dto.SignalResponse, 0, len(signals))
	for _, s := range signals {
		resp = append(resp, dto.SignalResponse{
			ID:            s.ID,
			StockCode:     s.StockCode,
			Signal:        s.Signal,
			BuyPercentage: s.BuyPercentage,
			Confidence:    s.Confidence,
			EODMovement:   s.EODMovement,
			Reasoning:     s.Reasoning,
			Data:          json.RawMessage(s.Data),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
