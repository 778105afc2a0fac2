package http

import (
	"net/http"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/panel"
	"golang-stock-insight/internal/insight/service"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// StreamHandler serves a live feed of panel log entries over a websocket.
type StreamHandler struct {
	cfg          *config.Config
	panelManager *service.PanelManager
	logger       *logger.Logger
	upgrader     websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(cfg *config.Config, panelManager *service.PanelManager, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		cfg:          cfg,
		panelManager: panelManager,
		logger:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the stream route to the Echo group.
func (h *StreamHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:code/stream", h.Stream)
}

// Stream godoc
// @Summary Stream panel log entries
// @Description Upgrade to a websocket, replay the accumulated log entries, then push new ones as they are appended
// @Tags panels
// @Param   code  path    string true    "Stock code"
// @Success 101 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Router /panels/{code}/stream [get]
func (h *StreamHandler) Stream(c echo.Context) error {
	code := c.Param("code")
	p, err := h.panelManager.Open(c.Request().Context(), code)
	if err != nil {
		h.logger.Error("Failed to open panel for streaming", logger.StringField("stock_code", code), logger.ErrorField(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Subscribe before replaying so no entry is lost between the snapshot
	// and the live feed; duplicates are acceptable, gaps are not.
	entries, cancel := p.Book().Subscribe(h.cfg.Panel.StreamBufferSize)
	defer cancel()

	for _, entry := range p.Logs() {
		if err := conn.WriteJSON(entry); err != nil {
			return nil
		}
	}

	// Reader loop: its only job is to notice the peer going away.
	done := make(chan struct{})
	utils.GoSafe(func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	h.logger.Debug("Panel stream opened", logger.StringField("stock_code", code))

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil
			}
			if err := h.writeEntry(conn, entry); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (h *StreamHandler) writeEntry(conn *websocket.Conn, entry panel.LogEntry) error {
	return conn.WriteJSON(entry)
}
