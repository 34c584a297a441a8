package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/config"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/coordinator"
	httpopenapi "github.com/fairyhunter13/warehouse-inventory-monitor/internal/http/openapi"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/obs"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/store"
)

// App carries handler dependencies: the coordinator is the only mutable
// surface, and it is only reached through its event intake.
type App struct {
	Cfg     config.Config
	Coord   *coordinator.Coordinator
	started time.Time
}

func NewApp(cfg config.Config, coord *coordinator.Coordinator) *App {
	return &App{Cfg: cfg, Coord: coord, started: time.Now()}
}

type orderRequest struct {
	Product string `json:"product"`
}

type autoRequest struct {
	Enabled bool `json:"enabled"`
}

type focusRequest struct {
	Product string `json:"product"`
}

type ack struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Product   string `json:"product,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Coord.Snapshot(r.Context())
	if err != nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *App) connectHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Coord.Connect(); err != nil {
		obs.Logger.Error("bus_connect_failed", "error", err)
		WriteJSONError(w, http.StatusBadGateway, "connect_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

func (a *App) disconnectHandler(w http.ResponseWriter, r *http.Request) {
	a.Coord.Disconnect()
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

func (a *App) autoHandler(w http.ResponseWriter, r *http.Request) {
	var req autoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Coord.SetAutoMode(req.Enabled); err != nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"auto_reorder": req.Enabled})
}

func (a *App) focusHandler(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Product == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "product is required")
		return
	}
	if err := a.Coord.SetFocus(req.Product); err != nil {
		if errors.Is(err, store.ErrUnknownProduct) {
			WriteJSONError(w, http.StatusNotFound, "unknown_product", req.Product)
			return
		}
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"focus": req.Product})
}

// ordersHandler places a manual refill request. Placement resolves on the
// coordinator loop; a duplicate for a product already in flight is a no-op
// there, so the 202 only acknowledges intake.
func (a *App) ordersHandler(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Product == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "product is required")
		return
	}
	err := a.Coord.PlaceOrder(req.Product, model.OriginManual)
	switch {
	case errors.Is(err, store.ErrUnknownProduct):
		WriteJSONError(w, http.StatusNotFound, "unknown_product", req.Product)
		return
	case errors.Is(err, coordinator.ErrNotConnected):
		WriteJSONError(w, http.StatusConflict, "not_connected", "connect to the bus before ordering")
		return
	case err != nil:
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	ac := ack{Status: "accepted", RequestID: RequestIDFromContext(r.Context()), Product: req.Product}
	writeJSON(w, http.StatusAccepted, ac)
	obs.Logger.Info("manual_order_accepted", "request_id", ac.RequestID, "product", ac.Product)
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := a.Coord.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"ticks":               m.Ticks,
		"telemetry_published": m.TelemetryPublished,
		"telemetry_logged":    m.TelemetryLogged,
		"orders_placed":       m.OrdersPlaced,
		"orders_fulfilled":    m.OrdersFulfilled,
		"dropped_retained":    m.DroppedRetained,
		"dropped_malformed":   m.DroppedMalformed,
		"intake_depth":        m.IntakeDepth,
		"connected":           a.Coord.Connected(),
		"uptime_sec":          time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
