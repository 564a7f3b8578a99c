package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ecomm-labs/realtime-catalog/internal/cart"
	"github.com/ecomm-labs/realtime-catalog/internal/catalog"
	"github.com/ecomm-labs/realtime-catalog/internal/config"
	httpopenapi "github.com/ecomm-labs/realtime-catalog/internal/http/openapi"
	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/ws"
)

// App bundles the wired stores behind the HTTP handlers.
type App struct {
	Cfg     config.Config
	Catalog *catalog.Store
	Carts   *cart.Ledger
	Hub     *ws.Hub
	started time.Time
}

// NewApp constructs the HTTP application facade.
func NewApp(cfg config.Config, cat *catalog.Store, carts *cart.Ledger, hub *ws.Hub) *App {
	return &App{Cfg: cfg, Catalog: cat, Carts: carts, Hub: hub, started: time.Now()}
}

// productRequest is the creation payload. Status defaults to true when the
// field is absent.
type productRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      *bool    `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
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

// productsHandler serves /products: list with optional ?limit, and create.
func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products := a.Catalog.List()
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				WriteJSONError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
				return
			}
			if limit < len(products) {
				products = products[:limit]
			}
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		var req productRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p := model.Product{
			Title:       req.Title,
			Description: req.Description,
			Code:        req.Code,
			Price:       req.Price,
			Status:      req.Status == nil || *req.Status,
			Stock:       req.Stock,
			Category:    req.Category,
			Thumbnails:  req.Thumbnails,
		}
		created, err := a.Catalog.Add(p)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

// productHandler serves /products/{id}: fetch, partial update, delete.
func (a *App) productHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(strings.TrimPrefix(r.URL.Path, "/products/"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := a.Catalog.GetByID(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var patch model.ProductPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		updated, err := a.Catalog.Update(id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := a.Catalog.Remove(id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

// cartsHandler serves POST /carts.
func (a *App) cartsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	c, err := a.Carts.Create()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// cartHandler serves GET /carts/{cid} and POST /carts/{cid}/product/{pid}.
func (a *App) cartHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/carts/"), "/"), "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		cartID, ok := pathID(parts[0])
		if !ok {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		items, err := a.Carts.ItemsByID(cartID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	case len(parts) == 3 && parts[1] == "product" && r.Method == http.MethodPost:
		cartID, okCart := pathID(parts[0])
		productID, okProd := pathID(parts[2])
		if !okCart || !okProd {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		c, err := a.Carts.AddItem(cartID, productID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	case len(parts) == 1 || (len(parts) == 3 && parts[1] == "product"):
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	default:
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	}
}

// pathID parses a positive integer id path segment.
func pathID(s string) (int, bool) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"products":       len(a.Catalog.List()),
		"carts":          a.Carts.Count(),
		"ws_subscribers": a.Hub.SubscriberCount(),
		"uptime_sec":     time.Since(a.started).Seconds(),
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

// realtimeHandler serves a minimal page that renders the live product list
// from /ws pushes.
func (a *App) realtimeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Real-time products</title>
  </head>
  <body>
    <h1>Real-time products</h1>
    <div id="product-list"></div>
    <script>
      var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
      var ws = new WebSocket(scheme + location.host + '/ws');
      ws.onmessage = function (msg) {
        var data = JSON.parse(msg.data);
        if (data.event !== 'updateProducts') return;
        var list = document.getElementById('product-list');
        list.innerHTML = '';
        (data.products || []).forEach(function (product) {
          var item = document.createElement('div');
          var title = document.createElement('h2');
          title.textContent = product.title;
          var price = document.createElement('p');
          price.textContent = 'Price: ' + product.price;
          var desc = document.createElement('p');
          desc.textContent = 'Description: ' + product.description;
          item.appendChild(title);
          item.appendChild(price);
          item.appendChild(desc);
          list.appendChild(item);
        });
      };
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
