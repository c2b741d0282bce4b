package sandbox

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/adapters/store/woocommerce"
	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// DefaultAddr is the sandbox server's default listen address
const DefaultAddr = ":8089"

// Default and maximum page sizes of the orders collection
const (
	defaultPerPage = 10
	maxPerPage     = woocommerce.MaxPageSize
)

// ServerConfig configures the sandbox REST server
type ServerConfig struct {
	// ConsumerKey and ConsumerSecret enable basic auth when the key is set
	ConsumerKey    string
	ConsumerSecret string
	Location       *time.Location
	AllowOrigins   []string
}

// Server answers the subset of the WooCommerce REST API wooctl uses
type Server struct {
	store  store.Store
	cfg    ServerConfig
	loc    *time.Location
	logger *slog.Logger
}

// NewServer creates a server backed by st
func NewServer(st store.Store, cfg ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Server{
		store:  st,
		cfg:    cfg,
		loc:    loc,
		logger: logger.With("system", "sandbox"),
	}
}

// Handler builds the gin router
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	if len(s.cfg.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.cfg.AllowOrigins,
			AllowMethods:  []string{"GET", "PUT", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", woocommerce.RequestIDHeader},
			ExposeHeaders: []string{"X-WP-Total", "X-WP-TotalPages"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/health", s.health)

	api := router.Group(woocommerce.APIPath)
	if s.cfg.ConsumerKey != "" {
		api.Use(gin.BasicAuth(gin.Accounts{s.cfg.ConsumerKey: s.cfg.ConsumerSecret}))
	}
	{
		api.GET("/orders", s.listOrders)
		api.GET("/orders/:id", s.getOrder)
		api.PUT("/orders/:id", s.updateOrder)
		api.POST("/orders/:id", s.updateOrder)
		api.GET("/payment_gateways", s.listGateways)
		api.GET("/reports/orders/totals", s.statusTotals)
	}

	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
	})
	return router
}

// HealthResponse is returned by the health check endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// health answers without auth so scripts can wait for the server
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetHeader(woocommerce.RequestIDHeader),
		)
	}
}

func (s *Server) listOrders(c *gin.Context) {
	q := store.OrderQuery()

	switch st := c.DefaultQuery("status", "any"); st {
	case "any", "":
	default:
		q.Status = status.Normalize(st)
	}

	for param, cmp := range map[string]store.Compare{"after": store.After, "before": store.Before} {
		value := c.Query(param)
		if value == "" {
			continue
		}
		t, err := s.parseDate(value)
		if err != nil {
			writeError(c, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): "+param)
			return
		}
		q.Dates = append(q.Dates, store.NewDateQuery(t, cmp))
	}

	perPage, err := intParam(c, "per_page", defaultPerPage)
	if err != nil || perPage < 1 || perPage > maxPerPage {
		writeError(c, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): per_page")
		return
	}
	page, err := intParam(c, "page", 1)
	if err != nil || page < 1 {
		writeError(c, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): page")
		return
	}

	orders, err := s.store.QueryOrders(c.Request.Context(), q)
	if err != nil {
		s.internalError(c, err)
		return
	}

	total := len(orders)
	pages := (total + perPage - 1) / perPage
	c.Header("X-WP-Total", strconv.Itoa(total))
	c.Header("X-WP-TotalPages", strconv.Itoa(pages))

	from := (page - 1) * perPage
	if from > total {
		from = total
	}
	to := from + perPage
	if to > total {
		to = total
	}

	out := make([]woocommerce.Order, 0, to-from)
	for _, o := range orders[from:to] {
		out = append(out, woocommerce.FromStore(o, s.loc))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getOrder(c *gin.Context) {
	o, ok := s.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, woocommerce.FromStore(o, s.loc))
}

func (s *Server) updateOrder(c *gin.Context) {
	o, ok := s.loadOrder(c)
	if !ok {
		return
	}

	var body woocommerce.StatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "rest_invalid_json", "Invalid JSON body passed.")
		return
	}

	if body.Status != "" {
		statuses, err := s.store.OrderStatuses(c.Request.Context())
		if err != nil {
			s.internalError(c, err)
			return
		}
		if !statuses.Contains(body.Status) {
			writeError(c, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): status")
			return
		}
		if err := s.store.UpdateOrderStatus(c.Request.Context(), o.ID, status.Normalize(body.Status)); err != nil {
			s.internalError(c, err)
			return
		}
		if o, ok = s.loadOrder(c); !ok {
			return
		}
	}

	c.JSON(http.StatusOK, woocommerce.FromStore(o, s.loc))
}

func (s *Server) listGateways(c *gin.Context) {
	gateways, err := s.store.PaymentGateways(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, woocommerce.GatewaysFromStore(gateways))
}

func (s *Server) statusTotals(c *gin.Context) {
	ctx := c.Request.Context()
	statuses, err := s.store.OrderStatuses(ctx)
	if err != nil {
		s.internalError(c, err)
		return
	}
	orders, err := s.store.QueryOrders(ctx, store.OrderQuery())
	if err != nil {
		s.internalError(c, err)
		return
	}

	counts := make(map[string]int, statuses.Len())
	for _, o := range orders {
		counts[o.Status]++
	}
	c.JSON(http.StatusOK, woocommerce.StatusesFromStore(statuses, counts))
}

// loadOrder resolves the :id param to an order, writing the error response
// itself when it cannot
func (s *Server) loadOrder(c *gin.Context) (*store.Order, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeInvalidID(c)
		return nil, false
	}

	o, err := s.store.GetOrder(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeInvalidID(c)
		return nil, false
	}
	if err != nil {
		s.internalError(c, err)
		return nil, false
	}
	if o.RecordType != store.RecordTypeOrder {
		writeInvalidID(c)
		return nil, false
	}
	return o, true
}

func (s *Server) parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(s.loc), nil
	}
	return time.ParseInLocation(woocommerce.DateLayout, value, s.loc)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	writeError(c, http.StatusInternalServerError, "internal_server_error", "The store could not complete the request.")
}

func writeInvalidID(c *gin.Context) {
	writeError(c, http.StatusNotFound, "woocommerce_rest_shop_order_invalid_id", "Invalid ID.")
}

func writeError(c *gin.Context, code int, errCode, message string) {
	var body woocommerce.ErrorResponse
	body.Code = errCode
	body.Message = message
	body.Data.Status = code
	c.AbortWithStatusJSON(code, body)
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
