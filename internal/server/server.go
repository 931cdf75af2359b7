// Package server exposes the quote and swap pipeline over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"aequiswap/internal/aggregate"
	"aequiswap/internal/config"
	"aequiswap/internal/quote"
	"aequiswap/internal/token"
)

// Server routes HTTP requests into the aggregate service.
type Server struct {
	service *aggregate.Service
	logger  *zap.Logger
	metrics *metrics
	router  *gin.Engine
}

// New builds the HTTP server and its routes.
func New(service *aggregate.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		service: service,
		logger:  logger,
		metrics: newMetrics(),
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery())

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/v1")
	v1.GET("/quote", s.handleQuote)
	v1.POST("/swap", s.handleSwap)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleQuote(c *gin.Context) {
	started := time.Now()
	params := aggregate.QuoteParams{
		Chain:      c.Query("chain"),
		TokenIn:    c.Query("token_in"),
		TokenOut:   c.Query("token_out"),
		AmountIn:   c.Query("amount_in"),
		Preference: c.Query("preference"),
	}

	best, err := s.service.Quote(c.Request.Context(), params)
	s.observe("quote", started, err)
	if err != nil {
		s.renderError(c, "quote", err)
		return
	}
	c.JSON(http.StatusOK, quoteToDTO(best))
}

type swapRequest struct {
	Chain       string `json:"chain"`
	TokenIn     string `json:"token_in"`
	TokenOut    string `json:"token_out"`
	AmountIn    string `json:"amount_in"`
	Preference  string `json:"preference"`
	Recipient   string `json:"recipient"`
	SlippageBps *int   `json:"slippage_bps"`
}

func (s *Server) handleSwap(c *gin.Context) {
	started := time.Now()

	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.requests.WithLabelValues("swap", "invalid_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body", "code": "invalid_request"})
		return
	}

	slippage := -1
	if req.SlippageBps != nil {
		slippage = *req.SlippageBps
	}

	best, plan, err := s.service.BuildSwap(c.Request.Context(), aggregate.SwapParams{
		QuoteParams: aggregate.QuoteParams{
			Chain:      req.Chain,
			TokenIn:    req.TokenIn,
			TokenOut:   req.TokenOut,
			AmountIn:   req.AmountIn,
			Preference: req.Preference,
		},
		Recipient:   req.Recipient,
		SlippageBps: slippage,
	})
	s.observe("swap", started, err)
	if err != nil {
		s.renderError(c, "swap", err)
		return
	}
	c.JSON(http.StatusOK, swapResponse{Quote: quoteToDTO(best), Plan: planToDTO(plan)})
}

func (s *Server) observe(endpoint string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		_, outcome = statusFor(err)
	}
	s.metrics.requests.WithLabelValues(endpoint, outcome).Inc()
	s.metrics.duration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

func (s *Server) renderError(c *gin.Context, endpoint string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("endpoint", endpoint),
			zap.String("code", code),
			zap.Error(err))
	} else {
		s.logger.Debug("request rejected",
			zap.String("endpoint", endpoint),
			zap.String("code", code),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// statusFor maps the error taxonomy onto HTTP statuses. No-route and
// token-not-found are user-facing conditions, not upstream failures;
// misconfiguration is surfaced distinctly so operators can tell it apart from
// a lack of liquidity.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, aggregate.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, token.ErrTokenNotFound):
		return http.StatusNotFound, "token_not_found"
	case errors.Is(err, quote.ErrNoRoute):
		return http.StatusNotFound, "no_route"
	case errors.Is(err, config.ErrChainNotConfigured):
		return http.StatusInternalServerError, "chain_not_configured"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
