package frontend

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend"
	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/metrics"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	"github.com/mantlenetworkio/testnet-faucet/op-service/locks"
)

// limiterIdle is how long a client limiter is kept after its last request.
const limiterIdle = 10 * time.Minute

type FaucetBackend interface {
	RequestFunds(ctx context.Context, req *ftypes.FaucetRequest) (common.Hash, error)
	Address() common.Address
	ChainID() eth.ChainID
	Amount() eth.ETH
}

type HTTPConfig struct {
	// WebDir holds the static web UI. Static routes are skipped if it does not exist.
	WebDir string
	// RateLimit is the number of funding requests allowed per client IP per minute. 0 disables limiting.
	RateLimit      float64
	RateLimitBurst int
	// RequestTimeout bounds how long a funding request may wait before its
	// transaction is broadcast. 0 leaves the request unbounded.
	RequestTimeout time.Duration
}

type fundRequest struct {
	Address *string `json:"address"`
}

type fundResponse struct {
	TxHash common.Hash `json:"txHash"`
}

type infoResponse struct {
	Address   common.Address `json:"address"`
	ChainID   uint64         `json:"chainId"`
	AmountWei string         `json:"amountWei"`
}

type clientLimiter struct {
	*rate.Limiter
	lastSeen atomic.Int64
}

// HTTPFrontend serves funding requests over plain HTTP/JSON.
type HTTPFrontend struct {
	log log.Logger
	m   metrics.Metricer
	b   FaucetBackend
	cfg HTTPConfig

	limiters  locks.RWMap[string, *clientLimiter]
	lastPrune atomic.Int64
	now       func() time.Time

	engine *gin.Engine
}

// NewHTTPFrontend builds the router. The admin frontend is optional.
func NewHTTPFrontend(logger log.Logger, m metrics.Metricer, b FaucetBackend, admin *AdminFrontend, cfg HTTPConfig) *HTTPFrontend {
	h := &HTTPFrontend{
		log: logger,
		m:   m,
		b:   b,
		cfg: cfg,
		now: time.Now,
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// only the direct peer is trusted, forwarded headers are ignored
	_ = r.SetTrustedProxies(nil)

	r.GET("/healthz", h.handleHealth)
	r.GET("/info", h.handleInfo)
	r.POST("/faucet", h.rateLimit, h.handleFaucet)
	if admin != nil {
		admin.Register(r.Group("/admin"))
	}
	h.registerStatic(r)
	h.engine = r
	return h
}

func (h *HTTPFrontend) Handler() http.Handler {
	return h.engine
}

func (h *HTTPFrontend) registerStatic(r *gin.Engine) {
	if h.cfg.WebDir == "" {
		return
	}
	if fi, err := os.Stat(h.cfg.WebDir); err != nil || !fi.IsDir() {
		h.log.Warn("Web directory not found, not serving web UI", "dir", h.cfg.WebDir)
		return
	}
	index := filepath.Join(h.cfg.WebDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		r.StaticFile("/", index)
	}
	for _, sub := range []string{"assets", "dist"} {
		dir := filepath.Join(h.cfg.WebDir, sub)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			r.Static("/"+sub, dir)
		}
	}
}

func (h *HTTPFrontend) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPFrontend) handleInfo(c *gin.Context) {
	chainID, ok := h.b.ChainID().ToUInt64()
	if !ok {
		h.log.Error("Chain id does not fit in uint64", "chain_id", h.b.ChainID())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chain id out of range"})
		return
	}
	c.JSON(http.StatusOK, infoResponse{
		Address:   h.b.Address(),
		ChainID:   chainID,
		AmountWei: h.b.Amount().Decimal(),
	})
}

func (h *HTTPFrontend) handleFaucet(c *gin.Context) {
	var body fundRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Address == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req := &ftypes.FaucetRequest{
		Channel: ftypes.ChannelHTTP,
		Address: *body.Address,
		Origin:  c.ClientIP(),
	}
	ctx := c.Request.Context()
	if h.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.RequestTimeout)
		defer cancel()
	}
	hash, err := h.b.RequestFunds(ctx, req)
	if err != nil {
		status, msg := h.errorResponse(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, fundResponse{TxHash: hash})
}

func (h *HTTPFrontend) errorResponse(err error) (int, string) {
	var verr *backend.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "Invalid address: " + verr.Reason
	case errors.Is(err, backend.ErrAlreadyClaimed):
		return http.StatusConflict, "already_sent"
	case errors.Is(err, backend.ErrClaimInProgress):
		return http.StatusConflict, "claim_in_progress"
	case errors.Is(err, backend.ErrFaucetDisabled):
		return http.StatusServiceUnavailable, backend.ErrFaucetDisabled.Error()
	default:
		h.log.Error("Failed to serve funding request", "err", err)
		return http.StatusInternalServerError, "Failed to send transaction"
	}
}

func (h *HTTPFrontend) rateLimit(c *gin.Context) {
	if h.cfg.RateLimit <= 0 {
		c.Next()
		return
	}
	if !h.allow(c.ClientIP()) {
		h.m.RecordRateLimited(ftypes.ChannelHTTP)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
		return
	}
	c.Next()
}

func (h *HTTPFrontend) allow(ip string) bool {
	now := h.now()
	h.prune(now)
	lim := h.limiters.GetOrCreate(ip, func() *clientLimiter {
		burst := h.cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		return &clientLimiter{Limiter: rate.NewLimiter(rate.Limit(h.cfg.RateLimit/60), burst)}
	})
	lim.lastSeen.Store(now.UnixNano())
	return lim.AllowN(now, 1)
}

// prune drops limiters of clients that have been idle, at most once per idle period.
func (h *HTTPFrontend) prune(now time.Time) {
	last := h.lastPrune.Load()
	if now.UnixNano()-last < int64(limiterIdle) || !h.lastPrune.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-limiterIdle).UnixNano()
	if n := h.limiters.DeleteFunc(func(_ string, l *clientLimiter) bool {
		return l.lastSeen.Load() < cutoff
	}); n > 0 {
		h.log.Debug("Pruned idle rate limiters", "count", n)
	}
}
