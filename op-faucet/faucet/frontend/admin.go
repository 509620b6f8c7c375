package frontend

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
)

type AdminBackend interface {
	Enable()
	Disable()
	Enabled() bool
	Address() common.Address
	Balance(ctx context.Context) (eth.ETH, error)
}

type statusResponse struct {
	Enabled      bool           `json:"enabled"`
	Address      common.Address `json:"address"`
	BalanceWei   string         `json:"balanceWei,omitempty"`
	BalanceError string         `json:"balanceError,omitempty"`
}

// AdminFrontend lets an operator pause and resume the faucet, behind a bearer token.
type AdminFrontend struct {
	log   log.Logger
	b     AdminBackend
	token string
}

func NewAdminFrontend(logger log.Logger, b AdminBackend, token string) *AdminFrontend {
	return &AdminFrontend{log: logger, b: b, token: token}
}

func (a *AdminFrontend) Register(r gin.IRouter) {
	r.Use(a.authenticate)
	r.POST("/enable", a.handleEnable)
	r.POST("/disable", a.handleDisable)
	r.GET("/status", a.handleStatus)
}

func (a *AdminFrontend) authenticate(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || a.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
		a.log.Warn("Rejected admin request", "path", c.Request.URL.Path, "remote", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (a *AdminFrontend) handleEnable(c *gin.Context) {
	a.b.Enable()
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

func (a *AdminFrontend) handleDisable(c *gin.Context) {
	a.b.Disable()
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}

func (a *AdminFrontend) handleStatus(c *gin.Context) {
	resp := statusResponse{
		Enabled: a.b.Enabled(),
		Address: a.b.Address(),
	}
	bal, err := a.b.Balance(c.Request.Context())
	if err != nil {
		resp.BalanceError = err.Error()
	} else {
		resp.BalanceWei = bal.Decimal()
	}
	c.JSON(http.StatusOK, resp)
}
