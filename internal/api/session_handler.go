package api

import (
	"errors"
	"net/http"
	"strconv"

	"QuenoClient/internal/game"
	"QuenoClient/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionHandler 游戏会话接口：钱包、选号、下注配置、下注与历史
type SessionHandler struct {
	session *service.Session
	logger  *logrus.Logger
}

func NewSessionHandler(session *service.Session, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{session: session, logger: logger}
}

// Register 注册 /api 下的会话路由
func (h *SessionHandler) Register(r gin.IRouter) {
	r.POST("/wallet/connect", h.Connect)
	r.POST("/wallet/disconnect", h.Disconnect)
	r.GET("/wallet/balances", h.Balances)
	r.GET("/session", h.GetSession)
	r.POST("/selection/:n", h.Toggle)
	r.PUT("/autopick", h.SetAutoPick)
	r.PUT("/bet-config", h.SetBetConfig)
	r.POST("/reset", h.Reset)
	r.POST("/bet", h.PlaceBet)
	r.GET("/history", h.History)
	r.PUT("/history/show-all", h.SetShowAll)
}

// Connect 连接钱包 POST /api/wallet/connect
func (h *SessionHandler) Connect(c *gin.Context) {
	if err := h.session.Connect(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Connect failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Disconnect 断开钱包 POST /api/wallet/disconnect
func (h *SessionHandler) Disconnect(c *gin.Context) {
	h.session.Disconnect()
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Balances 钱包与奖池余额 GET /api/wallet/balances
func (h *SessionHandler) Balances(c *gin.Context) {
	bal, err := h.session.Balances(c.Request.Context())
	if err != nil {
		h.writeError(c, "Balances", err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// GetSession 会话快照 GET /api/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Toggle 切换号码 POST /api/selection/:n
func (h *SessionHandler) Toggle(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
		return
	}
	changed := h.session.Toggle(n)
	c.JSON(http.StatusOK, gin.H{"changed": changed, "session": h.session.Snapshot()})
}

type autoPickRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAutoPick 开关自动选号 PUT /api/autopick
func (h *SessionHandler) SetAutoPick(c *gin.Context) {
	var req autoPickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.session.SetAutoPick(req.Enabled); err != nil {
		h.writeError(c, "SetAutoPick", err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

type betConfigRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required"` // ETH / Ypto
}

// SetBetConfig 设置单注金额与币种 PUT /api/bet-config
func (h *SessionHandler) SetBetConfig(c *gin.Context) {
	var req betConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	currency, ok := game.ParseCurrency(req.Currency)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency " + req.Currency})
		return
	}
	if err := h.session.SetBetConfig(req.Amount, currency); err != nil {
		h.writeError(c, "SetBetConfig", err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Reset 清空本局 POST /api/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.session.Reset(); err != nil {
		h.writeError(c, "Reset", err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// PlaceBet 下注并等待开奖 POST /api/bet
// 请求会一直阻塞到开奖事件到达、超时或客户端断开
func (h *SessionHandler) PlaceBet(c *gin.Context) {
	outcome, err := h.session.PlaceBet(c.Request.Context())
	if err != nil {
		h.writeError(c, "PlaceBet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "session": h.session.Snapshot()})
}

// History 下注历史与累计 GET /api/history
func (h *SessionHandler) History(c *gin.Context) {
	snap := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"entries":  snap.History,
		"count":    snap.HistoryCount,
		"has_more": snap.HasMoreHistory,
		"show_all": snap.ShowAll,
		"totals":   snap.Totals,
	})
}

type showAllRequest struct {
	ShowAll bool `json:"show_all"`
}

// SetShowAll 展开/收起历史 PUT /api/history/show-all
func (h *SessionHandler) SetShowAll(c *gin.Context) {
	var req showAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	h.session.SetShowAll(req.ShowAll)
	h.History(c)
}

// writeError 本地校验失败 400，其余（链上拒绝、未等到开奖）502
func (h *SessionHandler) writeError(c *gin.Context, op string, err error) {
	var verr *game.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
		return
	}
	h.logger.WithError(err).Errorf("%s failed", op)
	resp := gin.H{"error": err.Error()}
	var subErr *game.SubmissionError
	if errors.As(err, &subErr) {
		resp["stage"] = subErr.Stage
		resp["error"] = subErr.Reason
	}
	c.JSON(http.StatusBadGateway, resp)
}
