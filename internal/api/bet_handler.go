package api

import (
	"errors"
	"net/http"
	"strconv"

	"QuenoClient/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BetHandler 已归档下注查询
type BetHandler struct {
	repo   repository.BetRepository
	logger *logrus.Logger
}

func NewBetHandler(repo repository.BetRepository, logger *logrus.Logger) *BetHandler {
	return &BetHandler{repo: repo, logger: logger}
}

// ListBets 归档列表 GET /api/bets?wallet=0x...&page=1&page_size=20，最新在前
func (h *BetHandler) ListBets(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet is required"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = repository.NormalizePage(page, pageSize)

	items, total, err := h.repo.ListByUser(c.Request.Context(), wallet, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListBets failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetBet 单条归档 GET /api/bets/:bet_id
func (h *BetHandler) GetBet(c *gin.Context) {
	rec, err := h.repo.GetByBetID(c.Request.Context(), c.Param("bet_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bet not found"})
			return
		}
		h.logger.WithError(err).Error("GetBet failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
