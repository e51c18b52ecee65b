package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Great2008/reads/internal/app"
)

type WalletHandler struct {
	wallet *app.WalletService
}

func NewWalletHandler(wallet *app.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

func (h *WalletHandler) Balance(c *gin.Context) {
	wallet, err := h.wallet.Balance(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (h *WalletHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.wallet.History(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": entries})
}

func (h *WalletHandler) Summary(c *gin.Context) {
	total, err := h.wallet.Summary(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_tokens_earned": total})
}
