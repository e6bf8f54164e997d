package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ripplehq/ripple/config"
	"github.com/ripplehq/ripple/middleware"
	"github.com/ripplehq/ripple/services"
	"github.com/ripplehq/ripple/utils"
)

// parsePage reads skip/limit query values, clamping through services.NewPage.
func parsePage(ctx *gin.Context) services.Page {
	skip, _ := strconv.Atoi(ctx.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return services.NewPage(skip, limit)
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isAdmin(ctx *gin.Context) bool {
	unameVal, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return false
	}
	uname, _ := unameVal.(string)
	if uname == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}

// respondServiceError translates the service taxonomy into the response
// envelope. Store-level failures fall through to a 500 with the given code so
// every call site keeps its own error number.
func respondServiceError(ctx *gin.Context, err error, storeCode int, storeMsg string) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		utils.Error(ctx, http.StatusNotFound, 40410, err.Error())
	case services.KindInvalidArgument:
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case services.KindConflict:
		utils.Error(ctx, http.StatusConflict, 40910, err.Error())
	case services.KindForbidden:
		utils.Error(ctx, http.StatusForbidden, 40310, err.Error())
	default:
		utils.Error(ctx, http.StatusInternalServerError, storeCode, storeMsg)
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
