// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"toolcrib-backend/app"
	"toolcrib-backend/cache"
	"toolcrib-backend/db"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Repo  *db.Repo
	Cache *cache.DetailCache
	Cfg   app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:  db.NewRepo(a.DB),
		Cache: cache.NewDetailCache(a.RDB, a.Config.DetailCacheTTL),
		Cfg:   a.Config,
	}
}

// --- helpers ---

// respondErr 把哨兵错误映射成 HTTP 状态码 + 机器可读的 kind。
func respondErr(c *gin.Context, err error) {
	var code int
	var kind string
	switch {
	case errors.Is(err, db.ErrNotFound):
		code, kind = http.StatusNotFound, "notFound"
	case errors.Is(err, db.ErrValidation):
		code, kind = http.StatusBadRequest, "validationError"
	case errors.Is(err, db.ErrPreconditionFailed):
		code, kind = http.StatusConflict, "preconditionFailed"
	case errors.Is(err, db.ErrInvalidTransition):
		code, kind = http.StatusConflict, "invalidTransition"
	case errors.Is(err, db.ErrConcurrencyConflict):
		code, kind = http.StatusConflict, "concurrencyConflict"
	default:
		code, kind = http.StatusInternalServerError, "internal"
	}
	c.JSON(code, app.H{"error": err.Error(), "kind": kind})
}
