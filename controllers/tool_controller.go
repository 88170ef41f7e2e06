// controllers/tool_controller.go
package controllers

import (
	"net/http"

	"toolcrib-backend/app"
	"toolcrib-backend/db"

	"github.com/gin-gonic/gin"
)

type ToolController struct{ *Srv }

func NewToolController(s *Srv) *ToolController { return &ToolController{Srv: s} }

func (tc *ToolController) ListTools(c *gin.Context) {
	tools, err := tc.Repo.ListTools(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": tools})
}

type createToolReq struct {
	Name         string `json:"name" binding:"required"`
	SerialPrefix string `json:"serialPrefix" binding:"required"`
	Quantity     int    `json:"quantity"`
}

func (tc *ToolController) CreateTool(c *gin.Context) {
	var req createToolReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "kind": "validationError"})
		return
	}
	t, err := tc.Repo.CreateTool(c.Request.Context(), db.CreateToolInput{
		Name:         req.Name,
		SerialPrefix: req.SerialPrefix,
		Quantity:     req.Quantity,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (tc *ToolController) GetTool(c *gin.Context) {
	t, err := tc.Repo.ToolDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type updateToolReq struct {
	Name             *string `json:"name,omitempty"`
	DeclaredQuantity *int    `json:"declaredQuantity,omitempty"`
	ConditionNotes   *string `json:"conditionNotes,omitempty"`
}

// 编辑目录条目；改数量会同步增删 unit（占用中的拦下）
func (tc *ToolController) UpdateTool(c *gin.Context) {
	var req updateToolReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "kind": "validationError"})
		return
	}
	t, err := tc.Repo.UpdateTool(c.Request.Context(), c.Param("id"), db.UpdateToolInput{
		Name:             req.Name,
		DeclaredQuantity: req.DeclaredQuantity,
		ConditionNotes:   req.ConditionNotes,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UnitDetail 只读明细，cache-aside：命中 redis 直接回，
// 未命中落库后回填两个键（id / 序列号）。
func (tc *ToolController) UnitDetail(c *gin.Context) {
	key := c.Param("key")
	ctx := c.Request.Context()

	var cached db.UnitDetailRow
	if tc.Cache.Get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	row, err := tc.Repo.UnitDetail(ctx, key)
	if err != nil {
		respondErr(c, err)
		return
	}
	tc.Cache.Set(ctx, row.Unit.ID, row.Unit.SerialNumber, row)
	c.JSON(http.StatusOK, row)
}
