// controllers/maintenance_controller.go
package controllers

import (
	"net/http"
	"time"

	"toolcrib-backend/app"
	"toolcrib-backend/db"
	"toolcrib-backend/models"

	"github.com/gin-gonic/gin"
)

type MaintenanceController struct{ *Srv }

func NewMaintenanceController(s *Srv) *MaintenanceController {
	return &MaintenanceController{Srv: s}
}

type scheduleReq struct {
	UnitSerialNumber string    `json:"unitSerialNumber" binding:"required"`
	MaintenanceType  string    `json:"maintenanceType" binding:"required"`
	ScheduledDate    time.Time `json:"scheduledDate" binding:"required"`
	Notes            string    `json:"notes,omitempty"`
}

// 排维保：REPAIR 立即占住 unit，ROUTINE/INSPECTION 只是排期
func (mc *MaintenanceController) Schedule(c *gin.Context) {
	var req scheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "kind": "validationError"})
		return
	}

	m, err := mc.Repo.ScheduleMaintenance(c.Request.Context(), db.ScheduleInput{
		UnitSerial: req.UnitSerialNumber,
		Type:       models.MaintenanceType(req.MaintenanceType),
		Date:       req.ScheduledDate,
		Notes:      req.Notes,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	mc.Cache.InvalidateUnit(c.Request.Context(), m.UnitID, req.UnitSerialNumber)
	c.JSON(http.StatusCreated, m)
}

type advanceReq struct {
	NewStatus string `json:"newStatus" binding:"required"`
}

// 推进工单：IN_PROGRESS / COMPLETED / CANCELLED
func (mc *MaintenanceController) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing schedule id", "kind": "validationError"})
		return
	}
	var req advanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "kind": "validationError"})
		return
	}

	m, serial, err := mc.Repo.AdvanceMaintenanceStatus(c.Request.Context(), id,
		models.MaintenanceStatus(req.NewStatus))
	if err != nil {
		respondErr(c, err)
		return
	}
	mc.Cache.InvalidateUnit(c.Request.Context(), m.UnitID, serial)
	c.JSON(http.StatusOK, m)
}

func (mc *MaintenanceController) ListMaintenance(c *gin.Context) {
	ms, err := mc.Repo.ListMaintenance(c.Request.Context(),
		c.Query("unitId"), c.Query("toolId"), c.Query("status"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ms})
}
