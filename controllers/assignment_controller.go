// controllers/assignment_controller.go
package controllers

import (
	"net/http"
	"time"

	"toolcrib-backend/app"
	"toolcrib-backend/db"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct{ *Srv }

func NewAssignmentController(s *Srv) *AssignmentController { return &AssignmentController{Srv: s} }

type checkoutReq struct {
	UnitSerialNumber   string     `json:"unitSerialNumber" binding:"required"`
	ProjectID          string     `json:"projectId" binding:"required"`
	AssignedDate       *time.Time `json:"assignedDate,omitempty"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
}

// 借出：unit 必须 AVAILABLE，成功后挂到项目名下
func (ac *AssignmentController) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "kind": "validationError"})
		return
	}

	in := db.CheckoutInput{
		UnitSerial:         req.UnitSerialNumber,
		ProjectID:          req.ProjectID,
		ExpectedReturnDate: req.ExpectedReturnDate,
	}
	if req.AssignedDate != nil {
		in.AssignedDate = *req.AssignedDate
	}

	asg, err := ac.Repo.Checkout(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	ac.Cache.InvalidateUnit(c.Request.Context(), asg.UnitID, req.UnitSerialNumber)
	c.JSON(http.StatusCreated, asg)
}

// 归还：重复归还会拿 409，不会二次生效
func (ac *AssignmentController) Checkin(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing assignment id", "kind": "validationError"})
		return
	}
	asg, serial, err := ac.Repo.Checkin(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	ac.Cache.InvalidateUnit(c.Request.Context(), asg.UnitID, serial)
	c.JSON(http.StatusOK, asg)
}

// 借还记录
func (ac *AssignmentController) ListAssignments(c *gin.Context) {
	as, err := ac.Repo.ListAssignments(c.Request.Context(),
		c.Query("unitId"), c.Query("projectId"), c.Query("status"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": as})
}
