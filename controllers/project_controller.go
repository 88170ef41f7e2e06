// controllers/project_controller.go
package controllers

import (
	"net/http"

	"toolcrib-backend/app"

	"github.com/gin-gonic/gin"
)

type ProjectController struct{ *Srv }

func NewProjectController(s *Srv) *ProjectController { return &ProjectController{Srv: s} }

// 项目登记是协作方的 CRUD，这里只留 checkout 依赖的最小面

func (pc *ProjectController) CreateProject(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "kind": "validationError"})
		return
	}
	p, err := pc.Repo.CreateProject(c.Request.Context(), in.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *ProjectController) ListProjects(c *gin.Context) {
	ps, err := pc.Repo.ListProjects(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ps})
}
