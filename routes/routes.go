package routes

import (
	"toolcrib-backend/app"
	"toolcrib-backend/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	toolCtl := controllers.NewToolController(s)
	asgCtl := controllers.NewAssignmentController(s)
	mntCtl := controllers.NewMaintenanceController(s)
	prjCtl := controllers.NewProjectController(s)

	// ------------------------------
	// 目录（Tool / Unit）
	// ------------------------------
	tools := r.Group("/api/tools")
	{
		tools.GET("", toolCtl.ListTools)
		tools.POST("", toolCtl.CreateTool)
		tools.GET("/:id", toolCtl.GetTool)
		tools.PUT("/:id", toolCtl.UpdateTool)
	}
	r.GET("/api/units/:key/detail", toolCtl.UnitDetail) // :key = unit id 或序列号

	// ------------------------------
	// 借出 / 归还
	// ------------------------------
	asg := r.Group("/api/assignments")
	{
		asg.POST("/checkout", asgCtl.Checkout)
		asg.POST("/:id/checkin", asgCtl.Checkin)
		asg.GET("", asgCtl.ListAssignments) // ?status=ACTIVE|RETURNED&unitId=&projectId=
	}

	// ------------------------------
	// 维保工单
	// ------------------------------
	mnt := r.Group("/api/maintenance")
	{
		mnt.POST("", mntCtl.Schedule)
		mnt.POST("/:id/status", mntCtl.UpdateStatus)
		mnt.GET("", mntCtl.ListMaintenance) // ?status=&unitId=&toolId=
	}

	// ------------------------------
	// 项目登记（协作方 CRUD）
	// ------------------------------
	prj := r.Group("/api/projects")
	{
		prj.GET("", prjCtl.ListProjects)
		prj.POST("", prjCtl.CreateProject)
	}
}
