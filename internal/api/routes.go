package api

import "github.com/gin-gonic/gin"

// RegisterRoutes 挂载 /api 下的全部路由
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	apiGroup := r.Group("/api")
	apiGroup.GET("/health", h.Health)
	apiGroup.POST("/user/login", h.Login)

	protected := apiGroup.Group("")
	protected.Use(h.AuthMiddleware())
	admin := protected.Group("")
	admin.Use(h.RequireAdmin())

	protected.GET("/user/info", h.UserInfo)
	admin.GET("/user/list", h.ListUsers)

	// 代理人
	protected.GET("/agent/list", h.ListAgents)
	protected.GET("/agent/search", h.SearchAgents)
	protected.GET("/agent/detail/:id", h.AgentDetail)
	admin.POST("/agent/add", h.AddAgent)
	admin.POST("/agent/batch-import", h.BatchImportAgents)
	admin.PUT("/agent/update/:id", h.UpdateAgent)
	admin.DELETE("/agent/delete/:id", h.DeleteAgent)
	admin.DELETE("/agent/batch-delete", h.BatchDeleteAgents)

	// 核保人
	protected.GET("/underwriter/list", h.ListUnderwriters)
	admin.POST("/underwriter/add", h.AddUnderwriter)
	admin.PUT("/underwriter/update/:id", h.UpdateUnderwriter)
	admin.DELETE("/underwriter/delete/:id", h.DeleteUnderwriter)

	// 险种与分类
	protected.GET("/insurance/list", h.ListInsurances)
	protected.GET("/insurance/detail/:id", h.InsuranceDetail)
	protected.GET("/insurance/categories", h.ListCategories)
	admin.POST("/insurance/add", h.AddInsurance)
	admin.PUT("/insurance/update/:id", h.UpdateInsurance)
	admin.DELETE("/insurance/delete/:id", h.DeleteInsurance)
	admin.POST("/insurance/image/:id", h.UploadInsuranceImage)
	admin.POST("/insurance/category/add", h.AddCategory)
	admin.PUT("/insurance/category/update/:id", h.UpdateCategory)
	admin.DELETE("/insurance/category/delete/:id", h.DeleteCategory)

	protected.GET("/business-level/list", h.ListBusinessLevels)
	protected.GET("/business-level/detail/:id", h.BusinessLevelDetail)
	admin.POST("/business-level/add", h.AddBusinessLevel)
	admin.PUT("/business-level/update/:id", h.UpdateBusinessLevel)
	admin.DELETE("/business-level/delete/:id", h.DeleteBusinessLevel)

	// 业务记录
	business := protected.Group("/business")
	business.GET("/list", h.ListBusinesses)
	business.POST("/add", h.AddBusiness)
	business.GET("/detail/:id", h.BusinessDetail)
	business.PUT("/update/:id", h.UpdateBusiness)
	business.DELETE("/delete/:id", h.DeleteBusiness)
	business.DELETE("/batch-delete", h.BatchDeleteBusinesses)
	business.GET("/logs/:id", h.BusinessLogs)
	business.GET("/export", h.ExportBusinesses)
	business.POST("/import", h.ImportBusinesses)
	business.GET("/import-template", h.BusinessImportTemplate)
	business.GET("/statistics", h.BusinessStatistics)
	business.GET("/trend", h.BusinessTrend)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/basic", h.DashboardBasic)
	dashboard.GET("/trend", h.DashboardTrend)
	dashboard.GET("/insurance", h.InsuranceDistribution)

	statistics := protected.Group("/statistics")
	statistics.GET("/overview", h.BusinessStatistics)
	statistics.GET("/trend", h.BusinessTrend)
	statistics.GET("/insurance-distribution", h.InsuranceDistribution)
	statistics.GET("/deal-rate", h.DealRate)
	statistics.GET("/agent-ranking", h.AgentRanking)

	backupGroup := admin.Group("/backup")
	backupGroup.POST("/export", h.ExportBackup)
	backupGroup.POST("/restore", h.RestoreBackup)
	backupGroup.GET("/status", h.BackupStatus)
}
