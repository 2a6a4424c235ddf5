package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/config"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

type HandlerManager struct {
	materialHandler   *MaterialHandler
	documentHandler   *DocumentHandler
	examResultHandler *ExamResultHandler
	communityHandler  *CommunityHandler
	activityHandler   *ActivityHandler
	profileHandler    *ProfileHandler
	exportHandler     *ExportHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, serviceManager.Profile(), logger)

	return &HandlerManager{
		materialHandler:   NewMaterialHandler(serviceManager.Material(), logger),
		documentHandler:   NewDocumentHandler(serviceManager.Document(), logger),
		examResultHandler: NewExamResultHandler(serviceManager.ExamResult(), logger),
		communityHandler:  NewCommunityHandler(serviceManager.Community(), logger),
		activityHandler:   NewActivityHandler(serviceManager.Activity(), logger),
		profileHandler:    NewProfileHandler(serviceManager.Profile(), logger),
		exportHandler:     NewExportHandler(serviceManager.Export(), logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public reads; a token still personalizes the response
	public := router.Group("/api/v1")
	public.Use(hm.authMiddleware.OptionalAuthMiddleware())
	{
		public.GET("/materials/public", hm.materialHandler.ListPublic)
		public.GET("/community/posts", hm.communityHandler.GetFeed)
		public.GET("/community/posts/:id", hm.communityHandler.GetPost)
		public.GET("/community/posts/:id/comments", hm.communityHandler.GetComments)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Study material routes
		materials := v1.Group("/materials")
		{
			materials.POST("", hm.materialHandler.Create)
			materials.GET("", hm.materialHandler.List)
			materials.GET("/search", hm.materialHandler.Search)
			materials.GET("/stats", hm.materialHandler.GetStats)
			materials.GET("/:id", hm.materialHandler.GetByID)
			materials.PUT("/:id", hm.materialHandler.Update)
			materials.DELETE("/:id", hm.materialHandler.Delete)
		}

		// Document routes
		documents := v1.Group("/documents")
		{
			documents.POST("", hm.documentHandler.Upload)
			documents.GET("", hm.documentHandler.List)
			documents.GET("/:id", hm.documentHandler.GetByID)
			documents.GET("/:id/download", hm.documentHandler.Download)
			documents.DELETE("/:id", hm.documentHandler.Delete)
		}

		// Exam result routes
		examResults := v1.Group("/exam-results")
		{
			examResults.POST("", hm.examResultHandler.Record)
			examResults.GET("", hm.examResultHandler.List)
			examResults.GET("/stats", hm.examResultHandler.GetStats)
			examResults.GET("/:id", hm.examResultHandler.GetByID)
			examResults.DELETE("/:id", hm.examResultHandler.Delete)
		}

		// Community routes
		community := v1.Group("/community")
		{
			community.POST("/posts", hm.communityHandler.CreatePost)
			community.PUT("/posts/:id", hm.communityHandler.UpdatePost)
			community.DELETE("/posts/:id", hm.communityHandler.DeletePost)

			community.POST("/posts/:id/like", hm.communityHandler.LikePost)
			community.DELETE("/posts/:id/like", hm.communityHandler.UnlikePost)

			community.POST("/posts/:id/comments", hm.communityHandler.AddComment)
			community.DELETE("/comments/:id", hm.communityHandler.DeleteComment)
		}

		// Activity history routes
		activities := v1.Group("/activities")
		{
			activities.GET("", hm.activityHandler.List)
		}

		// Profile routes
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/me", hm.profileHandler.GetMe)
			profiles.PUT("/me", hm.profileHandler.Update)
			profiles.DELETE("/me", hm.profileHandler.DeleteMe)
			profiles.POST("/me/avatar", hm.profileHandler.UploadAvatar)
			profiles.GET("/search", hm.profileHandler.Search)
			profiles.GET("/:id", hm.profileHandler.GetByID)
		}

		// Export routes
		exports := v1.Group("/exports")
		{
			exports.GET("/exam-results", hm.exportHandler.ExportExamResults)
			exports.GET("/materials", hm.exportHandler.ExportMaterials)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := 200
		health := gin.H{
			"status":  "healthy",
			"service": "studyhub-service",
		}
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			status = 503
			health["status"] = "unhealthy"
		}
		c.JSON(status, health)
	})
}
