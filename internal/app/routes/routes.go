package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/controllers"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/middleware"
)

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Auth          *controllers.AuthController
	Profile       *controllers.ProfileController
	Consultations *controllers.ConsultationController
	Messages      *controllers.MessageController
	Inbox         *controllers.InboxController
	Notifications *controllers.NotificationController
	Communities   *controllers.CommunityController
	Events        *controllers.EventController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.RateLimiter,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), ctrl.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.PUT("/auth/password", ctrl.Auth.SetPassword)

		profile := authenticated.Group("/profile")
		{
			profile.GET("", ctrl.Profile.GetProfile)
			profile.PUT("", ctrl.Profile.UpdateProfile)
			profile.PATCH("/status", ctrl.Profile.ToggleStatus)
			profile.POST("/image", ctrl.Profile.UploadProfileImage)
			profile.PUT("/push-token", ctrl.Profile.RegisterPushToken)
		}

		consultations := authenticated.Group("/consultations")
		{
			consultations.GET("", ctrl.Consultations.ListConsultations)
			consultations.GET("/counts", ctrl.Consultations.GetCounts)
			consultations.GET("/ws", ctrl.Consultations.WatchConsultations)
			consultations.GET("/:id", ctrl.Consultations.GetConsultation)
			consultations.GET("/:id/actions", ctrl.Consultations.GetActions)
			consultations.POST("/:id/accept", ctrl.Consultations.AcceptConsultation)
			consultations.POST("/:id/decline", ctrl.Consultations.DeclineConsultation)
			consultations.POST("/:id/start", ctrl.Consultations.StartSession)
			consultations.POST("/:id/end", ctrl.Consultations.EndSession)
		}

		messages := authenticated.Group("/messages")
		{
			// Conversation lists
			messages.GET("/inbox", ctrl.Inbox.GetInbox)
			messages.GET("/inbox/ws", ctrl.Inbox.WatchInbox)
			messages.GET("/unread-count", ctrl.Inbox.GetUnreadCount)
			messages.GET("/participants/students", ctrl.Inbox.SearchStudents)
			messages.GET("/participants/admins", ctrl.Inbox.SearchAdmins)

			// One conversation
			messages.GET("/threads/:counterpartId", ctrl.Messages.GetThread)
			messages.POST("/threads/:counterpartId", ctrl.Messages.SendText)
			messages.POST("/threads/:counterpartId/image", ctrl.Messages.SendImage)
			messages.POST("/threads/:counterpartId/read", ctrl.Messages.MarkThreadRead)
			messages.GET("/threads/:counterpartId/ws", ctrl.Messages.WatchThread)
			messages.DELETE("/:messageId", ctrl.Messages.DeleteMessage)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", ctrl.Notifications.ListNotifications)
			notifications.GET("/unread-count", ctrl.Notifications.GetUnreadCount)
			notifications.GET("/ws", ctrl.Notifications.WatchNotifications)
			notifications.POST("/read-all", ctrl.Notifications.MarkAllRead)
			notifications.POST("/:id/read", ctrl.Notifications.MarkRead)
			notifications.DELETE("/:id", ctrl.Notifications.DeleteNotification)
		}

		communities := authenticated.Group("/communities")
		{
			communities.GET("", ctrl.Communities.ListCommunities)
			communities.GET("/requests", ctrl.Communities.ListRequests)
			communities.POST("/requests", ctrl.Communities.RequestCommunity)
			communities.GET("/:id", ctrl.Communities.GetCommunity)
			communities.GET("/:id/messages", ctrl.Communities.GetMessages)
			communities.POST("/:id/messages", ctrl.Communities.SendText)
			communities.POST("/:id/images", ctrl.Communities.SendImage)
			communities.POST("/:id/documents", ctrl.Communities.SendPDF)
			communities.GET("/:id/ws", ctrl.Communities.WatchCommunity)
		}

		events := authenticated.Group("/events")
		{
			events.GET("", ctrl.Events.ListEvents)
			events.GET("/ws", ctrl.Events.WatchEvents)
			events.GET("/:id", ctrl.Events.GetEvent)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}
