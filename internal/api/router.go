package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/api/handler"
	"github.com/mihintamu/scholarai-server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	subjectHandler      *handler.SubjectHandler
	knowledgeHandler    *handler.KnowledgeHandler
	contentHandler      *handler.ContentHandler
	subscriptionHandler *handler.SubscriptionHandler
	analyticsHandler    *handler.AnalyticsHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	subjectHandler *handler.SubjectHandler,
	knowledgeHandler *handler.KnowledgeHandler,
	contentHandler *handler.ContentHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	analyticsHandler *handler.AnalyticsHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		subjectHandler:      subjectHandler,
		knowledgeHandler:    knowledgeHandler,
		contentHandler:      contentHandler,
		subscriptionHandler: subscriptionHandler,
		analyticsHandler:    analyticsHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.POST("/admin-login", r.authHandler.AdminLogin)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 公开接口 - 科目、内容类型、套餐
		api.GET("/subjects", r.subjectHandler.List)
		api.GET("/content/types", r.contentHandler.Types)
		api.GET("/subscription/plans", r.subscriptionHandler.Plans)
		api.GET("/subscription/razorpay-key", r.subscriptionHandler.RazorpayKey)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 订阅
			subscription := authenticated.Group("/subscription")
			{
				subscription.GET("", r.subscriptionHandler.Get)
				subscription.POST("/confirm", r.subscriptionHandler.ConfirmPayment)
			}

			// 内容生成与历史
			content := authenticated.Group("/content")
			{
				content.POST("/generate", r.contentHandler.Generate)
				content.GET("/history", r.contentHandler.List)
				content.GET("/history/:id", r.contentHandler.Get)
				content.GET("/history/:id/download", r.contentHandler.Download)
			}
		}

		// 管理员接口
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly())
		{
			admin.POST("/subjects", r.subjectHandler.Create)
			admin.DELETE("/subjects/:id", r.subjectHandler.Delete)

			knowledge := admin.Group("/knowledge")
			{
				knowledge.GET("", r.knowledgeHandler.List)
				knowledge.POST("", r.knowledgeHandler.Create)
				knowledge.GET("/:id", r.knowledgeHandler.Get)
				knowledge.PUT("/:id", r.knowledgeHandler.Update)
				knowledge.DELETE("/:id", r.knowledgeHandler.Delete)
				knowledge.POST("/upload", r.knowledgeHandler.Upload)
				knowledge.POST("/parse", r.knowledgeHandler.Parse)
			}

			analytics := admin.Group("/analytics")
			{
				analytics.GET("/sales", r.analyticsHandler.Sales)
				analytics.GET("/users", r.analyticsHandler.Users)
				analytics.GET("/contents", r.analyticsHandler.Contents)
			}
		}
	}

	return engine
}
