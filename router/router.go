package router

import (
	"net/http"

	"commentflow/config"
	"commentflow/controllers"
	dbpkg "commentflow/db"
	"commentflow/engine"
	"commentflow/middleware"

	"github.com/gin-gonic/gin"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/jinzhu/gorm"
)

type Dependencies struct {
	DB         *gorm.DB
	Gateway    *engine.Gateway
	Subscriber controllers.PageSubscriber
	Logger     glog.Logger
}

// Initialize wires all routes and middlewares: the public webhook, health,
// and the admin configuration API.
func Initialize(r *gin.Engine, cfg config.Configuration, deps Dependencies) {
	logger := glog.Ensure(deps.Logger)

	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.ClientURL))
	r.Use(dbpkg.SetDBtoContext(deps.DB))

	r.GET("/health", func(c *gin.Context) {
		if err := deps.DB.DB().PingContext(c.Request.Context()); err != nil {
			controllers.RespondError(c, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		controllers.RespondSuccess(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Webhook (Instagram)
	api.GET("/webhook", Logger(logger), controllers.WebhookVerify(deps.Gateway))
	api.POST("/webhook", Logger(logger), controllers.WebhookUpdate(deps.Gateway))

	// Configuration (admin token)
	admin := api.Group("")
	admin.Use(controllers.AdminRequired(cfg.AdminToken))

	admin.GET("/integrations", Logger(logger), controllers.GetIntegration)
	admin.PUT("/integrations", Logger(logger), controllers.UpsertIntegration)
	admin.POST("/integrations/subscribe", Logger(logger), controllers.SubscribeIntegration(deps.Subscriber))

	admin.GET("/automation", Logger(logger), controllers.GetCommentAutomation)
	admin.PUT("/automation", Logger(logger), controllers.UpsertCommentAutomation(deps.Subscriber, logger))
	admin.GET("/chatbot", Logger(logger), controllers.GetChatbotAutomation)
	admin.PUT("/chatbot", Logger(logger), controllers.UpsertChatbotAutomation(deps.Subscriber, logger))

	// Runs
	admin.GET("/runs", Logger(logger), controllers.GetRuns)
	admin.GET("/runs/:id", Logger(logger), controllers.GetRunByID)

	logger.Info("routes initialized")
}
