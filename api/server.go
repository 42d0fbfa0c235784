package api

import (
	"net/http"
	"time"
	
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/gateway"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/token"
	"github.com/katatrina/gundam-notification/internal/util"
	"github.com/katatrina/gundam-notification/internal/worker"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router              *gin.Engine
	config              *util.Config
	dbStore             db.Store
	notificationService *notification.Service
	gateway             *gateway.Gateway
	eventSender         event.EventSender
	verifier            token.Verifier
	taskDistributor     worker.TaskDistributor // nil khi không cấu hình Redis
	taskInspector       worker.TaskInspector   // nil khi không cấu hình Redis
	upgrader            websocket.Upgrader
}

// NewServer creates a new HTTP server and set up routing.
// taskDistributor and taskInspector may be nil: work is then done inline.
func NewServer(
	config *util.Config,
	store db.Store,
	notificationService *notification.Service,
	gw *gateway.Gateway,
	eventSender event.EventSender,
	verifier token.Verifier,
	taskDistributor worker.TaskDistributor,
	taskInspector worker.TaskInspector,
) *Server {
	server := &Server{
		config:              config,
		dbStore:             store,
		notificationService: notificationService,
		gateway:             gw,
		eventSender:         eventSender,
		verifier:            verifier,
		taskDistributor:     taskDistributor,
		taskInspector:       taskInspector,
	}
	server.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      server.checkOrigin,
	}
	
	server.setupRouter()
	return server
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	
	router.GET("/healthz", server.healthCheck)
	
	v1 := router.Group("/v1")
	
	v1.POST("/tokens/verify", server.verifyAccessToken)
	
	// Kết nối realtime: xác thực bằng message "authenticate" sau khi kết nối
	v1.GET("/ws", server.serveWebSocket)
	
	notificationGroup := v1.Group("/users/me/notifications", authMiddleware(server.verifier))
	{
		notificationGroup.GET("", server.listUserNotifications)
		notificationGroup.GET("unread-count", server.countUnreadNotifications)
		notificationGroup.PATCH(":notificationID/read", server.markNotificationAsRead)
		notificationGroup.PATCH("read-all", server.markAllNotificationsAsRead)
		notificationGroup.GET("stream", server.streamNotifications) // SSE
	}
	
	// API cho các service nội bộ (CRUD sản phẩm, bài viết, bình luận)
	internalGroup := router.Group("/internal", internalKeyMiddleware(server.config.InternalAPIKey))
	{
		internalGroup.POST("events/comment-created", server.handleCommentCreated)
		internalGroup.POST("events/product-liked", server.handleProductLiked)
		internalGroup.POST("events/price-changed", server.handlePriceChanged)
		internalGroup.POST("notifications", server.createSystemNotifications)
	}
	
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	
	server.router = router
	return router
}

// Handler exposes the router so the caller can own the http.Server.
func (server *Server) Handler() http.Handler {
	return server.router
}
