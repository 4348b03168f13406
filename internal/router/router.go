package router

import (
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/config"
	"github.com/onnez7/lenzoocrm-sub000/internal/handler"
	"github.com/onnez7/lenzoocrm-sub000/internal/middleware"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"
	"github.com/onnez7/lenzoocrm-sub000/internal/service"
	"github.com/onnez7/lenzoocrm-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	cashierRepo := repository.NewCashierRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	clientSvc := service.NewClientService(clientRepo)
	cashierSvc := service.NewCashierService(cashierRepo, orderRepo, receivableRepo)
	orderSvc := service.NewOrderService(orderRepo, cashierSvc, cashierRepo, productRepo, employeeRepo, clientRepo, dispatcher)
	receivableSvc := service.NewReceivableService(receivableRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cashierH := handler.NewCashierHandler(cashierSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	receivableH := handler.NewReceivableHandler(receivableSvc)
	productH := handler.NewProductHandler(productRepo, rdb)
	clientH := handler.NewClientHandler(clientSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("EMPLOYEE", "MANAGER", "ADMIN")
	managerUp := middleware.RequireRole("MANAGER", "ADMIN")
	adminOnly := middleware.RequireRole("ADMIN")

	v1 := r.Group("/v1", jwtMW)
	{
		cashier := v1.Group("/cashier")
		{
			cashier.GET("/open-session", anyRole, cashierH.GetOpen)
			cashier.POST("/open", anyRole, cashierH.Open)
			cashier.POST("/close", anyRole, cashierH.Close)
			cashier.POST("/sangria", anyRole, cashierH.Sangria)
			cashier.GET("/:id/sangrias", anyRole, cashierH.ListSangrias)
			cashier.GET("/history", managerUp, cashierH.History)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", anyRole, orderH.Create)
			orders.GET("", anyRole, orderH.List)
			orders.GET("/:id", anyRole, orderH.Get)
			orders.PATCH("/:id/status", anyRole, orderH.UpdateStatus)
			orders.POST("/:id/finalize", anyRole, orderH.Finalize)
			orders.PUT("/:id", anyRole, orderH.Update)
			orders.DELETE("/:id", adminOnly, orderH.Delete)
		}

		receivables := v1.Group("/receivables", managerUp)
		{
			receivables.GET("", receivableH.List)
			receivables.PATCH("/:id/pay", receivableH.Pay)
		}

		v1.GET("/products", anyRole, productH.List)
		v1.GET("/products/:id", anyRole, productH.Get)

		v1.POST("/clients", anyRole, clientH.Create)
		v1.GET("/clients", anyRole, clientH.List)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
