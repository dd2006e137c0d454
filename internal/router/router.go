package router

import (
	"time"

	"inventorypos/internal/config"
	"inventorypos/internal/handler"
	"inventorypos/internal/infra"
	"inventorypos/internal/middleware"
	"inventorypos/internal/model"
	"inventorypos/internal/repository"
	"inventorypos/internal/service"
	"inventorypos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
// Dispatcher may be nil, in which case no async jobs are queued.
type Deps struct {
	Dispatcher *worker.Dispatcher
	Mailer     *infra.Mailer
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
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
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo, rdb)
	productSvc := service.NewProductService(productRepo, categoryRepo, supplierRepo, historyRepo, rdb)
	saleSvc := service.NewSaleService(saleRepo, productRepo, paymentRepo, inventorySvc, deps.Dispatcher, rdb, service.SaleOptions{
		InvoiceRetryLimit: cfg.InvoiceRetryLimit,
		Receipt:           ReceiptOptions(cfg),
	})
	paymentSvc := service.NewPaymentService(paymentRepo, saleRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc, paymentSvc)
	priceH := handler.NewPriceCheckHandler(productRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.Mailer))
	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)
	r.GET("/v1/price/:sku", priceH.GetPrice)

	// Protected routes
	anyRole := middleware.RequireRole(model.RoleStaff, model.RoleManager, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleManager, model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Sales and payments: every staff role
		v1.POST("/sales", anyRole, salesH.ProcessSale)
		v1.GET("/sales/:id", anyRole, salesH.GetSale)
		v1.PATCH("/sales/:id/receipt", anyRole, salesH.UpdateReceipt)
		v1.GET("/sales/:id/receipt.pdf", anyRole, salesH.ReceiptPDF)
		v1.POST("/sales/:id/payments", anyRole, salesH.RecordPayment)
		v1.GET("/sales/:id/payments", anyRole, salesH.PaymentHistory)
		v1.GET("/debtors", anyRole, salesH.ListDebtors)

		// Catalog reads
		v1.GET("/products/search", anyRole, productsH.Search)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.GET("/products/:id/price-history", anyRole, productsH.PriceHistory)

		// Catalog writes and stock corrections: manager or admin
		v1.POST("/products", managers, productsH.Create)
		v1.PUT("/products/:id", managers, productsH.Update)
		v1.DELETE("/products/:id", managers, productsH.Deactivate)
		v1.PATCH("/products/:id/stock", managers, inventoryH.AdjustStock)

		v1.GET("/inventory/movements", managers, inventoryH.ListMovements)
		v1.GET("/inventory/low-stock", anyRole, inventoryH.LowStock)

		// Staff accounts: admin only
		staff := v1.Group("/staff", middleware.RequireRole(model.RoleAdmin))
		{
			staff.POST("", authH.CreateStaff)
			staff.GET("", authH.ListStaff)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// ReceiptOptions derives the receipt layout settings from config.
func ReceiptOptions(cfg *config.Config) infra.ReceiptOptions {
	return infra.ReceiptOptions{StoreName: cfg.StoreName, Currency: cfg.CurrencyCode}
}
