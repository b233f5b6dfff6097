package router

import (
	"github.com/gin-gonic/gin"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/landerp/backend/internal/infrastructure/logger"
	"github.com/landerp/backend/internal/interfaces/http/handler"
	"github.com/landerp/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Client       *handler.ClientHandler
	Land         *handler.LandHandler
	Sale         *handler.SaleHandler
	Cancellation *handler.CancellationHandler
	Receipt      *handler.ReceiptHandler
	Expense      *handler.ExpenseHandler
	Account      *handler.AccountHandler
	Settings     *handler.SettingsHandler
}

// Options configures the engine's middleware chain
type Options struct {
	ServiceName      string
	Logger           *zap.Logger
	HTTP             config.HTTPConfig
	Meter            metric.Meter // nil disables HTTP metrics
	TracingEnabled   bool
	ProfilingEnabled bool // label profiles per route, set when pyroscope runs
	HSTS             bool
	JWT              middleware.JWTConfig
	Swagger          middleware.SwaggerConfig
}

var (
	adminOnly   = middleware.RequireRole(shared.RoleAdmin)
	officeStaff = middleware.RequireRole(shared.RoleAdmin, shared.RoleAccountManager)
	hofOrAdmin  = middleware.RequireRole(shared.RoleHOF, shared.RoleAdmin)
	anyApprover = middleware.RequireRole(shared.RoleAdmin, shared.RoleAccountManager, shared.RoleHOF)
)

// NewEngine builds the gin engine with the full middleware chain and routes.
// Role guards here are coarse; per-tier approval rules live in the domain.
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.JWT.Logger == nil {
		opts.JWT.Logger = log
	}

	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		middleware.SpanErrorMarker(),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.HTTPMetrics(opts.Meter),
		middleware.CORS(cors),
		middleware.Secure(opts.HSTS),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}

	// the documentation is registered by the docs package, imported by main
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger, middleware.JWTAuth(opts.JWT)),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := NewRouter(engine, WithMiddleware(
		middleware.JWTAuth(opts.JWT),
		middleware.SpanAttributes(),
		middleware.Profiling(opts.ProfilingEnabled),
	))
	mounted := 0
	for _, g := range []*DomainGroup{
		authRoutes(h.Auth),
		clientRoutes(h.Client),
		landRoutes(h.Land),
		saleRoutes(h.Sale, h.Cancellation),
		cancellationRoutes(h.Cancellation),
		financeRoutes(h.Receipt, h.Expense, h.Account),
		settingsRoutes(h.Settings),
	} {
		r.Register(g)
		mounted += g.RouteCount()
	}
	r.Setup()
	log.Debug("API routes mounted", zap.Int("routes", mounted))

	return engine, nil
}

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	return NewDomainGroup("/auth").
		GET("/me", h.Me).
		POST("/logout", h.Logout).
		POST("/users/:id/revoke", adminOnly, h.RevokeUserSessions)
}

func clientRoutes(h *handler.ClientHandler) *DomainGroup {
	return NewDomainGroup("/clients").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", officeStaff, h.Create).
		PUT("/:id", officeStaff, h.Update).
		POST("/:id/activate", officeStaff, h.Activate).
		POST("/:id/deactivate", officeStaff, h.Deactivate).
		DELETE("/:id", adminOnly, h.Delete)
}

func landRoutes(h *handler.LandHandler) *DomainGroup {
	g := NewDomainGroup("/land")
	g.Group("/rs-numbers").
		GET("", h.ListRSNumbers).
		GET("/:id", h.GetRSNumber).
		POST("", adminOnly, h.RegisterRSNumber).
		PUT("/:id", adminOnly, h.UpdateRSNumber).
		POST("/:id/correct-area", adminOnly, h.CorrectArea).
		POST("/:id/reconcile", adminOnly, h.Reconcile)
	g.Group("/plots").
		GET("", h.ListPlots).
		GET("/:id", h.GetPlot).
		POST("", adminOnly, h.CreatePlot).
		PUT("/:id/resize", adminOnly, h.ResizePlot).
		POST("/:id/reserve", officeStaff, h.ReservePlot).
		POST("/:id/block", adminOnly, h.BlockPlot).
		POST("/:id/unblock", adminOnly, h.UnblockPlot).
		DELETE("/:id", adminOnly, h.DeletePlot)
	return g
}

func saleRoutes(h *handler.SaleHandler, ch *handler.CancellationHandler) *DomainGroup {
	return NewDomainGroup("/sales").
		GET("", h.List).
		GET("/installments/due", h.DueInstallments).
		GET("/:id", h.GetByID).
		GET("/:id/receipts", h.Receipts).
		GET("/:id/refund-preview", h.RefundPreview).
		POST("", officeStaff, h.Create).
		POST("/:id/hold", officeStaff, h.Hold).
		POST("/:id/resume", officeStaff, h.Resume).
		POST("/:id/cancellations", officeStaff, ch.Request)
}

func cancellationRoutes(h *handler.CancellationHandler) *DomainGroup {
	return NewDomainGroup("/cancellations").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("/:id/approve", hofOrAdmin, h.Approve).
		POST("/:id/reject", hofOrAdmin, h.Reject).
		POST("/:id/refunds", officeStaff, h.RecordRefund)
}

func financeRoutes(rh *handler.ReceiptHandler, eh *handler.ExpenseHandler, ah *handler.AccountHandler) *DomainGroup {
	g := NewDomainGroup("/finance")
	g.Group("/receipts").
		GET("", rh.List).
		GET("/:id", rh.GetByID).
		GET("/:id/history", rh.History).
		GET("/:id/attachment", rh.Download).
		POST("", officeStaff, rh.Create).
		PUT("/:id", officeStaff, rh.Update).
		POST("/:id/submit", officeStaff, rh.Submit).
		POST("/:id/approve", anyApprover, rh.Approve).
		POST("/:id/reject", anyApprover, rh.Reject).
		POST("/:id/attachment", officeStaff, rh.RequestUpload)
	g.Group("/expenses").
		GET("", eh.List).
		GET("/:id", eh.GetByID).
		GET("/:id/history", eh.History).
		GET("/:id/attachment", eh.Download).
		POST("", officeStaff, eh.Create).
		PUT("/:id", officeStaff, eh.Update).
		POST("/:id/submit", officeStaff, eh.Submit).
		POST("/:id/approve", anyApprover, eh.Approve).
		POST("/:id/reject", anyApprover, eh.Reject).
		POST("/:id/attachment", officeStaff, eh.RequestUpload)
	g.Group("/expense-categories").
		GET("", eh.ListCategories).
		POST("", adminOnly, eh.CreateCategory).
		POST("/:id/activate", adminOnly, eh.ActivateCategory).
		POST("/:id/deactivate", adminOnly, eh.DeactivateCategory)
	g.Group("/accounts").
		GET("", ah.List).
		GET("/:id", ah.GetByID).
		GET("/:id/transactions", ah.Transactions).
		POST("", adminOnly, ah.Create).
		PUT("/:id", adminOnly, ah.Update).
		POST("/:id/deactivate", adminOnly, ah.Deactivate).
		POST("/:id/reconcile", adminOnly, ah.Reconcile)
	return g
}

func settingsRoutes(h *handler.SettingsHandler) *DomainGroup {
	return NewDomainGroup("/settings").
		GET("", h.Get).
		PUT("", adminOnly, h.Update)
}
