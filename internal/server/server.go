package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"farebox/internal/auth"
	"farebox/internal/config"
	"farebox/internal/geo"
	"farebox/internal/notify"
	"farebox/internal/pass"
	"farebox/internal/payment"
	"farebox/internal/scantoken"
	"farebox/internal/ticket"
	"farebox/internal/trip"
	"farebox/internal/user"
	"farebox/internal/wallet"
)

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	config   *config.Config
	notifier *notify.Service
	httpSrv  *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service, redisClient *redis.Client) (*Server, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	codec, err := scantoken.NewCodec(cfg.ScanTokenKey)
	if err != nil {
		return nil, err
	}
	tokenService := scantoken.NewService(codec, redisClient)

	walletRepo := wallet.NewRepository(db)
	tripRepo := trip.NewRepository(db)
	passRepo := pass.NewRepository(db)
	ticketRepo := ticket.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	fares := geo.FareCalc{PerKmCents: cfg.FarePerKmCents, MinimumCents: cfg.MinimumFareCents}

	userHandler := user.NewHandler(user.NewService(user.NewRepository(db), cfg.JWTSecret))
	tripHandler := trip.NewHandler(trip.NewService(tripRepo, walletRepo, fares, notifier))
	walletHandler := wallet.NewHandler(db)
	passHandler := pass.NewHandler(pass.NewRegistry(passRepo), passRepo, tokenService)
	ticketHandler := ticket.NewHandler(db)
	paymentHandler := payment.NewHandler(paymentRepo, walletRepo, passRepo, ticketRepo)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/trips/start", tripHandler.StartTrip)
		protected.PUT("/trips/:tripID/end", tripHandler.EndTrip)
		protected.GET("/trips/active", tripHandler.GetActiveTrip)
		protected.GET("/trips", tripHandler.ListMyTrips)

		protected.GET("/wallet", walletHandler.GetWallet)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.POST("/passes/scan", passHandler.RecordScan)
		protected.GET("/passes/usages", passHandler.ListMyUsages)
		protected.GET("/passes/current", passHandler.CurrentPass)
		protected.POST("/passes/token", passHandler.IssueToken)
		protected.POST("/passes/token/decode", passHandler.DecodeToken)

		protected.GET("/tickets", ticketHandler.ListMyTickets)

		protected.POST("/payments/checkout", paymentHandler.CreateCheckout)
	}

	adminMiddleware := auth.RequireRole(auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/trips/unsettled", tripHandler.ListUnsettled)
		admin.GET("/passes/usages", passHandler.ListAllUsages)
		admin.PUT("/passes/usages/:usageID/verify", passHandler.VerifyUsage)
		admin.POST("/wallets/:riderID/credit", walletHandler.Credit)
		admin.POST("/wallets/:riderID/debit", walletHandler.Debit)
	}

	router.POST("/webhooks/payment", paymentHandler.HandleCompleted)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router:   router,
		db:       db,
		config:   cfg,
		notifier: notifier,
	}, nil
}

func (s *Server) Start(port string) error {
	s.httpSrv = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
