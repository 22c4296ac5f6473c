package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/config"
	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/pkg/mailer"
	"gabconcours.ga/backend/pkg/metrics"
	"gabconcours.ga/backend/pkg/storage"

	adminHttp "gabconcours.ga/backend/internal/modules/admin/delivery/http"
	adminRepo "gabconcours.ga/backend/internal/modules/admin/repository"
	adminService "gabconcours.ga/backend/internal/modules/admin/service"

	candidateHttp "gabconcours.ga/backend/internal/modules/candidate/delivery/http"
	candidateRepo "gabconcours.ga/backend/internal/modules/candidate/repository"
	candidateService "gabconcours.ga/backend/internal/modules/candidate/service"

	contestHttp "gabconcours.ga/backend/internal/modules/contest/delivery/http"
	contestRepo "gabconcours.ga/backend/internal/modules/contest/repository"
	contestService "gabconcours.ga/backend/internal/modules/contest/service"

	documentHttp "gabconcours.ga/backend/internal/modules/document/delivery/http"
	documentRepo "gabconcours.ga/backend/internal/modules/document/repository"
	documentService "gabconcours.ga/backend/internal/modules/document/service"

	notifHttp "gabconcours.ga/backend/internal/modules/notification/delivery/http"
	notifRepo "gabconcours.ga/backend/internal/modules/notification/repository"
	notifService "gabconcours.ga/backend/internal/modules/notification/service"

	participationHttp "gabconcours.ga/backend/internal/modules/participation/delivery/http"
	participationRepo "gabconcours.ga/backend/internal/modules/participation/repository"
	participationService "gabconcours.ga/backend/internal/modules/participation/service"

	paymentHttp "gabconcours.ga/backend/internal/modules/payment/delivery/http"
	paymentRepo "gabconcours.ga/backend/internal/modules/payment/repository"
	paymentService "gabconcours.ga/backend/internal/modules/payment/service"

	progressionHttp "gabconcours.ga/backend/internal/modules/progression/delivery/http"
	progressionService "gabconcours.ga/backend/internal/modules/progression/service"

	reviewHttp "gabconcours.ga/backend/internal/modules/review/delivery/http"
	reviewService "gabconcours.ga/backend/internal/modules/review/service"

	searchService "gabconcours.ga/backend/internal/modules/search/service"

	statHttp "gabconcours.ga/backend/internal/modules/stat/delivery/http"
	statService "gabconcours.ga/backend/internal/modules/stat/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CleanupInterval is how often orphaned uploads are swept.
const CleanupInterval = 12 * time.Hour

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	metrics     *metrics.Metrics

	dispatcher *notifService.Dispatcher
	documents  documentService.DocumentService
}

// handlers groups every HTTP handler the router exposes.
type handlers struct {
	admin         *adminHttp.AdminHandler
	candidate     *candidateHttp.CandidateHandler
	contest       *contestHttp.ContestHandler
	document      *documentHttp.DocumentHandler
	dossier       *progressionHttp.DossierHandler
	notification  *notifHttp.NotificationHandler
	participation *participationHttp.ParticipationHandler
	payment       *paymentHttp.PaymentHandler
	review        *reviewHttp.ReviewHandler
	stat          *statHttp.StatHandler
}

// NewServer wires repositories, services and handlers. redisClient may be nil.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	mx := metrics.New(prometheus.DefaultRegisterer)

	files, err := storage.NewLocalStorage(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, err
	}

	var photos storage.ImageStorage = files
	if cfg.CloudinaryURL != "" {
		photos, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
	}

	var searcher searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searcher = searchService.NewSearchService(meiliClient, cfg.MeiliMasterKey)
	} else {
		log.Println("MEILISEARCH_HOST not set, candidate search falls back to the database")
	}

	smtp := mailer.NewSMTPMailer(mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	})

	// Notification Module
	var queue notifService.Queue
	if redisClient != nil {
		queue = notifService.NewRedisQueue(redisClient)
	} else {
		queue = notifService.NewMemoryQueue()
	}
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, queue)
	dispatcher := notifService.NewDispatcher(notificationRepository, queue, redisClient, smtp, cfg.AppURL, mx)

	adminRepository := adminRepo.NewAdminRepository(db)
	contestRepository := contestRepo.NewContestRepository(db)
	candidateRepository := candidateRepo.NewCandidateRepository(db)
	participationRepository := participationRepo.NewParticipationRepository(db)
	documentRepository := documentRepo.NewDocumentRepository(db)
	paymentRepository := paymentRepo.NewPaymentRepository(db)

	participationSvc := participationService.NewParticipationService(
		participationRepository, candidateRepository, contestRepository,
		documentRepository, paymentRepository, notificationSvc,
	)
	candidateSvc := candidateService.NewCandidateService(candidateRepository, contestRepository, participationSvc, photos, searcher, cfg.MaxUploadSize)
	documentSvc := documentService.NewDocumentService(documentRepository, candidateRepository, files, participationSvc, notificationSvc, cfg.MaxUploadSize)
	paymentSvc := paymentService.NewPaymentService(paymentRepository, candidateRepository, participationRepository, participationSvc, notificationSvc)
	dossierSvc := progressionService.NewDossierService(candidateRepository, participationRepository, documentRepository, paymentRepository)
	reviewSvc := reviewService.NewReviewService(candidateRepository, participationRepository, documentRepository, documentSvc, paymentSvc, searcher)
	statSvc := statService.NewStatService(candidateRepository, contestRepository, paymentRepository, documentRepository, participationRepository, redisClient)

	authSvc := adminService.NewAuthService(adminRepository, redisClient, adminService.AuthOptions{
		Secret:         cfg.JWTSecret,
		TokenTTL:       cfg.JWTTTL,
		LoginRateLimit: cfg.LoginRateLimit,
		Metrics:        mx,
	})
	managementSvc := adminService.NewManagementService(adminRepository, contestRepository, smtp, strings.TrimSuffix(cfg.AppURL, "/")+"/admin/login")

	h := handlers{
		admin:         adminHttp.NewAdminHandler(authSvc, managementSvc),
		candidate:     candidateHttp.NewCandidateHandler(candidateSvc),
		contest:       contestHttp.NewContestHandler(contestService.NewContestService(contestRepository)),
		document:      documentHttp.NewDocumentHandler(documentSvc),
		dossier:       progressionHttp.NewDossierHandler(dossierSvc),
		notification:  notifHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.Origins()),
		participation: participationHttp.NewParticipationHandler(participationSvc),
		payment:       paymentHttp.NewPaymentHandler(paymentSvc),
		review:        reviewHttp.NewReviewHandler(reviewSvc),
		stat:          statHttp.NewStatHandler(statSvc),
	}

	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(mx.Middleware())

	router.Static("/uploads/"+storage.FolderPhotos, filepath.Join(cfg.UploadDir, storage.FolderPhotos))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerRoutes(router, h, middleware.NewAuthMiddleware(adminRepository, cfg.JWTSecret))

	return &Server{
		cfg:         cfg,
		engine:      router,
		db:          db,
		redisClient: redisClient,
		metrics:     mx,
		dispatcher:  dispatcher,
		documents:   documentSvc,
	}, nil
}

func registerRoutes(router *gin.Engine, h handlers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes: candidates are identified by NUPCAN only
	candidats := api.Group("/candidats")
	{
		candidats.POST("", h.candidate.Register)
		candidats.GET("/nupcan/:nupcan", h.candidate.GetByNupcan)
		candidats.GET("/check-nupcan", h.candidate.CheckNupcan)
		candidats.PUT("/nupcan/:nupcan", h.candidate.Update)
	}

	concours := api.Group("/concours")
	{
		concours.GET("", h.contest.ListContests)
		concours.GET("/:id", h.contest.GetContest)
		concours.GET("/:id/filieres", h.contest.ListTracks)
	}
	api.GET("/provinces", h.contest.ListProvinces)
	api.GET("/etablissements", h.contest.ListInstitutions)
	api.GET("/matieres", h.contest.ListSubjects)

	participations := api.Group("/participations")
	{
		participations.POST("", h.participation.Create)
		participations.GET("/numero/:numero", h.participation.GetByApplicationNumber)
		participations.GET("/candidat/:nupcan", h.participation.GetByNupcan)
	}

	documents := api.Group("/documents")
	{
		documents.POST("", h.document.Upload)
		documents.GET("/nupcan/:nupcan", h.document.ListByNupcan)
		documents.GET("/:id/download", h.document.Download)
	}
	api.GET("/dossiers/nupcan/:nupcan", h.document.ListByNupcan)
	api.GET("/dossiers/:nupcan", h.dossier.GetByNupcan)

	paiements := api.Group("/paiements")
	{
		paiements.POST("", h.payment.Create)
		paiements.GET("/nupcan/:nupcan", h.payment.GetByNupcan)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("/candidat/:nupcan", h.notification.ListForCandidate)
		notifications.PUT("/candidat/:nupcan/read-all", h.notification.MarkAllAsRead)
		notifications.PUT("/:id/read", h.notification.MarkAsRead)
		notifications.GET("/ws", h.notification.Stream)
	}

	api.POST("/admin/auth/login", h.admin.Login)

	// Protected routes (apply auth middleware explicitly)
	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAuth())
	{
		adminGroup.GET("/auth/me", h.admin.Me)
		adminGroup.PUT("/auth/change-password", h.admin.ChangePassword)

		adminGroup.GET("/candidats", h.candidate.List)
		adminGroup.GET("/candidats/search", h.review.SearchCandidates)
		adminGroup.GET("/search/token", h.review.SearchToken)

		adminGroup.GET("/etablissement/:id/candidats", h.review.InstitutionCandidates)
		adminGroup.GET("/etablissement/:id/dossiers", h.review.InstitutionDossiers)
		adminGroup.GET("/etablissement/:id/paiements", h.review.InstitutionPayments)

		adminGroup.POST("/documents/:id/validate", h.review.ValidateDocument)
		adminGroup.PUT("/paiements/:id/validate", h.review.ValidatePayment)
		adminGroup.PUT("/paiements/:id/reject", h.review.RejectPayment)

		adminGroup.PUT("/participations/:id", h.participation.Update)
		adminGroup.PUT("/participations/:id/decision", h.participation.Decide)

		adminGroup.GET("/statistics", h.stat.Overview)
		adminGroup.GET("/document-validation/stats", h.stat.DocumentValidation)

		super := adminGroup.Group("")
		super.Use(authMiddleware.RequireSuperAdmin())
		{
			super.DELETE("/participations/:id", h.participation.Delete)

			super.POST("/concours", h.contest.CreateContest)
			super.DELETE("/concours/:id", h.contest.DeleteContest)

			super.POST("/matieres", h.contest.CreateSubject)
			super.PUT("/matieres/:id", h.contest.UpdateSubject)
			super.DELETE("/matieres/:id", h.contest.DeleteSubject)

			super.GET("/management/admins", h.admin.ListAdmins)
			super.POST("/management/admins", h.admin.CreateAdmin)
			super.PUT("/management/admins/:id", h.admin.UpdateAdmin)
			super.DELETE("/management/admins/:id", h.admin.DeleteAdmin)
		}
	}
}

// Run serves HTTP and the background workers until ctx is cancelled or one of them fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		s.dispatcher.Run(ctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(notifService.RequeueInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.requeueNotifications(ctx)
			}
		}
	})

	// Start Orphan Cleanup Job (Background)
	g.Go(func() error {
		ticker := time.NewTicker(CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.cleanupOrphans(ctx)
			}
		}
	})

	return g.Wait()
}

func (s *Server) requeueNotifications(ctx context.Context) {
	requeued, err := s.dispatcher.Requeue(ctx)
	if err != nil {
		log.Printf("Error requeueing notifications: %v", err)
	}
	if requeued > 0 {
		log.Printf("Requeued %d unsent notification(s)", requeued)
	}
}

func (s *Server) cleanupOrphans(ctx context.Context) {
	log.Println("Running orphan upload cleanup...")
	removed, err := s.documents.CleanupOrphans(ctx)
	if err != nil {
		log.Printf("Error cleaning up orphan uploads: %v", err)
		return
	}
	s.metrics.AddOrphansRemoved(removed)
	log.Printf("Orphan upload cleanup completed, %d file(s) removed", removed)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
