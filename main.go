package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helper/config"
	"helper/cron"
	"helper/database"
	dispatchRepo "helper/database/repository/dispatch"
	inboxRepo "helper/database/repository/inbox"
	missionRepoPkg "helper/database/repository/mission"
	providerRepoPkg "helper/database/repository/provider"
	userRepoPkg "helper/database/repository/user"
	"helper/handlers"
	"helper/models"
	"helper/routes"
	"helper/services/dispatch"
	"helper/services/mission"
	"helper/services/notification"
	"helper/services/payment"
	"helper/services/user"
	"helper/services/watch"
	"helper/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	db := database.DB()

	// Repositories.
	missionRepo := missionRepoPkg.NewMongoMissionRepo(db)
	providerRepo := providerRepoPkg.NewMongoProviderRepo(db)
	inbox := inboxRepo.NewMongoInboxRepo(db)
	dispatchLog := dispatchRepo.NewMongoDispatchRepo(db)
	users := userRepoPkg.NewMongoUserRepo(db)

	for name, ensure := range map[string]func() error{
		"missions":  missionRepo.EnsureIndexes,
		"providers": providerRepo.EnsureIndexes,
		"inbox":     inbox.EnsureIndexes,
		"dispatch":  dispatchLog.EnsureIndexes,
		"users":     users.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Fatal("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// Task queue client shared by mission creation and the payment webhook.
	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()

	// Candidate policy is configurable; radius search is the default.
	var policy dispatch.CandidatePolicy
	switch config.AppConfig.DispatchPolicy {
	case "topn":
		policy = &dispatch.TopNPolicy{Providers: providerRepo, Limit: config.AppConfig.DispatchTopN}
	default:
		policy = &dispatch.RadiusPolicy{Providers: providerRepo, DefaultRadiusKm: config.AppConfig.DispatchRadiusKm}
	}

	// Services.
	notifier := notification.NewFCMService(users, providerRepo)
	dispatcher := &dispatch.Dispatcher{
		Missions:  missionRepo,
		Providers: providerRepo,
		Inbox:     inbox,
		Log:       dispatchLog,
		Policy:    policy,
		Notifier:  notifier,
		Queue:     queueClient,
		Logger:    logger,
	}
	missionService := &mission.DefaultMissionService{
		Repo:      missionRepo,
		Inbox:     inbox,
		Providers: providerRepo,
		Queue:     queueClient,
		Logger:    logger,
	}
	paymentService := payment.NewPaymentService(missionRepo, queueClient, logger)
	userService := user.NewUserService(users, providerRepo, logger)
	watchOpener := watch.NewMongoOpener(db, inbox, missionRepo, logger)
	watchPoller := watch.NewPoller(missionRepo)

	// Background dispatch worker.
	cron.InitDispatchWorker(dispatcher, logger)

	// HTTP surface.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &handlers.HandlerBundle{
		RegisterClient:   handlers.RegisterClientHandler(userService),
		LoginClient:      handlers.LoginHandler(userService, models.RoleClient),
		RegisterProvider: handlers.RegisterProviderHandler(userService),
		LoginProvider:    handlers.LoginHandler(userService, models.RoleProvider),
		GetProfile:       handlers.GetProfileHandler(userService),
		UpdateFCMToken:   handlers.UpdateFCMTokenHandler(userService),

		ListServices: handlers.ListServicesHandler(),
		Quote:        handlers.QuoteHandler(),

		CreateMission:   handlers.CreateMissionHandler(missionService),
		GetMission:      handlers.GetMissionHandler(missionService),
		WatchMission:    handlers.WatchMissionHandler(watchOpener, watchPoller, logger),
		CancelMission:   handlers.CancelMissionHandler(missionService),
		StartMission:    handlers.StartMissionHandler(missionService),
		CompleteMission: handlers.CompleteMissionHandler(missionService),

		ListInbox:    handlers.ListInboxHandler(inbox),
		AcceptOffer:  handlers.AcceptOfferHandler(dispatcher),
		DeclineOffer: handlers.DeclineOfferHandler(dispatcher),

		PaymentIntent:  handlers.PaymentIntentHandler(paymentService),
		PaymentWebhook: handlers.PaymentWebhookHandler(paymentService),
	}
	routes.SetupRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
