package app

import (
	"context"
	"fmt"
	"time"

	"dealercrm_backend/internal/config"
	"dealercrm_backend/internal/email"
	"dealercrm_backend/internal/handlers"
	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/push"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/routes"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/internal/sms"
	"dealercrm_backend/internal/validator"
	"dealercrm_backend/internal/workers"
	"dealercrm_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("database connection failed", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to get *sql.DB from GORM", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	ctx := context.Background()
	router := SetupRouter(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("server startup error", "error", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.Vehicle{},
		&models.Appointment{},
		&models.Notification{},
		&models.NotificationPreference{},
		&models.PushSubscription{},
		&models.MessageTemplate{},
	)
}

// SetupRouter wires repositories, services, the hub and the workers, and
// returns the configured engine. ctx bounds the background goroutines.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// Hub plus optional cross-instance bridge.
	hub := ws.NewHub(cfg.Websocket.SendBuffer)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bridge := ws.NewRedisBridge(redisClient, cfg.Redis.Channel, hub)
		hub.SetBridge(bridge)
		go bridge.Run(ctx)
		logger.Info("redis bridge enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	// Provider channels degrade to nil when unconfigured; the dispatcher
	// skips a nil channel.
	var emailSender email.Sender
	if cfg.Email.SMTPHost != "" {
		s, err := email.NewSMTPSender(email.Config{
			Host:         cfg.Email.SMTPHost,
			Port:         cfg.Email.SMTPPort,
			Username:     cfg.Email.SMTPUsername,
			Password:     cfg.Email.SMTPPassword,
			FromEmail:    cfg.Email.FromEmail,
			FromName:     cfg.Email.FromName,
			TemplatesDir: cfg.Email.TemplatesDir,
		})
		if err != nil {
			logger.Fatal("email sender init failed", "error", err)
		}
		emailSender = s
	} else {
		logger.Warn("SMTP not configured, email channel disabled")
	}

	var smsSender sms.Sender
	if cfg.SMS.AccountSID != "" {
		s, err := sms.NewTwilioSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
		if err != nil {
			logger.Fatal("sms sender init failed", "error", err)
		}
		smsSender = s
	} else {
		logger.Warn("Twilio not configured, sms channel disabled")
	}

	var pushSender push.Sender
	if cfg.Push.VAPIDPublicKey != "" {
		s, err := push.NewWebPushSender(push.Config{
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			Subscriber:      cfg.Push.Subscriber,
		})
		if err != nil {
			logger.Fatal("push sender init failed", "error", err)
		}
		pushSender = s
	} else {
		logger.Warn("VAPID keys not configured, push channel disabled")
	}

	// Repositories.
	userRepo := repositories.NewUserRepository(gormDB)
	leadRepo := repositories.NewLeadRepository(gormDB)
	vehicleRepo := repositories.NewVehicleRepository(gormDB)
	appointmentRepo := repositories.NewAppointmentRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	preferenceRepo := repositories.NewPreferenceRepository(gormDB)
	pushRepo := repositories.NewPushSubscriptionRepository(gormDB)
	templateRepo := repositories.NewTemplateRepository(gormDB)

	// Services.
	notificationService := services.NewNotificationService(
		notificationRepo, preferenceRepo, pushRepo, userRepo,
		hub, emailSender, smsSender, pushSender,
	)
	preferenceService := services.NewPreferenceService(preferenceRepo, hub)
	authService := services.NewAuthService(userRepo)
	leadService := services.NewLeadService(leadRepo, userRepo, notificationService, hub)
	vehicleService := services.NewVehicleService(vehicleRepo, notificationService, hub)
	appointmentService := services.NewAppointmentService(appointmentRepo, leadRepo)
	communicationService := services.NewCommunicationService(
		templateRepo, leadRepo, notificationService, emailSender, smsSender,
	)
	pushSubscriptionService := services.NewPushSubscriptionService(pushRepo)

	// Workers.
	retention := workers.NewRetentionWorker(
		notificationService,
		cfg.Retention.Days,
		time.Duration(cfg.Retention.IntervalHours)*time.Hour,
	)
	retention.Start(ctx)
	reminder := workers.NewReminderWorker(appointmentRepo, leadRepo, notificationService)
	reminder.Start(ctx)

	// Handlers.
	v := validator.New()
	base := handlers.NewBaseHandler(v)
	appHandlers := &routes.AppHandlers{
		Auth:          handlers.NewAuthHandler(base, authService),
		Notification:  handlers.NewNotificationHandler(base, notificationService),
		Preference:    handlers.NewPreferenceHandler(base, preferenceService),
		Push:          handlers.NewPushHandler(base, pushSubscriptionService),
		Lead:          handlers.NewLeadHandler(base, leadService),
		Vehicle:       handlers.NewVehicleHandler(base, vehicleService),
		Appointment:   handlers.NewAppointmentHandler(base, appointmentService),
		Communication: handlers.NewCommunicationHandler(base, communicationService),
	}

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	routes.RegisterRoutes(router, appHandlers, ws.NewHandler(hub))
	return router
}
