package bootstrap

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"plant-journal-be/internal/capture"
	"plant-journal-be/internal/config"
	"plant-journal-be/internal/controller"
	"plant-journal-be/internal/dto"
	"plant-journal-be/internal/handler"
	"plant-journal-be/internal/pkg/logger"
	"plant-journal-be/internal/repository/implementation"
	"plant-journal-be/internal/repository/live"
	"plant-journal-be/internal/repository/unitofwork"
	"plant-journal-be/internal/service"
	"plant-journal-be/internal/storage"
	internalWS "plant-journal-be/internal/websocket"
	"plant-journal-be/pkg/vision/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	CaptureController controller.ICaptureController
	JournalController controller.IJournalController

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *internalWS.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus. Discovery mutations publish per-owner change events;
	// the live journal streams subscribe.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	uowFactory := unitofwork.NewRepositoryFactory(db, pubSub)

	// 3. Vision provider
	visionProvider, modelName, err := factory.NewVisionProvider(
		cfg.Vision.Provider,
		cfg.Vision.APIKey(),
		cfg.Vision.Model(),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize vision provider: %v", err)
	}
	log.Printf("[INFO] Using Vision Provider: %s (%s)", cfg.Vision.Provider, modelName)

	// 4. Infrastructure
	imageStore := storage.NewImageStore(cfg.App.UploadDir)

	// Redis is optional: without it the hub only fans out locally.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	wsHub := internalWS.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 5. Services
	discoveryStream := live.NewDiscoveryStream(
		implementation.NewDiscoveryRepository(db, pubSub),
		pubSub,
	)

	discoveryService := service.NewDiscoveryService(
		uowFactory,
		imageStore,
		visionProvider,
		cfg.Vision.Provider,
		modelName,
		discoveryStream,
		sysLogger,
	)

	authService := service.NewAuthService(
		uowFactory,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHour)*time.Hour,
	)

	// The capture manager pushes every state change through the hub so a
	// connected client sees progress without polling.
	captureManager := capture.NewManager(discoveryService, sysLogger, func(ownerId string, sessionId uuid.UUID, st capture.State) {
		payload, err := json.Marshal(map[string]interface{}{
			"type":       "capture",
			"session_id": sessionId.String(),
			"state":      dto.NewCaptureStateResponse(st),
		})
		if err != nil {
			return
		}
		wsHub.SendToOwner(ownerId, payload)
	})

	journalSession := internalWS.NewJournalSession(discoveryService, sysLogger)
	streamHandler := handler.NewStreamHandler(wsHub, journalSession, sysLogger)

	return &Container{
		AuthController:    controller.NewAuthController(authService),
		CaptureController: controller.NewCaptureController(captureManager),
		JournalController: controller.NewJournalController(discoveryService),

		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,
	}
}
