package wire

import (
	"Crosswire/internal/api"
	"Crosswire/internal/api/config"
	"Crosswire/internal/api/handler"
	"Crosswire/internal/pkg/kafka"
	"Crosswire/internal/pkg/metricstore"
	"Crosswire/internal/pkg/storage"
	"Crosswire/internal/provider"
	"Crosswire/internal/repository"
	"Crosswire/internal/scheduler"
	"Crosswire/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Dispatcher   *scheduler.PostDispatchScheduler
	Monitor      *scheduler.PerformanceMonitor
	TokenManager *scheduler.TokenLifecycleManager
	KafkaManager *kafka.ConsumerManager
	TokenSvc     service.TokenService
}

func BuildApplication(db *gorm.DB, sink metricstore.Store, cfg *config.Config) (*ApplicationContainer, error) {
	postRepo := repository.NewScheduledPostRepo(db)
	accountRepo := repository.NewAccountRepo(db)
	credRepo := repository.NewCredentialRepo(db)

	loader := storage.NewObjectLoader()

	registry := provider.NewRegistry()
	registry.Register(provider.NewBlueskyProvider(loader))
	registry.Register(provider.NewMastodonProvider(loader))
	registry.Register(provider.NewFacebookProvider(loader))
	registry.Register(provider.NewLinkedInProvider())
	registry.Register(provider.NewXProvider())

	tokenService := service.NewTokenService(credRepo, accountRepo, registry, cfg.Token.FreshnessDays)
	dispatchService := service.NewDispatchService(postRepo, registry, tokenService, service.NewRedisClaimer())
	monitorService := service.NewMonitorService(postRepo, accountRepo, tokenService, registry, sink)

	handlers := &api.HandlersGroup{
		PostHandler:    handler.NewPostHandler(dispatchService),
		MetricHandler:  handler.NewMetricHandler(monitorService),
		MonitorHandler: handler.NewMonitorHandler(monitorService),
		NetworkHandler: handler.NewNetworkHandler(registry),
	}

	router := api.SetupRouter(handlers)

	dispatcher := scheduler.NewPostDispatchScheduler(
		dispatchService, time.Duration(cfg.Scheduler.DispatchIntervalSeconds)*time.Second)
	monitor := scheduler.NewPerformanceMonitor(monitorService, registry, sink)
	tokenManager := scheduler.NewTokenLifecycleManager(tokenService, cfg.Token.CheckCron)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, postRepo)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Dispatcher:   dispatcher,
		Monitor:      monitor,
		TokenManager: tokenManager,
		KafkaManager: kafkaMgr,
		TokenSvc:     tokenService,
	}, nil
}
