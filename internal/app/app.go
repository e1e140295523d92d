package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/controller"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/service"
	"waterball_lms_backend/internal/util"
	"waterball_lms_backend/pkg/configwatcher"
	"waterball_lms_backend/pkg/database"
	"waterball_lms_backend/pkg/logger"
	"waterball_lms_backend/pkg/monitoring"
	"waterball_lms_backend/pkg/security"
	"waterball_lms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	catalog     *repository.CatalogRepository
	progress    *repository.ProgressRepository
	reward      *repository.RewardRepository
	gym         *repository.GymRepository
	userJourney *repository.UserJourneyRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	user        *service.UserService
	progress    *service.ProgressService
	reward      *service.RewardService
	access      *service.AccessService
	gym         *service.GymService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	catalog     *controller.CatalogController
	progress    *controller.ProgressController
	gym         *controller.GymController
	leaderboard *controller.LeaderboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		catalog:     repository.NewCatalogRepository(db),
		progress:    repository.NewProgressRepository(db),
		reward:      repository.NewRewardRepository(db),
		gym:         repository.NewGymRepository(db),
		userJourney: repository.NewUserJourneyRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	// 所有按 (用户, 实体) 串行化的写操作共用同一组 key 锁
	locks := util.NewKeyedMutex()

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		logger.Warn("Object storage unavailable, avatar upload disabled", zap.Error(err))
		storage = nil
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.progress = service.NewProgressService(repos.progress, repos.catalog, repos.userJourney, locks, cfg)
	s.reward = service.NewRewardService(repos.reward, repos.progress, repos.catalog, repos.user, locks, db)
	s.access = service.NewAccessService(repos.catalog, repos.progress, s.progress)
	s.gym = service.NewGymService(repos.gym, repos.catalog, s.access, s.reward, locks, cfg)
	s.leaderboard = service.NewLeaderboardService(
		repos.user, repos.progress, repos.reward, repos.gym, repos.userJourney, rdb, cfg)
	s.user = service.NewUserService(
		repos.user, repos.progress, repos.gym, repos.reward, repos.userJourney, s.storage)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		catalog:     controller.NewCatalogController(repos.catalog, s.access),
		progress:    controller.NewProgressController(s.progress, s.reward),
		gym:         controller.NewGymController(s.gym),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Error("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 排行榜缓存退化为每次回源
		logger.Warn("Redis unavailable, leaderboard caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("waterball-lms", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Error("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	// 配置热更新：策略参数变更无需重启
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		cfg.Progress = newCfg.Progress
		cfg.Leaderboard = newCfg.Leaderboard
		logger.Info("Config reloaded",
			zap.Float64("completion_threshold", newCfg.Progress.CompletionThreshold),
			zap.Int("gym_passing_score", newCfg.Progress.GymPassingScore))
	})
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(reloaded interface{}) {
		newCfg, ok := reloaded.(*config.Config)
		if !ok {
			return
		}
		for _, callback := range app.configCallbacks {
			callback(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
