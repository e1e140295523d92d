// @title Waterball LMS 后端 API
// @version 1.0
// @description 水球软件学院学习平台的后端服务器：学习进度、经验值奖励、道馆挑战与排行榜。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"waterball_lms_backend/internal/app"
	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
