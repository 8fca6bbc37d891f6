package main

import (
	"context"
	"log"
	"os"

	"github.com/ImAadarsh/my-calories/config"
	"github.com/ImAadarsh/my-calories/controllers"
	"github.com/ImAadarsh/my-calories/routes"
	"github.com/ImAadarsh/my-calories/services"
	"github.com/ImAadarsh/my-calories/utils"

	"go.uber.org/zap"
)

func main() {
	logger, err := utils.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	config.InitDB()

	images, err := utils.NewS3ImageStore(context.Background())
	if err != nil {
		logger.Fatal("init S3", zap.Error(err))
	}
	if images == nil {
		logger.Warn("S3_BUCKET not set, meal photos will use placeholder URLs")
	}

	gemini := services.NewGeminiService(os.Getenv("GEMINI_API_KEY"), logger)
	hub := services.NewRealtimeHub()

	reportSvc := services.NewReportService(config.DB, gemini, hub, logger)

	var store services.ImageStore
	if images != nil {
		store = images
	}
	mealSvc := services.NewMealService(config.DB, gemini, store, reportSvc, logger)

	r := routes.SetupRouter(
		controllers.NewMealController(mealSvc),
		controllers.NewReportController(reportSvc),
		controllers.NewRealtimeController(hub),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
