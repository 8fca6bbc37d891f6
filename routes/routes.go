package routes

import (
	"github.com/ImAadarsh/my-calories/controllers"
	"github.com/ImAadarsh/my-calories/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	mealCtrl *controllers.MealController,
	reportCtrl *controllers.ReportController,
	realtimeCtrl *controllers.RealtimeController,
) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/user/profile", controllers.GetProfile)
		api.PUT("/user/profile", controllers.UpdateProfile)

		api.POST("/meals", mealCtrl.LogMeal)
		api.GET("/meals", mealCtrl.ListMeals)
		api.GET("/meals/range", mealCtrl.ListMealsRange)
		api.PUT("/meals/:id", mealCtrl.UpdateMeal)
		api.DELETE("/meals/:id", mealCtrl.DeleteMeal)
		api.POST("/meals/:id/subtract", mealCtrl.SubtractLeftovers)

		api.GET("/reports", reportCtrl.GetReports)
		api.POST("/reports/analyze", reportCtrl.AnalyzeDay)
		api.GET("/stats", reportCtrl.GetStats)

		api.GET("/ws/reports", realtimeCtrl.ReportsWS)
	}

	return r
}
