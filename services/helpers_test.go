package services

import (
	"context"
	"testing"
	"time"

	"github.com/ImAadarsh/my-calories/models"
	"github.com/ImAadarsh/my-calories/utils"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	// one shared in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Meal{}, &models.DailyReport{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		Email:            "eater@example.com",
		Password:         "x",
		Name:             "Eater",
		Weight:           70,
		Goal:             "maintain",
		DailyCalorieGoal: 2000,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedMeal logs a meal at noon of the given date.
func seedMeal(t *testing.T, db *gorm.DB, userID uint, date time.Time, name string, cal, prot, carbs, fats float64) *models.Meal {
	t.Helper()
	m := &models.Meal{
		UserID:   userID,
		FoodName: name,
		Calories: cal,
		Protein:  prot,
		Carbs:    carbs,
		Fats:     fats,
		MealType: "lunch",
		EatenAt:  utils.DayStart(date).Add(12 * time.Hour),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed meal: %v", err)
	}
	return m
}

type stubSummarizer struct {
	analysis *DayAnalysis
	err      error
	calls    int
}

func (s *stubSummarizer) SummarizeDay(_ context.Context, _ []models.Meal, _ *models.User) (*DayAnalysis, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func testAnalysis() *DayAnalysis {
	a := &DayAnalysis{
		Summary: "A balanced day overall.",
		Advice:  "Add more protein at breakfast.",
	}
	a.Stats.Calories = 1234
	a.Stats.Protein = 80
	a.Stats.Carbs = 150
	a.Stats.Fats = 40
	return a
}

type stubAnalyzer struct {
	result *FoodAnalysis
	err    error
}

func (s *stubAnalyzer) AnalyzeFoodImage(_ context.Context, _ []byte, _, _ string, _ bool) (*FoodAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServices(t *testing.T, db *gorm.DB, sum DaySummarizer, an FoodAnalyzer) (*ReportService, *MealService) {
	t.Helper()
	if sum == nil {
		sum = &stubSummarizer{analysis: testAnalysis()}
	}
	if an == nil {
		an = &stubAnalyzer{result: &FoodAnalysis{FoodName: "Dal", Calories: 300}}
	}
	reports := NewReportService(db, sum, nil, zap.NewNop())
	meals := NewMealService(db, an, nil, reports, zap.NewNop())
	return reports, meals
}

func mustGetReport(t *testing.T, r *ReportService, userID uint, date time.Time) *models.DailyReport {
	t.Helper()
	report, err := r.GetReport(userID, date)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report == nil {
		t.Fatalf("expected report for %s, got none", utils.FormatDate(date))
	}
	return report
}
