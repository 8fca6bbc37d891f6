package services

import (
	"context"
	"errors"
	"time"

	"github.com/ImAadarsh/my-calories/models"
	"github.com/ImAadarsh/my-calories/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportService keeps the daily_reports rollup consistent with the
// meals table and owns the once-per-day AI analysis.
type ReportService struct {
	db         *gorm.DB
	summarizer DaySummarizer
	hub        *RealtimeHub
	log        *zap.Logger
}

func NewReportService(db *gorm.DB, summarizer DaySummarizer, hub *RealtimeHub, log *zap.Logger) *ReportService {
	return &ReportService{db: db, summarizer: summarizer, hub: hub, log: log}
}

// DayTotals is the meal-derived rollup for one user+date.
type DayTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// dayTotals sums the user's meals inside the date's local-day window.
// Zero meals yields a zero-valued rollup, never an error.
func dayTotals(db *gorm.DB, userID uint, date time.Time) (DayTotals, error) {
	start, end := utils.DayBounds(date)

	var t DayTotals
	err := db.Model(&models.Meal{}).
		Select("COALESCE(SUM(calories),0) AS calories, COALESCE(SUM(protein),0) AS protein, COALESCE(SUM(carbs),0) AS carbs, COALESCE(SUM(fats),0) AS fats").
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, start, end).
		Scan(&t).Error
	return t, err
}

// DayTotals recomputes the rollup without touching daily_reports.
func (r *ReportService) DayTotals(userID uint, date time.Time) (DayTotals, error) {
	return dayTotals(r.db, userID, date)
}

// SyncTx reconciles the daily_reports row for (userID, date) inside tx.
// The upsert is a single atomic statement keyed on the unique
// (user_id, report_date) index: the insert path seeds a plain rollup,
// the conflict path assigns ONLY the numeric totals. An AI narrative,
// the feeling and the is_ai_report flag are structurally unreachable
// from here, which is the whole point.
func (r *ReportService) SyncTx(tx *gorm.DB, userID uint, date time.Time) (DayTotals, error) {
	totals, err := dayTotals(tx, userID, date)
	if err != nil {
		return DayTotals{}, err
	}

	report := models.DailyReport{
		UserID:        userID,
		ReportDate:    utils.DayStart(date),
		TotalCalories: totals.Calories,
		TotalProtein:  totals.Protein,
		TotalCarbs:    totals.Carbs,
		TotalFats:     totals.Fats,
		Feeling:       "neutral",
	}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_calories", "total_protein", "total_carbs", "total_fats", "updated_at",
		}),
	}).Create(&report).Error
	if err != nil {
		return DayTotals{}, err
	}

	r.log.Info("daily report synced",
		zap.Uint("user_id", userID),
		zap.String("date", utils.FormatDate(date)),
		zap.Float64("calories", totals.Calories))
	return totals, nil
}

// SyncDailyReport runs one reconciliation in its own transaction and
// notifies connected clients.
func (r *ReportService) SyncDailyReport(userID uint, date time.Time) (DayTotals, error) {
	var totals DayTotals
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		totals, err = r.SyncTx(tx, userID, date)
		return err
	})
	if err != nil {
		return DayTotals{}, err
	}
	r.NotifySynced(userID, date, totals)
	return totals, nil
}

// NotifySynced pushes a report.synced event; callers that sync inside a
// larger transaction invoke this after commit.
func (r *ReportService) NotifySynced(userID uint, date time.Time, totals DayTotals) {
	if r.hub == nil {
		return
	}
	r.hub.Broadcast(userID, EventReportSynced, map[string]any{
		"date":   utils.FormatDate(date),
		"totals": totals,
	})
}

// GetReport returns the report for the date, or nil when none exists.
func (r *ReportService) GetReport(userID uint, date time.Time) (*models.DailyReport, error) {
	var report models.DailyReport
	err := r.db.
		Where("user_id = ? AND report_date = ?", userID, utils.DayStart(date)).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportService) GetReportsInRange(userID uint, from, to time.Time) ([]models.DailyReport, error) {
	var reports []models.DailyReport
	err := r.db.
		Where("user_id = ? AND report_date >= ? AND report_date <= ?",
			userID, utils.DayStart(from), utils.DayStart(to)).
		Order("report_date ASC").
		Find(&reports).Error
	return reports, err
}

// RangeSummary aggregates the stored reports over [from, to].
type RangeSummary struct {
	TotalCalories float64 `json:"total_calories"`
	AvgCalories   float64 `json:"avg_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	DaysLogged    int64   `json:"days_logged"`
}

func (r *ReportService) RangeSummary(userID uint, from, to time.Time) (*RangeSummary, []models.DailyReport, error) {
	var s RangeSummary
	err := r.db.Model(&models.DailyReport{}).
		Select("COALESCE(SUM(total_calories),0) AS total_calories, COALESCE(AVG(total_calories),0) AS avg_calories, COALESCE(SUM(total_protein),0) AS total_protein, COALESCE(SUM(total_carbs),0) AS total_carbs, COALESCE(SUM(total_fats),0) AS total_fats, COUNT(*) AS days_logged").
		Where("user_id = ? AND report_date >= ? AND report_date <= ?",
			userID, utils.DayStart(from), utils.DayStart(to)).
		Scan(&s).Error
	if err != nil {
		return nil, nil, err
	}

	trend, err := r.GetReportsInRange(userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return &s, trend, nil
}

// DailyCaloriePoint is one bar in the weekly/monthly chart.
type DailyCaloriePoint struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
}

// DailyCalorieTrend buckets the last N days of meals by local date.
// Bucketing happens in Go so the one timezone policy applies here too.
func (r *ReportService) DailyCalorieTrend(userID uint, days int) ([]DailyCaloriePoint, error) {
	if days <= 0 {
		days = 7
	}
	from := utils.DayStart(time.Now()).AddDate(0, 0, -days)

	var meals []models.Meal
	err := r.db.
		Where("user_id = ? AND eaten_at >= ?", userID, from).
		Order("eaten_at ASC").
		Find(&meals).Error
	if err != nil {
		return nil, err
	}

	byDate := map[string]float64{}
	var order []string
	for _, m := range meals {
		key := utils.FormatDate(m.EatenAt)
		if _, seen := byDate[key]; !seen {
			order = append(order, key)
		}
		byDate[key] += m.Calories
	}

	points := make([]DailyCaloriePoint, 0, len(order))
	for _, key := range order {
		points = append(points, DailyCaloriePoint{Date: key, TotalCalories: byDate[key]})
	}
	return points, nil
}

// GenerateDailyAnalysis runs the explicit "analyze my day" action:
// the only transition allowed to write narrative content. It is
// rejected when an AI report already exists and when the date has no
// meals; a summarizer failure leaves the row untouched.
func (r *ReportService) GenerateDailyAnalysis(ctx context.Context, userID uint, date time.Time, feeling string) (*models.DailyReport, error) {
	if feeling == "" {
		feeling = "neutral"
	}
	day := utils.DayStart(date)
	start, end := utils.DayBounds(date)

	var existing models.DailyReport
	err := r.db.Where("user_id = ? AND report_date = ?", userID, day).First(&existing).Error
	switch {
	case err == nil && existing.IsAIReport:
		return nil, ErrAlreadyGenerated
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var meals []models.Meal
	if err := r.db.
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, start, end).
		Order("eaten_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, ErrNoMealsLogged
	}

	var profile models.User
	if err := r.db.First(&profile, userID).Error; err != nil {
		return nil, err
	}

	analysis, err := r.summarizer.SummarizeDay(ctx, meals, &profile)
	if err != nil {
		r.log.Warn("day analysis failed",
			zap.Uint("user_id", userID),
			zap.String("date", utils.FormatDate(date)),
			zap.Error(err))
		return nil, err
	}

	var totals DayTotals
	for _, m := range meals {
		totals.Calories += m.Calories
		totals.Protein += m.Protein
		totals.Carbs += m.Carbs
		totals.Fats += m.Fats
	}
	// Meals logged before macro tracking existed carry zero macros;
	// only then do we trust the model's own numbers.
	totals.Calories = fallbackZero(totals.Calories, analysis.Stats.Calories)
	totals.Protein = fallbackZero(totals.Protein, analysis.Stats.Protein)
	totals.Carbs = fallbackZero(totals.Carbs, analysis.Stats.Carbs)
	totals.Fats = fallbackZero(totals.Fats, analysis.Stats.Fats)

	content, err := analysis.MarshalContent()
	if err != nil {
		return nil, err
	}

	report := models.DailyReport{
		UserID:          userID,
		ReportDate:      day,
		TotalCalories:   totals.Calories,
		TotalProtein:    totals.Protein,
		TotalCarbs:      totals.Carbs,
		TotalFats:       totals.Fats,
		AnalysisContent: datatypes.JSON(content),
		Feeling:         feeling,
		IsAIReport:      true,
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "report_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_calories", "total_protein", "total_carbs", "total_fats",
				"analysis_content", "feeling", "is_ai_report", "updated_at",
			}),
		}).Create(&report).Error
	})
	if err != nil {
		return nil, err
	}

	saved, err := r.GetReport(userID, day)
	if err != nil {
		return nil, err
	}
	r.log.Info("ai day report generated",
		zap.Uint("user_id", userID),
		zap.String("date", utils.FormatDate(day)),
		zap.Int("meals", len(meals)))
	if r.hub != nil {
		r.hub.Broadcast(userID, EventReportAnalyzed, saved)
	}
	return saved, nil
}

func fallbackZero(primary, fallback float64) float64 {
	if primary == 0 {
		return fallback
	}
	return primary
}
