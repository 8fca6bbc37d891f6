package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ImAadarsh/my-calories/models"
)

var day = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestDayTotalsZeroWhenNoMeals(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, _ := newTestServices(t, db, nil, nil)

	totals, err := reports.DayTotals(u.ID, day)
	if err != nil {
		t.Fatalf("day totals: %v", err)
	}
	if totals != (DayTotals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestSyncCreatesRollupReport(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, _ := newTestServices(t, db, nil, nil)

	seedMeal(t, db, u.ID, day, "Poha", 300, 8, 50, 7)

	totals, err := reports.SyncDailyReport(u.ID, day)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if totals.Calories != 300 {
		t.Fatalf("calories = %v, want 300", totals.Calories)
	}

	report := mustGetReport(t, reports, u.ID, day)
	if report.IsAIReport {
		t.Error("fresh rollup must not be marked as AI report")
	}
	if len(report.AnalysisContent) != 0 {
		t.Errorf("fresh rollup must have empty narrative, got %s", report.AnalysisContent)
	}
	if report.Feeling != "neutral" {
		t.Errorf("feeling = %q, want neutral", report.Feeling)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, _ := newTestServices(t, db, nil, nil)

	seedMeal(t, db, u.ID, day, "Poha", 300, 8, 50, 7)

	if _, err := reports.SyncDailyReport(u.ID, day); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first := mustGetReport(t, reports, u.ID, day)

	if _, err := reports.SyncDailyReport(u.ID, day); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second := mustGetReport(t, reports, u.ID, day)

	if second.TotalCalories != first.TotalCalories ||
		second.IsAIReport != first.IsAIReport ||
		string(second.AnalysisContent) != string(first.AnalysisContent) {
		t.Errorf("repeated sync changed the report: %+v vs %+v", first, second)
	}

	var count int64
	db.Model(&models.DailyReport{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected one report row, got %d", count)
	}
}

func TestGenerateDailyAnalysis(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	sum := &stubSummarizer{analysis: testAnalysis()}
	reports, _ := newTestServices(t, db, sum, nil)

	seedMeal(t, db, u.ID, day, "Poha", 300, 8, 50, 7)
	seedMeal(t, db, u.ID, day, "Dal Rice", 200, 10, 30, 4)

	report, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "energetic")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.IsAIReport {
		t.Error("report not marked as AI report")
	}
	if report.Feeling != "energetic" {
		t.Errorf("feeling = %q, want energetic", report.Feeling)
	}
	if len(report.AnalysisContent) == 0 {
		t.Error("narrative not persisted")
	}
	// meal-derived totals win over the model's own stats
	if report.TotalCalories != 500 {
		t.Errorf("total calories = %v, want 500", report.TotalCalories)
	}
	if sum.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", sum.calls)
	}
}

func TestGenerateDailyAnalysisRejectsSecondRun(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	sum := &stubSummarizer{analysis: testAnalysis()}
	reports, _ := newTestServices(t, db, sum, nil)

	seedMeal(t, db, u.ID, day, "Poha", 300, 8, 50, 7)

	first, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "good")
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	_, err = reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "better")
	if !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("second analyze error = %v, want ErrAlreadyGenerated", err)
	}
	if sum.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", sum.calls)
	}

	kept := mustGetReport(t, reports, u.ID, day)
	if kept.Feeling != first.Feeling || string(kept.AnalysisContent) != string(first.AnalysisContent) {
		t.Error("rejected second analyze modified the first report")
	}
}

func TestGenerateDailyAnalysisNoMeals(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, _ := newTestServices(t, db, nil, nil)

	_, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "hungry")
	if !errors.Is(err, ErrNoMealsLogged) {
		t.Fatalf("error = %v, want ErrNoMealsLogged", err)
	}

	report, err := reports.GetReport(u.ID, day)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report != nil {
		t.Error("rejected analyze must not create a report row")
	}
}

func TestGenerateDailyAnalysisUpstreamFailureLeavesNothing(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	sum := &stubSummarizer{err: ErrAnalysisFailed}
	reports, _ := newTestServices(t, db, sum, nil)

	seedMeal(t, db, u.ID, day, "Poha", 300, 8, 50, 7)

	_, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "fine")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("error = %v, want ErrAnalysisFailed", err)
	}
	report, err := reports.GetReport(u.ID, day)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report != nil {
		t.Error("failed analyze must not persist a report")
	}
}

func TestGenerateDailyAnalysisFallsBackToModelStats(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	sum := &stubSummarizer{analysis: testAnalysis()}
	reports, _ := newTestServices(t, db, sum, nil)

	// legacy meal: calories tracked, macros never recorded
	seedMeal(t, db, u.ID, day, "Old entry", 400, 0, 0, 0)

	report, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.TotalCalories != 400 {
		t.Errorf("calories = %v, want meal-derived 400", report.TotalCalories)
	}
	if report.TotalProtein != 80 {
		t.Errorf("protein = %v, want model fallback 80", report.TotalProtein)
	}
	if report.Feeling != "neutral" {
		t.Errorf("feeling = %q, want default neutral", report.Feeling)
	}
}

func TestRoutineSyncPreservesNarrative(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, _ := newTestServices(t, db, nil, nil)

	seedMeal(t, db, u.ID, day, "Poha", 300, 8, 50, 7)
	ai, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "strong")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	seedMeal(t, db, u.ID, day, "Snack", 150, 2, 20, 6)
	if _, err := reports.SyncDailyReport(u.ID, day); err != nil {
		t.Fatalf("sync: %v", err)
	}

	after := mustGetReport(t, reports, u.ID, day)
	if after.TotalCalories != 450 {
		t.Errorf("totals not refreshed: %v", after.TotalCalories)
	}
	if !after.IsAIReport {
		t.Error("sync cleared is_ai_report")
	}
	if string(after.AnalysisContent) != string(ai.AnalysisContent) {
		t.Error("sync modified analysis_content")
	}
	if after.Feeling != "strong" {
		t.Errorf("sync modified feeling: %q", after.Feeling)
	}
}

func TestGetReportsInRangeOrdered(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, _ := newTestServices(t, db, nil, nil)

	for i := 0; i < 3; i++ {
		d := day.AddDate(0, 0, i)
		seedMeal(t, db, u.ID, d, "Meal", float64(100*(i+1)), 0, 0, 0)
		if _, err := reports.SyncDailyReport(u.ID, d); err != nil {
			t.Fatalf("sync day %d: %v", i, err)
		}
	}

	rows, err := reports.GetReportsInRange(u.ID, day, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		want := float64(100 * (i + 1))
		if row.TotalCalories != want {
			t.Errorf("row %d calories = %v, want %v", i, row.TotalCalories, want)
		}
	}

	summary, trend, err := reports.RangeSummary(u.ID, day, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalCalories != 600 || summary.DaysLogged != 3 {
		t.Errorf("summary = %+v, want 600 kcal over 3 days", summary)
	}
	if len(trend) != 3 {
		t.Errorf("trend has %d rows, want 3", len(trend))
	}
}

func TestEndToEndScenario(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	reports, meals := newTestServices(t, db, nil, nil)

	seedMeal(t, db, u.ID, day, "Meal A", 300, 20, 30, 10)
	if _, err := reports.SyncDailyReport(u.ID, day); err != nil {
		t.Fatalf("sync A: %v", err)
	}
	r := mustGetReport(t, reports, u.ID, day)
	if r.TotalCalories != 300 || r.IsAIReport {
		t.Fatalf("after meal A: calories=%v ai=%v, want 300/false", r.TotalCalories, r.IsAIReport)
	}

	mealB := seedMeal(t, db, u.ID, day, "Meal B", 200, 10, 20, 5)
	if _, err := reports.SyncDailyReport(u.ID, day); err != nil {
		t.Fatalf("sync B: %v", err)
	}
	r = mustGetReport(t, reports, u.ID, day)
	if r.TotalCalories != 500 || r.IsAIReport {
		t.Fatalf("after meal B: calories=%v ai=%v, want 500/false", r.TotalCalories, r.IsAIReport)
	}

	r, err := reports.GenerateDailyAnalysis(context.Background(), u.ID, day, "full")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !r.IsAIReport || len(r.AnalysisContent) == 0 || r.TotalCalories != 500 {
		t.Fatalf("after analyze: %+v", r)
	}
	narrative := string(r.AnalysisContent)

	if err := meals.DeleteMeal(u.ID, mealB.ID); err != nil {
		t.Fatalf("delete meal B: %v", err)
	}
	r = mustGetReport(t, reports, u.ID, day)
	if r.TotalCalories != 300 {
		t.Errorf("after delete: calories = %v, want 300", r.TotalCalories)
	}
	if !r.IsAIReport || string(r.AnalysisContent) != narrative {
		t.Error("delete sync disturbed the AI narrative")
	}
}
