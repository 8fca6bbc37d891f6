package models

import (
    "time"

    "gorm.io/datatypes"
    "gorm.io/gorm"
)

// DailyReport is the denormalized per-day rollup kept in sync with the
// meals table. One row per (user_id, report_date); the composite unique
// index is the backstop for that invariant.
//
// Two kinds of row share the table:
//   - IsAIReport=false: a pure rollup. Totals are freely overwritten on
//     every sync, narrative stays empty.
//   - IsAIReport=true: the narrative was generated once by the day
//     summarizer. Routine syncs may refresh the totals but must never
//     touch AnalysisContent, Feeling or the flag itself.
type DailyReport struct {
    gorm.Model
    UserID     uint      `gorm:"uniqueIndex:idx_daily_reports_user_date;not null" json:"user_id"`
    ReportDate time.Time `gorm:"uniqueIndex:idx_daily_reports_user_date;not null" json:"report_date"`

    TotalCalories float64 `json:"total_calories"`
    TotalProtein  float64 `json:"total_protein"`
    TotalCarbs    float64 `json:"total_carbs"`
    TotalFats     float64 `json:"total_fats"`

    AnalysisContent datatypes.JSON `json:"analysis_content"`
    Feeling         string         `gorm:"default:neutral" json:"feeling"`
    IsAIReport      bool           `json:"is_ai_report"`
}
