package models

import (
    "gorm.io/gorm"
)

// User holds the account plus the static profile inputs the day
// analysis consumes (weight, goal, daily calorie target).
type User struct {
    gorm.Model
    Email            string  `gorm:"uniqueIndex;not null" json:"email"`
    Password         string  `gorm:"not null" json:"-"`
    Name             string  `json:"name"`
    Sex              string  `json:"sex"`            // male|female|other
    Age              int     `json:"age"`
    Height           float64 `json:"height"`         // cm
    Weight           float64 `json:"weight"`         // kg
    TargetWeight     float64 `json:"target_weight"`
    ActivityLevel    string  `json:"activity_level"` // sedentary … extra_active
    Goal             string  `json:"goal"`           // lose|maintain|gain|muscle|other
    DailyCalorieGoal int     `json:"daily_calorie_goal"`
}
