package models

import (
    "time"

    "gorm.io/gorm"
)

// Meal is one logged eating event with its AI-estimated nutrition
// snapshot. EatenAt (bucketed to a local calendar date) is the key
// every daily report rolls up on.
type Meal struct {
    gorm.Model
    UserID      uint      `gorm:"index;not null" json:"user_id"`
    FoodName    string    `gorm:"not null" json:"food_name"`
    Description string    `json:"description"`
    Calories    float64   `json:"calories"`
    Protein     float64   `json:"protein"`
    Carbs       float64   `json:"carbs"`
    Fats        float64   `json:"fats"`
    MealType    string    `json:"meal_type"` // breakfast|lunch|dinner|snack
    EatenAt     time.Time `gorm:"index" json:"eaten_at"`
    ImageURL    string    `json:"image_url"`
}
