package services

import (
	"errors"

	"github.com/ImAadarsh/my-calories/config"
	"github.com/ImAadarsh/my-calories/models"
)

// ProfileInput carries the induction-flow metrics. The daily calorie
// goal arrives precomputed from the client; zero values mean unchanged.
type ProfileInput struct {
	Name             string  `json:"name"`
	Sex              string  `json:"sex"`
	Age              int     `json:"age"`
	Height           float64 `json:"height"`
	Weight           float64 `json:"weight"`
	TargetWeight     float64 `json:"target_weight"`
	ActivityLevel    string  `json:"activity_level"`
	Goal             string  `json:"goal"`
	DailyCalorieGoal int     `json:"daily_calorie_goal"`
}

func GetUserProfile(userID uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func UpdateUserProfile(userID uint, input ProfileInput) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Sex != "" {
		user.Sex = input.Sex
	}
	if input.Age > 0 {
		user.Age = input.Age
	}
	if input.Height > 0 {
		user.Height = input.Height
	}
	if input.Weight > 0 {
		user.Weight = input.Weight
	}
	if input.TargetWeight > 0 {
		user.TargetWeight = input.TargetWeight
	}
	if input.ActivityLevel != "" {
		user.ActivityLevel = input.ActivityLevel
	}
	if input.Goal != "" {
		user.Goal = input.Goal
	}
	if input.DailyCalorieGoal > 0 {
		user.DailyCalorieGoal = input.DailyCalorieGoal
	}

	if err := config.DB.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
