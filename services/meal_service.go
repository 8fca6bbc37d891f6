package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ImAadarsh/my-calories/models"
	"github.com/ImAadarsh/my-calories/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageStore persists a meal photo and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// MealService owns the meals table. Every mutation reconciles the
// affected day's report inside the same transaction, so a meal write
// can never land without its rollup.
type MealService struct {
	db       *gorm.DB
	analyzer FoodAnalyzer
	images   ImageStore
	reports  *ReportService
	log      *zap.Logger
}

func NewMealService(db *gorm.DB, analyzer FoodAnalyzer, images ImageStore, reports *ReportService, log *zap.Logger) *MealService {
	return &MealService{db: db, analyzer: analyzer, images: images, reports: reports, log: log}
}

var mealTypes = map[string]bool{
	"breakfast": true, "lunch": true, "dinner": true, "snack": true,
}

func normalizeMealType(t string) string {
	if mealTypes[t] {
		return t
	}
	return "snack"
}

// LogMeal analyzes a meal photo, stores the image and inserts the meal.
func (s *MealService) LogMeal(ctx context.Context, userID uint, image []byte, mimeType, userHint, mealType string, eatenAt time.Time) (*models.Meal, error) {
	analysis, err := s.analyzer.AnalyzeFoodImage(ctx, image, mimeType, userHint, false)
	if err != nil {
		return nil, err
	}

	imageURL := "https://via.placeholder.com/400x300?text=" + url.QueryEscape(analysis.FoodName)
	if s.images != nil {
		uploaded, err := s.images.Upload(ctx, image, mimeType)
		if err != nil {
			return nil, err
		}
		imageURL = uploaded
	}

	if eatenAt.IsZero() {
		eatenAt = time.Now()
	}

	meal := &models.Meal{
		UserID:      userID,
		FoodName:    analysis.FoodName,
		Description: analysis.Description,
		Calories:    analysis.Calories,
		Protein:     analysis.Protein,
		Carbs:       analysis.Carbs,
		Fats:        analysis.Fats,
		MealType:    normalizeMealType(mealType),
		EatenAt:     eatenAt,
		ImageURL:    imageURL,
	}

	var totals DayTotals
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meal).Error; err != nil {
			return err
		}
		totals, err = s.reports.SyncTx(tx, userID, meal.EatenAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.reports.NotifySynced(userID, meal.EatenAt, totals)

	s.log.Info("meal logged",
		zap.Uint("user_id", userID),
		zap.Uint("meal_id", meal.ID),
		zap.String("food", meal.FoodName),
		zap.Float64("calories", meal.Calories))
	return meal, nil
}

// UpdateMealInput carries the editable fields; nil means unchanged.
type UpdateMealInput struct {
	FoodName    *string    `json:"food_name"`
	Description *string    `json:"description"`
	Calories    *float64   `json:"calories"`
	Protein     *float64   `json:"protein"`
	Carbs       *float64   `json:"carbs"`
	Fats        *float64   `json:"fats"`
	MealType    *string    `json:"meal_type"`
	EatenAt     *time.Time `json:"eaten_at"`
}

// UpdateMeal edits an owned meal. If the edit moves the meal across a
// date boundary both the old and the new day are reconciled.
func (s *MealService) UpdateMeal(userID, mealID uint, input UpdateMealInput) (*models.Meal, error) {
	meal, err := s.getOwned(userID, mealID)
	if err != nil {
		return nil, err
	}
	oldDate := meal.EatenAt

	if input.FoodName != nil {
		meal.FoodName = *input.FoodName
	}
	if input.Description != nil {
		meal.Description = *input.Description
	}
	if input.Calories != nil {
		meal.Calories = *input.Calories
	}
	if input.Protein != nil {
		meal.Protein = *input.Protein
	}
	if input.Carbs != nil {
		meal.Carbs = *input.Carbs
	}
	if input.Fats != nil {
		meal.Fats = *input.Fats
	}
	if input.MealType != nil {
		meal.MealType = normalizeMealType(*input.MealType)
	}
	if input.EatenAt != nil {
		meal.EatenAt = *input.EatenAt
	}

	var totals, oldTotals DayTotals
	movedDay := !utils.DayStart(oldDate).Equal(utils.DayStart(meal.EatenAt))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(meal).Error; err != nil {
			return err
		}
		if movedDay {
			if oldTotals, err = s.reports.SyncTx(tx, userID, oldDate); err != nil {
				return err
			}
		}
		totals, err = s.reports.SyncTx(tx, userID, meal.EatenAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	if movedDay {
		s.reports.NotifySynced(userID, oldDate, oldTotals)
	}
	s.reports.NotifySynced(userID, meal.EatenAt, totals)
	return meal, nil
}

func (s *MealService) DeleteMeal(userID, mealID uint) error {
	meal, err := s.getOwned(userID, mealID)
	if err != nil {
		return err
	}

	var totals DayTotals
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(meal).Error; err != nil {
			return err
		}
		totals, err = s.reports.SyncTx(tx, userID, meal.EatenAt)
		return err
	})
	if err != nil {
		return err
	}
	s.reports.NotifySynced(userID, meal.EatenAt, totals)

	s.log.Info("meal deleted",
		zap.Uint("user_id", userID),
		zap.Uint("meal_id", mealID))
	return nil
}

// SubtractLeftovers analyzes a photo of the uneaten portion and
// decrements the original meal's macros, floored at zero. The sync is
// keyed to the original meal's date: subtracting leftovers from
// yesterday's dinner fixes yesterday's report, not today's.
func (s *MealService) SubtractLeftovers(ctx context.Context, userID, mealID uint, image []byte, mimeType, userHint string) (*models.Meal, error) {
	analysis, err := s.analyzer.AnalyzeFoodImage(ctx, image, mimeType, userHint, true)
	if err != nil {
		return nil, err
	}
	return s.ApplySubtraction(userID, mealID, DayTotals{
		Calories: analysis.Calories,
		Protein:  analysis.Protein,
		Carbs:    analysis.Carbs,
		Fats:     analysis.Fats,
	})
}

// ApplySubtraction decrements the meal by the given deltas.
func (s *MealService) ApplySubtraction(userID, mealID uint, deltas DayTotals) (*models.Meal, error) {
	meal, err := s.getOwned(userID, mealID)
	if err != nil {
		return nil, err
	}

	meal.Calories = subFloor(meal.Calories, deltas.Calories)
	meal.Protein = subFloor(meal.Protein, deltas.Protein)
	meal.Carbs = subFloor(meal.Carbs, deltas.Carbs)
	meal.Fats = subFloor(meal.Fats, deltas.Fats)
	meal.Description = fmt.Sprintf("%s (leftovers subtracted)", meal.Description)

	var totals DayTotals
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(meal).Error; err != nil {
			return err
		}
		totals, err = s.reports.SyncTx(tx, userID, meal.EatenAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.reports.NotifySynced(userID, meal.EatenAt, totals)

	s.log.Info("leftovers subtracted",
		zap.Uint("user_id", userID),
		zap.Uint("meal_id", mealID),
		zap.Float64("calories_removed", deltas.Calories))
	return meal, nil
}

// ListMeals returns the user's meals for one local date, newest first.
func (s *MealService) ListMeals(userID uint, date time.Time) ([]models.Meal, error) {
	start, end := utils.DayBounds(date)
	return s.listRange(userID, start, end)
}

// ListMealsByDateRange returns meals across [from, to] inclusive.
func (s *MealService) ListMealsByDateRange(userID uint, from, to time.Time) ([]models.Meal, error) {
	start, _ := utils.DayBounds(from)
	_, end := utils.DayBounds(to)
	return s.listRange(userID, start, end)
}

func (s *MealService) listRange(userID uint, from, to time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, from, to).
		Order("eaten_at DESC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) getOwned(userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func subFloor(a, b float64) float64 {
	if b >= a {
		return 0
	}
	return a - b
}
