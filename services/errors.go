package services

import "errors"

var (
	// ErrAlreadyGenerated — an AI report exists for the date; a second
	// analyze is rejected, never silently ignored.
	ErrAlreadyGenerated = errors.New("ai report already generated for this date")

	// ErrNoMealsLogged — analyze requested for a date with zero meals.
	ErrNoMealsLogged = errors.New("no meals logged for this date")

	ErrMealNotFound = errors.New("meal not found")

	// ErrAnalysisFailed wraps unparseable or failed output from the
	// vision/summarizer API.
	ErrAnalysisFailed = errors.New("ai analysis failed")
)
