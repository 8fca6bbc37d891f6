package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ImAadarsh/my-calories/models"

	"go.uber.org/zap"
)

// FoodAnalysis is what the vision model estimates from one meal photo.
type FoodAnalysis struct {
	FoodName    string  `json:"food_name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fats        float64 `json:"fats"`
	Description string  `json:"description"`
}

// DayAnalysis is the narrative document the day summarizer produces.
// It is persisted verbatim as daily_reports.analysis_content.
type DayAnalysis struct {
	Summary string `json:"summary"`
	Metrics []struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Status string `json:"status"` // good|warning|bad
	} `json:"metrics"`
	Table []struct {
		FoodName string  `json:"food_name"`
		Calories float64 `json:"calories"`
		Verdict  string  `json:"verdict"`
	} `json:"table"`
	Advice string `json:"advice"`
	Stats  struct {
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fats     float64 `json:"fats"`
	} `json:"stats"`
}

// FoodAnalyzer estimates nutrition from a meal (or leftover) photo.
type FoodAnalyzer interface {
	AnalyzeFoodImage(ctx context.Context, image []byte, mimeType, userHint string, subtraction bool) (*FoodAnalysis, error)
}

// DaySummarizer writes the once-per-day narrative report.
type DaySummarizer interface {
	SummarizeDay(ctx context.Context, meals []models.Meal, profile *models.User) (*DayAnalysis, error)
}

type GeminiService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     *zap.Logger
}

func NewGeminiService(apiKey string, log *zap.Logger) *GeminiService {
	return &GeminiService{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		model:   "gemini-2.5-flash",
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiService) AnalyzeFoodImage(ctx context.Context, image []byte, mimeType, userHint string, subtraction bool) (*FoodAnalysis, error) {
	var sb strings.Builder
	if subtraction {
		sb.WriteString("This photo shows the LEFTOVER (uneaten) portion of a meal. ")
		sb.WriteString("Estimate the nutrition of the uneaten food only, in JSON:\n")
	} else {
		sb.WriteString("Analyze this food image and provide the following information in JSON format:\n")
	}
	sb.WriteString(`{"food_name": "Name of the food", "calories": 123, "protein": 10, "carbs": 20, "fats": 5, "description": "Brief description of the meal and estimated portion size"}`)
	sb.WriteString("\nValues are kcal and grams.")
	if userHint != "" {
		fmt.Fprintf(&sb, "\nThe user also provided this additional context: %q. Use this to improve your accuracy.", userHint)
	}
	sb.WriteString("\nIf there is no food in the image, return {\"food_name\": \"\"}.")

	parts := []geminiPart{
		{Text: sb.String()},
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var out FoodAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable vision response: %v", ErrAnalysisFailed, err)
	}
	if out.FoodName == "" {
		return nil, fmt.Errorf("%w: no food recognized in image", ErrAnalysisFailed)
	}
	return &out, nil
}

func (g *GeminiService) SummarizeDay(ctx context.Context, meals []models.Meal, profile *models.User) (*DayAnalysis, error) {
	var sb strings.Builder
	sb.WriteString("You are a nutrition coach. Review everything the user ate today and reply in JSON:\n")
	sb.WriteString(`{"summary": "...", "metrics": [{"name": "...", "value": "...", "status": "good|warning|bad"}], "table": [{"food_name": "...", "calories": 0, "verdict": "..."}], "advice": "...", "stats": {"calories": 0, "protein": 0, "carbs": 0, "fats": 0}}`)
	sb.WriteString("\n\nMeals eaten:\n")
	for _, m := range meals {
		fmt.Fprintf(&sb, "- %s (%s): %.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fats. %s\n",
			m.FoodName, m.MealType, m.Calories, m.Protein, m.Carbs, m.Fats, m.Description)
	}
	if profile != nil {
		fmt.Fprintf(&sb, "\nUser profile: weight %.1f kg, goal %q, daily calorie goal %d kcal.\n",
			profile.Weight, profile.Goal, profile.DailyCalorieGoal)
	}

	raw, err := g.generate(ctx, []geminiPart{{Text: sb.String()}})
	if err != nil {
		return nil, err
	}

	var out DayAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable summary response: %v", ErrAnalysisFailed, err)
	}
	if out.Summary == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrAnalysisFailed)
	}
	return &out, nil
}

func (g *GeminiService) generate(ctx context.Context, parts []geminiPart) (string, error) {
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		g.log.Warn("gemini request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", msg))
		return "", fmt.Errorf("%w: status %d", ErrAnalysisFailed, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrAnalysisFailed)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON strips markdown fences the model likes to wrap JSON in.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// MarshalContent serializes a DayAnalysis for storage.
func (a *DayAnalysis) MarshalContent() ([]byte, error) {
	return json.Marshal(a)
}
