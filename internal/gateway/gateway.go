package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/provider/gemini"
)

const (
	DefaultModel           = "gemini-3-flash-preview"
	DefaultAnalysisModel   = "gemini-3-pro-preview"
	DefaultTimeout         = 45 * time.Second
	analysisThinkingBudget = 32768
	analysisWindow         = 7

	ChatFallback     = "I'm sorry, I'm offline at the moment. Please try again soon!"
	AnalysisFallback = "I'm having trouble thinking deeply right now. Let's try again in a moment."
)

// Generator is the single model call every gateway operation is built on.
type Generator interface {
	GenerateContent(ctx context.Context, req gemini.Request) (gemini.Response, error)
}

// Gemini turns model output into validated domain values. Every operation
// degrades to nil, an empty list or a fixed fallback string instead of
// returning an error.
type Gemini struct {
	gen           Generator
	model         string
	analysisModel string
	timeout       time.Duration
	limiter       *rate.Limiter
	newID         func() string
	log           *slog.Logger
}

type Option func(*Gemini)

func WithModels(model, analysisModel string) Option {
	return func(g *Gemini) {
		if strings.TrimSpace(model) != "" {
			g.model = model
		}
		if strings.TrimSpace(analysisModel) != "" {
			g.analysisModel = analysisModel
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRatePerMinute caps outbound calls. Zero or less disables the limiter.
func WithRatePerMinute(n int) Option {
	return func(g *Gemini) {
		if n <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
}

func WithIDFunc(fn func() string) Option {
	return func(g *Gemini) {
		if fn != nil {
			g.newID = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gemini) {
		if l != nil {
			g.log = l
		}
	}
}

func New(gen Generator, opts ...Option) *Gemini {
	g := &Gemini{
		gen:           gen,
		model:         DefaultModel,
		analysisModel: DefaultAnalysisModel,
		timeout:       DefaultTimeout,
		newID:         uuid.NewString,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gemini) generate(ctx context.Context, op string, req gemini.Request) (gemini.Response, error) {
	if g.gen == nil {
		return gemini.Response{}, fmt.Errorf("%s: no model configured", op)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return gemini.Response{}, fmt.Errorf("%s: rate limit: %w", op, err)
		}
	}
	start := time.Now()
	resp, err := g.gen.GenerateContent(ctx, req)
	if err != nil {
		return gemini.Response{}, fmt.Errorf("%s: %w", op, err)
	}
	g.log.Debug("gemini call", "op", op, "model", req.Model, "duration", time.Since(start))
	return resp, nil
}

// LookupFoodByName returns up to three candidates, or nil when the lookup is
// unavailable. A web-grounded call is tried first; any failure there falls
// back to the plain structured call.
func (g *Gemini) LookupFoodByName(ctx context.Context, query string) []model.FoodItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	items, err := g.searchGrounded(ctx, query)
	if err == nil {
		return items
	}
	g.log.Warn("grounded food search failed, falling back", "query", query, "error", err)

	items, err = g.searchPlain(ctx, query)
	if err != nil {
		g.log.Warn("food search failed", "query", query, "error", err)
		return nil
	}
	return items
}

func (g *Gemini) searchGrounded(ctx context.Context, query string) ([]model.FoodItem, error) {
	prompt := fmt.Sprintf("Search the web for accurate nutrition facts for %q. "+
		"Return a JSON array of at most %d matching foods. Each element must have the keys "+
		"name, calories, protein, carbs, fat, servingSize, servingUnit and emoji. Return only JSON.",
		query, maxFoodCandidates)
	resp, err := g.generate(ctx, "grounded search", gemini.Request{
		Model:        g.model,
		Contents:     []gemini.Content{gemini.TextContent("user", prompt)},
		GoogleSearch: true,
	})
	if err != nil {
		return nil, err
	}
	var payloads []foodPayload
	if err := decodeStrict(resp.Text, &payloads); err != nil {
		return nil, err
	}
	items, err := g.toFoodItems(payloads, model.SourceSearch)
	if err != nil {
		return nil, err
	}
	if len(resp.GroundingURLs) > 0 {
		for i := range items {
			items[i].GroundingURLs = model.Some(append([]string{}, resp.GroundingURLs...))
		}
	}
	return items, nil
}

func (g *Gemini) searchPlain(ctx context.Context, query string) ([]model.FoodItem, error) {
	prompt := fmt.Sprintf("Provide nutrition facts for up to %d foods matching %q. "+
		"Use typical single-serving sizes.", maxFoodCandidates, query)
	resp, err := g.generate(ctx, "food search", gemini.Request{
		Model:    g.model,
		Contents: []gemini.Content{gemini.TextContent("user", prompt)},
		Schema:   foodListSchema,
	})
	if err != nil {
		return nil, err
	}
	var payloads []foodPayload
	if err := decodeStrict(resp.Text, &payloads); err != nil {
		return nil, err
	}
	return g.toFoodItems(payloads, model.SourceDatabase)
}

func (g *Gemini) toFoodItems(payloads []foodPayload, source model.FoodSource) ([]model.FoodItem, error) {
	if len(payloads) > maxFoodCandidates {
		payloads = payloads[:maxFoodCandidates]
	}
	items := make([]model.FoodItem, 0, len(payloads))
	for i, p := range payloads {
		item, err := p.toFoodItem(g.newID(), source)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LookupFoodByImage identifies the dominant food in a photo.
func (g *Gemini) LookupFoodByImage(ctx context.Context, image []byte, mimeType string) *model.FoodItem {
	if len(image) == 0 {
		return nil
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/jpeg"
	}
	resp, err := g.generate(ctx, "image lookup", gemini.Request{
		Model: g.model,
		Contents: []gemini.Content{{
			Role: "user",
			Parts: []gemini.Part{
				gemini.ImagePart(image, mimeType),
				{Text: "Identify the main food in this image and estimate its nutrition facts for the portion shown."},
			},
		}},
		Schema: foodSchema,
	})
	if err != nil {
		g.log.Warn("image lookup failed", "error", err)
		return nil
	}
	var p foodPayload
	if err := decodeStrict(resp.Text, &p); err != nil {
		g.log.Warn("image lookup failed", "error", err)
		return nil
	}
	item, err := p.toFoodItem(g.newID(), model.SourceDatabase)
	if err != nil {
		g.log.Warn("image lookup returned invalid food", "error", err)
		return nil
	}
	return &item
}

// EstimateCaloriesBurned returns nil when no usable estimate is available.
func (g *Gemini) EstimateCaloriesBurned(ctx context.Context, activity string, duration float64, unit model.DurationUnit, bodyWeightKg float64) *float64 {
	prompt := fmt.Sprintf("Estimate calories burned for a %gkg person doing %q for %g %s. Return JSON: { \"calories\": number }",
		bodyWeightKg, activity, duration, unit)
	resp, err := g.generate(ctx, "calorie estimate", gemini.Request{
		Model:    g.model,
		Contents: []gemini.Content{gemini.TextContent("user", prompt)},
		Schema:   caloriesSchema,
	})
	if err != nil {
		g.log.Warn("calorie estimate failed", "activity", activity, "error", err)
		return nil
	}
	var p caloriesPayload
	if err := decodeStrict(resp.Text, &p); err != nil {
		g.log.Warn("calorie estimate failed", "activity", activity, "error", err)
		return nil
	}
	if p.Calories == nil || *p.Calories < 0 {
		g.log.Warn("calorie estimate invalid", "activity", activity)
		return nil
	}
	v := *p.Calories
	return &v
}

// ComputeInitialGoals returns nil when the model output cannot be trusted;
// callers then apply fixed fallback targets.
func (g *Gemini) ComputeInitialGoals(ctx context.Context, profile model.Profile) *model.GoalTargets {
	body, err := json.Marshal(profile)
	if err != nil {
		return nil
	}
	prompt := "Calculate daily nutrition goals (calories, protein g, carbs g, fat g, water glasses) " +
		"for this user so they can reach their goal weight safely: " + string(body)
	resp, err := g.generate(ctx, "goal computation", gemini.Request{
		Model:    g.model,
		Contents: []gemini.Content{gemini.TextContent("user", prompt)},
		Schema:   goalsSchema,
	})
	if err != nil {
		g.log.Warn("goal computation failed", "error", err)
		return nil
	}
	var p goalsPayload
	if err := decodeStrict(resp.Text, &p); err != nil {
		g.log.Warn("goal computation failed", "error", err)
		return nil
	}
	targets, err := p.toTargets()
	if err != nil {
		g.log.Warn("goal computation returned invalid targets", "error", err)
		return nil
	}
	return &targets
}

// ChatReply answers message given prior turns. history must not include message.
func (g *Gemini) ChatReply(ctx context.Context, history []model.ChatMessage, message string, goals model.UserGoals, today model.DailyLog) string {
	goalsJSON, _ := json.Marshal(goals)
	todayJSON, _ := json.Marshal(today)
	system := fmt.Sprintf("You are Auranut AI Coach. You have access to the user's goals: %s and today's activity: %s. "+
		"Be helpful, encouraging, and accurate.", goalsJSON, todayJSON)

	contents := make([]gemini.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, gemini.TextContent(string(m.Role), m.Text))
	}
	contents = append(contents, gemini.TextContent(string(model.RoleUser), message))

	resp, err := g.generate(ctx, "coach reply", gemini.Request{
		Model:    g.model,
		System:   system,
		Contents: contents,
	})
	if err != nil {
		g.log.Warn("coach reply failed", "error", err)
		return ChatFallback
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return ChatFallback
	}
	return text
}

// DeepAnalysis reviews the most recent week of logs against the goals.
func (g *Gemini) DeepAnalysis(ctx context.Context, logs []model.DailyLog, goals model.UserGoals) string {
	if len(logs) > analysisWindow {
		logs = logs[len(logs)-analysisWindow:]
	}
	logsJSON, _ := json.Marshal(logs)
	goalsJSON, _ := json.Marshal(goals)
	prompt := fmt.Sprintf("Analyze my recent nutrition logs.\nGoals: %s\nLogs: %s", goalsJSON, logsJSON)

	resp, err := g.generate(ctx, "deep analysis", gemini.Request{
		Model: g.analysisModel,
		System: "You are a health data scientist. Identify patterns in calorie intake vs. goals, analyze macronutrient balance, " +
			"and provide a detailed, science-based recommendation for the next week. Highlight potential deficiencies. " +
			"Be thorough and analytical.",
		Contents:       []gemini.Content{gemini.TextContent("user", prompt)},
		ThinkingBudget: analysisThinkingBudget,
	})
	if err != nil {
		g.log.Warn("deep analysis failed", "error", err)
		return AnalysisFallback
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return AnalysisFallback
	}
	return text
}
