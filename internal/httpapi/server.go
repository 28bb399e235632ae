package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/arhaangamer7865-design/Auranut/internal/markdown"
	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

const maxImageBytes = 10 << 20

// DefaultOrigins allows local front-ends on any port.
var DefaultOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

type server struct {
	sess *session.Session
	md   *markdown.Renderer
	log  *slog.Logger
}

// NewHandler exposes sess as a JSON API for a local front-end.
func NewHandler(sess *session.Session, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	s := &server{sess: sess, md: markdown.NewRenderer(), log: log}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/state", s.state).Methods(http.MethodGet)
	api.HandleFunc("/today", s.today).Methods(http.MethodGet)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/onboarding", s.onboarding).Methods(http.MethodPost)
	api.HandleFunc("/goals", s.updateGoals).Methods(http.MethodPut)
	api.HandleFunc("/food/search", s.searchFood).Methods(http.MethodPost)
	api.HandleFunc("/food/scan", s.scanFood).Methods(http.MethodPost)
	api.HandleFunc("/food", s.logFood).Methods(http.MethodPost)
	api.HandleFunc("/exercise", s.logExercise).Methods(http.MethodPost)
	api.HandleFunc("/weight", s.logWeight).Methods(http.MethodPost)
	api.HandleFunc("/water", s.adjustWater).Methods(http.MethodPost)
	api.HandleFunc("/coach", s.ask).Methods(http.MethodPost)
	api.HandleFunc("/coach", s.clearChat).Methods(http.MethodDelete)
	api.HandleFunc("/analysis", s.analysis).Methods(http.MethodPost)
	api.HandleFunc("/theme", s.setTheme).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(requestLogging(log)(r))
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *server) today(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": s.sess.Today(),
		"log":     s.sess.TodayLog(),
	})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Login(r.Context(), session.MockUser()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	confirmed := confirmParam(r)
	if !s.sess.Logout(func() bool { return confirmed }) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "logout requires confirm=true"})
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *server) onboarding(w http.ResponseWriter, r *http.Request) {
	var profile model.Profile
	if !s.decode(w, r, &profile) {
		return
	}
	goals, usedFallback, err := s.sess.Onboard(r.Context(), profile)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userGoals": goals, "usedFallback": usedFallback})
}

func (s *server) updateGoals(w http.ResponseWriter, r *http.Request) {
	var goals model.UserGoals
	if !s.decode(w, r, &goals) {
		return
	}
	if err := s.sess.UpdateGoals(goals); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *server) searchFood(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	items, err := s.sess.SearchFood(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "food lookup unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// scanFood takes the raw image as the request body.
func (s *server) scanFood(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "image too large"})
		return
	}
	item, err := s.sess.ScanFood(r.Context(), image, r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "food identification unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type logFoodRequest struct {
	Meal  string           `json:"meal"`
	Items []model.FoodItem `json:"items"`
}

func (s *server) logFood(w http.ResponseWriter, r *http.Request) {
	var req logFoodRequest
	if !s.decode(w, r, &req) {
		return
	}
	meal, err := nutrition.ParseMealType(req.Meal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	added, err := s.sess.LogFood(meal, req.Items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

type exerciseRequest struct {
	Name         string             `json:"name"`
	Duration     float64            `json:"duration"`
	DurationUnit model.DurationUnit `json:"durationUnit"`
}

func (s *server) logExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.DurationUnit == "" {
		req.DurationUnit = model.Minutes
	}
	item, err := s.sess.LogExercise(r.Context(), req.Name, req.Duration, req.DurationUnit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "calorie estimate unavailable; exercise not logged"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type weightRequest struct {
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}

func (s *server) logWeight(w http.ResponseWriter, r *http.Request) {
	var req weightRequest
	if !s.decode(w, r, &req) {
		return
	}
	kg, err := nutrition.ToKg(req.Weight, req.Unit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	entry, err := s.sess.LogWeight(kg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type waterRequest struct {
	Delta int `json:"delta"`
}

func (s *server) adjustWater(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, err := s.sess.AdjustWater(req.Delta)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"waterIntake": n})
}

type askRequest struct {
	Message string `json:"message"`
}

func (s *server) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}
	reply, err := s.sess.Ask(r.Context(), req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *server) clearChat(w http.ResponseWriter, r *http.Request) {
	confirmed := confirmParam(r)
	if !s.sess.ClearChat(func() bool { return confirmed }) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "clearing chat requires confirm=true"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// analysis returns the report as JSON, or as an HTML page with format=html.
func (s *server) analysis(w http.ResponseWriter, r *http.Request) {
	report, err := s.sess.RequestDeepAnalysis(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if r.URL.Query().Get("format") != "html" {
		writeJSON(w, http.StatusOK, map[string]string{"report": report})
		return
	}
	var buf bytes.Buffer
	if err := s.md.WritePage(&buf, "Auranut Deep Analysis", string(s.sess.Theme()), []byte(report)); err != nil {
		s.log.Error("render analysis", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "render analysis failed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

type themeRequest struct {
	Theme  model.Theme `json:"theme"`
	Toggle bool        `json:"toggle"`
}

func (s *server) setTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Toggle {
		writeJSON(w, http.StatusOK, map[string]model.Theme{"theme": s.sess.ToggleTheme()})
		return
	}
	if err := s.sess.SetTheme(req.Theme); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Theme{"theme": req.Theme})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrNotOnboarded), errors.Is(err, session.ErrAlreadyOnboarded):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInFlight):
		status = http.StatusTooManyRequests
	}
	s.log.Debug("request rejected", "status", status, "error", err)
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func confirmParam(r *http.Request) bool {
	ok, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("confirm")))
	return ok
}
