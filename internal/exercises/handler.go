package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coocood/freecache"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mkrajina/fitlog/internal/auth"
	"github.com/mkrajina/fitlog/internal/telemetry/metrics"
	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id uuid.UUID) (*Exercise, error)
	List(ctx context.Context, filter ListFilter) ([]Exercise, error)
}

type ListResponse struct {
	Count int       `json:"count"`
	Data  []Summary `json:"data"`
}

type CategoriesResponse struct {
	Data []Category `json:"data"`
}

type CreateExerciseRequest struct {
	Name         string     `json:"name" validate:"required,min=2,max=100"`
	Description  string     `json:"description" validate:"max=500"`
	Category     Category   `json:"category" validate:"required"`
	MuscleGroups []string   `json:"muscleGroups"`
	Equipment    []string   `json:"equipment"`
	Difficulty   Difficulty `json:"difficulty"`
	Instructions []string   `json:"instructions"`
	Tips         []string   `json:"tips"`
	Metrics      *Metrics   `json:"metrics"`
}

const listCacheTTLSeconds = 5 * 60

type Handler struct {
	repo           exercisesRepo
	listCache      *freecache.Cache
	metricsManager *metrics.Manager
	validate       *validator.Validate
}

func NewHandler(repo exercisesRepo, listCache *freecache.Cache, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		listCache:      listCache,
		metricsManager: metricsManager,
		validate:       validator.New(),
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	query := r.URL.Query()
	filter := ListFilter{
		Category:    Category(query.Get("category")),
		Difficulty:  Difficulty(query.Get("difficulty")),
		MuscleGroup: query.Get("muscleGroup"),
		Search:      query.Get("search"),
	}

	if filter.Category != "" && !ValidCategory(filter.Category) {
		pkg.WriteError(w, pkg.ErrKindValidation, fmt.Sprintf("unknown category: %s", filter.Category), http.StatusBadRequest)
		return
	}
	if filter.Difficulty != "" && !ValidDifficulty(filter.Difficulty) {
		pkg.WriteError(w, pkg.ErrKindValidation, fmt.Sprintf("unknown difficulty: %s", filter.Difficulty), http.StatusBadRequest)
		return
	}

	cacheKey := []byte(fmt.Sprintf(
		"exercises::%s::%s::%s::%s",
		filter.Category, filter.Difficulty, filter.MuscleGroup, filter.Search,
	))
	if handler.listCache != nil {
		if cached, err := handler.listCache.Get(cacheKey); err == nil {
			log.Tracef("exercises list: serving cached response for %s", cacheKey)
			pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
			return
		}
	}

	exercisesList, err := handler.repo.List(ctx, filter)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	summaries := make([]Summary, 0, len(exercisesList))
	for i := range exercisesList {
		summaries = append(summaries, exercisesList[i].Summary())
	}

	respBytes, err := json.Marshal(ListResponse{
		Count: len(summaries),
		Data:  summaries,
	})
	if err != nil {
		log.Errorf("marshal exercises list response: %s", err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	if handler.listCache != nil {
		if err := handler.listCache.Set(cacheKey, respBytes, listCacheTTLSeconds); err != nil {
			log.Warnf("cache exercises list response: %s", err)
		}
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		pkg.WriteError(w, pkg.ErrKindNotFound, "exercise not found", http.StatusNotFound)
		return
	}

	exercise, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteError(w, pkg.ErrKindNotFound, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise %s: %s", id, err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, exercise, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindUnauthorized, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req CreateExerciseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Tracef("create exercise, decode request: %s", err)
		pkg.WriteError(w, pkg.ErrKindValidation, "invalid request body", http.StatusBadRequest)
		return
	}

	if issues := pkg.ValidationIssues(handler.validate.Struct(&req)); len(issues) > 0 {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid exercise", issues, http.StatusBadRequest)
		return
	}
	if !ValidCategory(req.Category) {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid exercise", []pkg.FieldIssue{
			{Field: "category", Message: fmt.Sprintf("unknown category: %s", req.Category)},
		}, http.StatusBadRequest)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = DifficultyBeginner
	} else if !ValidDifficulty(req.Difficulty) {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid exercise", []pkg.FieldIssue{
			{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty: %s", req.Difficulty)},
		}, http.StatusBadRequest)
		return
	}

	exercise := Exercise{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		MuscleGroups: req.MuscleGroups,
		Equipment:    req.Equipment,
		Difficulty:   req.Difficulty,
		Instructions: req.Instructions,
		Tips:         req.Tips,
		Metrics:      DefaultMetrics(),
		IsCustom:     true,
		CreatedBy:    &userID,
	}
	if req.Metrics != nil {
		if !req.Metrics.Consistent() {
			pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid exercise", []pkg.FieldIssue{
				{Field: "metrics", Message: fmt.Sprintf("primary metric %s is not enabled by the has* flags", req.Metrics.PrimaryMetric)},
			}, http.StatusBadRequest)
			return
		}
		exercise.Metrics = *req.Metrics
	}

	addedExercise, err := handler.repo.Add(ctx, exercise)
	if err != nil {
		if errors.Is(err, ErrExerciseExists) {
			pkg.WriteError(w, pkg.ErrKindDuplicateResource, "exercise with this name already exists", http.StatusBadRequest)
			return
		}
		log.Errorf("create custom exercise [%s]: %s", req.Name, err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to create exercise", http.StatusInternalServerError)
		return
	}

	if handler.listCache != nil {
		handler.listCache.Clear()
	}
	if handler.metricsManager != nil {
		handler.metricsManager.CounterCustomExercises.Inc()
	}

	pkg.WriteJSON(w, addedExercise, http.StatusCreated)
}

func (handler *Handler) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, CategoriesResponse{Data: Categories()}, http.StatusOK)
}
