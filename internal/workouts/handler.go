package workouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mkrajina/fitlog/internal/auth"
	"github.com/mkrajina/fitlog/internal/telemetry/metrics"
	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/pkg"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type CreateWorkoutRequest struct {
	Name           string           `json:"name" validate:"required,min=1,max=100"`
	Description    string           `json:"description" validate:"max=500"`
	Date           *time.Time       `json:"date"`
	Duration       *int             `json:"duration" validate:"required,gte=0"`
	Exercises      []LoggedExercise `json:"exercises"`
	ExerciseCount  int              `json:"exerciseCount" validate:"gte=0"`
	CaloriesBurned int              `json:"caloriesBurned" validate:"gte=0"`
	Tags           []string         `json:"tags"`
	Rating         *int             `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Visibility     Visibility       `json:"visibility" validate:"omitempty,oneof=private friends public"`
	Notes          string           `json:"notes"`
	IsTemplate     bool             `json:"isTemplate"`
	TemplateName   string           `json:"templateName"`
}

type AppendExerciseRequest struct {
	ExerciseID *uuid.UUID `json:"exerciseId"`
	Name       string     `json:"name" validate:"required,min=1,max=100"`
	Sets       []Set      `json:"sets"`
	Notes      string     `json:"notes"`
}

type ListWorkoutsResponse struct {
	Data       []Workout  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
	validate       *validator.Validate
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
		validate:       validator.New(),
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindUnauthorized, "not authenticated", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	page, ok := positiveIntParam(query.Get("page"), defaultPage)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindInvalidPagination, "page must be a positive number", http.StatusBadRequest)
		return
	}
	limit, ok := positiveIntParam(query.Get("limit"), defaultLimit)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindInvalidPagination, "limit must be a positive number", http.StatusBadRequest)
		return
	}

	workoutsList, pagination, err := handler.service.List(ctx, ListParams{
		UserID:     userID,
		IsTemplate: query.Get("isTemplate") == "true",
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		log.Errorf("list workouts for %s: %s", userID, err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	if workoutsList == nil {
		workoutsList = []Workout{}
	}

	pkg.WriteJSON(w, ListWorkoutsResponse{
		Data:       workoutsList,
		Pagination: pagination,
	}, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindUnauthorized, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req CreateWorkoutRequest
	if !handler.decodeAndValidate(w, r, &req) {
		return
	}

	workout := Workout{
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		Duration:       *req.Duration,
		Exercises:      req.Exercises,
		CaloriesBurned: req.CaloriesBurned,
		Tags:           req.Tags,
		Rating:         req.Rating,
		Visibility:     req.Visibility,
		Notes:          req.Notes,
		IsTemplate:     req.IsTemplate,
		TemplateName:   req.TemplateName,
	}
	if req.Date != nil {
		workout.Date = *req.Date
	}

	added, err := handler.service.Create(ctx, workout, req.ExerciseCount)
	if err != nil {
		handler.writeServiceError(w, err, "create workout")
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutsAdded.Inc()
	}

	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, workoutID, ok := handler.requestIDs(w, r)
	if !ok {
		return
	}

	workout, err := handler.service.Get(ctx, workoutID, userID)
	if err != nil {
		handler.writeServiceError(w, err, "get workout")
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, workoutID, ok := handler.requestIDs(w, r)
	if !ok {
		return
	}

	var params UpdateParams
	if !handler.decodeAndValidate(w, r, &params) {
		return
	}

	workout, err := handler.service.Update(ctx, workoutID, userID, params)
	if err != nil {
		handler.writeServiceError(w, err, "update workout")
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, workoutID, ok := handler.requestIDs(w, r)
	if !ok {
		return
	}

	if err := handler.service.Delete(ctx, workoutID, userID); err != nil {
		handler.writeServiceError(w, err, "delete workout")
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message":"workout deleted successfully"}`)
}

func (handler *Handler) HandleAppendExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.appendExercise")
	defer span.End()

	userID, workoutID, ok := handler.requestIDs(w, r)
	if !ok {
		return
	}

	var req AppendExerciseRequest
	if !handler.decodeAndValidate(w, r, &req) {
		return
	}

	workout, err := handler.service.AppendExercise(ctx, workoutID, userID, LoggedExercise{
		ExerciseID: req.ExerciseID,
		Name:       req.Name,
		Sets:       req.Sets,
		Notes:      req.Notes,
	})
	if err != nil {
		handler.writeServiceError(w, err, "append exercise to workout")
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) requestIDs(w http.ResponseWriter, r *http.Request) (userID, workoutID uuid.UUID, ok bool) {
	userID, ok = auth.UserIDFromContext(r.Context())
	if !ok {
		pkg.WriteError(w, pkg.ErrKindUnauthorized, "not authenticated", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	workoutID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, pkg.ErrKindNotFound, "workout not found", http.StatusNotFound)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, workoutID, true
}

func (handler *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Tracef("decode workout request: %s", err)
		pkg.WriteError(w, pkg.ErrKindValidation, "invalid request body", http.StatusBadRequest)
		return false
	}
	if issues := pkg.ValidationIssues(handler.validate.Struct(dst)); len(issues) > 0 {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid request", issues, http.StatusBadRequest)
		return false
	}
	return true
}

func (handler *Handler) writeServiceError(w http.ResponseWriter, err error, action string) {
	var refErr *ExerciseRefError
	switch {
	case errors.Is(err, ErrWorkoutNotFound):
		pkg.WriteError(w, pkg.ErrKindNotFound, "workout not found", http.StatusNotFound)
	case errors.As(err, &refErr):
		pkg.WriteError(w, pkg.ErrKindReferenceNotFound, refErr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSetNotCountable):
		pkg.WriteError(w, pkg.ErrKindValidation, ErrSetNotCountable.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", action, err)
		pkg.WriteError(w, pkg.ErrKindServer, "server error", http.StatusInternalServerError)
	}
}

func positiveIntParam(raw string, defaultValue int) (int, bool) {
	if raw == "" {
		return defaultValue, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
