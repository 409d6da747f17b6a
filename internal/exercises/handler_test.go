package exercises_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mkrajina/fitlog/internal/auth"
	"github.com/mkrajina/fitlog/internal/exercises"
	"github.com/mkrajina/fitlog/internal/telemetry/metrics"
)

func testCatalog() []exercises.Exercise {
	return []exercises.Exercise{
		{
			ID:           uuid.New(),
			Name:         "Bench Press",
			Category:     exercises.CategoryChest,
			MuscleGroups: []string{"chest", "triceps"},
			Equipment:    []string{"barbell"},
			Difficulty:   exercises.DifficultyIntermediate,
			Metrics:      exercises.DefaultMetrics(),
		},
		{
			ID:           uuid.New(),
			Name:         "Squats",
			Category:     exercises.CategoryLegs,
			MuscleGroups: []string{"quadriceps", "glutes"},
			Equipment:    []string{"barbell"},
			Difficulty:   exercises.DifficultyIntermediate,
			Metrics:      exercises.DefaultMetrics(),
			Instructions: []string{"stand with feet shoulder-width apart"},
		},
	}
}

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	catalog := testCatalog()
	repoMock.EXPECT().
		List(gomock.Any(), exercises.ListFilter{}).
		Return(catalog, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises", nil)

	h.HandleList(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResponse exercises.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResponse))
	assert.Equal(t, 2, listResponse.Count)
	require.Len(t, listResponse.Data, 2)
	assert.Equal(t, "Bench Press", listResponse.Data[0].Name)
	// summaries leave the long fields out
	assert.Equal(t, catalog[1].Summary(), listResponse.Data[1])
}

func TestHandler_HandleList_Filtered(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	catalog := testCatalog()
	repoMock.EXPECT().
		List(gomock.Any(), exercises.ListFilter{
			Category:    exercises.CategoryLegs,
			MuscleGroup: "glutes",
			Search:      "squat",
		}).
		Return(catalog[1:], nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises?category=legs&muscleGroup=glutes&search=squat", nil)

	h.HandleList(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResponse exercises.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResponse))
	assert.Equal(t, 1, listResponse.Count)
}

func TestHandler_HandleList_UnknownCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises?category=gibberish", nil)

	h.HandleList(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestHandler_HandleList_CachedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, freecache.NewCache(1024*1024), metrics.NewTestManager())

	// repo gets hit exactly once, the second request is served from cache
	repoMock.EXPECT().
		List(gomock.Any(), exercises.ListFilter{}).
		Return(testCatalog(), nil).
		Times(1)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/exercises", nil)
		h.HandleList(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var listResponse exercises.ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResponse))
		assert.Equal(t, 2, listResponse.Count)
	}
}

func TestHandler_HandleGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	exercise := testCatalog()[0]
	repoMock.EXPECT().
		Get(gomock.Any(), exercise.ID).
		Return(&exercise, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises/"+exercise.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": exercise.ID.String()})

	h.HandleGet(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var gotten exercises.Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gotten))
	assert.Equal(t, exercise.ID, gotten.ID)
	assert.Equal(t, exercise.Name, gotten.Name)
}

func TestHandler_HandleGet_CustomExerciseCarriesCreatorName(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	creatorID := uuid.New()
	creatorName := "Mika"
	custom := exercises.Exercise{
		ID:            uuid.New(),
		Name:          "Weighted Dips",
		Category:      exercises.CategoryChest,
		Difficulty:    exercises.DifficultyAdvanced,
		Metrics:       exercises.DefaultMetrics(),
		IsCustom:      true,
		CreatedBy:     &creatorID,
		CreatedByName: &creatorName,
	}
	repoMock.EXPECT().
		Get(gomock.Any(), custom.ID).
		Return(&custom, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises/"+custom.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": custom.ID.String()})

	h.HandleGet(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var gotten exercises.Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gotten))
	require.NotNil(t, gotten.CreatedByName)
	assert.Equal(t, "Mika", *gotten.CreatedByName)
	assert.Contains(t, rec.Body.String(), `"createdByName":"Mika"`)
}

func TestHandler_HandleGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	unknownID := uuid.New()
	repoMock.EXPECT().
		Get(gomock.Any(), unknownID).
		Return(nil, exercises.ErrExerciseNotFound)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises/"+unknownID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": unknownID.String()})

	h.HandleGet(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleGet_MalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})

	h.HandleGet(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	listCache := freecache.NewCache(1024 * 1024)
	h := exercises.NewHandler(repoMock, listCache, metrics.NewTestManager())

	userID := uuid.New()
	reqBody, err := json.Marshal(exercises.CreateExerciseRequest{
		Name:         "Weighted Dips",
		Description:  "dips with added weight",
		Category:     exercises.CategoryChest,
		MuscleGroups: []string{"chest", "triceps"},
		Equipment:    []string{"dip bars", "weight belt"},
		Difficulty:   exercises.DifficultyAdvanced,
	})
	require.NoError(t, err)

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ex exercises.Exercise) (*exercises.Exercise, error) {
			assert.Equal(t, "Weighted Dips", ex.Name)
			assert.Equal(t, exercises.CategoryChest, ex.Category)
			assert.Equal(t, exercises.DifficultyAdvanced, ex.Difficulty)
			assert.Equal(t, exercises.DefaultMetrics(), ex.Metrics)
			assert.True(t, ex.IsCustom)
			require.NotNil(t, ex.CreatedBy)
			assert.Equal(t, userID, *ex.CreatedBy)
			ex.ID = uuid.New()
			return &ex, nil
		})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader(reqBody))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created exercises.Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsCustom)
}

func TestHandler_HandleCreate_DefaultsDifficulty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	reqBody := []byte(`{"name":"Face Pulls","category":"shoulders"}`)

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ex exercises.Exercise) (*exercises.Exercise, error) {
			assert.Equal(t, exercises.DifficultyBeginner, ex.Difficulty)
			return &ex, nil
		})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader(reqBody))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_HandleCreate_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader([]byte(`{"name":"x","category":"arms"}`)))

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_HandleCreate_InvalidRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	for name, body := range map[string]string{
		"name too short":                  `{"name":"x","category":"arms"}`,
		"missing category":                `{"name":"Hammer Curls"}`,
		"unknown category":                `{"name":"Hammer Curls","category":"forearms"}`,
		"unknown difficulty":              `{"name":"Hammer Curls","category":"arms","difficulty":"pro"}`,
		"unknown field":                   `{"name":"Hammer Curls","category":"arms","bogus":true}`,
		"primary metric without its flag": `{"name":"Hammer Curls","category":"arms","metrics":{"primaryMetric":"time","hasReps":true}}`,
		"unknown primary metric":          `{"name":"Hammer Curls","category":"arms","metrics":{"primaryMetric":"laps","hasReps":true}}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader([]byte(body)))
			req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))

			h.HandleCreate(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_HandleCreate_DuplicateName(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, nil, metrics.NewTestManager())

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		Return(nil, exercises.ErrExerciseExists)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader([]byte(`{"name":"Bench Press","category":"chest"}`)))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate_resource")
}

func TestHandler_HandleCreate_ClearsListCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	listCache := freecache.NewCache(1024 * 1024)
	h := exercises.NewHandler(repoMock, listCache, metrics.NewTestManager())

	repoMock.EXPECT().
		List(gomock.Any(), exercises.ListFilter{}).
		Return(testCatalog(), nil).
		Times(2)
	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ex exercises.Exercise) (*exercises.Exercise, error) {
			return &ex, nil
		})

	listReq := func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/exercises", nil)
		h.HandleList(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	listReq() // fills the cache

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader([]byte(`{"name":"Lateral Raises","category":"shoulders"}`)))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))
	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	listReq() // cache was cleared, repo hit again
}

func TestHandler_HandleCategories(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := exercises.NewHandler(NewMockexercisesRepo(ctrl), nil, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/exercises/categories/list", nil)

	h.HandleCategories(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var categoriesResponse exercises.CategoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categoriesResponse))
	assert.Equal(t, exercises.Categories(), categoriesResponse.Data)
}
