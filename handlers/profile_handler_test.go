package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/services"
	"go.uber.org/zap"
)

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) SyncProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockReportService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockReportService) SaveReport(ctx context.Context, userID string, report *models.Report, profile *models.Profile) (*models.Report, error) {
	args := m.Called(ctx, userID, report, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context, userID string, limit, offset int) ([]*models.Report, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Report), args.Error(1)
}

// profileRouter mounts the handler the same way the API routes do so URL params resolve
func profileRouter(h *ProfileHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/profiles/{id}", func(r chi.Router) {
		r.Put("/", h.HandleUpsertProfile)
		r.Get("/", h.HandleGetProfile)
		r.Post("/reports", h.HandleSaveReport)
		r.Get("/reports", h.HandleListReports)
	})
	return r
}

func TestHandleUpsertProfile(t *testing.T) {
	logger := zap.NewNop()

	t.Run("path id overrides body id", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("SyncProfile", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
			return p.ID == "uid-1" && p.DisplayName == "Karim" && len(p.PreferredCategories) == 2
		})).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPut, "/api/v1/profiles/uid-1", map[string]interface{}{
			"id":                   "someone-else",
			"display_name":         "Karim",
			"preferred_categories": []string{"rice", "mango"},
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"uid-1"`)
		svc.AssertExpectations(t)
	})

	t.Run("display name too long", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		long := make([]byte, 201)
		for i := range long {
			long[i] = 'a'
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPut, "/api/v1/profiles/uid-1", map[string]string{"display_name": string(long)}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "display_name")
		svc.AssertNotCalled(t, "SyncProfile", mock.Anything, mock.Anything)
	})

	t.Run("storage disabled", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("SyncProfile", mock.Anything, mock.Anything).Return(services.ErrPersistenceDisabled)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPut, "/api/v1/profiles/uid-1", map[string]string{"display_name": "Karim"}))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleGetProfile(t *testing.T) {
	logger := zap.NewNop()

	t.Run("found", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("GetProfile", mock.Anything, "uid-1").Return(models.NewProfile("uid-1", "Karim"), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/uid-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Karim")
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("GetProfile", mock.Anything, "ghost").Return(nil, services.ErrProfileNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/ghost", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleSaveReport(t *testing.T) {
	logger := zap.NewNop()

	t.Run("created with profile", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		saved := models.NewReport("uid-1", models.ReportTypeDiagnosis, "Rice Blast", "Spray tricyclazole")
		svc.On("SaveReport", mock.Anything, "uid-1",
			mock.MatchedBy(func(r *models.Report) bool { return r.Title == "Rice Blast" }),
			mock.MatchedBy(func(p *models.Profile) bool { return p != nil && p.DisplayName == "Karim" }),
		).Return(saved, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/v1/profiles/uid-1/reports", map[string]interface{}{
			"report": map[string]string{
				"type":    "diagnosis",
				"title":   "Rice Blast",
				"content": "Spray tricyclazole",
			},
			"profile": map[string]string{"display_name": "Karim"},
		}))

		assert.Equal(t, http.StatusCreated, w.Code)

		var response struct {
			Data models.Report `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, saved.ID, response.Data.ID)
		svc.AssertExpectations(t)
	})

	t.Run("report without profile", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("SaveReport", mock.Anything, "uid-1", mock.Anything, (*models.Profile)(nil)).
			Return(&models.Report{ID: uuid.New()}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/v1/profiles/uid-1/reports", map[string]interface{}{
			"report": map[string]string{"type": "advisory", "title": "Irrigation", "content": "Water twice"},
		}))

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/v1/profiles/uid-1/reports", map[string]interface{}{
			"report": map[string]string{"type": "advisory", "content": "Water twice"},
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "report.title")
		svc.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate report", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("SaveReport", mock.Anything, "uid-1", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateReport)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/v1/profiles/uid-1/reports", map[string]interface{}{
			"report": map[string]string{"type": "advisory", "title": "Irrigation", "content": "Water twice"},
		}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandleListReports(t *testing.T) {
	logger := zap.NewNop()

	t.Run("passes pagination through", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		reports := []*models.Report{
			models.NewReport("uid-1", models.ReportTypeSoil, "Soil pH", "Add lime"),
		}
		svc.On("ListReports", mock.Anything, "uid-1", 5, 10).Return(reports, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/uid-1/reports?limit=5&offset=10", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data struct {
				Reports []models.Report `json:"reports"`
				Limit   int             `json:"limit"`
				Offset  int             `json:"offset"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response.Data.Reports, 1)
		assert.Equal(t, "Soil pH", response.Data.Reports[0].Title)
		assert.Equal(t, 5, response.Data.Limit)
		svc.AssertExpectations(t)
	})

	t.Run("defaults when query is absent", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		svc.On("ListReports", mock.Anything, "uid-1", 0, 0).Return([]*models.Report{}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/uid-1/reports", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		svc := new(MockReportService)
		router := profileRouter(NewProfileHandler(svc, logger))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/uid-1/reports?limit=-3", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "limit")
		svc.AssertNotCalled(t, "ListReports", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
