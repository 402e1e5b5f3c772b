package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/pkg/pagination"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Add(ctx context.Context, view model.ShowView) (*model.ShowView, error) {
	args := m.Called(ctx, view)
	if v := args.Get(0); v != nil {
		return v.(*model.ShowView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) AddMany(ctx context.Context, views []model.ShowView) (int, error) {
	args := m.Called(ctx, views)
	return args.Int(0), args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id int64) (*model.ShowView, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.ShowView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) GetPage(ctx context.Context, pageNumber int) (*pagination.Page[model.ShowView], error) {
	args := m.Called(ctx, pageNumber)
	if v := args.Get(0); v != nil {
		return v.(*pagination.Page[model.ShowView]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id int64, view model.ShowView) (*model.ShowView, error) {
	args := m.Called(ctx, id, view)
	if v := args.Get(0); v != nil {
		return v.(*model.ShowView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) Query(ctx context.Context, filter model.ShowFilter) ([]model.ShowView, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]model.ShowView), args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(svc *mockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewShowHandler(svc)

	r := gin.New()
	shows := r.Group("/api/v1/shows")
	shows.GET("", h.GetPage)
	shows.GET("/search", h.Search)
	shows.GET("/:id", h.GetByID)
	shows.POST("", h.Create)
	shows.POST("/bulk", h.CreateBulk)
	shows.POST("/:id", h.Update)
	shows.PATCH("/:id", h.Update)
	shows.DELETE("/:id", h.Delete)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code          string `json:"code"`
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetPage(t *testing.T) {
	svc := new(mockService)
	page := pagination.NewPage([]model.ShowView{{ID: 1, Name: "Lost", PremieredOn: "2004-09-22", Genres: []string{"Drama"}}}, 2)
	svc.On("GetPage", mock.Anything, 2).Return(page, nil)

	w := do(newRouter(svc), http.MethodGet, "/api/v1/shows?page=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"values":[{"id":1,"name":"Lost","premiered":"2004-09-22","genres":["Drama"]}],"pageNumber":2,"count":1}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestGetPage_DefaultsToFirstPage(t *testing.T) {
	svc := new(mockService)
	svc.On("GetPage", mock.Anything, 1).Return(pagination.NewPage([]model.ShowView{}, 1), nil)

	w := do(newRouter(svc), http.MethodGet, "/api/v1/shows", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetPage_InvalidPageNumber(t *testing.T) {
	svc := new(mockService)
	svc.On("GetPage", mock.Anything, 0).Return(nil, fmt.Errorf("%w: got 0", pagination.ErrInvalidPageNumber))

	r := newRouter(svc)

	w := do(r, http.MethodGet, "/api/v1/shows?page=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PAGE_NUMBER", decodeError(t, w).Error.Code)

	w = do(r, http.MethodGet, "/api/v1/shows?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPage_OverflowIsInternalError(t *testing.T) {
	svc := new(mockService)
	svc.On("GetPage", mock.Anything, 1).Return(nil, pagination.ErrPageOverflow)

	w := do(newRouter(svc), http.MethodGet, "/api/v1/shows?page=1", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.NotEmpty(t, body.Error.CorrelationID)
	assert.NotContains(t, body.Error.Message, "factory")
}

func TestGetByID(t *testing.T) {
	svc := new(mockService)
	svc.On("Get", mock.Anything, int64(7)).Return(&model.ShowView{ID: 7, Name: "Lost", Genres: []string{}}, nil)
	svc.On("Get", mock.Anything, int64(8)).Return(nil, model.ErrShowNotFound)
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/api/v1/shows/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"name":"Lost","premiered":"","genres":[]}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/shows/8", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SHOW_NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestGetByID_InvalidID(t *testing.T) {
	svc := new(mockService)
	r := newRouter(svc)

	for _, id := range []string{"abc", "0", "-4"} {
		w := do(r, http.MethodGet, "/api/v1/shows/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Equal(t, "INVALID_ID", decodeError(t, w).Error.Code)
	}
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCreate(t *testing.T) {
	svc := new(mockService)
	in := model.ShowView{Name: "Lost", PremieredOn: "2004-09-22", Genres: []string{"Drama"}}
	out := in
	out.ID = 12
	svc.On("Add", mock.Anything, in).Return(&out, nil)

	w := do(newRouter(svc), http.MethodPost, "/api/v1/shows", `{"name":"Lost","premiered":"2004-09-22","genres":["Drama"]}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":12,"name":"Lost","premiered":"2004-09-22","genres":["Drama"]}`, w.Body.String())
}

func TestCreate_BadBodyAndBadDate(t *testing.T) {
	svc := new(mockService)
	svc.On("Add", mock.Anything, mock.Anything).Return(nil, model.ErrInvalidPremiereDate)
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/api/v1/shows", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Error.Code)

	w = do(r, http.MethodPost, "/api/v1/shows", `{"name":"Lost","premiered":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PREMIERE_DATE", decodeError(t, w).Error.Code)
}

func TestCreateBulk(t *testing.T) {
	svc := new(mockService)
	svc.On("AddMany", mock.Anything, mock.MatchedBy(func(v []model.ShowView) bool { return len(v) == 2 })).Return(2, nil)

	w := do(newRouter(svc), http.MethodPost, "/api/v1/shows/bulk", `[{"name":"A"},{"name":"B"}]`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"added":2}}`, w.Body.String())
}

func TestUpdate_GenresFieldPresence(t *testing.T) {
	svc := new(mockService)
	result := &model.ShowView{ID: 3, Name: "Lost", Genres: []string{}}

	// absent genres decode to nil, explicit [] to an empty slice
	svc.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(v model.ShowView) bool {
		return v.Name == "Renamed" && v.Genres == nil
	})).Return(result, nil).Once()
	svc.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(v model.ShowView) bool {
		return v.Genres != nil && len(v.Genres) == 0
	})).Return(result, nil).Once()

	r := newRouter(svc)

	w := do(r, http.MethodPatch, "/api/v1/shows/3", `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/v1/shows/3", `{"genres":[]}`)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	svc := new(mockService)
	svc.On("Delete", mock.Anything, int64(5)).Return(nil)
	svc.On("Delete", mock.Anything, int64(6)).Return(model.ErrShowNotFound)
	svc.On("Delete", mock.Anything, int64(9)).Return(errors.New("pool closed"))
	r := newRouter(svc)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/shows/5", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/v1/shows/6", "").Code)

	w := do(r, http.MethodDelete, "/api/v1/shows/9", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pool closed")
}

func TestSearch(t *testing.T) {
	svc := new(mockService)
	svc.On("Query", mock.Anything, mock.MatchedBy(func(f model.ShowFilter) bool {
		return f.Name == "lost" && f.OriginID != nil && *f.OriginID == 42 &&
			f.PremieredFrom.Year() == 2000 && f.Limit == 5
	})).Return([]model.ShowView{{ID: 1, Name: "Lost", Genres: []string{}}}, nil)
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/api/v1/shows/search?name=lost&origin_id=42&premiered_from=2000-01-01&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Lost","premiered":"","genres":[]}]`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/shows/search?premiered_to=garbage", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/shows/search?origin_id=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
