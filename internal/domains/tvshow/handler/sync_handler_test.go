package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tvshow-catalog/internal/shared"
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task.Type())
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func serveSync(q Enqueuer) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/admin/sync", NewSyncHandler(q, time.Minute).Trigger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync", nil))
	return w
}

func TestSyncHandler_Trigger(t *testing.T) {
	q := new(mockEnqueuer)
	q.On("Enqueue", shared.TypeCatalogSync).Return(&asynq.TaskInfo{ID: "task-1", Queue: shared.QueueLow}, nil)

	w := serveSync(q)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"task_id":"task-1"`)
	q.AssertExpectations(t)
}

func TestSyncHandler_Trigger_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"already queued", asynq.ErrDuplicateTask, http.StatusConflict},
		{"queue down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(mockEnqueuer)
			q.On("Enqueue", shared.TypeCatalogSync).Return(nil, tt.err)

			w := serveSync(q)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
