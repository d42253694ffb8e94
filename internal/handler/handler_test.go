package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/dto"
	"github.com/selvester69/notifications/internal/store"
)

// MockNotificationService is a mock implementation of service.NotificationServicer
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) TriggerNotification(ctx context.Context, req *dto.TriggerNotificationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationService) ListDeliveries(ctx context.Context, userID string, limit int) ([]dto.DeliveryRecordResponse, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.DeliveryRecordResponse), args.Error(1)
}

// MockTemplateStore is a mock implementation of store.TemplateStore
type MockTemplateStore struct {
	mock.Mock
}

func (m *MockTemplateStore) Create(ctx context.Context, template *domain.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateStore) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateStore) Lookup(ctx context.Context, name string, channel domain.Channel, language string) (*domain.Template, error) {
	args := m.Called(ctx, name, channel, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateStore) Update(ctx context.Context, template *domain.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPreferenceStore is a mock implementation of store.PreferenceStore
type MockPreferenceStore struct {
	mock.Mock
}

func (m *MockPreferenceStore) Set(ctx context.Context, preference *domain.Preference) error {
	args := m.Called(ctx, preference)
	return args.Error(0)
}

func (m *MockPreferenceStore) SetBulk(ctx context.Context, preferences []*domain.Preference) error {
	args := m.Called(ctx, preferences)
	return args.Error(0)
}

func (m *MockPreferenceStore) List(ctx context.Context, userID string) ([]*domain.Preference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Preference), args.Error(1)
}

func (m *MockPreferenceStore) ListByCategory(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error) {
	args := m.Called(ctx, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Preference), args.Error(1)
}

func (m *MockPreferenceStore) ListEnabled(ctx context.Context, userID string, category domain.Category) ([]*domain.Preference, error) {
	args := m.Called(ctx, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Preference), args.Error(1)
}

func newTestHandler() (*Handler, *MockNotificationService, *MockTemplateStore, *MockPreferenceStore) {
	mockService := new(MockNotificationService)
	mockTemplates := new(MockTemplateStore)
	mockPreferences := new(MockPreferenceStore)
	h := NewHandler(mockService, mockTemplates, mockPreferences, zap.NewNop())
	return h, mockService, mockTemplates, mockPreferences
}

func TestHandler_HealthCheck(t *testing.T) {
	handler, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_TriggerNotification_Success(t *testing.T) {
	handler, mockService, _, _ := newTestHandler()

	triggerReq := dto.TriggerNotificationRequest{
		EventType: "ORDER_SHIPPED",
		UserID:    "user123",
		Data:      map[string]string{"order_id": "42"},
	}

	mockService.On("TriggerNotification", mock.Anything, &triggerReq).
		Return("event-id-123", nil)

	body, _ := json.Marshal(triggerReq)
	req := httptest.NewRequest(http.MethodPost, "/notifications/trigger", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var response dto.TriggerNotificationResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "event-id-123", response.EventID)
	assert.Equal(t, "accepted", response.Status)
	mockService.AssertExpectations(t)
}

func TestHandler_TriggerNotification_ValidationError(t *testing.T) {
	handler, mockService, _, _ := newTestHandler()

	body := []byte(`{"event_type": ""}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications/trigger", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "TriggerNotification")
}

func TestHandler_TriggerNotification_ServiceError(t *testing.T) {
	handler, mockService, _, _ := newTestHandler()

	mockService.On("TriggerNotification", mock.Anything, mock.Anything).
		Return("", errors.New("queue unavailable"))

	body := []byte(`{"event_type": "ORDER_SHIPPED", "user_id": "user123"}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications/trigger", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_ListDeliveries_Success(t *testing.T) {
	handler, mockService, _, _ := newTestHandler()

	mockService.On("ListDeliveries", mock.Anything, "user123", 50).
		Return([]dto.DeliveryRecordResponse{
			{NotificationID: "n1", Channel: "EMAIL", Status: domain.DeliveryStatusSent},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications/user123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		UserID     string                       `json:"user_id"`
		Deliveries []dto.DeliveryRecordResponse `json:"deliveries"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "user123", response.UserID)
	assert.Len(t, response.Deliveries, 1)
}

func TestHandler_ListDeliveries_CustomLimit(t *testing.T) {
	handler, mockService, _, _ := newTestHandler()

	mockService.On("ListDeliveries", mock.Anything, "user123", 10).
		Return([]dto.DeliveryRecordResponse{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications/user123?limit=10", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_ListDeliveries_InvalidLimit(t *testing.T) {
	handler, mockService, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/notifications/user123?limit=abc", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListDeliveries")
}

func TestHandler_CreateTemplate_Success(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	mockTemplates.On("Create", mock.Anything, mock.MatchedBy(func(template *domain.Template) bool {
		return template.Name == "order_shipped" &&
			template.Channel == domain.ChannelEmail &&
			template.Active
	})).Return(nil)

	body := []byte(`{
		"name": "order_shipped",
		"channel": "EMAIL",
		"language": "en",
		"subject": "Order {{order_id}}",
		"body": "Your order {{order_id}} shipped"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockTemplates.AssertExpectations(t)
}

func TestHandler_CreateTemplate_UnknownChannel(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	body := []byte(`{
		"name": "order_shipped",
		"channel": "CARRIER_PIGEON",
		"language": "en",
		"body": "hi"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTemplates.AssertNotCalled(t, "Create")
}

func TestHandler_GetTemplate_NotFound(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	mockTemplates.On("GetByID", mock.Anything, "missing").
		Return(nil, store.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/templates/missing", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SearchTemplate_Success(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	mockTemplates.On("Lookup", mock.Anything, "order_shipped", domain.ChannelEmail, "en").
		Return(&domain.Template{
			ID:      "t1",
			Name:    "order_shipped",
			Channel: domain.ChannelEmail,
			Active:  true,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/templates/search?name=order_shipped&channel=EMAIL&language=en", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.TemplateResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "t1", response.ID)
}

func TestHandler_SearchTemplate_MissingParams(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/templates/search?name=order_shipped", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTemplates.AssertNotCalled(t, "Lookup")
}

func TestHandler_UpdateTemplate_NotFound(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	mockTemplates.On("Update", mock.Anything, mock.Anything).
		Return(store.ErrNotFound)

	body := []byte(`{
		"name": "order_shipped",
		"channel": "EMAIL",
		"language": "en",
		"body": "hi"
	}`)
	req := httptest.NewRequest(http.MethodPut, "/templates/missing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteTemplate_Success(t *testing.T) {
	handler, _, mockTemplates, _ := newTestHandler()

	mockTemplates.On("Delete", mock.Anything, "t1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/templates/t1", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_SetPreference_Success(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	mockPreferences.On("Set", mock.Anything, mock.MatchedBy(func(preference *domain.Preference) bool {
		return preference.UserID == "user123" &&
			preference.Category == domain.CategoryOrder &&
			preference.Channel == domain.ChannelSMS &&
			!preference.Enabled
	})).Return(nil)

	body := []byte(`{
		"user_id": "user123",
		"category": "ORDER",
		"channel": "SMS",
		"enabled": false
	}`)
	req := httptest.NewRequest(http.MethodPut, "/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockPreferences.AssertExpectations(t)
}

func TestHandler_SetPreference_UnknownCategory(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	body := []byte(`{
		"user_id": "user123",
		"category": "WEATHER",
		"channel": "SMS",
		"enabled": true
	}`)
	req := httptest.NewRequest(http.MethodPut, "/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPreferences.AssertNotCalled(t, "Set")
}

func TestHandler_SetPreferencesBulk_Success(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	mockPreferences.On("SetBulk", mock.Anything, mock.MatchedBy(func(preferences []*domain.Preference) bool {
		return len(preferences) == 2
	})).Return(nil)

	body := []byte(`{
		"preferences": [
			{"user_id": "user123", "category": "ORDER", "channel": "EMAIL", "enabled": true},
			{"user_id": "user123", "category": "MARKETING", "channel": "PUSH", "enabled": false}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/preferences/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]int
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 2, response["updated"])
}

func TestHandler_SetPreferencesBulk_EmptyList(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	body := []byte(`{"preferences": []}`)
	req := httptest.NewRequest(http.MethodPost, "/preferences/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPreferences.AssertNotCalled(t, "SetBulk")
}

func TestHandler_ListPreferences_Success(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	mockPreferences.On("List", mock.Anything, "user123").
		Return([]*domain.Preference{
			{UserID: "user123", Category: domain.CategoryOrder, Channel: domain.ChannelEmail, Enabled: true},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/preferences?user_id=user123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		UserID      string                   `json:"user_id"`
		Preferences []dto.PreferenceResponse `json:"preferences"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Preferences, 1)
	assert.Equal(t, "ORDER", response.Preferences[0].Category)
}

func TestHandler_ListPreferences_ByCategory(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	mockPreferences.On("ListByCategory", mock.Anything, "user123", domain.CategoryMarketing).
		Return([]*domain.Preference{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/preferences?user_id=user123&category=MARKETING", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockPreferences.AssertExpectations(t)
	mockPreferences.AssertNotCalled(t, "List")
}

func TestHandler_ListPreferences_MissingUserID(t *testing.T) {
	handler, _, _, mockPreferences := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/preferences", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPreferences.AssertNotCalled(t, "List")
	mockPreferences.AssertNotCalled(t, "ListByCategory")
}
