package reservation

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockService is a mock type for the Service interface.
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateReservation(ctx context.Context, listingID, buyerID uuid.UUID, req ReserveRequest) (*Reservation, error) {
	args := m.Called(ctx, listingID, buyerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

func (m *MockService) GetReservationStatus(ctx context.Context, listingID uuid.UUID) (*StatusResponse, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StatusResponse), args.Error(1)
}

func (m *MockService) CancelReservation(ctx context.Context, listingID, requesterID uuid.UUID) error {
	args := m.Called(ctx, listingID, requesterID)
	return args.Error(0)
}

func (m *MockService) PurgeStaleReservations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// setupReservationRouter wires the handler behind stub middlewares that
// inject the given user identity.
func setupReservationRouter(svc Service, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	identityMW := func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	}
	passMW := func(c *gin.Context) { c.Next() }

	handler := NewHandler(svc, zap.NewNop())
	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1, identityMW, identityMW, passMW)
	return router
}

func TestHandler_CreateReservation_RespondsOK(t *testing.T) {
	mockSvc := new(MockService)
	buyerID := uuid.New()
	listingID := uuid.New()
	router := setupReservationRouter(mockSvc, buyerID, "user")

	created := &Reservation{
		ListingID:        listingID,
		ReservedByUserID: buyerID,
		SellerID:         uuid.New(),
		EndTime:          time.Now().Add(48 * time.Hour),
	}
	created.ID = uuid.New()

	mockSvc.On("CreateReservation", mock.Anything, listingID, buyerID, ReserveRequest{DurationHours: 48}).
		Return(created, nil)

	body := bytes.NewBufferString(`{"hours": 48}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+listingID.String()+"/reserve", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), listingID.String())
	mockSvc.AssertExpectations(t)
}

func TestHandler_CreateReservation_MissingHours(t *testing.T) {
	mockSvc := new(MockService)
	router := setupReservationRouter(mockSvc, uuid.New(), "user")

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+uuid.New().String()+"/reserve", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
