package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock type for notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, recipientID, page, pageSize)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Notification), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) {
	args := m.Called(ctx, notificationID, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

// MockParticipantSource is a mock type for notification.ParticipantSource
type MockParticipantSource struct {
	mock.Mock
}

func (m *MockParticipantSource) GetParticipants(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func setupNotificationService(t *testing.T) (Service, *MockNotificationRepository, *MockParticipantSource) {
	repo := new(MockNotificationRepository)
	participants := new(MockParticipantSource)
	svc := NewService(repo, participants, zap.NewNop())
	return svc, repo, participants
}

// createdFor collects the recipient IDs of every notification the mock
// repository was asked to persist.
func createdFor(repo *MockNotificationRepository) []uuid.UUID {
	var recipients []uuid.UUID
	for _, call := range repo.Calls {
		if call.Method != "Create" {
			continue
		}
		recipients = append(recipients, call.Arguments.Get(1).(*Notification).RecipientID)
	}
	return recipients
}

// --- Test Cases ---

func TestService_NotifyReservationCreated_ExcludesBuyer(t *testing.T) {
	svc, repo, participants := setupNotificationService(t)
	ctx := context.Background()
	listingID := uuid.New()
	buyerID := uuid.New()
	otherA := uuid.New()
	otherB := uuid.New()

	participants.On("GetParticipants", ctx, listingID).
		Return([]uuid.UUID{otherA, buyerID, otherB}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Return(nil)

	svc.NotifyReservationCreated(ctx, listingID, "Road bike", buyerID, time.Now().Add(24*time.Hour))

	recipients := createdFor(repo)
	assert.Len(t, recipients, 2)
	assert.Contains(t, recipients, otherA)
	assert.Contains(t, recipients, otherB)
	assert.NotContains(t, recipients, buyerID)
}

func TestService_NotifySold_ExcludesSeller(t *testing.T) {
	svc, repo, participants := setupNotificationService(t)
	ctx := context.Background()
	listingID := uuid.New()
	sellerID := uuid.New()
	buyerID := uuid.New()

	participants.On("GetParticipants", ctx, listingID).
		Return([]uuid.UUID{sellerID, buyerID}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Return(nil)

	svc.NotifySold(ctx, listingID, "Road bike", sellerID, &buyerID)

	recipients := createdFor(repo)
	assert.Equal(t, []uuid.UUID{buyerID}, recipients)
}

func TestService_NotifyPriceDrop_StrictDecreaseOnly(t *testing.T) {
	svc, repo, participants := setupNotificationService(t)
	ctx := context.Background()
	listingID := uuid.New()
	setterID := uuid.New()

	// Equal and increased prices produce nothing at all, not even a
	// participant lookup.
	svc.NotifyPriceDrop(ctx, listingID, "Road bike", setterID, 100, 100)
	svc.NotifyPriceDrop(ctx, listingID, "Road bike", setterID, 100, 150)
	participants.AssertNotCalled(t, "GetParticipants", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	watcher := uuid.New()
	participants.On("GetParticipants", ctx, listingID).Return([]uuid.UUID{watcher, setterID}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Return(nil)

	svc.NotifyPriceDrop(ctx, listingID, "Road bike", setterID, 100, 80)

	recipients := createdFor(repo)
	assert.Equal(t, []uuid.UUID{watcher}, recipients)
}

func TestService_FanOut_PerRecipientIndependence(t *testing.T) {
	svc, repo, participants := setupNotificationService(t)
	ctx := context.Background()
	listingID := uuid.New()
	sellerID := uuid.New()
	failing := uuid.New()
	healthy := uuid.New()

	participants.On("GetParticipants", ctx, listingID).
		Return([]uuid.UUID{failing, healthy}, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(n *Notification) bool {
		return n.RecipientID == failing
	})).Return(errors.New("insert failed"))
	repo.On("Create", ctx, mock.MatchedBy(func(n *Notification) bool {
		return n.RecipientID == healthy
	})).Return(nil)

	// One failed write must not stop delivery to the remaining recipients,
	// and the triggering operation never sees an error.
	svc.NotifySold(ctx, listingID, "Road bike", sellerID, nil)

	recipients := createdFor(repo)
	assert.Contains(t, recipients, failing)
	assert.Contains(t, recipients, healthy)
}

func TestService_FanOut_ParticipantLookupFailure(t *testing.T) {
	svc, repo, participants := setupNotificationService(t)
	ctx := context.Background()
	listingID := uuid.New()

	participants.On("GetParticipants", ctx, listingID).
		Return(nil, errors.New("db down"))

	svc.NotifySold(ctx, listingID, "Road bike", uuid.New(), nil)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_MarkNotificationRead(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()
	notificationID := uuid.New()
	userID := uuid.New()

	updated := &Notification{ID: notificationID, RecipientID: userID, IsRead: true}
	repo.On("MarkAsRead", ctx, notificationID, userID).Return(nil)
	repo.On("FindByID", ctx, notificationID, userID).Return(updated, nil)

	n, err := svc.MarkNotificationRead(ctx, notificationID, userID)

	assert.NoError(t, err)
	assert.True(t, n.IsRead)
}

func TestService_MarkAllNotificationsRead(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("MarkAllAsRead", ctx, userID).Return(int64(7), nil)

	count, err := svc.MarkAllNotificationsRead(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
