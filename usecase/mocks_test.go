package usecase

import (
	"context"

	"lumapost/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockTikTokClient struct {
	mock.Mock
}

func (m *MockTikTokClient) AuthorizeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockTikTokClient) ExchangeCode(ctx context.Context, code string) (*model.TikTokTokenData, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TikTokTokenData), args.Error(1)
}

func (m *MockTikTokClient) RefreshToken(ctx context.Context, refreshToken string) (*model.TikTokTokenData, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TikTokTokenData), args.Error(1)
}

func (m *MockTikTokClient) FetchUserInfo(ctx context.Context, accessToken string) (*model.TikTokUserInfo, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TikTokUserInfo), args.Error(1)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockUserProfile struct {
	mock.Mock
}

func (m *MockUserProfile) MergeTikTok(ctx context.Context, userID string, conn model.TikTokConnection) error {
	return m.Called(ctx, userID, conn).Error(0)
}

func (m *MockUserProfile) GetTikTok(ctx context.Context, userID string) (*model.TikTokConnection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TikTokConnection), args.Error(1)
}

func (m *MockUserProfile) UpdateTikTokTokens(ctx context.Context, userID string, update model.TikTokTokenUpdate) error {
	return m.Called(ctx, userID, update).Error(0)
}

func (m *MockUserProfile) RemoveTikTok(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockSchedule struct {
	mock.Mock
}

func (m *MockSchedule) FindByPublishID(ctx context.Context, publishID string) (*model.Schedule, error) {
	args := m.Called(ctx, publishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Schedule), args.Error(1)
}

func (m *MockSchedule) FindByPublishIDFragment(ctx context.Context, fragment string) (*model.Schedule, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Schedule), args.Error(1)
}

func (m *MockSchedule) FindPendingByUser(ctx context.Context, userID string) ([]*model.Schedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Schedule), args.Error(1)
}

func (m *MockSchedule) UpdateStatus(ctx context.Context, scheduleID string, expected model.ScheduleStatus, upd model.ScheduleUpdate) error {
	return m.Called(ctx, scheduleID, expected, upd).Error(0)
}

type MockWebhookAudit struct {
	mock.Mock
}

func (m *MockWebhookAudit) Record(ctx context.Context, a *model.WebhookAudit) error {
	return m.Called(ctx, a).Error(0)
}

type MockScheduleEventPublisher struct {
	mock.Mock
}

func (m *MockScheduleEventPublisher) PublishScheduleStatus(ctx context.Context, change *model.ScheduleStatusChange) error {
	return m.Called(ctx, change).Error(0)
}
