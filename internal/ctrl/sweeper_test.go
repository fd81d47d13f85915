package ctrl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flaco/hooked/tests/mocks"
	"go.uber.org/mock/gomock"
)

func TestController_SweepTokens(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockAu := mocks.NewMockTokenPort(ctrlMock)
	mockPw := mocks.NewMockPasswordPort(ctrlMock)
	mockRepo := mocks.NewMockAppRepo(ctrlMock)
	mockCache := mocks.NewMockCacheService(ctrlMock)
	mockS3 := mocks.NewMockS3Service(ctrlMock)
	mockEmail := mocks.NewMockEmailService(ctrlMock)

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(mockAu, mockPw, mockRepo, mockCache, mockS3, mockEmail, testSessionConf).
		WithClock(func() time.Time { return base })

	mockRepo.EXPECT().DeleteDeadTokens(gomock.Any(), base).Return(int64(3), nil)
	c.sweepTokens(ctx)

	mockRepo.EXPECT().
		DeleteDeadTokens(gomock.Any(), base).
		Return(int64(0), errors.New("db is down"))
	c.sweepTokens(ctx)
}

func TestController_StartTokenSweeper(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockAu := mocks.NewMockTokenPort(ctrlMock)
	mockPw := mocks.NewMockPasswordPort(ctrlMock)
	mockRepo := mocks.NewMockAppRepo(ctrlMock)
	mockCache := mocks.NewMockCacheService(ctrlMock)
	mockS3 := mocks.NewMockS3Service(ctrlMock)
	mockEmail := mocks.NewMockEmailService(ctrlMock)

	c := New(mockAu, mockPw, mockRepo, mockCache, mockS3, mockEmail, testSessionConf)

	// The first sweep runs immediately, before the first tick.
	swept := make(chan struct{})
	mockRepo.EXPECT().
		DeleteDeadTokens(gomock.Any(), gomock.Any()).
		DoAndReturn(
			func(context.Context, time.Time) (int64, error) {
				close(swept)
				return int64(1), nil
			},
		)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.StartTokenSweeper(ctx)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not run its initial sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}
