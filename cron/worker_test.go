package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybook/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) CompleteElapsed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestHandleCompleteElapsedTask(t *testing.T) {
	completer := &MockCompleter{}
	completer.On("CompleteElapsed", mock.Anything).Return(3, nil).Once()

	task, _, err := tasks.NewCompleteElapsedTask(time.Now())
	require.NoError(t, err)

	handler := HandleCompleteElapsedTask(completer, zap.NewNop())
	require.NoError(t, handler(context.Background(), task))
	completer.AssertExpectations(t)
}

func TestHandleCompleteElapsedTaskPropagatesFailure(t *testing.T) {
	completer := &MockCompleter{}
	completer.On("CompleteElapsed", mock.Anything).Return(0, errors.New("mongo down"))

	task, _, err := tasks.NewCompleteElapsedTask(time.Now())
	require.NoError(t, err)

	err = HandleCompleteElapsedTask(completer, zap.NewNop())(context.Background(), task)
	assert.EqualError(t, err, "mongo down")
}

func TestHandleCompleteElapsedTaskSkipsRetryOnBadPayload(t *testing.T) {
	completer := &MockCompleter{}
	task := asynq.NewTask(tasks.TypeCompleteElapsed, []byte("{"))

	err := HandleCompleteElapsedTask(completer, zap.NewNop())(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	completer.AssertNotCalled(t, "CompleteElapsed", mock.Anything)
}
