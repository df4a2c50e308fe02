package job_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkscraper/features/job"
	"linkscraper/internal/config"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Save(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *mockRepo) List(ctx context.Context) ([]job.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.Job), args.Error(1)
}

func (m *mockRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

func TestService_Retry(t *testing.T) {
	ctx := context.Background()
	payload := json.RawMessage(`{"url":"https://example.com","user_id":"user-1"}`)

	t.Run("Republishes and removes the job", func(t *testing.T) {
		repo := new(mockRepo)
		pub := new(mockPublisher)
		svc := job.NewService(repo, pub)

		repo.On("Get", ctx, "job-1").Return(&job.Job{ID: "job-1", Payload: payload}, nil)
		pub.On("Publish", config.TopicPopulate, []byte(payload)).Return(nil)
		repo.On("Delete", ctx, "job-1").Return(nil)

		require.NoError(t, svc.Retry(ctx, "job-1"))
		pub.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Unknown job", func(t *testing.T) {
		repo := new(mockRepo)
		pub := new(mockPublisher)
		svc := job.NewService(repo, pub)

		repo.On("Get", ctx, "ghost").Return(nil, sql.ErrNoRows)

		err := svc.Retry(ctx, "ghost")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure keeps the job", func(t *testing.T) {
		repo := new(mockRepo)
		pub := new(mockPublisher)
		svc := job.NewService(repo, pub)

		repo.On("Get", ctx, "job-1").Return(&job.Job{ID: "job-1", Payload: payload}, nil)
		pub.On("Publish", config.TopicPopulate, []byte(payload)).Return(errors.New("nsqd unreachable"))

		err := svc.Retry(ctx, "job-1")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
