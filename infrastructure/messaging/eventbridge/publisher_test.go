package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kellerliste/domain/events"
	"kellerliste/domain/inventory"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func itemEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewItemRemoved("a@example.com", "id", time.Unix(0, 0))
	}
	return out
}

func TestPublisher_Publish(t *testing.T) {
	client := new(mockEventBridge)
	var captured *eventbridge.PutEventsInput
	client.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*eventbridge.PutEventsInput) }).
		Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(client, "inventory-bus", zap.NewNop())
	event := events.NewItemAdded("a@example.com", inventory.Food, inventory.Item{ID: "1", Name: "rice"}, time.Now())
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, captured.Entries, 1)
	entry := captured.Entries[0]
	assert.Equal(t, "inventory-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceBackend, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeItemAdded, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "a@example.com", detail["user_email"])
	assert.Equal(t, "food", detail["category"])
	client.AssertExpectations(t)
}

func TestPublisher_PublishBatchSplits(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 10
	})).Return(&eventbridge.PutEventsOutput{}, nil).Twice()
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 3
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(client, "bus", nil)
	require.NoError(t, p.PublishBatch(context.Background(), itemEvents(23)))
	client.AssertExpectations(t)
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("call error", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

		err := NewPublisher(client, "bus", nil).PublishBatch(context.Background(), itemEvents(1))
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("failed entries", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
				{EventId: aws.String("ok")},
			},
		}, nil)

		err := NewPublisher(client, "bus", nil).PublishBatch(context.Background(), itemEvents(2))
		assert.EqualError(t, err, "1 events failed to publish")
	})

	t.Run("empty batch makes no call", func(t *testing.T) {
		client := new(mockEventBridge)
		assert.NoError(t, NewPublisher(client, "bus", nil).PublishBatch(context.Background(), nil))
		client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
	})
}
