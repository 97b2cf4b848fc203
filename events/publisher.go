// Package events ships activity events to an Azure storage queue.
package events

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/bytedance/sonic"

	"tracker-api/domain"
)

type enqueuer interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
}

// QueuePublisher enqueues each event as a JSON message.
type QueuePublisher struct {
	queue enqueuer
}

// NewQueuePublisher connects to the named queue.
func NewQueuePublisher(connStr, queue string) (*QueuePublisher, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Second * 30,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 10,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	q, err := azqueue.NewQueueClientFromConnectionString(connStr, queue, &opts)
	if err != nil {
		return nil, err
	}
	return &QueuePublisher{queue: q}, nil
}

// Publish implements domain.Publisher.
func (p *QueuePublisher) Publish(ctx context.Context, ev domain.Event) error {
	msg, err := sonic.MarshalString(ev)
	if err != nil {
		return err
	}
	_, err = p.queue.EnqueueMessage(ctx, msg, nil)
	return err
}
