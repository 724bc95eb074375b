package worker

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubConfig configures the Pub/Sub transport.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger

	// MaxOutstanding bounds unacknowledged messages held at once; default 10.
	MaxOutstanding int
}

// PubSubHandler feeds messages from a Pub/Sub subscription (typically
// published by Cloud Scheduler) to a Dispatcher.
type PubSubHandler struct {
	client       *pubsub.Client
	subscriber   *pubsub.Subscriber
	subscription string
	dispatcher   *Dispatcher
	logger       zerolog.Logger
}

// NewPubSubHandler connects to the subscription. Receiving starts with Start.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client for %s: %w", cfg.ProjectID, err)
	}

	maxOutstanding := cfg.MaxOutstanding
	if maxOutstanding <= 0 {
		maxOutstanding = 10
	}
	sub := client.Subscriber(cfg.SubscriptionName)
	sub.ReceiveSettings.MaxOutstandingMessages = maxOutstanding
	// A full refresh plus coverage fits well inside this; longer means stuck.
	sub.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:       client,
		subscriber:   sub,
		subscription: cfg.SubscriptionName,
		dispatcher:   NewDispatcher(cfg.RefreshJob, cfg.Logger),
		logger:       cfg.Logger.With().Str("subscription", cfg.SubscriptionName).Logger(),
	}, nil
}

// Start blocks receiving messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().Msg("receiving worker jobs")
	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.logger.Debug().
			Str("message_id", msg.ID).
			Time("published", msg.PublishTime).
			Int("delivery_attempt", deliveryAttempt(msg)).
			Msg("job message received")

		if h.dispatcher.Dispatch(ctx, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close releases the client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// deliveryAttempt is only populated on subscriptions with a dead-letter
// policy; zero otherwise.
func deliveryAttempt(msg *pubsub.Message) int {
	if msg.DeliveryAttempt == nil {
		return 0
	}
	return *msg.DeliveryAttempt
}
