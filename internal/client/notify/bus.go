package notify

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/ghosiportal/internal/logging"
)

const Topic = "portal.notifications"

const (
	metaKeyKind = "kind"
	metaKeyID   = "notification_id"
	metaKeyAt   = "at"
)

// Handler processes one notification.
type Handler func(ctx context.Context, n Notification) error

// Bus is a Notifier backed by an in-memory watermill GoChannel. Publishing
// blocks until subscribers have acknowledged, so notifications raised by a
// service call are handled before the call returns.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    logging.Logger
	now    func() time.Time
}

func NewBus(log logging.Logger) *Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	return &Bus{pubsub: ch, log: log, now: time.Now}
}

func (b *Bus) Loading(ctx context.Context, text string) string {
	id := uuid.NewString()
	b.publish(ctx, Notification{ID: id, Kind: KindLoading, Text: text})
	return id
}

func (b *Bus) Success(ctx context.Context, text string) {
	b.publish(ctx, Notification{ID: uuid.NewString(), Kind: KindSuccess, Text: text})
}

func (b *Bus) Error(ctx context.Context, text string) {
	b.publish(ctx, Notification{ID: uuid.NewString(), Kind: KindError, Text: text})
}

func (b *Bus) Dismiss(ctx context.Context, id string) {
	if id == "" {
		return
	}
	b.publish(ctx, Notification{ID: id, Kind: KindDismiss})
}

func (b *Bus) publish(ctx context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = b.now()
	}
	if err := b.pubsub.Publish(Topic, toMessage(n)); err != nil {
		b.log.Warn(ctx, "publish notification", "kind", n.Kind, "error", err)
	}
}

// Subscribe starts delivering notifications to handler until ctx is done
// or the bus is closed. It returns once the subscription is active.
func (b *Bus) Subscribe(ctx context.Context, handler Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			if err := handler(ctx, fromMessage(msg)); err != nil {
				b.log.Warn(ctx, "handle notification", "msg_id", msg.UUID, "error", err)
			}
			// the in-memory channel has no redelivery, so failures are acked too
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func toMessage(n Notification) *message.Message {
	msg := message.NewMessage(watermill.NewUUID(), []byte(n.Text))
	msg.Metadata.Set(metaKeyKind, string(n.Kind))
	msg.Metadata.Set(metaKeyID, n.ID)
	msg.Metadata.Set(metaKeyAt, n.At.Format(time.RFC3339Nano))
	return msg
}

func fromMessage(msg *message.Message) Notification {
	at, _ := time.Parse(time.RFC3339Nano, msg.Metadata.Get(metaKeyAt))
	return Notification{
		ID:   msg.Metadata.Get(metaKeyID),
		Kind: Kind(msg.Metadata.Get(metaKeyKind)),
		Text: string(msg.Payload),
		At:   at,
	}
}
