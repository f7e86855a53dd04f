package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/internal/users"
	"wanderly/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// RecipientLookup resolves the user a booking event is about
type RecipientLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Notifier turns booking events into emails
type Notifier struct {
	recipients RecipientLookup
	sender     EmailSender
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewNotifier(recipients RecipientLookup, sender EmailSender) *Notifier {
	return &Notifier{
		recipients: recipients,
		sender:     sender,
		maxRetries: 3,
		backoff:    time.Second,
		log:        logger.GetDefault(),
	}
}

// WithBackoff overrides the base retry delay
func (n *Notifier) WithBackoff(d time.Duration) *Notifier {
	n.backoff = d
	return n
}

// Handle decodes one message and emails the booking's owner. Undecodable
// messages and unknown event types are dropped with a warning.
func (n *Notifier) Handle(ctx context.Context, payload []byte) error {
	event, err := ParseBookingEvent(payload)
	if err != nil {
		n.log.WarnContext(ctx, "dropping undecodable booking event", "error", err)
		return nil
	}
	if _, known := subjects[event.Type]; !known {
		n.log.WarnContext(ctx, "dropping unknown booking event", "type", event.Type)
		return nil
	}

	user, err := n.recipients.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient %s: %w", event.UserID, err)
	}

	subject, body, err := renderEmail(event, user.FirstName)
	if err != nil {
		return err
	}

	return n.sendWithRetry(ctx, user.Email, subject, body)
}

func (n *Notifier) sendWithRetry(ctx context.Context, to, subject, body string) error {
	var err error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if err = n.sender.Send(ctx, to, subject, body); err == nil {
			return nil
		}
		if attempt == n.maxRetries {
			break
		}

		delay := n.backoff * time.Duration(1<<attempt)
		n.log.WarnContext(ctx, "email send failed, retrying", "to", to, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Consumer reads the booking topic as part of a consumer group
type Consumer struct {
	group    sarama.ConsumerGroup
	topic    string
	notifier *Notifier
	log      *logger.Logger
}

func NewConsumer(cfg config.KafkaConfig, notifier *Notifier) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:    group,
		topic:    cfg.BookingTopic,
		notifier: notifier,
		log:      logger.GetDefault(),
	}, nil
}

// Run consumes until ctx is cancelled. Consume returns on every rebalance,
// so it is called in a loop.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.log.Error("consumer group error", "error", err)
		}
	}()

	c.log.Info("booking event consumer started", "topic", c.topic)
	handler := &groupHandler{notifier: c.notifier, log: c.log}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("consume failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	notifier *Notifier
	log      *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.notifier.Handle(session.Context(), message.Value); err != nil {
				h.log.Error("failed to process booking event",
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err,
				)
				continue
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
