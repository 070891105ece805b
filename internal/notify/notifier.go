// Package notify dispatches post-commit booking notifications. Dispatch is
// best-effort: a failed notification is logged and never fails the booking.
package notify

import (
	"context"

	"fitstudio/pkg/kafka"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"
)

const (
	EventBookingConfirmed = "booking.confirmed"

	source = "fitstudio-api"
)

type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, confirmation *model.BookingConfirmation) error
}

// KafkaNotifier publishes booking events keyed by reference, so replays of
// the same booking land on the same partition in order.
type KafkaNotifier struct {
	producer *kafka.Producer
}

func NewKafkaNotifier(producer *kafka.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) NotifyBookingConfirmed(ctx context.Context, confirmation *model.BookingConfirmation) error {
	msg, err := kafka.NewMessage(confirmation.Reference, EventBookingConfirmed, source, confirmation)
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, msg)
}

// LogNotifier stands in when no broker is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyBookingConfirmed(_ context.Context, confirmation *model.BookingConfirmation) error {
	n.log.Info("Booking confirmed",
		"reference", confirmation.Reference,
		"class_name", confirmation.ClassName,
		"client_email", confirmation.ClientEmail,
		"start_time", confirmation.StartTime,
	)
	return nil
}
