package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fitstudio/internal/notify"
	"fitstudio/pkg/config"
	"fitstudio/pkg/kafka"
	kafkaconfig "fitstudio/pkg/kafka/config"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Fatal("Notifier requires at least one Kafka broker")
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingConfirmedTopic,
		cfg.NotifierGroupID,
		handleEvent(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Notifier consuming",
		"topic", cfg.BookingConfirmedTopic,
		"group_id", cfg.NotifierGroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped gracefully")
}

func handleEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.EventType() != notify.EventBookingConfirmed {
			log.Warn("Skipping unexpected event type", "event_type", msg.EventType())
			return nil
		}

		var confirmation model.BookingConfirmation
		if err := msg.DecodeValue(&confirmation); err != nil {
			return fmt.Errorf("failed to decode booking confirmation: %w", err)
		}

		log.Info("Sending confirmation email",
			"to", confirmation.ClientEmail,
			"reference", confirmation.Reference,
			"body", renderConfirmationEmail(&confirmation),
		)
		return nil
	}
}

// renderConfirmationEmail builds the plain-text confirmation body. Actual
// delivery is out of scope for now; the rendered email goes to the log.
func renderConfirmationEmail(c *model.BookingConfirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", c.ClientName)
	fmt.Fprintf(&b, "Your booking is confirmed!\n\n")
	fmt.Fprintf(&b, "Reference:  %s\n", c.Reference)
	fmt.Fprintf(&b, "Class:      %s with %s\n", c.ClassName, c.Instructor)
	fmt.Fprintf(&b, "When:       %s\n", c.StartTime.Format("Monday, Jan 2 2006 at 15:04 MST"))
	fmt.Fprintf(&b, "Where:      %s\n", c.Location)
	fmt.Fprintf(&b, "Price:      $%.2f\n\n", float64(c.PriceCents)/100)
	fmt.Fprintf(&b, "See you there!\nFitStudio")
	return b.String()
}
