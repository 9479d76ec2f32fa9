package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartActivityConsumer connects to RabbitMQ, declares the
// spot.booked and spot.released queues (durable), and appends every
// event to logs/activity.log in a single-line format. It runs a
// reconnect loop with exponential backoff and never returns under
// normal operation; processing errors are logged and the offending
// message rejected without requeue so the server keeps running.
func StartActivityConsumer() error {
	url := brokerURL()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("activity-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{bookedQueueName, releasedQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	booked, err := ch.Consume(bookedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", bookedQueueName, err)
	}
	released, err := ch.Consume(releasedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", releasedQueueName, err)
	}

	for {
		select {
		case d, ok := <-booked:
			if !ok {
				return errors.New("booked deliveries channel closed")
			}
			handle(d, formatBooked)
		case d, ok := <-released:
			if !ok {
				return errors.New("released deliveries channel closed")
			}
			handle(d, formatReleased)
		}
	}
}

func handle(d amqp.Delivery, format func([]byte) (string, error)) {
	line, err := format(d.Body)
	if err != nil {
		log.Printf("activity-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if err := appendActivity(line); err != nil {
		log.Printf("activity-consumer: write log failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func formatBooked(body []byte) (string, error) {
	var ev SpotBookedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	return fmt.Sprintf("[%s] Spot booked | reservation_id=%d | user_id=%d | lot_id=%d | lot=%q | spot_number=%d | rate=%.2f/h\n",
		ev.BookedAt, ev.ReservationID, ev.UserID, ev.LotID, ev.LotName, ev.SpotNumber, ev.CostPerHour), nil
}

func formatReleased(body []byte) (string, error) {
	var ev SpotReleasedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	return fmt.Sprintf("[%s] Spot released | reservation_id=%d | user_id=%d | lot_id=%d | spot_number=%d | duration=%.2fh | total=%.2f\n",
		ev.ReleasedAt, ev.ReservationID, ev.UserID, ev.LotID, ev.SpotNumber, ev.DurationHours, ev.TotalCost), nil
}

func appendActivity(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "activity.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
