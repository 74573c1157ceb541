package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/config"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/notify"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuration
	 **********************************************/
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("failed to connect to mail server", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open rabbitmq channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		notify.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to consume queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("received event", slog.String("body", string(msg.Body)))

				event := domain.AssignmentEvent{}
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					logger.Error("failed to decode event", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				m, err := buildMail(cfg.Email.From, &event)
				if err != nil {
					logger.Error("failed to build mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("failed to send mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue, the SMTP server may be back later
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("waiting for events... (CTRL+C to exit)")
	<-sigChan

	slog.Info("shutting down notifier...")
	cancel()
	wg.Wait()
	slog.Info("notifier stopped")
}

func buildMail(from string, event *domain.AssignmentEvent) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(event.To); err != nil {
		return nil, err
	}

	date := event.ShiftDate.Format("Mon, 02 Jan 2006")
	switch event.Type {
	case domain.EventAssigned:
		m.Subject(fmt.Sprintf("Shift assigned: %s", date))
		m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
			"Hi %s,\n\nYou have been assigned to the shift on %s by %s.\n",
			event.EngineerName, date, event.Actor))
	case domain.EventReassigned:
		m.Subject(fmt.Sprintf("Shift reassigned to you: %s", date))
		m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
			"Hi %s,\n\nThe shift on %s has been reassigned to you by %s.\n",
			event.EngineerName, date, event.Actor))
	case domain.EventUnassigned:
		m.Subject(fmt.Sprintf("Shift unassigned: %s", date))
		m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
			"Hi %s,\n\nYou have been removed from the shift on %s by %s.\n",
			event.EngineerName, date, event.Actor))
	default:
		return nil, fmt.Errorf("unsupported event type %q", event.Type)
	}

	return m, nil
}
