// Package notify delivers rider-facing messages (trip receipts, settlement
// failures) through a redis-backed queue with an SMTP worker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"farebox/internal/logger"
	"farebox/internal/metrics"
	"farebox/internal/user"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"
	maxTries  = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// RiderDirectory resolves a rider id to a deliverable address.
type RiderDirectory interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Service struct {
	redis    *redis.Client
	riders   RiderDirectory
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(riders RiderDirectory, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		riders:   riders,
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// SettlementFailed queues a notice that a completed trip's fare could not be
// collected. Delivery failures only log; settlement reporting never blocks
// the trip flow.
func (s *Service) SettlementFailed(ctx context.Context, riderID, tripID int, fareCents int64, reason string) {
	rider, err := s.riders.FindByID(ctx, riderID)
	if err != nil || rider == nil {
		logger.Errorf("Notify: cannot resolve rider %d: %v", riderID, err)
		return
	}

	body := fmt.Sprintf(
		"We could not collect the fare of %d for your trip #%d: %s. Please top up your wallet; the amount remains due.",
		fareCents, tripID, reason,
	)
	if err := s.Send(ctx, rider.Email, rider.Name, "Trip fare could not be collected", body); err != nil {
		logger.Errorf("Notify: failed to queue settlement notice for rider %d: %v", riderID, err)
	}
}

func (s *Service) TripReceipt(ctx context.Context, riderID, tripID int, fareCents int64, distanceKm float64) {
	rider, err := s.riders.FindByID(ctx, riderID)
	if err != nil || rider == nil {
		logger.Errorf("Notify: cannot resolve rider %d: %v", riderID, err)
		return
	}

	body := fmt.Sprintf(
		"Your trip #%d is complete. Distance: %.2f km, fare charged: %d.",
		tripID, distanceKm, fareCents,
	)
	if err := s.Send(ctx, rider.Email, rider.Name, "Trip receipt", body); err != nil {
		logger.Errorf("Notify: failed to queue receipt for rider %d: %v", riderID, err)
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		return err
	}

	metrics.NotificationsQueuedTotal.Inc()
	logger.Infof("Notification queued: %q to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Notify: bad job data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Notify: delivery to %s failed (attempt %d): %v", job.To, job.Tries, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			logger.Errorf("Notify: giving up on %s after %d attempts", job.To, job.Tries)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), failedKey, data)
		}
		return
	}

	logger.Infof("Notification delivered to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\nHi %s,\r\n\r\n%s\r\n",
		s.fromName, s.from, job.To, job.Subject, job.Name, job.Body,
	))

	addr := s.smtpHost + ":" + s.smtpPort
	var a smtp.Auth
	if s.smtpUser != "" {
		a = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	return smtp.SendMail(addr, a, s.from, []string{job.To}, msg)
}

func (s *Service) Close() error {
	return s.redis.Close()
}
