package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gabconcours.ga/backend/internal/entity"
	notifRepo "gabconcours.ga/backend/internal/modules/notification/repository"
	"gabconcours.ga/backend/pkg/mailer"
	"gabconcours.ga/backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const dequeueTimeout = 5 * time.Second

// Dispatcher drains the outbox: each notification is emailed at most once and
// published to the candidate's live channel.
type Dispatcher struct {
	repo      notifRepo.NotificationRepository
	queue     Queue
	rdb       *redis.Client
	mailer    mailer.Mailer
	portalURL string
	metrics   *metrics.Metrics

	// claimed replaces the Redis claim when running without Redis. Values are claim times.
	claimed sync.Map
	now     func() time.Time
}

func NewDispatcher(repo notifRepo.NotificationRepository, queue Queue, rdb *redis.Client, m mailer.Mailer, portalURL string, mx *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		queue:     queue,
		rdb:       rdb,
		mailer:    m,
		portalURL: portalURL,
		metrics:   mx,
		now:       time.Now,
	}
}

// Run processes the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Println("Notification dispatcher started")
	for {
		if ctx.Err() != nil {
			log.Println("Notification dispatcher stopped")
			return
		}

		id, ok, err := d.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("Notification dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		if err := d.Process(ctx, id); err != nil {
			log.Printf("Notification %s: %v", id, err)
		}
	}
}

// claim reports whether this process is the first to handle id.
func (d *Dispatcher) claim(ctx context.Context, id uuid.UUID) (bool, error) {
	if d.rdb != nil {
		return d.rdb.SetNX(ctx, sentKeyPrefix+id.String(), time.Now().Unix(), claimTTL).Result()
	}
	now := d.now()
	prev, loaded := d.claimed.LoadOrStore(id, now)
	if !loaded {
		return true, nil
	}
	if now.Sub(prev.(time.Time)) < claimTTL {
		return false, nil
	}
	return d.claimed.CompareAndSwap(id, prev, now), nil
}

// pruneClaims drops in-memory claims older than claimTTL.
func (d *Dispatcher) pruneClaims() {
	now := d.now()
	d.claimed.Range(func(key, value any) bool {
		if now.Sub(value.(time.Time)) >= claimTTL {
			d.claimed.Delete(key)
		}
		return true
	})
}

// Requeue pushes rows that were saved but never emailed back onto the outbox.
// Rows already claimed are skipped by Process, so a failed email is still not retried.
func (d *Dispatcher) Requeue(ctx context.Context) (int, error) {
	d.pruneClaims()

	now := d.now()
	ids, err := d.repo.FindUnsent(ctx, now.Add(-requeueWindow), now.Add(-requeueAfter), requeueBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsent notifications: %w", err)
	}
	for i, id := range ids {
		if err := d.queue.Enqueue(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

// Process sends one notification. A failed email is logged and not retried.
func (d *Dispatcher) Process(ctx context.Context, id uuid.UUID) error {
	n, err := d.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load: %w", err)
	}
	if n.EmailSentAt != nil {
		return nil
	}

	first, err := d.claim(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to claim: %w", err)
	}
	if !first {
		return nil
	}

	// Another worker may have stamped the row between the first read and the claim.
	if n, err = d.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	if n.EmailSentAt != nil {
		return nil
	}

	if err := d.sendEmail(ctx, n); err != nil {
		log.Printf("Failed to email notification %s to %s: %v", n.ID, n.Nupcan, err)
		d.metrics.IncrementNotificationsFailed()
	} else {
		d.metrics.IncrementNotificationsSent()
		now := d.now()
		if err := d.repo.MarkEmailSent(ctx, n.ID, now); err != nil {
			log.Printf("Failed to stamp notification %s as sent: %v", n.ID, err)
		} else {
			// The row stamp now guards against a resend.
			d.claimed.Delete(n.ID)
		}
		n.EmailSentAt = &now
	}

	d.publish(ctx, n)
	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, n *entity.Notification) error {
	if d.mailer == nil {
		return errors.New("no mailer configured")
	}
	if n.Email == "" {
		return errors.New("candidate has no email address")
	}

	data := mailer.StatusUpdateData{
		FullName:  n.Recipient,
		Nupcan:    n.Nupcan,
		Title:     n.Title,
		Message:   n.Message,
		Approved:  n.Approved(),
		PortalURL: d.portalURL,
	}
	if n.Reason != nil {
		data.Reason = *n.Reason
	}

	body, err := mailer.Render(mailer.TemplateStatusUpdate, data)
	if err != nil {
		return err
	}

	return d.mailer.Send(ctx, mailer.Message{
		To:      n.Email,
		Subject: "GabConcours - " + n.Title,
		HTML:    body,
	})
}

func (d *Dispatcher) publish(ctx context.Context, n *entity.Notification) {
	if d.rdb == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("Failed to encode notification %s: %v", n.ID, err)
		return
	}
	if err := d.rdb.Publish(ctx, CandidateChannel(n.Nupcan), payload).Err(); err != nil {
		log.Printf("Failed to publish notification %s: %v", n.ID, err)
	}
}
