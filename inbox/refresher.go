package inbox

import (
	"context"
	"fmt"
	"time"

	"crmmail/models"
	"crmmail/utils"

	"github.com/robfig/cron/v3"
)

// Notifier receives new-mail events from the background poller.
type Notifier interface {
	NotifyNewEmail(from, subject string)
}

// Refresher polls the inbox folder on a schedule and raises a notification
// for each message it has not seen before. It only watches the inbox;
// user-driven views refresh themselves.
type Refresher struct {
	api      MailAPI
	notifier Notifier
	log      *utils.Logger
	limit    int
	interval time.Duration

	cron *cron.Cron
	seen map[string]struct{}
}

// NewRefresher builds a poller; Start arms it.
func NewRefresher(api MailAPI, notifier Notifier, interval time.Duration, limit int, log *utils.Logger) *Refresher {
	return &Refresher{
		api:      api,
		notifier: notifier,
		log:      log,
		limit:    limit,
		interval: interval,
		cron:     cron.New(),
		seen:     make(map[string]struct{}),
	}
}

// Start primes the seen set from the current inbox so existing mail does
// not notify, then begins polling.
func (r *Refresher) Start(ctx context.Context) error {
	emails, err := r.api.ListMessages(ctx, string(FolderInbox), "", r.limit)
	if err != nil {
		r.log.Warn("Initial inbox poll failed, all current mail will notify: %v", err)
	}
	for _, e := range emails {
		r.seen[e.ID] = struct{}{}
	}

	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, r.poll); err != nil {
		return fmt.Errorf("scheduling inbox poll: %w", err)
	}

	r.cron.Start()
	r.log.Info("Inbox poller started: every %s, limit %d", r.interval, r.limit)
	return nil
}

// Stop halts polling and waits for an in-flight poll to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	emails, err := r.api.ListMessages(ctx, string(FolderInbox), "", r.limit)
	if err != nil {
		r.log.Warn("Inbox poll failed: %v", err)
		return
	}

	fresh := r.markSeen(emails)
	for _, e := range fresh {
		r.log.Debug("New email: %s from %s", e.ID, e.From)
		if r.notifier != nil {
			r.notifier.NotifyNewEmail(e.FromName(), e.Subject)
		}
	}
}

func (r *Refresher) markSeen(emails []models.Email) []models.Email {
	var fresh []models.Email
	for _, e := range emails {
		if _, ok := r.seen[e.ID]; ok {
			continue
		}
		r.seen[e.ID] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh
}
