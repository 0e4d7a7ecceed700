package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/playback"
	"github.com/lmeunier/groove/internal/state"
)

const (
	reportTimeout = 10 * time.Second
	maxAttempts   = 10
)

// Reporter asynchronously submits play reports for loaded tracks.
// Failed submissions are queued in the state store and retried later;
// no failure ever reaches the playback engine.
type Reporter struct {
	client  *Client
	session string
	store   *state.Manager // optional retry queue
	log     *logrus.Logger

	wg sync.WaitGroup
}

// NewReporter creates a reporter. session may be empty, in which case
// every report is skipped silently. store may be nil to disable the
// retry queue.
func NewReporter(client *Client, session string, store *state.Manager, log *logrus.Logger) *Reporter {
	if log == nil {
		log = logrus.New()
	}
	return &Reporter{
		client:  client,
		session: session,
		store:   store,
		log:     log,
	}
}

// TrackLoaded satisfies playback.Reporter. It returns immediately and
// reports in the background.
func (r *Reporter) TrackLoaded(t playback.Track) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.report(t.ID)
	}()
}

func (r *Reporter) report(trackID string) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	err := r.client.ReportPlay(ctx, trackID, r.session)
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotAuthenticated) {
		r.log.WithField("track", trackID).Debug("no session, play report skipped")
		return
	}
	r.log.WithError(err).WithField("track", trackID).Warn("play report failed")
	if r.store != nil {
		if qErr := r.store.AddPendingPlay(trackID); qErr != nil {
			r.log.WithError(qErr).Warn("queueing play report for retry failed")
		}
	}
}

// RetryPending resubmits queued play reports, dropping each one after
// too many attempts. Returns how many succeeded and how many failed
// this round.
func (r *Reporter) RetryPending(ctx context.Context) (succeeded, failed int) {
	if r.store == nil || r.session == "" {
		return 0, 0
	}
	pending, err := r.store.PendingPlays()
	if err != nil {
		r.log.WithError(err).Warn("reading pending play reports failed")
		return 0, 0
	}

	for i := range pending {
		p := &pending[i]
		if p.Attempts >= maxAttempts {
			if err := r.store.DeletePendingPlay(p.ID); err != nil {
				r.log.WithError(err).Warn("dropping exhausted play report failed")
			}
			continue
		}

		err := r.client.ReportPlay(ctx, p.TrackID, r.session)
		if err != nil {
			failed++
			if nErr := r.store.NotePendingPlayAttempt(p.ID, err.Error()); nErr != nil {
				r.log.WithError(nErr).Warn("recording play report attempt failed")
			}
			continue
		}
		succeeded++
		if err := r.store.DeletePendingPlay(p.ID); err != nil {
			r.log.WithError(err).Warn("removing submitted play report failed")
		}
	}
	return succeeded, failed
}

// RetryEvery runs RetryPending at each interval until done is closed.
func (r *Reporter) RetryEvery(interval time.Duration, done <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			succeeded, failed := r.RetryPending(ctx)
			cancel()
			if succeeded+failed > 0 {
				r.log.WithFields(logrus.Fields{
					"succeeded": succeeded,
					"failed":    failed,
				}).Info("retried pending play reports")
			}
		}
	}
}

// Wait blocks until in-flight reports finish. Used on shutdown and in
// tests.
func (r *Reporter) Wait() {
	r.wg.Wait()
}
