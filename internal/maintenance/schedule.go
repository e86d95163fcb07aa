// Package maintenance runs background jobs on a wall-clock schedule.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

type Job func(ctx context.Context) error

// ParseClock reads "HH:MM" in 24h form.
func ParseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("maintenance: %q is not HH:MM", s)
	}
	if hour, err = strconv.Atoi(hs); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("maintenance: bad hour in %q", s)
	}
	if minute, err = strconv.Atoi(ms); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("maintenance: bad minute in %q", s)
	}
	return hour, minute, nil
}

// nextRun is the first hour:minute in now's location strictly after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Daily starts a goroutine that calls job once a day at localTime in tzName
// until ctx is done. Bad arguments are reported before anything starts.
// An unknown zone falls back to UTC.
func Daily(ctx context.Context, name, localTime, tzName string, job Job, log *slog.Logger) error {
	hour, minute, err := ParseClock(localTime)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Warn("unknown time zone, using UTC", "job", name, "tz", tzName)
		loc = time.UTC
	}

	go func() {
		for {
			next := nextRun(time.Now().In(loc), hour, minute)
			log.Debug("job scheduled", "job", name, "at", next)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				start := time.Now()
				if err := job(ctx); err != nil {
					log.Error("job failed", "job", name, "err", err)
					continue
				}
				log.Info("job finished", "job", name, "took", time.Since(start))
			}
		}
	}()
	return nil
}
