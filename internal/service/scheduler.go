package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

// SchedulerService places sessions into hall timelines.
type SchedulerService struct {
	base
	tickets *TicketService
}

// NewSchedulerService creates a SchedulerService.  Tickets for new sessions
// are created through tickets.
func NewSchedulerService(store *repository.Store, tickets *TicketService, opts ...Option) *SchedulerService {
	return &SchedulerService{base: newBase(store, opts), tickets: tickets}
}

// FindConflict reports the first slot that the window [start, end] collides
// with.  Windows overlap when start < slot end and end > slot start.  A
// window that begins after a slot ends, or ends before a slot starts, must
// keep at least buffer between them.  Touching edges (start == slot end,
// end == slot start) are allowed.
func FindConflict(start, end time.Time, slots []model.Slot, buffer time.Duration) (model.Slot, bool) {
	for _, c := range slots {
		switch {
		case start.Before(c.End) && end.After(c.Start):
			return c, true
		case start.After(c.End) && start.Sub(c.End) < buffer:
			return c, true
		case end.Before(c.Start) && c.Start.Sub(end) < buffer:
			return c, true
		}
	}
	return model.Slot{}, false
}

// ScheduleSession creates a session and its tickets.  The hall row stays
// locked until commit, so concurrent scheduling into one hall is serialized.
func (s *SchedulerService) ScheduleSession(ctx context.Context, filmID, hallID uuid.UUID, startAt time.Time) (*model.Session, error) {
	startAt = startAt.UTC()
	var (
		out   *model.Session
		count int
	)
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		film, err := s.store.Films.GetByID(ctx, filmID)
		if err != nil {
			return notFound(err, "film", filmID)
		}
		if _, err := s.store.Halls.GetForUpdate(ctx, hallID); err != nil {
			return notFound(err, "hall", hallID)
		}
		if err := s.checkSlot(ctx, hallID, film, startAt, uuid.Nil); err != nil {
			return err
		}

		now := s.now()
		session := &model.Session{
			ID:        uuid.New(),
			FilmID:    filmID,
			HallID:    hallID,
			StartAt:   startAt,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Sessions.Create(ctx, session); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		tickets, err := s.tickets.bulkCreate(ctx, session)
		if err != nil {
			return err
		}
		out, count = session, len(tickets)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("session scheduled",
		zap.Stringer("session_id", out.ID),
		zap.Stringer("hall_id", hallID),
		zap.Time("start_at", startAt),
		zap.Int("tickets", count))
	return out, nil
}

// RescheduleSession moves an existing session to a new film, hall or start
// time.  Its tickets, holds and purchase bindings are kept as they are.
// Only the target hall is locked: on a hall change the source hall's
// timeline is not serialized, which is safe because moving a session out
// of a hall only frees time there.
func (s *SchedulerService) RescheduleSession(ctx context.Context, sessionID, filmID, hallID uuid.UUID, startAt time.Time) (*model.Session, error) {
	startAt = startAt.UTC()
	var out *model.Session
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		session, err := s.store.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return notFound(err, "session", sessionID)
		}
		film, err := s.store.Films.GetByID(ctx, filmID)
		if err != nil {
			return notFound(err, "film", filmID)
		}
		if _, err := s.store.Halls.GetForUpdate(ctx, hallID); err != nil {
			return notFound(err, "hall", hallID)
		}
		if err := s.checkSlot(ctx, hallID, film, startAt, sessionID); err != nil {
			return err
		}

		session.FilmID = filmID
		session.HallID = hallID
		session.StartAt = startAt
		session.UpdatedAt = s.now()
		if err := s.store.Sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("session rescheduled", zap.Stringer("session_id", sessionID), zap.Time("start_at", startAt))
	return out, nil
}

// DeleteSession removes a session and all of its tickets, whatever their
// status.
func (s *SchedulerService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	var removed int64
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Sessions.GetByID(ctx, sessionID); err != nil {
			return notFound(err, "session", sessionID)
		}
		n, err := s.tickets.bulkDeleteForSession(ctx, sessionID)
		if err != nil {
			return err
		}
		removed = n
		if err := s.store.Sessions.Delete(ctx, sessionID); err != nil {
			return notFound(err, "session", sessionID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("session deleted", zap.Stringer("session_id", sessionID), zap.Int64("tickets", removed))
	return nil
}

// GetSession returns a session.
func (s *SchedulerService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.store.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	return session, nil
}

// checkSlot loads the hall's sessions near [startAt, startAt+duration] and
// rejects the window when it collides with any of them except exclude.
func (s *SchedulerService) checkSlot(ctx context.Context, hallID uuid.UUID, film *model.Film, startAt time.Time, exclude uuid.UUID) error {
	endAt := startAt.Add(film.Duration())
	from := startAt.Add(-(film.Duration() + SessionBuffer))
	to := endAt.Add(SessionBuffer)
	slots, err := s.store.Sessions.ListSlots(ctx, hallID, from, to)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	candidates := slots[:0]
	for _, sl := range slots {
		if sl.SessionID != exclude {
			candidates = append(candidates, sl)
		}
	}
	if c, ok := FindConflict(startAt, endAt, candidates, SessionBuffer); ok {
		return domain.SchedulingConflict("hall %s is occupied by session %s from %s to %s (a %s gap is required)",
			hallID, c.SessionID, c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339), SessionBuffer)
	}
	return nil
}
