package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/discount"
	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
)

// ClubInput creates a club.
type ClubInput struct {
	Name       string `json:"name" validate:"required,max=200"`
	AgeFrom    int    `json:"age_from" validate:"min=3,max=18"`
	AgeTo      int    `json:"age_to" validate:"min=3,max=18,gtefield=AgeFrom"`
	GenderType string `json:"gender_type" validate:"omitempty,oneof=male female both"`
	IsActive   *bool  `json:"is_active"`
}

// TermInput creates a term of a club.
type TermInput struct {
	Name        string    `json:"name" validate:"required,max=200"`
	DateFrom    time.Time `json:"date_from" validate:"required"`
	DateTo      time.Time `json:"date_to" validate:"required"`
	Price       float64   `json:"price" validate:"min=0"`
	MaxCapacity int       `json:"max_capacity" validate:"min=0"`
	IsActive    *bool     `json:"is_active"`
}

// TermView is a term with the figures derived from today's date and its
// registrations. AvailableSeats is nil for an unlimited term.
type TermView struct {
	models.Term
	State          string `json:"state"`
	Registered     int64  `json:"registered"`
	AvailableSeats *int   `json:"available_seats"`
}

type TermService struct {
	store     *repository.Store
	validator *Validator
	log       *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewTermService(store *repository.Store, v *Validator, log *zap.Logger, loc *time.Location) *TermService {
	return &TermService{store: store, validator: v, log: log, loc: loc, now: time.Now}
}

func (s *TermService) today() time.Time { return discount.Date(s.now().In(s.loc)) }

func (s *TermService) CreateClub(ctx context.Context, in ClubInput) (*models.Club, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	c := &models.Club{
		Name:       in.Name,
		AgeFrom:    in.AgeFrom,
		AgeTo:      in.AgeTo,
		GenderType: in.GenderType,
		IsActive:   in.IsActive == nil || *in.IsActive,
	}
	if c.GenderType == "" {
		c.GenderType = models.GenderBoth
	}
	if err := s.store.Clubs().Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create club")
	}
	s.log.Info("club created", zap.Uint("club_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *TermService) GetClub(ctx context.Context, id uint) (*models.Club, error) {
	return s.store.Clubs().Get(ctx, id)
}

// CreateTerm adds a term to a club. Terms of one club may not share a day.
func (s *TermService) CreateTerm(ctx context.Context, clubID uint, in TermInput) (*models.Term, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	from, to := discount.Date(in.DateFrom.In(s.loc)), discount.Date(in.DateTo.In(s.loc))
	if to.Before(from) {
		return nil, invalid("date_to", "date_to must not be before date_from")
	}

	t := &models.Term{
		ClubID:      clubID,
		Name:        in.Name,
		DateFrom:    from,
		DateTo:      to,
		Price:       in.Price,
		MaxCapacity: in.MaxCapacity,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Clubs().Get(ctx, clubID); err != nil {
			return err
		}
		n, err := tx.Terms().CountOverlapping(ctx, clubID, from, to, 0)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrTermOverlap
		}
		return tx.Terms().Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("term created",
		zap.Uint("club_id", clubID),
		zap.Uint("term_id", t.ID),
		zap.Time("from", from),
		zap.Time("to", to))
	return t, nil
}

func (s *TermService) GetTerm(ctx context.Context, id uint) (*TermView, error) {
	t, err := s.store.Terms().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.store.Terms().CountLive(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &TermView{Term: *t, State: t.StateOn(s.today()), Registered: n}
	if t.MaxCapacity > 0 {
		left := t.MaxCapacity - int(n)
		if left < 0 {
			left = 0
		}
		v.AvailableSeats = &left
	}
	return v, nil
}
