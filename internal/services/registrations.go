package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/discount"
	"github.com/roayati/clubs/internal/events"
	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
)

type RegistrationService struct {
	store     *repository.Store
	invoices  *InvoiceService
	validator *Validator
	log       *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewRegistrationService(store *repository.Store, invoices *InvoiceService, v *Validator, log *zap.Logger, loc *time.Location) *RegistrationService {
	return &RegistrationService{
		store:     store,
		invoices:  invoices,
		validator: v,
		log:       log,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *RegistrationService) today() time.Time { return discount.Date(s.now().In(s.loc)) }

func (s *RegistrationService) Get(ctx context.Context, id uint) (*models.Registration, error) {
	return s.store.Registrations().Get(ctx, id)
}

func (s *RegistrationService) GetByCode(ctx context.Context, code string) (*models.Registration, error) {
	return s.store.Registrations().GetByCode(ctx, code)
}

func (s *RegistrationService) GetFamily(ctx context.Context, id uint) (*models.Family, error) {
	return s.store.Families().Get(ctx, id)
}

// Audit lists the trail of a registration, oldest first.
func (s *RegistrationService) Audit(ctx context.Context, id uint) ([]models.AuditEntry, error) {
	if _, err := s.store.Registrations().Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Audit().List(ctx, EntityRegistration, id)
}

// Create opens a draft registration and refreshes the figures of every
// registration it affects.
func (s *RegistrationService) Create(ctx context.Context, in CreateInput) (*models.Registration, error) {
	in.Applicant.normalize(s.loc)
	if in.RegistrationType == "" {
		in.RegistrationType = models.TypeNew
	}
	if in.DiscountPolicy == "" {
		in.DiscountPolicy = string(discount.Cumulative)
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	today := s.today()
	if err := checkBirthDate(in.Applicant.BirthDate, today); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		RegistrationType: in.RegistrationType,
		DiscountPolicy:   in.DiscountPolicy,
		State:            models.StateDraft,
	}
	in.Applicant.applyTo(reg)
	in.Overrides.applyTo(reg)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		term, err := lookupTerm(ctx, tx, in.TermID)
		if err != nil {
			return err
		}
		if in.ClubID != 0 && in.ClubID != term.ClubID {
			return invalid("club_id", "term does not belong to this club")
		}
		reg.TermID = term.ID
		reg.ClubID = term.ClubID

		if reg.RegistrationType == models.TypeExisting {
			st, err := tx.Students().Get(ctx, *in.StudentID)
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("student_id", "student profile not found")
			}
			if err != nil {
				return err
			}
			copyStudent(reg, st)
		}

		if err := s.admit(ctx, tx, reg, term, &term.Club, false, today); err != nil {
			return err
		}

		code, err := uniqueRegCode(ctx, tx.Registrations())
		if err != nil {
			return err
		}
		reg.Code = code
		reg.RegisteredAt = s.now().UTC()
		if err := tx.Registrations().Create(ctx, reg); err != nil {
			return errors.Wrap(err, "create registration")
		}

		if err := s.recomputeAround(ctx, tx, reg.ID, nil); err != nil {
			return err
		}
		return appendAudit(ctx, tx, auditRecord{
			entity: EntityRegistration,
			id:     reg.ID,
			action: "created",
			to:     models.StateDraft,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("registration created",
		zap.Uint("registration_id", reg.ID),
		zap.String("code", reg.Code),
		zap.Uint("term_id", reg.TermID))
	return s.store.Registrations().Get(ctx, reg.ID)
}

// Apply opens a draft from a public application. It is always a new child
// under the cumulative policy.
func (s *RegistrationService) Apply(ctx context.Context, in ApplicationInput) (*models.Registration, error) {
	return s.Create(ctx, CreateInput{
		RegistrationType: models.TypeNew,
		ClubID:           in.ClubID,
		TermID:           in.TermID,
		DiscountPolicy:   string(discount.Cumulative),
		Applicant:        in.Applicant,
	})
}

// Update patches the editable fields of a draft or confirmed registration.
func (s *RegistrationService) Update(ctx context.Context, id uint, in UpdateInput) (*models.Registration, error) {
	if in.Applicant != nil {
		in.Applicant.normalize(s.loc)
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	today := s.today()
	if in.Applicant != nil {
		if err := checkBirthDate(in.Applicant.BirthDate, today); err != nil {
			return nil, err
		}
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		reg, err := tx.Registrations().Get(ctx, id)
		if err != nil {
			return err
		}
		if reg.State != models.StateDraft && reg.State != models.StateConfirmed {
			return ErrInvalidTransition
		}
		if reg.State == models.StateConfirmed && in.changesPricing(reg) {
			return errors.Wrap(ErrInvalidTransition, "term, policy and overrides are fixed once confirmed")
		}
		before, err := s.relatedIDs(ctx, tx, reg)
		if err != nil {
			return err
		}

		if in.Applicant != nil {
			in.Applicant.applyTo(reg)
			if reg.Student != nil {
				copyStudent(reg, reg.Student)
			}
		}
		if in.DiscountPolicy != nil {
			reg.DiscountPolicy = *in.DiscountPolicy
		}
		if in.Overrides != nil {
			in.Overrides.applyTo(reg)
		}
		if in.TermID != nil && *in.TermID != reg.TermID {
			term, err := lookupTerm(ctx, tx, *in.TermID)
			if err != nil {
				return err
			}
			reg.TermID = term.ID
			reg.ClubID = term.ClubID
			reg.Term = *term
			reg.Club = term.Club
			if err := s.admit(ctx, tx, reg, term, &term.Club, false, today); err != nil {
				return err
			}
		} else if in.Applicant != nil {
			if err := s.admit(ctx, tx, reg, &reg.Term, &reg.Club, true, today); err != nil {
				return err
			}
		}
		if err := tx.Registrations().Save(ctx, reg); err != nil {
			return errors.Wrap(err, "save registration")
		}

		if err := s.recomputeAround(ctx, tx, reg.ID, before); err != nil {
			return err
		}
		return appendAudit(ctx, tx, auditRecord{
			entity: EntityRegistration,
			id:     reg.ID,
			action: "updated",
			from:   reg.State,
			to:     reg.State,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.store.Registrations().Get(ctx, id)
}

// admit checks that the term takes this child: open, age and gender fit,
// seats left, and no other live registration of the child in the term.
// holdsSeat is set when reg is already counted against the term.
func (s *RegistrationService) admit(ctx context.Context, tx *repository.Store, reg *models.Registration, term *models.Term, club *models.Club, holdsSeat bool, today time.Time) error {
	if !term.Open(today) {
		return ErrTermClosed
	}
	if err := checkClubRequirements(reg, club, today); err != nil {
		return err
	}
	if term.MaxCapacity > 0 {
		n, err := tx.Terms().CountLive(ctx, term.ID)
		if err != nil {
			return err
		}
		if holdsSeat {
			n--
		}
		if n >= int64(term.MaxCapacity) {
			return ErrTermFull
		}
	}
	dup, err := tx.Registrations().DuplicateInTerm(ctx, term.ID, reg.StudentID, reg.IDNumber, reg.ID)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateRegistration
	}
	return nil
}

// Confirm validates a draft, files its student and family, and posts the
// invoice. The confirmation stands even when invoicing fails.
func (s *RegistrationService) Confirm(ctx context.Context, id uint) (*models.Registration, error) {
	var reg *models.Registration
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		reg, err = tx.Registrations().Get(ctx, id)
		if err != nil {
			return err
		}
		if reg.State != models.StateDraft {
			return ErrInvalidTransition
		}
		if err := requiredForConfirm(reg); err != nil {
			return err
		}
		if err := checkClubRequirements(reg, &reg.Club, s.today()); err != nil {
			return err
		}
		if reg.RegistrationType == models.TypeNew && reg.StudentID == nil {
			if err := s.fileStudent(ctx, tx, reg); err != nil {
				return err
			}
		}
		reg.State = models.StateConfirmed
		if err := tx.Registrations().Save(ctx, reg); err != nil {
			return errors.Wrap(err, "save registration")
		}
		return s.transitionTx(ctx, tx, reg, models.StateDraft)
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.invoices.CreateForRegistration(ctx, id); err != nil {
		s.log.Warn("invoice not created", zap.Uint("registration_id", id), zap.Error(err))
		_ = s.store.Transaction(ctx, func(tx *repository.Store) error {
			return appendAudit(ctx, tx, auditRecord{
				entity:  EntityRegistration,
				id:      id,
				action:  "invoice_failed",
				message: err.Error(),
			})
		})
	}
	return s.fireTransition(ctx, id, models.StateDraft, models.StateConfirmed)
}

// fireTransition reloads the registration and hands it to the transition
// hook with its committed figures.
func (s *RegistrationService) fireTransition(ctx context.Context, id uint, from, to string) (*models.Registration, error) {
	reg, err := s.store.Registrations().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events.Transition(*reg, from, to)
	return reg, nil
}

// fileStudent links the registration to a family found by guardian mobile
// (or a new one) and to a student profile with the same ID number (or a
// new one).
func (s *RegistrationService) fileStudent(ctx context.Context, tx *repository.Store, reg *models.Registration) error {
	fam, err := tx.Families().FindByMobiles(ctx, reg.FatherMobile, reg.MotherMobile)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fam = &models.Family{
			FatherName:     reg.FatherName,
			FatherMobile:   reg.FatherMobile,
			MotherName:     reg.MotherName,
			MotherMobile:   reg.MotherMobile,
			MotherWhatsapp: reg.MotherWhatsapp,
			Email:          reg.Email,
		}
		if err := tx.Families().Create(ctx, fam); err != nil {
			return errors.Wrap(err, "create family")
		}
		s.log.Info("family created", zap.Uint("family_id", fam.ID))
	case err != nil:
		return err
	default:
		if fillFamily(fam, reg) {
			if err := tx.Families().Save(ctx, fam); err != nil {
				return errors.Wrap(err, "update family")
			}
		}
	}

	st, err := tx.Students().FindByIDNumber(ctx, reg.IDNumber)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		st = &models.Student{
			FullName:              reg.FullName,
			Gender:                reg.Gender,
			Nationality:           reg.Nationality,
			IDType:                reg.IDType,
			IDNumber:              reg.IDNumber,
			HasHealthRequirements: reg.HasHealthRequirements,
			HealthRequirements:    reg.HealthRequirements,
			PhotoConsent:          reg.PhotoConsent,
			FamilyID:              &fam.ID,
		}
		if reg.BirthDate != nil {
			st.BirthDate = *reg.BirthDate
		}
		if err := tx.Students().Create(ctx, st); err != nil {
			return errors.Wrap(err, "create student")
		}
	case err != nil:
		return err
	}

	reg.StudentID = &st.ID
	reg.Student = st
	reg.RegistrationType = models.TypeExisting
	return nil
}

// fillFamily copies guardian fields the family is missing from the
// registration and reports whether anything changed.
func fillFamily(f *models.Family, reg *models.Registration) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&f.FatherName, reg.FatherName)
	fill(&f.FatherMobile, reg.FatherMobile)
	fill(&f.MotherName, reg.MotherName)
	fill(&f.MotherMobile, reg.MotherMobile)
	fill(&f.MotherWhatsapp, reg.MotherWhatsapp)
	fill(&f.Email, reg.Email)
	return changed
}

func (s *RegistrationService) Approve(ctx context.Context, id uint) (*models.Registration, error) {
	return s.transition(ctx, id, models.StateApproved, nil, func(reg *models.Registration) bool {
		return reg.State == models.StateConfirmed
	})
}

func (s *RegistrationService) Reject(ctx context.Context, id uint) (*models.Registration, error) {
	return s.transition(ctx, id, models.StateRejected, nil, func(reg *models.Registration) bool {
		return reg.State == models.StateDraft || reg.State == models.StateConfirmed
	})
}

// Cancel frees the seat of any registration that is not approved and
// cancels its invoice unless paid.
func (s *RegistrationService) Cancel(ctx context.Context, id uint) (*models.Registration, error) {
	cancelInvoice := func(ctx context.Context, tx *repository.Store, reg *models.Registration) error {
		if reg.Invoice == nil {
			return nil
		}
		return s.invoices.cancelTx(ctx, tx, reg.Invoice.ID)
	}
	return s.transition(ctx, id, models.StateCancelled, cancelInvoice, func(reg *models.Registration) bool {
		return reg.State != models.StateApproved && reg.State != models.StateCancelled
	})
}

// ResetToDraft reopens a registration. Leaving cancelled or rejected takes
// the seat back, so the term must still admit the child.
func (s *RegistrationService) ResetToDraft(ctx context.Context, id uint) (*models.Registration, error) {
	readmit := func(ctx context.Context, tx *repository.Store, reg *models.Registration) error {
		if reg.State != models.StateCancelled && reg.State != models.StateRejected {
			return nil
		}
		return s.admit(ctx, tx, reg, &reg.Term, &reg.Club, false, s.today())
	}
	return s.transition(ctx, id, models.StateDraft, readmit, func(reg *models.Registration) bool {
		return reg.State != models.StateDraft
	})
}

type transitionHook func(ctx context.Context, tx *repository.Store, reg *models.Registration) error

func (s *RegistrationService) transition(ctx context.Context, id uint, to string, hook transitionHook, allowed func(*models.Registration) bool) (*models.Registration, error) {
	var reg *models.Registration
	var from string
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		reg, err = tx.Registrations().Get(ctx, id)
		if err != nil {
			return err
		}
		if !allowed(reg) {
			return ErrInvalidTransition
		}
		if hook != nil {
			if err := hook(ctx, tx, reg); err != nil {
				return err
			}
		}
		from = reg.State
		reg.State = to
		if err := tx.Registrations().Save(ctx, reg); err != nil {
			return errors.Wrap(err, "save registration")
		}
		return s.transitionTx(ctx, tx, reg, from)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("registration state changed",
		zap.Uint("registration_id", id),
		zap.String("from", from),
		zap.String("to", to))
	return s.fireTransition(ctx, id, from, to)
}

// transitionTx recomputes around a registration whose state just changed and
// records the change.
func (s *RegistrationService) transitionTx(ctx context.Context, tx *repository.Store, reg *models.Registration, from string) error {
	if err := s.recomputeAround(ctx, tx, reg.ID, nil); err != nil {
		return err
	}
	fresh, err := tx.Registrations().Get(ctx, reg.ID)
	if err != nil {
		return err
	}
	return appendAudit(ctx, tx, auditRecord{
		entity:  EntityRegistration,
		id:      reg.ID,
		action:  "state_changed",
		from:    from,
		to:      reg.State,
		details: discountDetails(fresh),
	})
}

// Recompute refreshes the derived fields of one registration and of those
// that depend on it.
func (s *RegistrationService) Recompute(ctx context.Context, id uint) (*models.Registration, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Registrations().Get(ctx, id); err != nil {
			return err
		}
		return s.recomputeAround(ctx, tx, id, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Registrations().Get(ctx, id)
}

// RecomputeActive sweeps every live registration of an open term, so that
// figures follow the calendar as terms end. It returns how many changed.
func (s *RegistrationService) RecomputeActive(ctx context.Context) (int, error) {
	regs, err := s.store.Registrations().InOpenTerms(ctx, s.today())
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range regs {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			reg, err := tx.Registrations().Get(ctx, regs[i].ID)
			if err != nil {
				return err
			}
			ok, err := s.refresh(ctx, tx, reg)
			if ok {
				changed++
			}
			return err
		})
		if err != nil {
			return changed, err
		}
	}
	s.log.Debug("recompute sweep done", zap.Int("checked", len(regs)), zap.Int("changed", changed))
	return changed, nil
}

// recomputeAround refreshes the registration, its family group and every
// registration of the same child, plus any ids passed in extra.
func (s *RegistrationService) recomputeAround(ctx context.Context, tx *repository.Store, id uint, extra []uint) error {
	reg, err := tx.Registrations().Get(ctx, id)
	if err != nil {
		return err
	}
	ids, err := s.relatedIDs(ctx, tx, reg)
	if err != nil {
		return err
	}
	ids = append(ids, extra...)

	seen := map[uint]bool{}
	for _, rid := range append([]uint{id}, ids...) {
		if seen[rid] {
			continue
		}
		seen[rid] = true
		r, err := tx.Registrations().Get(ctx, rid)
		if err != nil {
			return err
		}
		if _, err := s.refresh(ctx, tx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *RegistrationService) relatedIDs(ctx context.Context, tx *repository.Store, reg *models.Registration) ([]uint, error) {
	q, err := s.familyQuery(ctx, tx, reg)
	if err != nil {
		return nil, err
	}
	group, err := tx.Registrations().FamilyGroup(ctx, q)
	if err != nil {
		return nil, err
	}
	same, err := tx.Registrations().ForIdentity(ctx, reg.StudentID, reg.IDNumber)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(group)+len(same))
	for _, r := range group {
		ids = append(ids, r.ID)
	}
	for _, r := range same {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// familyQuery resolves the family behind a registration: through the linked
// student, else through a family sharing a guardian mobile.
func (s *RegistrationService) familyQuery(ctx context.Context, tx *repository.Store, reg *models.Registration) (repository.FamilyQuery, error) {
	var q repository.FamilyQuery
	q.AddMobiles(reg.FatherMobile, reg.MotherMobile)

	var fam *models.Family
	if reg.StudentID != nil {
		q.StudentIDs = []uint{*reg.StudentID}
		st, err := tx.Students().Get(ctx, *reg.StudentID)
		if err != nil {
			return q, err
		}
		fam = st.Family
	}
	if fam == nil {
		f, err := tx.Families().FindByMobiles(ctx, reg.FatherMobile, reg.MotherMobile)
		switch {
		case err == nil:
			fam = f
		case !errors.Is(err, repository.ErrNotFound):
			return q, err
		}
	}
	if fam == nil {
		return q, nil
	}

	ids, err := tx.Students().IDsInFamily(ctx, fam.ID)
	if err != nil {
		return q, err
	}
	q.StudentIDs = append(q.StudentIDs, ids...)
	q.AddMobiles(fam.FatherMobile, fam.MotherMobile)
	return q, nil
}

// refresh recomputes the derived fields of reg and saves them if they moved.
func (s *RegistrationService) refresh(ctx context.Context, tx *repository.Store, reg *models.Registration) (bool, error) {
	q, err := s.familyQuery(ctx, tx, reg)
	if err != nil {
		return false, err
	}
	group, err := tx.Registrations().FamilyGroup(ctx, q)
	if err != nil {
		return false, err
	}
	same, err := tx.Registrations().ForIdentity(ctx, reg.StudentID, reg.IDNumber)
	if err != nil {
		return false, err
	}

	cur := reg.Candidate(s.loc)
	cancelled := reg.State == models.StateCancelled
	order := discount.SiblingOrder(cur, s.candidates(group), s.today())
	multi := discount.HasMultiClub(cur, s.candidates(same))
	half := !cancelled && discount.IsHalfTerm(reg.Term.Window(), reg.RegisteredAt.In(s.loc))

	res := discount.Compute(discount.Input{
		SiblingOrder: order,
		MultiClub:    multi,
		HalfTerm:     half,
		TermPrice:    reg.Term.Price,
		Policy:       discount.Policy(reg.DiscountPolicy),
		Cancelled:    cancelled,
		Overrides:    reg.Overrides(),
	})

	before := *reg
	reg.ApplyDiscount(order, multi, half, res)
	if sameFigures(before, *reg) {
		return false, nil
	}
	if err := tx.Registrations().Save(ctx, reg); err != nil {
		return false, errors.Wrap(err, "save derived fields")
	}
	s.log.Debug("registration recomputed",
		zap.Uint("registration_id", reg.ID),
		zap.Int("sibling_order", order),
		zap.Bool("multi_club", multi),
		zap.Bool("half_term", half),
		zap.Float64("final_amount", res.FinalAmount))
	return true, nil
}

func (s *RegistrationService) candidates(regs []models.Registration) []discount.Candidate {
	out := make([]discount.Candidate, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.Candidate(s.loc))
	}
	return out
}

func sameFigures(a, b models.Registration) bool {
	return a.SiblingOrder == b.SiblingOrder &&
		a.HasMultiClub == b.HasMultiClub &&
		a.IsHalfTerm == b.IsHalfTerm &&
		a.SiblingDiscountRate == b.SiblingDiscountRate &&
		a.MultiClubDiscountRate == b.MultiClubDiscountRate &&
		a.HalfTermDiscountRate == b.HalfTermDiscountRate &&
		a.TotalDiscountRate == b.TotalDiscountRate &&
		a.DiscountAmount == b.DiscountAmount &&
		a.FinalAmount == b.FinalAmount
}
