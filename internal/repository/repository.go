// Package repository exposes one typed repository per entity over gorm.
// A Store built inside Transaction shares the transaction across all of them.
package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/roayati/clubs/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type ClubRepository interface {
	Get(ctx context.Context, id uint) (*models.Club, error)
	Create(ctx context.Context, c *models.Club) error
}

type TermRepository interface {
	Get(ctx context.Context, id uint) (*models.Term, error)
	Create(ctx context.Context, t *models.Term) error
	// CountOverlapping counts other terms of the club that clash with [from, to].
	CountOverlapping(ctx context.Context, clubID uint, from, to time.Time, excludeID uint) (int64, error)
	// CountLive counts registrations holding a seat: not cancelled or rejected.
	CountLive(ctx context.Context, termID uint) (int64, error)
}

type FamilyRepository interface {
	Get(ctx context.Context, id uint) (*models.Family, error)
	// FindByMobiles returns the first family whose father or mother mobile
	// equals one of the given non-empty numbers.
	FindByMobiles(ctx context.Context, father, mother string) (*models.Family, error)
	Create(ctx context.Context, f *models.Family) error
	Save(ctx context.Context, f *models.Family) error
}

type StudentRepository interface {
	Get(ctx context.Context, id uint) (*models.Student, error)
	FindByIDNumber(ctx context.Context, idNumber string) (*models.Student, error)
	IDsInFamily(ctx context.Context, familyID uint) ([]uint, error)
	Create(ctx context.Context, s *models.Student) error
}

// FamilyQuery selects the registrations that make up a family group.
// Mobiles may hold both the registration's own numbers and those of the
// family it resolved to.
type FamilyQuery struct {
	StudentIDs    []uint
	FatherMobiles []string
	MotherMobiles []string
}

// AddMobiles records a guardian pair, skipping blanks and repeats.
func (q *FamilyQuery) AddMobiles(father, mother string) {
	q.FatherMobiles = addUnique(q.FatherMobiles, father)
	q.MotherMobiles = addUnique(q.MotherMobiles, mother)
}

func addUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func (q FamilyQuery) Empty() bool {
	return len(q.StudentIDs) == 0 && len(q.FatherMobiles) == 0 && len(q.MotherMobiles) == 0
}

type RegistrationRepository interface {
	Get(ctx context.Context, id uint) (*models.Registration, error)
	GetByCode(ctx context.Context, code string) (*models.Registration, error)
	Create(ctx context.Context, r *models.Registration) error
	Save(ctx context.Context, r *models.Registration) error
	CodeExists(ctx context.Context, code string) (bool, error)
	// FamilyGroup loads live registrations of the family's students plus
	// unlinked applications that share a guardian mobile. Term is preloaded.
	FamilyGroup(ctx context.Context, q FamilyQuery) ([]models.Registration, error)
	// ForIdentity loads every registration of a student profile or of an ID
	// number. Term is preloaded.
	ForIdentity(ctx context.Context, studentID *uint, idNumber string) ([]models.Registration, error)
	// DuplicateInTerm reports another non-cancelled registration of the same
	// student (or ID number) in the term.
	DuplicateInTerm(ctx context.Context, termID uint, studentID *uint, idNumber string, excludeID uint) (bool, error)
	// InOpenTerms lists live registrations whose term is active and not
	// ended by today.
	InOpenTerms(ctx context.Context, today time.Time) ([]models.Registration, error)
}

type InvoiceRepository interface {
	Get(ctx context.Context, id uint) (*models.Invoice, error)
	Create(ctx context.Context, inv *models.Invoice) error
	Save(ctx context.Context, inv *models.Invoice) error
}

type AuditRepository interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	List(ctx context.Context, entityType string, entityID uint) ([]models.AuditEntry, error)
}

// Store hands out repositories bound to one gorm handle.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// Transaction runs fn with a Store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Clubs() ClubRepository                 { return clubRepo{s.db} }
func (s *Store) Terms() TermRepository                 { return termRepo{s.db} }
func (s *Store) Families() FamilyRepository            { return familyRepo{s.db} }
func (s *Store) Students() StudentRepository           { return studentRepo{s.db} }
func (s *Store) Registrations() RegistrationRepository { return registrationRepo{s.db} }
func (s *Store) Invoices() InvoiceRepository           { return invoiceRepo{s.db} }
func (s *Store) Audit() AuditRepository                { return auditRepo{s.db} }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
