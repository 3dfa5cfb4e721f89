package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/roayati/clubs/internal/discount"
	"github.com/roayati/clubs/internal/models"
)

var deadStates = []string{models.StateCancelled, models.StateRejected}

type clubRepo struct{ db *gorm.DB }

func (r clubRepo) Get(ctx context.Context, id uint) (*models.Club, error) {
	var c models.Club
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r clubRepo) Create(ctx context.Context, c *models.Club) error {
	return r.db.WithContext(ctx).Create(c).Error
}

type termRepo struct{ db *gorm.DB }

func (r termRepo) Get(ctx context.Context, id uint) (*models.Term, error) {
	var t models.Term
	if err := r.db.WithContext(ctx).Preload("Club").First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r termRepo) Create(ctx context.Context, t *models.Term) error {
	return r.db.WithContext(ctx).Omit("Club").Create(t).Error
}

func (r termRepo) CountOverlapping(ctx context.Context, clubID uint, from, to time.Time, excludeID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Term{}).
		Where("club_id = ? AND id <> ?", clubID, excludeID).
		Where("date_from <= ? AND date_to >= ?", discount.Date(to), discount.Date(from)).
		Count(&n).Error
	return n, err
}

func (r termRepo) CountLive(ctx context.Context, termID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("term_id = ? AND state NOT IN ?", termID, deadStates).
		Count(&n).Error
	return n, err
}

type familyRepo struct{ db *gorm.DB }

func (r familyRepo) Get(ctx context.Context, id uint) (*models.Family, error) {
	var f models.Family
	if err := r.db.WithContext(ctx).Preload("Students").First(&f, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (r familyRepo) FindByMobiles(ctx context.Context, father, mother string) (*models.Family, error) {
	var clauses []string
	var args []interface{}
	if father != "" {
		clauses = append(clauses, "father_mobile = ?")
		args = append(args, father)
	}
	if mother != "" {
		clauses = append(clauses, "mother_mobile = ?")
		args = append(args, mother)
	}
	if len(clauses) == 0 {
		return nil, ErrNotFound
	}

	var f models.Family
	err := r.db.WithContext(ctx).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Order("id asc").
		First(&f).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (r familyRepo) Create(ctx context.Context, f *models.Family) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r familyRepo) Save(ctx context.Context, f *models.Family) error {
	return r.db.WithContext(ctx).Omit("Students").Save(f).Error
}

type studentRepo struct{ db *gorm.DB }

func (r studentRepo) Get(ctx context.Context, id uint) (*models.Student, error) {
	var s models.Student
	if err := r.db.WithContext(ctx).Preload("Family").First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r studentRepo) FindByIDNumber(ctx context.Context, idNumber string) (*models.Student, error) {
	var s models.Student
	if err := r.db.WithContext(ctx).Where("id_number = ?", idNumber).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r studentRepo) IDsInFamily(ctx context.Context, familyID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("family_id = ?", familyID).
		Order("id asc").
		Pluck("id", &ids).Error
	return ids, err
}

func (r studentRepo) Create(ctx context.Context, s *models.Student) error {
	return r.db.WithContext(ctx).Omit("Family").Create(s).Error
}

type registrationRepo struct{ db *gorm.DB }

func (r registrationRepo) Get(ctx context.Context, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).
		Preload("Term").Preload("Club").Preload("Student.Family").Preload("Invoice").
		First(&reg, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &reg, nil
}

func (r registrationRepo) GetByCode(ctx context.Context, code string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).
		Preload("Term").Preload("Club").Preload("Student.Family").Preload("Invoice").
		Where("code = ?", code).
		First(&reg).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &reg, nil
}

func (r registrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	return r.db.WithContext(ctx).Omit("Term", "Club", "Student", "Invoice").Create(reg).Error
}

func (r registrationRepo) Save(ctx context.Context, reg *models.Registration) error {
	return r.db.WithContext(ctx).Omit("Term", "Club", "Student", "Invoice").Save(reg).Error
}

func (r registrationRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r registrationRepo) FamilyGroup(ctx context.Context, q FamilyQuery) ([]models.Registration, error) {
	if q.Empty() {
		return nil, nil
	}

	var clauses []string
	var args []interface{}
	if len(q.StudentIDs) > 0 {
		clauses = append(clauses, "student_id IN ?")
		args = append(args, q.StudentIDs)
	}
	if len(q.FatherMobiles) > 0 {
		clauses = append(clauses, "(student_id IS NULL AND father_mobile IN ?)")
		args = append(args, q.FatherMobiles)
	}
	if len(q.MotherMobiles) > 0 {
		clauses = append(clauses, "(student_id IS NULL AND mother_mobile IN ?)")
		args = append(args, q.MotherMobiles)
	}

	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Preload("Term").
		Where("state NOT IN ?", deadStates).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Order("registered_at asc, id asc").
		Find(&regs).Error
	return regs, err
}

func (r registrationRepo) ForIdentity(ctx context.Context, studentID *uint, idNumber string) ([]models.Registration, error) {
	var clauses []string
	var args []interface{}
	if studentID != nil {
		clauses = append(clauses, "student_id = ?")
		args = append(args, *studentID)
	}
	if idNumber != "" {
		clauses = append(clauses, "id_number = ?")
		args = append(args, idNumber)
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Preload("Term").
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Order("id asc").
		Find(&regs).Error
	return regs, err
}

func (r registrationRepo) DuplicateInTerm(ctx context.Context, termID uint, studentID *uint, idNumber string, excludeID uint) (bool, error) {
	var clauses []string
	var args []interface{}
	if studentID != nil {
		clauses = append(clauses, "student_id = ?")
		args = append(args, *studentID)
	}
	if idNumber != "" {
		clauses = append(clauses, "id_number = ?")
		args = append(args, idNumber)
	}
	if len(clauses) == 0 {
		return false, nil
	}

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("term_id = ? AND id <> ? AND state <> ?", termID, excludeID, models.StateCancelled).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Count(&n).Error
	return n > 0, err
}

func (r registrationRepo) InOpenTerms(ctx context.Context, today time.Time) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Preload("Term").
		Joins("JOIN terms ON terms.id = registrations.term_id").
		Where("registrations.state NOT IN ?", deadStates).
		Where("terms.is_active = ? AND terms.date_to >= ?", true, discount.Date(today)).
		Order("registrations.id asc").
		Find(&regs).Error
	return regs, err
}

type invoiceRepo struct{ db *gorm.DB }

func (r invoiceRepo) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).Preload("Lines").First(&inv, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r invoiceRepo) Save(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(inv).Error
}

type auditRepo struct{ db *gorm.DB }

func (r auditRepo) Append(ctx context.Context, e *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r auditRepo) List(ctx context.Context, entityType string, entityID uint) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id asc").
		Find(&out).Error
	return out, err
}
