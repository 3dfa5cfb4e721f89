package services

import (
	"time"

	"github.com/roayati/clubs/internal/discount"
	"github.com/roayati/clubs/internal/models"
)

// ApplicantInput is the raw applicant data typed on a registration form.
type ApplicantInput struct {
	FullName              string     `json:"full_name" validate:"max=200"`
	BirthDate             *time.Time `json:"birth_date"`
	Gender                string     `json:"gender" validate:"omitempty,oneof=male female"`
	Nationality           string     `json:"nationality"`
	IDType                string     `json:"id_type" validate:"omitempty,oneof=emirates_id passport"`
	IDNumber              string     `json:"id_number"`
	Grade                 string     `json:"grade" validate:"required"`
	FatherName            string     `json:"father_name"`
	FatherMobile          string     `json:"father_mobile" validate:"omitempty,phone"`
	MotherName            string     `json:"mother_name"`
	MotherMobile          string     `json:"mother_mobile" validate:"omitempty,phone"`
	MotherWhatsapp        string     `json:"mother_whatsapp" validate:"omitempty,phone"`
	Email                 string     `json:"email" validate:"omitempty,email"`
	HasHealthRequirements bool       `json:"has_health_requirements"`
	HealthRequirements    string     `json:"health_requirements" validate:"required_if=HasHealthRequirements true"`
	PhotoConsent          bool       `json:"photo_consent"`
}

// CreateInput opens a draft registration.
type CreateInput struct {
	RegistrationType string         `json:"registration_type" validate:"omitempty,oneof=new existing"`
	StudentID        *uint          `json:"student_id" validate:"required_if=RegistrationType existing"`
	ClubID           uint           `json:"club_id"`
	TermID           uint           `json:"term_id" validate:"required"`
	DiscountPolicy   string         `json:"discount_policy" validate:"omitempty,oneof=cumulative highest manual"`
	Applicant        ApplicantInput `json:"applicant"`
	Overrides        RateOverrides  `json:"overrides"`
}

// ApplicationInput is what an applicant sends without a staff token: a new
// child for one term. Pricing and links to filed students are staff-only.
type ApplicationInput struct {
	ClubID    uint           `json:"club_id"`
	TermID    uint           `json:"term_id" validate:"required"`
	Applicant ApplicantInput `json:"applicant"`
}

// RateOverrides are the staff-entered rates honoured by the manual policy.
type RateOverrides struct {
	Sibling   *float64 `json:"sibling" validate:"omitempty,min=0,max=100"`
	MultiClub *float64 `json:"multi_club" validate:"omitempty,min=0,max=100"`
	HalfTerm  *float64 `json:"half_term" validate:"omitempty,min=0,max=100"`
}

// UpdateInput patches a registration; nil fields are left alone. Derived
// discount fields are deliberately absent.
type UpdateInput struct {
	TermID         *uint           `json:"term_id"`
	DiscountPolicy *string         `json:"discount_policy" validate:"omitempty,oneof=cumulative highest manual"`
	Applicant      *ApplicantInput `json:"applicant"`
	Overrides      *RateOverrides  `json:"overrides"`
}

// changesPricing reports whether the patch touches what the posted invoice
// was priced on.
func (in UpdateInput) changesPricing(reg *models.Registration) bool {
	return (in.TermID != nil && *in.TermID != reg.TermID) ||
		(in.DiscountPolicy != nil && *in.DiscountPolicy != reg.DiscountPolicy) ||
		in.Overrides != nil
}

// normalize canonicalises phones, ID and email, and reduces the birth date to
// its calendar day in loc.
func (a *ApplicantInput) normalize(loc *time.Location) {
	a.IDNumber = NormIDNumber(a.IDType, a.IDNumber)
	if p := NormPhone(a.FatherMobile); p != "" {
		a.FatherMobile = p
	}
	if p := NormPhone(a.MotherMobile); p != "" {
		a.MotherMobile = p
	}
	if p := NormPhone(a.MotherWhatsapp); p != "" {
		a.MotherWhatsapp = p
	}
	if e, ok := NormEmail(a.Email); ok {
		a.Email = e
	}
	if a.BirthDate != nil {
		d := discount.Date(a.BirthDate.In(loc))
		a.BirthDate = &d
	}
}

func (a ApplicantInput) applyTo(r *models.Registration) {
	r.FullName = a.FullName
	r.BirthDate = a.BirthDate
	r.Gender = a.Gender
	r.Nationality = a.Nationality
	r.IDType = a.IDType
	r.IDNumber = a.IDNumber
	r.Grade = a.Grade
	r.FatherName = a.FatherName
	r.FatherMobile = a.FatherMobile
	r.MotherName = a.MotherName
	r.MotherMobile = a.MotherMobile
	r.MotherWhatsapp = a.MotherWhatsapp
	r.Email = a.Email
	r.HasHealthRequirements = a.HasHealthRequirements
	r.HealthRequirements = a.HealthRequirements
	r.PhotoConsent = a.PhotoConsent
}

func (o RateOverrides) applyTo(r *models.Registration) {
	r.ManualSiblingRate = o.Sibling
	r.ManualMultiClubRate = o.MultiClub
	r.ManualHalfTermRate = o.HalfTerm
}
