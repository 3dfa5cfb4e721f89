package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/roayati/clubs/internal/discount"
	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
)

func lookupTerm(ctx context.Context, tx *repository.Store, id uint) (*models.Term, error) {
	t, err := tx.Terms().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("term_id", "term not found")
	}
	return t, err
}

func checkBirthDate(bd *time.Time, today time.Time) error {
	if bd != nil && discount.Date(*bd).After(today) {
		return invalid("birth_date", "birth date cannot be in the future")
	}
	return nil
}

// copyStudent fills the applicant fields of an existing-student registration
// from the profile and its family.
func copyStudent(reg *models.Registration, st *models.Student) {
	id := st.ID
	reg.StudentID = &id
	reg.FullName = st.FullName
	if !st.BirthDate.IsZero() {
		bd := discount.Date(st.BirthDate)
		reg.BirthDate = &bd
	}
	reg.Gender = st.Gender
	reg.Nationality = st.Nationality
	reg.IDType = st.IDType
	reg.IDNumber = st.IDNumber
	reg.HasHealthRequirements = st.HasHealthRequirements
	reg.HealthRequirements = st.HealthRequirements
	reg.PhotoConsent = st.PhotoConsent

	if f := st.Family; f != nil {
		reg.FatherName = f.FatherName
		reg.FatherMobile = f.FatherMobile
		reg.MotherName = f.MotherName
		reg.MotherMobile = f.MotherMobile
		reg.MotherWhatsapp = f.MotherWhatsapp
		if reg.Email == "" {
			reg.Email = f.Email
		}
	}
}

// ageOn is the age in whole years on day.
func ageOn(birth, day time.Time) int {
	b, d := discount.Date(birth), discount.Date(day)
	age := d.Year() - b.Year()
	if d.Month() < b.Month() || (d.Month() == b.Month() && d.Day() < b.Day()) {
		age--
	}
	return age
}

// checkClubRequirements enforces the club's age range and gender. Unknown
// values pass here and are caught by the confirmation checks.
func checkClubRequirements(reg *models.Registration, club *models.Club, today time.Time) error {
	if club == nil || club.ID == 0 {
		return nil
	}
	if reg.BirthDate != nil {
		age := ageOn(*reg.BirthDate, today)
		if age < club.AgeFrom || age > club.AgeTo {
			return invalid("birth_date",
				fmt.Sprintf("student age (%d) is outside the club range (%d-%d)", age, club.AgeFrom, club.AgeTo))
		}
	}
	if reg.Gender != "" && club.GenderType != "" && club.GenderType != models.GenderBoth && reg.Gender != club.GenderType {
		return invalid("gender", "this club is for "+club.GenderType+" students only")
	}
	return nil
}

// requiredForConfirm lists what a draft still lacks before confirmation.
func requiredForConfirm(reg *models.Registration) error {
	if reg.RegistrationType == models.TypeExisting {
		if reg.StudentID == nil {
			return invalid("student_id", "a student profile must be selected")
		}
		return nil
	}

	var fields []FieldError
	need := func(ok bool, field, msg string) {
		if !ok {
			fields = append(fields, FieldError{Field: field, Error: msg})
		}
	}
	need(reg.FullName != "", "full_name", "full name is required")
	need(reg.BirthDate != nil, "birth_date", "birth date is required")
	need(reg.Gender != "", "gender", "gender is required")
	need(reg.Nationality != "", "nationality", "nationality is required")
	need(reg.IDNumber != "", "id_number", "ID number is required")
	need(reg.FatherName != "", "father_name", "father name is required")
	need(reg.MotherName != "", "mother_name", "mother name is required")
	need(reg.FatherMobile != "", "father_mobile", "father mobile is required")
	need(reg.MotherMobile != "", "mother_mobile", "mother mobile is required")
	need(reg.PhotoConsent, "photo_consent", "photo consent is required")
	if len(fields) > 0 {
		return NewValidationError(errors.New("registration is incomplete"), fields...)
	}
	return nil
}
