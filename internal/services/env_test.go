package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/db"
	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
)

var dubai = time.FixedZone("GST", 4*3600)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) set(day string)          { c.t = at(day, "09:00") }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func at(day, hm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hm, dubai)
	if err != nil {
		panic(err)
	}
	return t
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type testEnv struct {
	ctx      context.Context
	store    *repository.Store
	clock    *clock
	terms    *TermService
	invoices *InvoiceService
	regs     *RegistrationService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, db.SQLiteDSN(filepath.Join(t.TempDir(), "test.db")), zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repository.New(conn)
	v := NewValidator()
	log := zap.NewNop()
	clk := &clock{}
	clk.set("2024-01-10")

	env := &testEnv{
		ctx:      context.Background(),
		store:    store,
		clock:    clk,
		terms:    NewTermService(store, v, log, dubai),
		invoices: NewInvoiceService(store, log, dubai),
	}
	env.regs = NewRegistrationService(store, env.invoices, v, log, dubai)
	env.terms.now = clk.Now
	env.invoices.now = clk.Now
	env.regs.now = clk.Now
	return env
}

func (e *testEnv) club(t *testing.T, name string) *models.Club {
	t.Helper()
	c, err := e.terms.CreateClub(e.ctx, ClubInput{Name: name, AgeFrom: 5, AgeTo: 14})
	require.NoError(t, err)
	return c
}

func (e *testEnv) term(t *testing.T, clubID uint, from, to string, price float64, capacity int) *models.Term {
	t.Helper()
	tm, err := e.terms.CreateTerm(e.ctx, clubID, TermInput{
		Name:        from + " term",
		DateFrom:    date(from),
		DateTo:      date(to),
		Price:       price,
		MaxCapacity: capacity,
	})
	require.NoError(t, err)
	return tm
}

// register creates a draft and moves the clock a minute so that
// registration order is unambiguous.
func (e *testEnv) register(t *testing.T, termID uint, a ApplicantInput) *models.Registration {
	t.Helper()
	reg, err := e.regs.Create(e.ctx, CreateInput{TermID: termID, Applicant: a})
	require.NoError(t, err)
	e.clock.advance(time.Minute)
	return reg
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Registration {
	t.Helper()
	reg, err := e.regs.Get(e.ctx, id)
	require.NoError(t, err)
	return reg
}

const (
	idAhmed = "784-2015-1234567-1"
	idSara  = "784-2016-7654321-2"
	idOmar  = "784-2017-1111111-3"
)

func applicant(name, idNumber string) ApplicantInput {
	bd := date("2015-05-01")
	return ApplicantInput{
		FullName:     name,
		BirthDate:    &bd,
		Gender:       models.GenderMale,
		Nationality:  "AE",
		IDType:       IDTypeEmirates,
		IDNumber:     idNumber,
		Grade:        "Grade 3",
		FatherName:   "Khalid",
		FatherMobile: "050 123 4567",
		MotherName:   "Mariam",
		MotherMobile: "0507654321",
		Email:        "Family@Example.com",
		PhotoConsent: true,
	}
}
