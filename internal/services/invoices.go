package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/discount"
	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
)

type InvoiceService struct {
	store *repository.Store
	log   *zap.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewInvoiceService(store *repository.Store, log *zap.Logger, loc *time.Location) *InvoiceService {
	return &InvoiceService{store: store, log: log, loc: loc, now: time.Now}
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.store.Invoices().Get(ctx, id)
}

// CreateForRegistration posts the invoice of a registration from its stored
// figures. A registration that already has an invoice gets it back as is.
func (s *InvoiceService) CreateForRegistration(ctx context.Context, regID uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		inv, err = s.createTx(ctx, tx, regID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) createTx(ctx context.Context, tx *repository.Store, regID uint) (*models.Invoice, error) {
	reg, err := tx.Registrations().Get(ctx, regID)
	if err != nil {
		return nil, err
	}
	if reg.Invoice != nil {
		return tx.Invoices().Get(ctx, reg.Invoice.ID)
	}

	name := reg.DisplayName()
	if name == "" {
		return nil, invalid("full_name", "cannot invoice a registration without a student name")
	}
	mobile := reg.FatherMobile
	if mobile == "" {
		mobile = reg.MotherMobile
	}

	inv := &models.Invoice{
		RegistrationID: reg.ID,
		PartnerName:    name,
		PartnerMobile:  mobile,
		Reference:      reg.Code,
		Narration:      narration(reg),
		InvoiceDate:    discount.Date(s.now().In(s.loc)),
		State:          models.InvoicePosted,
		PaymentState:   models.PaymentNotPaid,
		Lines:          invoiceLines(reg),
	}
	for _, l := range inv.Lines {
		inv.Total += l.Quantity * l.PriceUnit
	}
	inv.Total = discount.Round2(inv.Total)

	if err := tx.Invoices().Create(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "create invoice")
	}
	err = appendAudit(ctx, tx, auditRecord{
		entity:  EntityRegistration,
		id:      reg.ID,
		action:  "invoice_created",
		message: "invoice " + strconv.FormatUint(uint64(inv.ID), 10) + " posted",
		details: map[string]interface{}{"invoice_id": inv.ID, "total": inv.Total},
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice posted",
		zap.Uint("registration_id", reg.ID),
		zap.Uint("invoice_id", inv.ID),
		zap.Float64("total", inv.Total))
	return inv, nil
}

func invoiceLines(reg *models.Registration) []models.InvoiceLine {
	main := fmt.Sprintf("Registration in %s - %s", reg.Club.Name, reg.Term.Name)
	if reg.SiblingOrder > 1 {
		main += fmt.Sprintf(" (child #%d in family)", reg.SiblingOrder)
	}
	lines := []models.InvoiceLine{{Description: main, Quantity: 1, PriceUnit: reg.Term.Price}}

	if reg.DiscountAmount > 0 {
		var parts []string
		if reg.SiblingDiscountRate > 0 {
			parts = append(parts, fmt.Sprintf("sibling (%s%%)", pct(reg.SiblingDiscountRate)))
		}
		if reg.MultiClubDiscountRate > 0 {
			parts = append(parts, fmt.Sprintf("multi-club (%s%%)", pct(reg.MultiClubDiscountRate)))
		}
		if reg.HalfTermDiscountRate > 0 {
			parts = append(parts, fmt.Sprintf("half-term (%s%%)", pct(reg.HalfTermDiscountRate)))
		}
		desc := "Discounts: " + strings.Join(parts, " + ") + " = total " + pct(reg.TotalDiscountRate) + "%"
		lines = append(lines, models.InvoiceLine{Description: desc, Quantity: 1, PriceUnit: -reg.DiscountAmount})
	}
	return lines
}

func narration(reg *models.Registration) string {
	var b strings.Builder
	b.WriteString("Registration ")
	b.WriteString(reg.Code)
	if reg.FatherName != "" {
		b.WriteString("; father: " + reg.FatherName)
	}
	if reg.MotherName != "" {
		b.WriteString("; mother: " + reg.MotherName)
	}
	return b.String()
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// MarkPaid records the payment of a posted invoice.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		inv, err = tx.Invoices().Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.State == models.InvoiceCancelled {
			return ErrInvalidTransition
		}
		if inv.PaymentState == models.PaymentPaid {
			return nil
		}
		now := s.now()
		inv.PaymentState = models.PaymentPaid
		inv.PaidAt = &now
		if err := tx.Invoices().Save(ctx, inv); err != nil {
			return err
		}
		return appendAudit(ctx, tx, auditRecord{
			entity: EntityInvoice,
			id:     inv.ID,
			action: "paid",
			from:   models.PaymentNotPaid,
			to:     models.PaymentPaid,
		})
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// cancelTx cancels an unpaid invoice; paid invoices are left alone.
func (s *InvoiceService) cancelTx(ctx context.Context, tx *repository.Store, id uint) error {
	inv, err := tx.Invoices().Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.PaymentState == models.PaymentPaid || inv.State == models.InvoiceCancelled {
		return nil
	}
	from := inv.State
	inv.State = models.InvoiceCancelled
	if err := tx.Invoices().Save(ctx, inv); err != nil {
		return err
	}
	return appendAudit(ctx, tx, auditRecord{
		entity: EntityInvoice,
		id:     inv.ID,
		action: "cancelled",
		from:   from,
		to:     models.InvoiceCancelled,
	})
}

func (s *InvoiceService) CancelInvoice(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		return s.cancelTx(ctx, tx, id)
	})
}
