package services

import (
	"context"

	"gorm.io/datatypes"

	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/repository"
)

// Audited entity types.
const (
	EntityRegistration = "registration"
	EntityInvoice      = "invoice"
)

type auditRecord struct {
	entity   string
	id       uint
	action   string
	from, to string
	message  string
	details  map[string]interface{}
}

func appendAudit(ctx context.Context, tx *repository.Store, rec auditRecord) error {
	e := &models.AuditEntry{
		EntityType: rec.entity,
		EntityID:   rec.id,
		Action:     rec.action,
		FromState:  rec.from,
		ToState:    rec.to,
		Message:    rec.message,
	}
	if len(rec.details) > 0 {
		e.Details = datatypes.JSONMap(rec.details)
	}
	return tx.Audit().Append(ctx, e)
}

// discountDetails snapshots the derived figures of a registration.
func discountDetails(r *models.Registration) map[string]interface{} {
	return map[string]interface{}{
		"sibling_order":  r.SiblingOrder,
		"has_multi_club": r.HasMultiClub,
		"is_half_term":   r.IsHalfTerm,
		"total_rate":     r.TotalDiscountRate,
		"discount":       r.DiscountAmount,
		"final_amount":   r.FinalAmount,
	}
}
