package models

import (
	"time"

	"gorm.io/datatypes"
)

// Gender types accepted by a club.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderBoth   = "both"
)

type Club struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string `gorm:"not null" json:"name"`
	AgeFrom    int    `json:"age_from"`
	AgeTo      int    `json:"age_to"`
	GenderType string `gorm:"default:both" json:"gender_type"` // male | female | both
	IsActive   bool   `json:"is_active"`

	Terms []Term `json:"terms,omitempty"`
}

type Term struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClubID      uint      `gorm:"index;not null" json:"club_id"`
	Club        Club      `json:"club,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	DateFrom    time.Time `gorm:"type:date;not null" json:"date_from"`
	DateTo      time.Time `gorm:"type:date;not null" json:"date_to"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	MaxCapacity int       `json:"max_capacity"`
	IsActive    bool      `json:"is_active"`
}

// Family groups siblings; guardians' mobiles are its identity.
type Family struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FatherName     string `json:"father_name"`
	FatherMobile   string `gorm:"index" json:"father_mobile"`
	MotherName     string `json:"mother_name"`
	MotherMobile   string `gorm:"index" json:"mother_mobile"`
	MotherWhatsapp string `json:"mother_whatsapp"`
	Email          string `json:"email"`

	Students []Student `json:"students,omitempty"`
}

type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName              string    `gorm:"not null" json:"full_name"`
	BirthDate             time.Time `gorm:"type:date" json:"birth_date"`
	Gender                string    `json:"gender"`
	Nationality           string    `json:"nationality"`
	IDType                string    `json:"id_type"`                               // emirates_id | passport
	IDNumber              string    `gorm:"uniqueIndex;not null" json:"id_number"`
	HasHealthRequirements bool      `json:"has_health_requirements"`
	HealthRequirements    string    `json:"health_requirements"`
	PhotoConsent          bool      `json:"photo_consent"`

	FamilyID *uint   `gorm:"index" json:"family_id"`
	Family   *Family `json:"family,omitempty"`
}

// Registration states.
const (
	StateDraft     = "draft"
	StateConfirmed = "confirmed"
	StateApproved  = "approved"
	StateRejected  = "rejected"
	StateCancelled = "cancelled"
)

// Registration types.
const (
	TypeNew      = "new"
	TypeExisting = "existing"
)

type Registration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code             string `gorm:"uniqueIndex" json:"code"`                       // e.g., REG-1A2B3C4D
	RegistrationType string `gorm:"not null;default:new" json:"registration_type"`

	StudentID *uint    `gorm:"index" json:"student_id"`
	Student   *Student `json:"student,omitempty"`

	// applicant data, as typed on the form
	FullName              string     `json:"full_name"`
	BirthDate             *time.Time `gorm:"type:date" json:"birth_date"`
	Gender                string     `json:"gender"`
	Nationality           string     `json:"nationality"`
	IDType                string     `json:"id_type"`
	IDNumber              string     `gorm:"index" json:"id_number"`
	Grade                 string     `json:"grade"`
	FatherName            string     `json:"father_name"`
	FatherMobile          string     `gorm:"index" json:"father_mobile"`
	MotherName            string     `json:"mother_name"`
	MotherMobile          string     `gorm:"index" json:"mother_mobile"`
	MotherWhatsapp        string     `json:"mother_whatsapp"`
	Email                 string     `json:"email"`
	HasHealthRequirements bool       `json:"has_health_requirements"`
	HealthRequirements    string     `json:"health_requirements"`
	PhotoConsent          bool       `json:"photo_consent"`

	ClubID uint `gorm:"index;not null" json:"club_id"`
	Club   Club `json:"club,omitempty"`
	TermID uint `gorm:"index;not null" json:"term_id"`
	Term   Term `json:"term,omitempty"`

	RegisteredAt time.Time `gorm:"not null" json:"registered_at"`
	State        string    `gorm:"not null;default:draft" json:"state"`

	DiscountPolicy      string   `gorm:"not null;default:cumulative" json:"discount_policy"`
	ManualSiblingRate   *float64 `json:"manual_sibling_rate"`
	ManualMultiClubRate *float64 `json:"manual_multi_club_rate"`
	ManualHalfTermRate  *float64 `json:"manual_half_term_rate"`

	// derived; only the recompute path writes these
	SiblingOrder          int     `json:"sibling_order"`
	HasMultiClub          bool    `json:"has_multi_club"`
	IsHalfTerm            bool    `json:"is_half_term"`
	SiblingDiscountRate   float64 `json:"sibling_discount_rate"`
	MultiClubDiscountRate float64 `json:"multi_club_discount_rate"`
	HalfTermDiscountRate  float64 `json:"half_term_discount_rate"`
	TotalDiscountRate     float64 `json:"total_discount_rate"`
	DiscountAmount        float64 `gorm:"type:decimal(10,2)" json:"discount_amount"`
	FinalAmount           float64 `gorm:"type:decimal(10,2)" json:"final_amount"`

	Invoice *Invoice `json:"invoice,omitempty"`
}

// Invoice states.
const (
	InvoicePosted    = "posted"
	InvoiceCancelled = "cancelled"
	PaymentNotPaid   = "not_paid"
	PaymentPaid      = "paid"
)

type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RegistrationID uint       `gorm:"index" json:"registration_id"`
	PartnerName    string     `json:"partner_name"`
	PartnerMobile  string     `json:"partner_mobile"`
	Reference      string     `json:"reference"`
	Narration      string     `json:"narration"`
	InvoiceDate    time.Time  `gorm:"type:date" json:"invoice_date"`
	State          string     `gorm:"not null;default:posted" json:"state"`
	PaymentState   string     `gorm:"not null;default:not_paid" json:"payment_state"`
	Total          float64    `gorm:"type:decimal(10,2)" json:"total"`
	PaidAt         *time.Time `json:"paid_at"`

	Lines []InvoiceLine `json:"lines,omitempty"`
}

type InvoiceLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index" json:"invoice_id"`

	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	PriceUnit   float64 `gorm:"type:decimal(10,2)" json:"price_unit"`
}

// AuditEntry is an append-only trail of changes, keyed by entity.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EntityType string            `gorm:"index:idx_audit_entity;not null" json:"entity_type"`
	EntityID   uint              `gorm:"index:idx_audit_entity;not null" json:"entity_id"`
	Action     string            `gorm:"not null" json:"action"`
	FromState  string            `json:"from_state"`
	ToState    string            `json:"to_state"`
	Message    string            `json:"message"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
}
