package gatepass

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PassType string

const (
	PassTypeVisitor   PassType = "VISITOR"
	PassTypeVendor    PassType = "VENDOR"
	PassTypeVIP       PassType = "VIP"
	PassTypeStaff     PassType = "STAFF"
	PassTypeEmergency PassType = "EMERGENCY"
)

func (t PassType) Valid() bool {
	switch t {
	case PassTypeVisitor, PassTypeVendor, PassTypeVIP, PassTypeStaff, PassTypeEmergency:
		return true
	default:
		return false
	}
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
	ApprovalExpired  ApprovalStatus = "EXPIRED"
)

type VisitorPass struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PassNumber string    `gorm:"not null;uniqueIndex;column:pass_number" json:"pass_number"`

	VisitorName    string `gorm:"not null;column:visitor_name" json:"visitor_name"`
	VisitorPhone   string `gorm:"not null;column:visitor_phone" json:"visitor_phone"`
	VisitorEmail   string `gorm:"column:visitor_email" json:"visitor_email,omitempty"`
	VisitorIDProof string `gorm:"column:visitor_id_proof" json:"visitor_id_proof,omitempty"`
	VisitorCompany string `gorm:"column:visitor_company" json:"visitor_company,omitempty"`

	PassType        PassType       `gorm:"not null;default:'VISITOR';column:pass_type" json:"pass_type"`
	Purpose         string         `gorm:"not null;column:purpose" json:"purpose"`
	HostDepartment  string         `gorm:"column:host_department" json:"host_department,omitempty"`
	AuthorizedAreas datatypes.JSON `gorm:"column:authorized_areas" json:"authorized_areas,omitempty"`

	ValidFrom  time.Time `gorm:"not null;column:valid_from" json:"valid_from"`
	ValidUntil time.Time `gorm:"not null;column:valid_until;index" json:"valid_until"`

	EscortRequired bool   `gorm:"not null;default:false;column:escort_required" json:"escort_required"`
	EscortName     string `gorm:"column:escort_name" json:"escort_name,omitempty"`
	EscortPhone    string `gorm:"column:escort_phone" json:"escort_phone,omitempty"`

	Status          ApprovalStatus `gorm:"not null;default:'PENDING';column:status;index" json:"status"`
	ApprovedBy      *uuid.UUID     `gorm:"type:uuid;column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectionReason string         `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`

	Notes     string    `gorm:"column:notes" json:"notes,omitempty"`
	QRCodeKey string    `gorm:"column:qr_code_key" json:"qr_code_key,omitempty"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;column:created_by;index" json:"created_by"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (VisitorPass) TableName() string { return "visitor_pass" }

func (p *VisitorPass) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ApprovalPending
	}
	return nil
}

// EffectiveStatus derives EXPIRED on read for passes whose window has closed.
func (p *VisitorPass) EffectiveStatus(now time.Time) ApprovalStatus {
	if p == nil {
		return ""
	}
	if (p.Status == ApprovalPending || p.Status == ApprovalApproved) && now.After(p.ValidUntil) {
		return ApprovalExpired
	}
	return p.Status
}

// IsActive reports whether the pass currently admits its holder.
func (p *VisitorPass) IsActive(now time.Time) bool {
	return p.EffectiveStatus(now) == ApprovalApproved && !now.Before(p.ValidFrom)
}
