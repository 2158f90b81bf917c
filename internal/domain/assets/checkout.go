package assets

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckoutStatus string

const (
	CheckoutPending  CheckoutStatus = "PENDING"
	CheckoutAccepted CheckoutStatus = "ACCEPTED"
	CheckoutRejected CheckoutStatus = "REJECTED"
	CheckoutInUse    CheckoutStatus = "IN_USE"
	CheckoutReturned CheckoutStatus = "RETURNED"
	CheckoutOverdue  CheckoutStatus = "OVERDUE"
	CheckoutLost     CheckoutStatus = "LOST"
)

// OpenCheckoutStatuses are the statuses that hold an asset.
var OpenCheckoutStatuses = []CheckoutStatus{CheckoutPending, CheckoutAccepted, CheckoutInUse}

func OpenCheckoutStatusStrings() []string {
	out := make([]string, 0, len(OpenCheckoutStatuses))
	for _, s := range OpenCheckoutStatuses {
		out = append(out, string(s))
	}
	return out
}

func (s CheckoutStatus) IsOpen() bool {
	return s == CheckoutPending || s == CheckoutAccepted || s == CheckoutInUse
}

// IsOut reports whether the borrower physically holds the asset.
func (s CheckoutStatus) IsOut() bool {
	return s == CheckoutAccepted || s == CheckoutInUse
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutRejected || s == CheckoutReturned || s == CheckoutLost
}

type AssetCheckout struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID    uuid.UUID      `gorm:"type:uuid;not null;column:asset_id;index" json:"asset_id"`
	AssigneeID uuid.UUID      `gorm:"type:uuid;not null;column:assignee_id;index" json:"assignee_id"`
	AssignedBy uuid.UUID      `gorm:"type:uuid;not null;column:assigned_by" json:"assigned_by"`
	Status     CheckoutStatus `gorm:"not null;default:'PENDING';column:status;index" json:"status"`

	AssignmentDate     time.Time  `gorm:"not null;column:assignment_date" json:"assignment_date"`
	AcceptanceDate     *time.Time `gorm:"column:acceptance_date" json:"acceptance_date,omitempty"`
	RejectionDate      *time.Time `gorm:"column:rejection_date" json:"rejection_date,omitempty"`
	RejectionReason    string     `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	CheckoutDate       *time.Time `gorm:"column:checkout_date" json:"checkout_date,omitempty"`
	ExpectedReturnDate time.Time  `gorm:"not null;column:expected_return_date;index" json:"expected_return_date"`
	ActualReturnDate   *time.Time `gorm:"column:actual_return_date" json:"actual_return_date,omitempty"`

	Purpose     string `gorm:"not null;column:purpose" json:"purpose"`
	Destination string `gorm:"column:destination" json:"destination,omitempty"`

	ConditionAtCheckout AssetCondition `gorm:"column:condition_at_checkout" json:"condition_at_checkout,omitempty"`
	ConditionAtReturn   AssetCondition `gorm:"column:condition_at_return" json:"condition_at_return,omitempty"`

	CheckoutLatitude  *float64 `gorm:"column:checkout_latitude" json:"checkout_latitude,omitempty"`
	CheckoutLongitude *float64 `gorm:"column:checkout_longitude" json:"checkout_longitude,omitempty"`
	ReturnLatitude    *float64 `gorm:"column:return_latitude" json:"return_latitude,omitempty"`
	ReturnLongitude   *float64 `gorm:"column:return_longitude" json:"return_longitude,omitempty"`

	CheckoutNotes string `gorm:"column:checkout_notes" json:"checkout_notes,omitempty"`
	ReturnNotes   string `gorm:"column:return_notes" json:"return_notes,omitempty"`
	AdminNotes    string `gorm:"column:admin_notes" json:"admin_notes,omitempty"`

	DamageReported    bool     `gorm:"not null;default:false;column:damage_reported" json:"damage_reported"`
	DamageDescription string   `gorm:"column:damage_description" json:"damage_description,omitempty"`
	DamageCost        *float64 `gorm:"column:damage_cost" json:"damage_cost,omitempty"`
	IsReturned        bool     `gorm:"not null;default:false;column:is_returned" json:"is_returned"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AssetCheckout) TableName() string { return "asset_checkout" }

func (c *AssetCheckout) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsOverdue is computed on read and never stored.
func (c *AssetCheckout) IsOverdue(now time.Time) bool {
	if c == nil || c.IsReturned {
		return false
	}
	return c.Status.IsOut() && now.After(c.ExpectedReturnDate)
}

// DisplayStatus overlays OVERDUE on an out checkout past its expected return.
func (c *AssetCheckout) DisplayStatus(now time.Time) CheckoutStatus {
	if c.IsOverdue(now) {
		return CheckoutOverdue
	}
	return c.Status
}

// DaysAssigned counts whole days from checkout (or assignment) until return or now.
func (c *AssetCheckout) DaysAssigned(now time.Time) int {
	if c == nil {
		return 0
	}
	start := c.AssignmentDate
	if c.CheckoutDate != nil {
		start = *c.CheckoutDate
	}
	end := now
	if c.ActualReturnDate != nil {
		end = *c.ActualReturnDate
	}
	if end.Before(start) {
		return 0
	}
	return int(math.Floor(end.Sub(start).Hours() / 24))
}
