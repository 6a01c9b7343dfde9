package commissions

import "time"

// Transaction is one billed consultation fetched from the backend. Amounts
// are in cents.
type Transaction struct {
	ID               int64     `json:"id"`
	PractitionerID   int64     `json:"practitioner_id"`
	PractitionerName string    `json:"practitioner_name"`
	AmountCents      int64     `json:"amount_cents"`
	CommissionCents  int64     `json:"commission_cents"`
	BilledAt         time.Time `json:"billed_at"`
}

// PractitionerSummary aggregates transactions for one practitioner.
type PractitionerSummary struct {
	PractitionerID   int64
	PractitionerName string
	Transactions     int
	GrossCents       int64
	CommissionCents  int64
}
