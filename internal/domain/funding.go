package domain

import "time"

// FundingInstrumentStatus is the review state of a card on file.
type FundingInstrumentStatus string

const (
	FundingInstrumentPending  FundingInstrumentStatus = "pending"
	FundingInstrumentAccepted FundingInstrumentStatus = "accepted"
	FundingInstrumentRejected FundingInstrumentStatus = "rejected"
)

// FundingInstrument references an externally stored payment method.
type FundingInstrument struct {
	ID          string
	OwnerID     string
	CustomerRef string
	Status      FundingInstrumentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Usable reports whether the instrument may be charged.
func (f *FundingInstrument) Usable() bool {
	return f != nil && f.Status == FundingInstrumentAccepted && f.CustomerRef != ""
}
