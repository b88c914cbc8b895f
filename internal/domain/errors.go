package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transaction errors
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSameAccount          = errors.New("cannot transfer to same account")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrMissingRecipient     = errors.New("transaction has no recipient")
	ErrMissingSender        = errors.New("transaction has no sender")
	ErrMissingFundingSource = errors.New("deposit has neither funding instrument nor sender")
	ErrUnauthorizedDeposit  = errors.New("sender is not allowed to make cash deposits")
	ErrInvalidTransition    = errors.New("invalid transaction status transition")
	ErrInvalidCancel        = errors.New("transaction cannot be cancelled from its current status")
	ErrNotClaimable         = errors.New("transaction is not awaiting processing")

	// Funding errors
	ErrFundingInstrumentNotFound = errors.New("funding instrument not found")
	ErrFundingInstrumentUnusable = errors.New("funding instrument is not accepted")
	ErrChargeDeclined            = errors.New("charge declined")
	ErrChargeUnavailable         = errors.New("charge service unavailable")

	// Verification and refund errors
	ErrAlreadyVerified     = errors.New("transaction already verified")
	ErrNotVerifiable       = errors.New("transaction cannot be verified")
	ErrNotAuthorizedStaff  = errors.New("staff member is not authorized for this merchant")
	ErrNotRefundable       = errors.New("transaction cannot be refunded")
	ErrInvalidFeePercent   = errors.New("fee percentage must be between 0 and 1")
	ErrInvalidCurrency     = errors.New("unsupported currency")
	ErrInvalidAccountKind  = errors.New("operation not allowed for account kind")
	ErrUnknownCapability   = errors.New("unknown capability")
	ErrInvalidTransferType = errors.New("unknown transaction type")
)

// cancelErrors are the validation failures that end a transaction in
// Cancelled instead of being retried.
var cancelErrors = []error{
	ErrSameAccount,
	ErrNegativeAmount,
	ErrMissingRecipient,
	ErrMissingSender,
	ErrMissingFundingSource,
	ErrUnauthorizedDeposit,
	ErrFundingInstrumentNotFound,
	ErrFundingInstrumentUnusable,
	ErrInsufficientFunds,
	ErrAccountNotFound,
	ErrInvalidCurrency,
	ErrInvalidTransferType,
	ErrChargeDeclined,
	ErrNotRefundable,
}

// IsCancellation reports whether err should move a transaction to Cancelled.
func IsCancellation(err error) bool {
	for _, target := range cancelErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
