package webhook

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/paywallet/bank-webhook/internal/api/validate"
)

const maxTokenLen = 500

// MaxAmount caps a single deposit notification (1 crore).
var MaxAmount = decimal.NewFromInt(10_000_000)

// RawNotification is the untrusted webhook body as the provider sends it.
type RawNotification struct {
	Token          string `json:"token"`
	UserIdentifier string `json:"user_identifier"`
	Amount         string `json:"amount"`
}

// Notification is a well-formed provider notification. Values are only
// syntactically valid here; they still have to be matched against the
// stored transaction before anything is credited.
type Notification struct {
	Token  string
	UserID int64
	Amount decimal.Decimal
}

// Parse is the single point where untrusted input becomes a typed value.
// It touches no storage.
func Parse(raw RawNotification) (Notification, validate.Errs) {
	var errs validate.Errs

	if e := validate.Required("token", raw.Token); e != nil {
		errs = append(errs, *e)
	} else if e := validate.MaxLen("token", raw.Token, maxTokenLen); e != nil {
		errs = append(errs, *e)
	}

	var userID int64
	if e := validate.Required("user_identifier", raw.UserIdentifier); e != nil {
		errs = append(errs, *e)
	} else {
		n, err := strconv.ParseInt(raw.UserIdentifier, 10, 64)
		if err != nil || n <= 0 {
			errs = append(errs, validate.ErrField{Field: "user_identifier", Message: "user_identifier must be a valid positive number"})
		} else {
			userID = n
		}
	}

	var amount decimal.Decimal
	if e := validate.Required("amount", raw.Amount); e != nil {
		errs = append(errs, *e)
	} else {
		a, err := decimal.NewFromString(raw.Amount)
		if err != nil || !a.IsPositive() || a.GreaterThan(MaxAmount) {
			errs = append(errs, validate.ErrField{Field: "amount", Message: "amount must be a valid positive number (max 1 crore)"})
		} else {
			amount = a
		}
	}

	if len(errs) > 0 {
		return Notification{}, errs
	}
	return Notification{Token: raw.Token, UserID: userID, Amount: amount}, nil
}
