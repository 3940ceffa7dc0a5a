// Package domain defines the core types of the exchange calculator.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies an exchange operation.
type Kind int

const (
	// KindConvert exchanges between a crypto asset and the quote currency.
	KindConvert Kind = iota
	// KindClean applies the cleaning commission to a plain amount.
	KindClean
)

// State is the position of an in-progress session in the conversation.
type State int

const (
	// StateChoosingOperation: the operation menu was shown, nothing picked yet.
	StateChoosingOperation State = iota
	// StateAwaitingAmount: an operation is set, waiting for the amount text.
	StateAwaitingAmount
	// StateAwaitingConfirm: a summary was shown, waiting for confirm/cancel.
	StateAwaitingConfirm
)

// QuoteCurrency is the quote side of every supported pair.
const QuoteCurrency = "USDT"

// CleanCode is the button payload of the cleaning operation.
const CleanCode = "cleaning"

// Operation identifies what the user asked for. Code is the raw button
// payload ("BTC-USDT", "cleaning") and is also what gets persisted.
type Operation struct {
	Code string
	Kind Kind
	From string
	To   string
}

// OperationFromCode parses a button payload into an Operation.
func OperationFromCode(code string) (Operation, bool) {
	if code == CleanCode {
		return Operation{Code: code, Kind: KindClean}, true
	}
	from, to, ok := strings.Cut(code, "-")
	if !ok || from == "" || to == "" {
		return Operation{}, false
	}
	return Operation{Code: code, Kind: KindConvert, From: from, To: to}, true
}

// Quote is a single price observation. It is never persisted on its own;
// only the rate survives inside a session.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
}

// Session is the single in-progress operation of one user. A new
// operation selection overwrites any existing session for that user.
type Session struct {
	UserID     int64
	Username   string
	TraceID    string
	State      State
	Op         Operation
	Rate       decimal.Decimal
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Commission decimal.Decimal
	UpdatedAt  time.Time
}

// Transaction is a confirmed, persisted operation. Immutable once written.
type Transaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username"`
	Operation  string          `json:"operation_type"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAmount   decimal.Decimal `json:"to_amount"`
	Commission decimal.Decimal `json:"commission"`
	Timestamp  time.Time       `json:"timestamp"`
}
