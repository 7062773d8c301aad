package warehouse

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// StatusType / StatusCode
// ---------------------------------------------------------------------------

// StatusType is the single-character outcome category of a provider response
type StatusType string

const (
	StatusTypeSuccess StatusType = "S"
	StatusTypeError   StatusType = "E"
)

// UnmarshalText trims surrounding whitespace from the decoded value
func (t *StatusType) UnmarshalText(text []byte) error {
	*t = StatusType(strings.ToUpper(strings.TrimSpace(string(text))))
	return nil
}

// StatusCode is the numeric refinement of a provider response. It is decoded
// once at the response boundary from either a number or a numeric string.
type StatusCode int

const (
	StatusCodeUnknown  StatusCode = 0
	StatusCodePending  StatusCode = 10
	StatusCodeAccepted StatusCode = 100
)

// ParseStatusCode decodes "100", " 10 " or "" into a StatusCode
func ParseStatusCode(s string) (StatusCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusCodeUnknown, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return StatusCodeUnknown, fmt.Errorf("invalid status code %q: %w", s, err)
	}
	return StatusCode(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *StatusCode) UnmarshalText(text []byte) error {
	code, err := ParseStatusCode(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// UnmarshalJSON accepts both 100 and "100"
func (c *StatusCode) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = StatusCodeUnknown
		return nil
	}
	return c.UnmarshalText(bytes.Trim(data, `"`))
}

// ---------------------------------------------------------------------------
// OperationKind
// ---------------------------------------------------------------------------

// OperationKind selects the classification table for a response
type OperationKind string

const (
	OperationArticle       OperationKind = "article"
	OperationGenericStatus OperationKind = "status"
	OperationInventory     OperationKind = "inventory"
	OperationOrderCreation OperationKind = "order_creation"
	OperationOrderReply    OperationKind = "order_reply"
)

// String returns the string representation of OperationKind
func (k OperationKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// StatusOutcome
// ---------------------------------------------------------------------------

// StatusOutcome is the acceptance decision for a response
type StatusOutcome string

const (
	OutcomeAccepted    StatusOutcome = "accepted"
	OutcomePending     StatusOutcome = "pending"
	OutcomeNotAccepted StatusOutcome = "not_accepted"
)

// String returns the string representation of StatusOutcome
func (o StatusOutcome) String() string {
	return string(o)
}

type statusKey struct {
	statusType StatusType
	statusCode StatusCode
}

type classificationTable map[statusKey]StatusOutcome

// Article master data and generic status checks.
var generalTable = classificationTable{
	{StatusTypeSuccess, StatusCodeAccepted}: OutcomeAccepted,
	{StatusTypeSuccess, StatusCodePending}:  OutcomePending,
}

// Order creation: code 10 is the order-accepted signal.
var orderCreationTable = classificationTable{
	{StatusTypeSuccess, StatusCodePending}: OutcomeAccepted,
}

// Order reply (goods issue): code 100 is the acceptance signal.
var orderReplyTable = classificationTable{
	{StatusTypeSuccess, StatusCodeAccepted}: OutcomeAccepted,
}

func tableFor(kind OperationKind) classificationTable {
	switch kind {
	case OperationOrderCreation:
		return orderCreationTable
	case OperationOrderReply:
		return orderReplyTable
	default:
		return generalTable
	}
}

// Classify derives the outcome of a (statusType, statusCode) pair using the
// table of the operation that produced it.
func Classify(statusType StatusType, statusCode StatusCode, kind OperationKind) StatusOutcome {
	if outcome, ok := tableFor(kind)[statusKey{statusType, statusCode}]; ok {
		return outcome
	}
	return OutcomeNotAccepted
}

// AcceptanceFlag is the numeric flag shown in the article list view:
// 1 accepted, 2 pending, 0 otherwise.
func AcceptanceFlag(outcome StatusOutcome) int {
	switch outcome {
	case OutcomeAccepted:
		return 1
	case OutcomePending:
		return 2
	default:
		return 0
	}
}
