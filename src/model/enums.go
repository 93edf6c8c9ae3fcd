package model

const (
	PositionTypeCoveredCall    = "COVERED_CALL"
	PositionTypeCashSecuredPut = "CASH_SECURED_PUT"
)

const (
	PositionStatusOpen   = "OPEN"
	PositionStatusClosed = "CLOSED"
)

const (
	OutcomeExpired     = "EXPIRED"
	OutcomeAssigned    = "ASSIGNED"
	OutcomeClosedEarly = "CLOSED_EARLY"
	OutcomeRolled      = "ROLLED"
)

const (
	BrokerRobinhood = "robinhood"
	BrokerMerrill   = "merrill"
	BrokerOther     = "other"
)

// IsValidPositionType reports whether t is a recognized position type.
func IsValidPositionType(t string) bool {
	return t == PositionTypeCoveredCall || t == PositionTypeCashSecuredPut
}

// IsValidCloseOutcome reports whether o is an outcome a caller may close with.
// ROLLED is deliberately excluded. it is only ever set by the roll operation.
func IsValidCloseOutcome(o string) bool {
	return o == OutcomeExpired || o == OutcomeAssigned || o == OutcomeClosedEarly
}

// IsValidBroker reports whether b is a recognized broker label.
func IsValidBroker(b string) bool {
	return b == BrokerRobinhood || b == BrokerMerrill || b == BrokerOther
}
