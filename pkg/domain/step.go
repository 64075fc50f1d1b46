package domain

// StepID identifies a wizard screen. The empty StepID means "no step".
type StepID string

// Wizard steps, in declaration order.
const (
	StepServiceType       StepID = "quoteServiceType"
	StepPreferredIPAccess StepID = "quotePreferredIpAccess"
	StepCircuitInterface  StepID = "quoteEtherwayBandwidth"
	StepCircuitBandwidth  StepID = "quoteEtherflowBandwidth"
	StepDualConfiguration StepID = "quoteConfiguration"
	StepDiverseIPNetwork  StepID = "quoteDiverseIpNetwork"
	StepCircuit2Bandwidth StepID = "quoteCircuit2Bandwidth"
	StepNumberOfIPs       StepID = "quoteNumberOfIPs"
	StepSecureIPDelivery  StepID = "quoteSecureIpDelivery"
	StepZTNARequired      StepID = "quoteZTNARequired"
	StepZTNAUsers         StepID = "quoteZTNAUsers"
	StepThreatPrevention  StepID = "quoteThreatPrevention"
	StepCASBRequired      StepID = "quoteCASBRequired"
	StepDLPRequired       StepID = "quoteDLPRequired"
	StepRBIRequired       StepID = "quoteRBIRequired"
	StepContractTerms     StepID = "quoteContractTerms"
)

// Direction selects which navigation rule to follow.
type Direction string

const (
	Forward  Direction = "next"
	Backward Direction = "prev"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Forward || d == Backward
}
