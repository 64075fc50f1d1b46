package domain

// Address is one result of a postcode lookup.
type Address struct {
	ID          string `json:"id"`
	Postcode    string `json:"postcode"`
	FullAddress string `json:"fullAddress,omitempty"`
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	Line3       string `json:"line3,omitempty"`
	Town        string `json:"town,omitempty"`
	County      string `json:"county,omitempty"`
}

// Pricing categories returned by the quote API.
const (
	CategoryEtherway          = "etherway"
	CategoryEtherflow         = "etherflow"
	CategoryEtherflowCircuit2 = "etherflowCircuit2"
)

// Price types.
const (
	PriceRecurring    = "recurring"
	PriceNonRecurring = "nonRecurring"
)

// PricingTree maps a circuit category to its pricing options.
type PricingTree map[string][]PriceOption

// PriceOption is a single charge line, e.g. "1 Year connection" or "1 Year rental".
type PriceOption struct {
	Name                  string `json:"name"`
	PriceType             string `json:"priceType"`
	RecurringChargePeriod string `json:"recurringChargePeriod,omitempty"`
	Price                 Price  `json:"price"`
}

// Price wraps the amount as returned by the API.
type Price struct {
	DutyFreeAmount Amount `json:"dutyFreeAmount"`
}

// Amount is a value in pence.
type Amount struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}
