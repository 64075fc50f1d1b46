package domain

import "strings"

// Answers is a read-only view over the answer tree.
// Paths are dot-separated (e.g. "circuit.serviceType").
type Answers interface {
	// Get returns the value at path. The boolean is false when any segment is missing.
	Get(path string) (any, bool)
}

// Answer paths.
const (
	PathLocation            = "location"
	PathLocationID          = "location.id"
	PathLocationPostcode    = "location.postcode"
	PathLocationFullAddress = "location.fullAddress"

	PathServiceType        = "circuit.serviceType"
	PathPreferredBackbone  = "circuit.preferredBackbone"
	PathInterfaceType      = "circuit.interfaceType"
	PathBandwidth          = "circuit.bandwidth"
	PathDualConfig         = "circuit.dualConfig"
	PathSecondBackbone     = "circuit.secondBackbone"
	PathSecondBandwidth    = "circuit.secondBandwidth"
	PathIPBlockSize        = "circuit.ipBlockSize"
	PathContractTermMonths = "circuit.contractTermMonths"

	PathSecureDelivery           = "security.secureDelivery"
	PathZTNARequired             = "security.ztnaRequired"
	PathZTNAUserCount            = "security.ztnaUserCount"
	PathThreatPreventionRequired = "security.threatPreventionRequired"
	PathCASBRequired             = "security.casbRequired"
	PathDLPRequired              = "security.dlpRequired"
	PathRBIRequired              = "security.rbiRequired"

	PathContact      = "contact"
	PathContactName  = "contact.name"
	PathContactEmail = "contact.email"
	PathContactPhone = "contact.phone"

	PathSelectedPricing = "selectedPricing"
)

// Service types.
const (
	ServiceSingle = "single"
	ServiceDual   = "dual"
)

// Dual circuit configurations, in their canonical stored form.
const (
	DualActivePassive = "Active / Passive"
	DualActiveActive  = "Active / Active"
)

// AnswerSet is the typed snapshot of the answer tree.
// Nil pointers mean "unanswered".
type AnswerSet struct {
	Location        Location         `json:"location" mapstructure:"location"`
	Circuit         Circuit          `json:"circuit" mapstructure:"circuit"`
	Security        Security         `json:"security" mapstructure:"security"`
	Contact         Contact          `json:"contact" mapstructure:"contact"`
	SelectedPricing *SelectedPricing `json:"selectedPricing" mapstructure:"selectedPricing"`
}

// Location identifies the site being quoted.
type Location struct {
	ID          *string `json:"id" mapstructure:"id"`
	Postcode    *string `json:"postcode" mapstructure:"postcode"`
	FullAddress *string `json:"fullAddress" mapstructure:"fullAddress"`
}

// Circuit holds the connectivity parameters.
type Circuit struct {
	ServiceType        *string `json:"serviceType" mapstructure:"serviceType"`
	PreferredBackbone  *string `json:"preferredBackbone" mapstructure:"preferredBackbone"`
	InterfaceType      *string `json:"interfaceType" mapstructure:"interfaceType"`
	Bandwidth          *string `json:"bandwidth" mapstructure:"bandwidth"`
	DualConfig         *string `json:"dualConfig" mapstructure:"dualConfig"`
	SecondBackbone     *string `json:"secondBackbone" mapstructure:"secondBackbone"`
	SecondBandwidth    *string `json:"secondBandwidth" mapstructure:"secondBandwidth"`
	IPBlockSize        *string `json:"ipBlockSize" mapstructure:"ipBlockSize"`
	ContractTermMonths *int    `json:"contractTermMonths" mapstructure:"contractTermMonths"`
}

// Security holds the optional security service parameters.
type Security struct {
	SecureDelivery           *bool `json:"secureDelivery" mapstructure:"secureDelivery"`
	ZTNARequired             *bool `json:"ztnaRequired" mapstructure:"ztnaRequired"`
	ZTNAUserCount            int   `json:"ztnaUserCount" mapstructure:"ztnaUserCount"`
	ThreatPreventionRequired *bool `json:"threatPreventionRequired" mapstructure:"threatPreventionRequired"`
	CASBRequired             *bool `json:"casbRequired" mapstructure:"casbRequired"`
	DLPRequired              *bool `json:"dlpRequired" mapstructure:"dlpRequired"`
	RBIRequired              *bool `json:"rbiRequired" mapstructure:"rbiRequired"`
}

// Contact is forwarded to the CRM on final submission.
type Contact struct {
	Name  *string `json:"name" mapstructure:"name"`
	Email *string `json:"email" mapstructure:"email"`
	Phone *string `json:"phone" mapstructure:"phone"`
}

// SelectedPricing is the pricing option the user picked. Amounts are in pence.
type SelectedPricing struct {
	Category      string `json:"category" mapstructure:"category"`
	PlanName      string `json:"planName" mapstructure:"planName"`
	ConnectionFee int64  `json:"connectionFee" mapstructure:"connectionFee"`
	MonthlyRental int64  `json:"monthlyRental" mapstructure:"monthlyRental"`
}

// DefaultAnswers returns a fresh answer tree with every section fully present.
func DefaultAnswers() map[string]any {
	return map[string]any{
		"location": map[string]any{
			"id":          nil,
			"postcode":    nil,
			"fullAddress": nil,
		},
		"circuit": map[string]any{
			"serviceType":        nil,
			"preferredBackbone":  nil,
			"interfaceType":      nil,
			"bandwidth":          nil,
			"dualConfig":         nil,
			"secondBackbone":     nil,
			"secondBandwidth":    nil,
			"ipBlockSize":        nil,
			"contractTermMonths": nil,
		},
		"security": map[string]any{
			"secureDelivery":           nil,
			"ztnaRequired":             nil,
			"ztnaUserCount":            0,
			"threatPreventionRequired": nil,
			"casbRequired":             nil,
			"dlpRequired":              nil,
			"rbiRequired":              nil,
		},
		"contact": map[string]any{
			"name":  nil,
			"email": nil,
			"phone": nil,
		},
		"selectedPricing": nil,
	}
}

// IsTrue reports whether the value at path is the boolean true.
func IsTrue(a Answers, path string) bool {
	v, _ := a.Get(path)
	b, ok := v.(bool)
	return ok && b
}

// IsFalse reports whether the value at path is the boolean false (not merely unanswered).
func IsFalse(a Answers, path string) bool {
	v, _ := a.Get(path)
	b, ok := v.(bool)
	return ok && !b
}

// StringAt returns the string at path, or "" when unset or not a string.
func StringAt(a Answers, path string) string {
	v, _ := a.Get(path)
	s, _ := v.(string)
	return s
}

// IsDual reports whether a dual service was chosen.
func IsDual(a Answers) bool {
	return StringAt(a, PathServiceType) == ServiceDual
}

// IsActiveActive reports whether a dual Active/Active configuration was chosen.
func IsActiveActive(a Answers) bool {
	cfg, _ := CanonicalDualConfig(StringAt(a, PathDualConfig))
	return cfg == DualActiveActive
}

// CanonicalDualConfig maps "Active/Active", "active / active" and friends to the stored form.
func CanonicalDualConfig(s string) (string, bool) {
	compact := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch compact {
	case "active/active":
		return DualActiveActive, true
	case "active/passive":
		return DualActivePassive, true
	}
	return "", false
}
