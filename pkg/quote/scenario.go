package quote

import (
	"math"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// Scenario identifies how a pricing response must be adjusted.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// MarkupCategory is the pricing category marked up, or "" for none.
	MarkupCategory string `json:"markupCategory,omitempty"`
}

// Pricing scenarios.
const (
	ScenarioSingleBT          = "scenario1"
	ScenarioSingleOther       = "scenario3"
	ScenarioDualActivePassive = "scenario2part1"
	ScenarioDualActiveActive  = "scenario2both"
)

// MarkupRate is applied to etherflow prices sourced off the BT backbone.
const MarkupRate = 0.5

// BackboneBT is the backbone priced without markup.
const BackboneBT = "BT"

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DetermineScenario picks the pricing scenario for the answers. It returns false when
// the circuit is incomplete or no scenario applies, in which case prices are used as returned.
func DetermineScenario(a domain.AnswerSet) (Scenario, bool) {
	c := a.Circuit
	if deref(c.InterfaceType) == "" || deref(c.Bandwidth) == "" {
		return Scenario{}, false
	}

	backbone := deref(c.PreferredBackbone)
	dualCfg, _ := domain.CanonicalDualConfig(deref(c.DualConfig))

	switch deref(c.ServiceType) {
	case domain.ServiceSingle:
		if backbone == BackboneBT {
			return Scenario{Name: ScenarioSingleBT, Description: "Single service with BT as preferred IP backbone"}, true
		}
		if backbone != "" {
			return Scenario{
				Name:           ScenarioSingleOther,
				Description:    "Single service with non-BT as preferred IP backbone",
				MarkupCategory: domain.CategoryEtherflow,
			}, true
		}
	case domain.ServiceDual:
		switch dualCfg {
		case domain.DualActivePassive:
			return Scenario{Name: ScenarioDualActivePassive, Description: "Dual service with Active/Passive configuration"}, true
		case domain.DualActiveActive:
			if deref(c.SecondBackbone) != "" && deref(c.SecondBandwidth) != "" {
				return Scenario{
					Name:           ScenarioDualActiveActive,
					Description:    "Dual service with Active/Active configuration",
					MarkupCategory: domain.CategoryEtherflowCircuit2,
				}, true
			}
		}
	}
	return Scenario{}, false
}

// Apply returns a copy of tree with the scenario markup applied.
func (s Scenario) Apply(tree domain.PricingTree) domain.PricingTree {
	out := make(domain.PricingTree, len(tree))
	for category, options := range tree {
		cp := make([]domain.PriceOption, len(options))
		copy(cp, options)
		if category == s.MarkupCategory {
			for i := range cp {
				v := cp[i].Price.DutyFreeAmount.Value * (1 + MarkupRate)
				cp[i].Price.DutyFreeAmount.Value = math.Round(v)
			}
		}
		out[category] = cp
	}
	return out
}
