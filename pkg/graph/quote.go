package graph

import (
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// MaxZTNAUsers bounds the ZTNA user count question.
const MaxZTNAUsers = 100000

// ContractTerms are the terms offered on the final step.
var ContractTerms = []string{"12 Months", "24 Months", "36 Months", "60 Months"}

func isDual(a domain.Answers) bool { return domain.IsDual(a) }

func isActiveActive(a domain.Answers) bool {
	return domain.IsDual(a) && domain.IsActiveActive(a)
}

func secure(a domain.Answers) bool { return domain.IsTrue(a, domain.PathSecureDelivery) }

func bandwidthOptions(a domain.Answers) []string {
	return validation.BandwidthsFor(domain.StringAt(a, domain.PathInterfaceType))
}

func ifTrue(yes, no domain.StepID) Resolver {
	return func(value any, _ domain.Answers) domain.StepID {
		if b, ok := value.(bool); ok && b {
			return yes
		}
		return no
	}
}

// Quote returns the step graph of the circuit and security quote wizard.
// Pricing selection and contact details follow the terminal step and are
// handled by the quote flow, not by the graph.
func Quote() *Graph {
	return New().
		Add(domain.StepServiceType).
		Label("Service Type").
		Selection(domain.PathServiceType, domain.ServiceSingle, domain.ServiceDual).
		Next(domain.StepPreferredIPAccess).
		Prev("").

		Add(domain.StepPreferredIPAccess).
		Label("Preferred IP Access").
		Selection(domain.PathPreferredBackbone).
		Next(domain.StepCircuitInterface).
		Prev(domain.StepServiceType).

		Add(domain.StepCircuitInterface).
		Label("Circuit Interface").
		Selection(domain.PathInterfaceType, validation.Interfaces()...).
		Next(domain.StepCircuitBandwidth).
		Prev(domain.StepPreferredIPAccess).

		Add(domain.StepCircuitBandwidth).
		Label("Circuit Bandwidth").
		Dropdown(domain.PathBandwidth, validation.BandwidthsFor("")...).
		OptionsFrom(bandwidthOptions).
		NextFunc(func(_ any, a domain.Answers) domain.StepID {
			if isDual(a) {
				return domain.StepDualConfiguration
			}
			return domain.StepNumberOfIPs
		}, domain.StepDualConfiguration, domain.StepNumberOfIPs).
		Prev(domain.StepCircuitInterface).

		Add(domain.StepDualConfiguration).
		Label("Dual Configuration").
		Selection(domain.PathDualConfig, domain.DualActivePassive, domain.DualActiveActive).
		When(isDual).
		NextFunc(func(value any, _ domain.Answers) domain.StepID {
			s, _ := value.(string)
			if cfg, _ := domain.CanonicalDualConfig(s); cfg == domain.DualActiveActive {
				return domain.StepDiverseIPNetwork
			}
			return domain.StepNumberOfIPs
		}, domain.StepDiverseIPNetwork, domain.StepNumberOfIPs).
		Prev(domain.StepCircuitBandwidth).

		Add(domain.StepDiverseIPNetwork).
		Label("Diverse IP Backbone").
		Selection(domain.PathSecondBackbone).
		When(isActiveActive).
		Next(domain.StepCircuit2Bandwidth).
		Prev(domain.StepDualConfiguration).

		Add(domain.StepCircuit2Bandwidth).
		Label("Circuit 2 Bandwidth").
		Dropdown(domain.PathSecondBandwidth, validation.BandwidthsFor("")...).
		OptionsFrom(bandwidthOptions).
		When(isActiveActive).
		Next(domain.StepNumberOfIPs).
		Prev(domain.StepDiverseIPNetwork).

		Add(domain.StepNumberOfIPs).
		Label("Number of IPs").
		Dropdown(domain.PathIPBlockSize).
		Next(domain.StepSecureIPDelivery).
		PrevFunc(func(_ any, a domain.Answers) domain.StepID {
			switch domain.StringAt(a, domain.PathServiceType) {
			case domain.ServiceDual:
				if domain.IsActiveActive(a) {
					return domain.StepCircuit2Bandwidth
				}
				return domain.StepDualConfiguration
			default:
				return domain.StepCircuitBandwidth
			}
		}, domain.StepCircuitBandwidth, domain.StepCircuit2Bandwidth, domain.StepDualConfiguration).

		Add(domain.StepSecureIPDelivery).
		Label("Secure IP Delivery").
		YesNo(domain.PathSecureDelivery).
		NextFunc(ifTrue(domain.StepZTNARequired, domain.StepContractTerms),
			domain.StepZTNARequired, domain.StepContractTerms).
		Prev(domain.StepNumberOfIPs).

		Add(domain.StepZTNARequired).
		Label("ZTNA Required").
		YesNo(domain.PathZTNARequired).
		When(secure).
		NextFunc(ifTrue(domain.StepZTNAUsers, domain.StepThreatPrevention),
			domain.StepZTNAUsers, domain.StepThreatPrevention).
		Prev(domain.StepSecureIPDelivery).

		Add(domain.StepZTNAUsers).
		Label("Number of ZTNA Users").
		Number(domain.PathZTNAUserCount, 1, MaxZTNAUsers).
		When(func(a domain.Answers) bool {
			return secure(a) && domain.IsTrue(a, domain.PathZTNARequired)
		}).
		Next(domain.StepThreatPrevention).
		Prev(domain.StepZTNARequired).

		Add(domain.StepThreatPrevention).
		Label("Threat Prevention").
		YesNo(domain.PathThreatPreventionRequired).
		When(secure).
		NextFunc(ifTrue(domain.StepCASBRequired, domain.StepRBIRequired),
			domain.StepCASBRequired, domain.StepRBIRequired).
		PrevFunc(func(_ any, a domain.Answers) domain.StepID {
			if domain.IsTrue(a, domain.PathZTNARequired) {
				return domain.StepZTNAUsers
			}
			return domain.StepZTNARequired
		}, domain.StepZTNAUsers, domain.StepZTNARequired).

		Add(domain.StepCASBRequired).
		Label("CASB Required").
		YesNo(domain.PathCASBRequired).
		When(func(a domain.Answers) bool {
			return secure(a) && domain.IsTrue(a, domain.PathThreatPreventionRequired)
		}).
		Next(domain.StepDLPRequired).
		Prev(domain.StepThreatPrevention).

		Add(domain.StepDLPRequired).
		Label("DLP Required").
		YesNo(domain.PathDLPRequired).
		When(func(a domain.Answers) bool {
			return secure(a) && domain.IsTrue(a, domain.PathThreatPreventionRequired)
		}).
		Next(domain.StepRBIRequired).
		Prev(domain.StepCASBRequired).

		Add(domain.StepRBIRequired).
		Label("RBI Required").
		YesNo(domain.PathRBIRequired).
		When(secure).
		Next(domain.StepContractTerms).
		PrevFunc(func(_ any, a domain.Answers) domain.StepID {
			if domain.IsTrue(a, domain.PathThreatPreventionRequired) {
				return domain.StepDLPRequired
			}
			return domain.StepThreatPrevention
		}, domain.StepDLPRequired, domain.StepThreatPrevention).

		Add(domain.StepContractTerms).
		Label("Contract Term").
		ContractTerm(domain.PathContractTermMonths, ContractTerms...).
		Terminal().
		PrevFunc(func(_ any, a domain.Answers) domain.StepID {
			if domain.IsFalse(a, domain.PathSecureDelivery) {
				return domain.StepSecureIPDelivery
			}
			return domain.StepRBIRequired
		}, domain.StepSecureIPDelivery, domain.StepRBIRequired).
		MustBuild()
}
