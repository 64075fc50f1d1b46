package quote

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
)

// LeadSource tags every lead created by the wizard.
const LeadSource = "Web Pricing Tool"

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "Yes"
	default:
		return "No"
	}
}

func pounds(pence int64) string {
	return fmt.Sprintf("%.2f", float64(pence)/100)
}

// TotalContractValue is connection fee plus monthly rental times the term, in pence.
// It reports false when rental or term are unknown.
func TotalContractValue(p *domain.SelectedPricing, termMonths *int) (int64, bool) {
	if p == nil || p.MonthlyRental == 0 || termMonths == nil || *termMonths == 0 {
		return 0, false
	}
	return p.ConnectionFee + p.MonthlyRental*int64(*termMonths), true
}

// FormatLead flattens the answers into the CRM lead record. Money fields are in pounds.
func FormatLead(a domain.AnswerSet, full map[string]any) ports.Lead {
	name := strings.TrimSpace(deref(a.Contact.Name))
	first, last, _ := strings.Cut(name, " ")
	last = strings.TrimSpace(last)
	if last == "" {
		last = "."
	}

	c, sec := a.Circuit, a.Security
	lead := ports.Lead{
		"Lead_Source": LeadSource,
		"First_Name":  first,
		"Last_Name":   last,
		"Email":       deref(a.Contact.Email),
		"Phone":       deref(a.Contact.Phone),

		"Postcode":     deref(a.Location.Postcode),
		"Full_Address": deref(a.Location.FullAddress),

		"Service_Type":           deref(c.ServiceType),
		"IP_Backbone":            deref(c.PreferredBackbone),
		"Circuit_Interface":      deref(c.InterfaceType),
		"Circuit_Bandwidth":      deref(c.Bandwidth),
		"Contract_Term_Months":   "",
		"Number_of_IP_Addresses": deref(c.IPBlockSize),

		"Dual_Internet_Config":  deref(c.DualConfig),
		"Diverse_IP_Backbone":   deref(c.SecondBackbone),
		"Circuit_Two_Bandwidth": deref(c.SecondBandwidth),

		"Secure_IP_Delivery":   yesNo(sec.SecureDelivery),
		"ZTNA_Required":        yesNo(sec.ZTNARequired),
		"Number_of_ZTNA_Users": "",
		"Threat_Prevention":    yesNo(sec.ThreatPreventionRequired),
		"CASB_Required":        yesNo(sec.CASBRequired),
		"DLP_Required":         yesNo(sec.DLPRequired),
		"RBI_Required":         yesNo(sec.RBIRequired),

		"Selected_Plan":        "",
		"Price_Category":       "",
		"Connection_Fee":       "",
		"Monthly_Rental":       "",
		"Total_Contract_Value": "",

		"Description": describe(a),
	}

	if c.ContractTermMonths != nil {
		lead["Contract_Term_Months"] = *c.ContractTermMonths
	}
	if sec.ZTNAUserCount > 0 {
		lead["Number_of_ZTNA_Users"] = sec.ZTNAUserCount
	}
	if p := a.SelectedPricing; p != nil {
		lead["Selected_Plan"] = p.PlanName
		lead["Price_Category"] = p.Category
		lead["Connection_Fee"] = pounds(p.ConnectionFee)
		lead["Monthly_Rental"] = pounds(p.MonthlyRental)
	}
	if total, ok := TotalContractValue(a.SelectedPricing, c.ContractTermMonths); ok {
		lead["Total_Contract_Value"] = pounds(total)
	}
	if full != nil {
		if data, err := json.Marshal(full); err == nil {
			lead["Full_Quote_JSON"] = string(data)
		}
	}
	return lead
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func describe(a domain.AnswerSet) string {
	c, sec := a.Circuit, a.Security
	var b strings.Builder

	b.WriteString("Quote from pricing tool:\n\n")
	fmt.Fprintf(&b, "Service Type: %s\n", orNA(deref(c.ServiceType)))
	fmt.Fprintf(&b, "IP Backbone: %s\n", orNA(deref(c.PreferredBackbone)))
	fmt.Fprintf(&b, "Circuit Interface: %s\n", orNA(deref(c.InterfaceType)))
	fmt.Fprintf(&b, "Circuit Bandwidth: %s\n", orNA(deref(c.Bandwidth)))
	term := "N/A"
	if c.ContractTermMonths != nil {
		term = fmt.Sprint(*c.ContractTermMonths)
	}
	fmt.Fprintf(&b, "Contract Term: %s months\n", term)
	fmt.Fprintf(&b, "Number of IP Addresses: %s\n\n", orNA(deref(c.IPBlockSize)))

	if deref(c.ServiceType) == domain.ServiceDual {
		cfg, _ := domain.CanonicalDualConfig(deref(c.DualConfig))
		b.WriteString("Dual Internet Details:\n")
		fmt.Fprintf(&b, "Configuration: %s\n", orNA(cfg))
		if cfg == domain.DualActiveActive {
			fmt.Fprintf(&b, "Diverse IP Backbone: %s\n", orNA(deref(c.SecondBackbone)))
			fmt.Fprintf(&b, "Circuit 2 Bandwidth: %s\n", orNA(deref(c.SecondBandwidth)))
		}
		b.WriteString("\n")
	}

	if sec.SecureDelivery != nil && *sec.SecureDelivery {
		b.WriteString("Security Options:\n")
		b.WriteString("Secure IP Delivery: Yes\n")
		if sec.ZTNARequired != nil && *sec.ZTNARequired {
			b.WriteString("ZTNA Required: Yes\n")
			fmt.Fprintf(&b, "Number of ZTNA Users: %d\n", sec.ZTNAUserCount)
		}
		if sec.ThreatPreventionRequired != nil && *sec.ThreatPreventionRequired {
			b.WriteString("Threat Prevention: Yes\n")
			fmt.Fprintf(&b, "CASB Required: %s\n", orNA(yesNo(sec.CASBRequired)))
			fmt.Fprintf(&b, "DLP Required: %s\n", orNA(yesNo(sec.DLPRequired)))
		}
		fmt.Fprintf(&b, "RBI Required: %s\n", orNA(yesNo(sec.RBIRequired)))
		b.WriteString("\n")
	}

	b.WriteString("Selected Pricing:\n")
	p := a.SelectedPricing
	if p == nil {
		p = &domain.SelectedPricing{}
	}
	fmt.Fprintf(&b, "Category: %s\n", orNA(p.Category))
	fmt.Fprintf(&b, "Plan: %s\n", orNA(p.PlanName))
	if p.PlanName != "" {
		fmt.Fprintf(&b, "Connection Fee: £%s\n", pounds(p.ConnectionFee))
		fmt.Fprintf(&b, "Monthly Rental: £%s\n", pounds(p.MonthlyRental))
	}
	if total, ok := TotalContractValue(a.SelectedPricing, c.ContractTermMonths); ok {
		fmt.Fprintf(&b, "Total Contract Value: £%s\n", pounds(total))
	}
	return b.String()
}
