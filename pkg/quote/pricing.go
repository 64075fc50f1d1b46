package quote

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// Plan groups the charges of one contract term, e.g. "1 Year connection" and "1 Year rental".
// Amounts are in pence.
type Plan struct {
	Category        string `json:"category"`
	Name            string `json:"name"`
	ConnectionFee   int64  `json:"connectionFee"`
	RecurringCharge int64  `json:"recurringCharge"`
	RecurringPeriod string `json:"recurringPeriod,omitempty"`
}

// MonthlyRental converts the recurring charge to a monthly amount.
func (p Plan) MonthlyRental() int64 {
	if strings.EqualFold(p.RecurringPeriod, "year") {
		return int64(math.Round(float64(p.RecurringCharge) / 12))
	}
	return p.RecurringCharge
}

// Selection is what gets stored in the answers once a plan is picked.
func (p Plan) Selection() domain.SelectedPricing {
	return domain.SelectedPricing{
		Category:      p.Category,
		PlanName:      p.Name,
		ConnectionFee: p.ConnectionFee,
		MonthlyRental: p.MonthlyRental(),
	}
}

// Quote is a processed pricing response.
type Quote struct {
	Scenario *Scenario         `json:"scenario,omitempty"`
	Pricing  domain.PricingTree `json:"pricing"`
	Plans    map[string][]Plan  `json:"plans"`
}

// Categories returns the categories present in the quote, in a stable order.
func (q *Quote) Categories() []string {
	order := map[string]int{
		domain.CategoryEtherway:          0,
		domain.CategoryEtherflow:         1,
		domain.CategoryEtherflowCircuit2: 2,
	}
	cats := make([]string, 0, len(q.Plans))
	for c := range q.Plans {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		oi, iok := order[cats[i]]
		oj, jok := order[cats[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return cats[i] < cats[j]
		}
	})
	return cats
}

// Plan finds a plan by category and name. Names match case-insensitively.
func (q *Quote) Plan(category, name string) (Plan, bool) {
	for _, p := range q.Plans[category] {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Plan{}, false
}

// ParsePricing decodes a quote API response. The tree may be wrapped in "btPricing".
// Entries that are not option lists are ignored.
func ParsePricing(raw json.RawMessage) (domain.PricingTree, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("decode pricing response: %w", err)
	}
	if wrapped, ok := top["btPricing"]; ok {
		top = nil
		if err := json.Unmarshal(wrapped, &top); err != nil {
			return nil, fmt.Errorf("decode btPricing: %w", err)
		}
	}

	tree := make(domain.PricingTree)
	for category, body := range top {
		var options []domain.PriceOption
		if err := json.Unmarshal(body, &options); err != nil {
			continue
		}
		tree[category] = options
	}
	if len(tree) == 0 {
		return nil, fmt.Errorf("pricing response contains no options")
	}
	return tree, nil
}

// planName extracts the term from an option name: "1 Year connection" -> "1 Year".
func planName(option string) string {
	fields := strings.Fields(option)
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.Join(fields, " ")
}

// GroupPlans groups the options of one category by term, in order of first appearance.
func GroupPlans(category string, options []domain.PriceOption) []Plan {
	var plans []Plan
	index := map[string]int{}

	for _, o := range options {
		name := planName(o.Name)
		i, ok := index[name]
		if !ok {
			i = len(plans)
			index[name] = i
			plans = append(plans, Plan{Category: category, Name: name})
		}
		amount := int64(math.Round(o.Price.DutyFreeAmount.Value))
		switch o.PriceType {
		case domain.PriceNonRecurring:
			plans[i].ConnectionFee = amount
		case domain.PriceRecurring:
			plans[i].RecurringCharge = amount
			plans[i].RecurringPeriod = o.RecurringChargePeriod
		}
	}
	return plans
}

func buildQuote(tree domain.PricingTree, scenario *Scenario) *Quote {
	q := &Quote{Scenario: scenario, Pricing: tree, Plans: make(map[string][]Plan, len(tree))}
	for category, options := range tree {
		q.Plans[category] = GroupPlans(category, options)
	}
	return q
}
