package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/quoteflow"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
)

var categoryLabels = map[string]string{
	domain.CategoryEtherway:          "Access circuit",
	domain.CategoryEtherflow:         "IP service",
	domain.CategoryEtherflowCircuit2: "IP service, circuit 2",
}

// QuestionScreen renders the current step of view with its choices and current answer.
func QuestionScreen(view quoteflow.View) Screen {
	var b strings.Builder
	step := view.Step
	if step == nil {
		return Screen{Kind: ScreenQuestion, SessionID: view.ID, NeedsInput: true}
	}

	fmt.Fprintf(&b, "## %s\n\n", step.Label)
	switch step.Kind {
	case graph.KindYesNo:
		b.WriteString("Answer **yes** or **no**.\n\n")
	case graph.KindNumber:
		b.WriteString("Enter a number")
		if step.Min != nil && step.Max != nil {
			fmt.Fprintf(&b, " between %d and %d", *step.Min, *step.Max)
		}
		b.WriteString(".\n\n")
	}
	for i, o := range step.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o)
	}
	if len(step.Options) > 0 {
		b.WriteString("\n")
	}
	if v, ok := lookupPath(view.Answers, step.AnswerPath); ok && v != nil && v != "" {
		fmt.Fprintf(&b, "Current answer: `%v` (press enter to keep)\n\n", v)
	}
	b.WriteString("_:back, :reset or :quit_\n")

	return Screen{
		Kind:       ScreenQuestion,
		SessionID:  view.ID,
		Markdown:   b.String(),
		Data:       step,
		NeedsInput: true,
	}
}

// PostcodeScreen asks for the site postcode. A known postcode can be kept.
func PostcodeScreen(id string, existing any) Screen {
	md := "## Site Address\n\nEnter the postcode of the site.\n"
	if s, ok := existing.(string); ok && s != "" {
		md += fmt.Sprintf("\nCurrent postcode: `%s` (press enter to keep)\n", s)
	}
	return Screen{Kind: ScreenPostcode, SessionID: id, Markdown: md, Data: existing, NeedsInput: true}
}

// AddressScreen lists lookup results for selection by number.
func AddressScreen(id string, addrs []domain.Address) Screen {
	var b strings.Builder
	b.WriteString("## Select Address\n\n")
	for i, a := range addrs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, addressLine(a))
	}
	b.WriteString("\n_Enter the number, or an empty line to search again._\n")
	return Screen{Kind: ScreenAddresses, SessionID: id, Markdown: b.String(), Data: addrs, NeedsInput: true}
}

func addressLine(a domain.Address) string {
	if a.FullAddress != "" {
		return a.FullAddress
	}
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Line1, a.Line2, a.Line3, a.Town, a.Postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// PlanChoices flattens the quote plans in display order. Plan numbers on the
// quote screen index into this slice from 1.
func PlanChoices(q *quote.Quote) []quote.Plan {
	if q == nil {
		return nil
	}
	var out []quote.Plan
	for _, c := range q.Categories() {
		out = append(out, q.Plans[c]...)
	}
	return out
}

// QuoteScreen renders the quoted plans as one table per category.
func QuoteScreen(id string, q *quote.Quote) Screen {
	var b strings.Builder
	b.WriteString("## Your Quote\n\n")
	if q.Scenario != nil && q.Scenario.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", q.Scenario.Description)
	}
	n := 0
	for _, c := range q.Categories() {
		label := categoryLabels[c]
		if label == "" {
			label = c
		}
		fmt.Fprintf(&b, "### %s\n\n", label)
		b.WriteString("| # | Plan | Connection | Monthly |\n|---|------|-----------:|--------:|\n")
		for _, p := range q.Plans[c] {
			n++
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", n, p.Name, Money(p.ConnectionFee), Money(p.MonthlyRental()))
		}
		b.WriteString("\n")
	}
	b.WriteString("_Enter the number of the plan you want._\n")
	return Screen{Kind: ScreenQuote, SessionID: id, Markdown: b.String(), Data: q, NeedsInput: true}
}

// ContactScreen asks for one contact field.
func ContactScreen(id, field, label string) Screen {
	return Screen{
		Kind:       ScreenContact,
		SessionID:  id,
		Markdown:   fmt.Sprintf("**%s**\n", label),
		Data:       map[string]string{"field": field},
		NeedsInput: true,
	}
}

// LeadMarkdown summarises a sent lead.
func LeadMarkdown(lead ports.Lead) string {
	var b strings.Builder
	b.WriteString("## Thank you\n\nYour quote request has been sent. We will be in touch shortly.\n\n")
	for _, row := range [][2]string{
		{"Plan", "Selected_Plan"},
		{"Connection fee", "Connection_Fee"},
		{"Monthly rental", "Monthly_Rental"},
		{"Total contract value", "Total_Contract_Value"},
		{"Site", "Full_Address"},
	} {
		v := lead[row[1]]
		if v == nil || v == "" {
			continue
		}
		if strings.Contains(row[1], "Fee") || strings.Contains(row[1], "Rental") || strings.Contains(row[1], "Value") {
			v = "£" + fmt.Sprint(v)
		}
		fmt.Fprintf(&b, "- **%s:** %v\n", row[0], v)
	}
	return b.String()
}

// Money formats pence as pounds.
func Money(pence int64) string {
	return fmt.Sprintf("£%.2f", float64(pence)/100)
}

func lookupPath(tree map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
