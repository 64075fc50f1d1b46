// Package testutils holds test doubles shared by the package tests.
package testutils

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
)

// SinglePlanPricing quotes one etherway plan: £1000 connection and £500 a month.
const SinglePlanPricing = `{
  "etherway": [
    {"name": "1 Year connection", "priceType": "nonRecurring", "price": {"dutyFreeAmount": {"value": 100000}}},
    {"name": "1 Year rental", "priceType": "recurring", "recurringChargePeriod": "month", "price": {"dutyFreeAmount": {"value": 50000}}}
  ]
}`

// FakeAPI is an in-memory pricing API and lead sink.
// Without Addresses, every postcode resolves to one address. Without Pricing,
// quotes use SinglePlanPricing.
type FakeAPI struct {
	Addresses []domain.Address
	Pricing   string
	QuoteErr  error
	LeadErr   error

	mu       sync.Mutex
	requests []map[string]any
	leads    []ports.Lead
}

var (
	_ ports.QuoteAPI = (*FakeAPI)(nil)
	_ ports.LeadSink = (*FakeAPI)(nil)
)

func (f *FakeAPI) LookupAddresses(_ context.Context, postcode string) ([]domain.Address, error) {
	if f.Addresses != nil {
		out := slices.Clone(f.Addresses)
		for i := range out {
			out[i].Postcode = postcode
		}
		return out, nil
	}
	return []domain.Address{{ID: "A1", Postcode: postcode, FullAddress: "1 High Street"}}, nil
}

func (f *FakeAPI) SubmitQuote(_ context.Context, request map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	f.mu.Unlock()
	if f.QuoteErr != nil {
		return nil, f.QuoteErr
	}
	if f.Pricing == "" {
		return json.RawMessage(SinglePlanPricing), nil
	}
	return json.RawMessage(f.Pricing), nil
}

func (f *FakeAPI) SendLead(_ context.Context, lead ports.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return f.LeadErr
}

// Requests returns the quote requests received so far.
func (f *FakeAPI) Requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// Leads returns the leads received so far.
func (f *FakeAPI) Leads() []ports.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.leads)
}
