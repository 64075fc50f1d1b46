package quote_test

import (
	"context"
	"encoding/json"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
)

type fakeAPI struct {
	addresses   func(ctx context.Context, postcode string) ([]domain.Address, error)
	submit      func(ctx context.Context, request map[string]any) (json.RawMessage, error)
	lastRequest map[string]any
}

func (f *fakeAPI) LookupAddresses(ctx context.Context, postcode string) ([]domain.Address, error) {
	return f.addresses(ctx, postcode)
}

func (f *fakeAPI) SubmitQuote(ctx context.Context, request map[string]any) (json.RawMessage, error) {
	f.lastRequest = request
	return f.submit(ctx, request)
}

type fakeLeads struct {
	leads []ports.Lead
	err   error
}

func (f *fakeLeads) SendLead(_ context.Context, lead ports.Lead) error {
	f.leads = append(f.leads, lead)
	return f.err
}

const pricingResponse = `{
  "btPricing": {
    "etherway": [
      {"name": "1 Year connection", "priceType": "nonRecurring", "price": {"dutyFreeAmount": {"value": 100000, "unit": "GBP"}}},
      {"name": "1 Year rental", "priceType": "recurring", "recurringChargePeriod": "year", "price": {"dutyFreeAmount": {"value": 1200000, "unit": "GBP"}}},
      {"name": "3 Year connection", "priceType": "nonRecurring", "price": {"dutyFreeAmount": {"value": 0}}},
      {"name": "3 Year rental", "priceType": "recurring", "recurringChargePeriod": "year", "price": {"dutyFreeAmount": {"value": 960000}}}
    ],
    "etherflow": [
      {"name": "1 Year connection", "priceType": "nonRecurring", "price": {"dutyFreeAmount": {"value": 20000}}},
      {"name": "1 Year rental", "priceType": "recurring", "recurringChargePeriod": "month", "price": {"dutyFreeAmount": {"value": 30000}}}
    ]
  }
}`
