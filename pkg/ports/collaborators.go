package ports

import (
	"context"
	"encoding/json"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// AddressLookup resolves a UK postcode to candidate addresses.
type AddressLookup interface {
	LookupAddresses(ctx context.Context, postcode string) ([]domain.Address, error)
}

// QuoteService submits a quote request and returns the pricing tree.
type QuoteService interface {
	// SubmitQuote posts the cleaned answer tree. The response body is returned raw
	// so the caller can decide how to decode the pricing results.
	SubmitQuote(ctx context.Context, request map[string]any) (json.RawMessage, error)
}

// QuoteAPI is the union of the remote pricing API operations.
type QuoteAPI interface {
	AddressLookup
	QuoteService
}

// Lead is the flat record sent to the CRM.
type Lead map[string]any

// LeadSink accepts a lead for the sales team.
type LeadSink interface {
	SendLead(ctx context.Context, lead Lead) error
}
