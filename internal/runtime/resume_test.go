package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/quoteflow/internal/runtime"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/stretchr/testify/assert"
)

func TestResume(t *testing.T) {
	engine := runtime.NewEngine(graph.Quote())

	tests := []struct {
		name    string
		answers map[string]any
		want    domain.StepID
	}{
		{
			name: "nothing answered",
			want: domain.StepServiceType,
		},
		{
			name: "bandwidth still open",
			answers: map[string]any{
				domain.PathServiceType:       domain.ServiceSingle,
				domain.PathPreferredBackbone: "BT",
				domain.PathInterfaceType:     "1000BASE-T",
				domain.PathBandwidth:         nil,
			},
			want: domain.StepCircuitBandwidth,
		},
		{
			name: "bandwidth not offered on the interface does not count",
			answers: map[string]any{
				domain.PathServiceType:       domain.ServiceSingle,
				domain.PathPreferredBackbone: "BT",
				domain.PathInterfaceType:     "1000BASE-T",
				domain.PathBandwidth:         "10 Gbit/s",
			},
			want: domain.StepCircuitBandwidth,
		},
		{
			name: "a false answer counts",
			answers: map[string]any{
				domain.PathServiceType:    domain.ServiceSingle,
				domain.PathIPBlockSize:    "/29",
				domain.PathSecureDelivery: false,
			},
			want: domain.StepContractTerms,
		},
		{
			name: "zero ztna users does not count",
			answers: map[string]any{
				domain.PathSecureDelivery: true,
				domain.PathZTNARequired:   true,
				domain.PathZTNAUserCount:  0,
			},
			want: domain.StepZTNAUsers,
		},
		{
			name: "answers behind a hidden step are ignored",
			answers: map[string]any{
				domain.PathServiceType:    domain.ServiceSingle,
				domain.PathDualConfig:     domain.DualActiveActive,
				domain.PathSecondBackbone: "Colt",
			},
			want: domain.StepPreferredIPAccess,
		},
		{
			name: "complete answers stay on the last step",
			answers: map[string]any{
				domain.PathServiceType:        domain.ServiceSingle,
				domain.PathSecureDelivery:     false,
				domain.PathContractTermMonths: 36,
			},
			want: domain.StepContractTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Resume(context.Background(), newStore(t, tt.answers))
			assert.Equal(t, tt.want, got)
		})
	}
}
