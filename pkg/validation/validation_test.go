package validation_test

import (
	"testing"

	"github.com/aretw0/quoteflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostcode(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"sw1a 1aa", "SW1A1AA", true},
		{"  EC1A  1BB ", "EC1A1BB", true},
		{"M1 1AE", "M11AE", true},
		{"B33 8TH", "B338TH", true},
		{"12345", "12345", false},
		{"", "", false},
		{"SW1A 1A", "SW1A1A", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.NormalizePostcode(tt.in))
			assert.Equal(t, tt.valid, validation.IsValidUKPostcode(tt.in))

			got, err := validation.Postcode(tt.in)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				var inputErr *validation.InputError
				assert.ErrorAs(t, err, &inputErr)
			}
		})
	}
}

func TestBandwidth(t *testing.T) {
	assert.NoError(t, validation.Bandwidth("1000BASE-T", "1 Gbit/s"))
	assert.Error(t, validation.Bandwidth("1000BASE-T", "1.5 Gbit/s"))
	assert.NoError(t, validation.Bandwidth("10GBASE-LR", "10 Gbit/s"))
	assert.NoError(t, validation.Bandwidth("", "5 Gbit/s"))
	assert.Error(t, validation.Bandwidth("10GBASE-SR", "11 Gbit/s"))

	assert.Len(t, validation.BandwidthsFor("1000BASE-SX"), 15)
	assert.Len(t, validation.BandwidthsFor("10GBASE-SR"), 33)
	assert.Len(t, validation.Interfaces(), 5)
}

func TestValidateContact(t *testing.T) {
	good := validation.Contact{Name: "Jane Doe", Email: "jane@example.com", Phone: "020 7946 0958"}
	assert.NoError(t, validation.ValidateContact(good))

	tests := []struct {
		name  string
		c     validation.Contact
		field string
	}{
		{"missing name", validation.Contact{Email: good.Email, Phone: good.Phone}, "name"},
		{"bad email", validation.Contact{Name: good.Name, Email: "jane", Phone: good.Phone}, "email"},
		{"bad phone", validation.Contact{Name: good.Name, Email: good.Email, Phone: "12"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateContact(tt.c)
			var inputErr *validation.InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestContactNormalize(t *testing.T) {
	c := validation.Contact{Name: " Jane ", Email: " jane@example.com", Phone: "0207 "}.Normalize()
	assert.Equal(t, "Jane", c.Name)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, "0207", c.Phone)
}
