package deal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestCommission(t *testing.T) {
	tests := []struct {
		name string
		deal Deal
		want float64
	}{
		{"default percentage", Deal{DealValue: 10000}, 2000},
		{"explicit percentage", Deal{DealValue: 10000, CommissionPercentage: ptr(15)}, 1500},
		{"zero percentage falls back to default", Deal{DealValue: 10000, CommissionPercentage: ptr(0)}, 2000},
		{"override amount wins", Deal{DealValue: 10000, CommissionPercentage: ptr(25), CommissionAmount: ptr(1500)}, 1500},
		{"zero override is ignored", Deal{DealValue: 5000, CommissionAmount: ptr(0)}, 1000},
		{"no value", Deal{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Commission(&tt.deal), 0.001)
		})
	}
}

func TestEffectiveCommissionPercent(t *testing.T) {
	assert.Equal(t, 20.0, EffectiveCommissionPercent(&Deal{}))
	assert.Equal(t, 12.5, EffectiveCommissionPercent(&Deal{CommissionPercentage: ptr(12.5)}))
}
