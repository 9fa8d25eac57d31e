package deal

// DefaultCommissionPercent applies when a deal has no percentage set.
const DefaultCommissionPercent = 20.0

// Commission is the agency's cut of a deal: the override amount when one is
// set, otherwise deal_value × percentage / 100. Every list, export and report
// goes through this function.
func Commission(d *Deal) float64 {
	if d.CommissionAmount != nil && *d.CommissionAmount != 0 {
		return *d.CommissionAmount
	}
	pct := DefaultCommissionPercent
	if d.CommissionPercentage != nil && *d.CommissionPercentage != 0 {
		pct = *d.CommissionPercentage
	}
	return d.DealValue * pct / 100
}

// EffectiveCommissionPercent is the percentage Commission would use.
func EffectiveCommissionPercent(d *Deal) float64 {
	if d.CommissionPercentage != nil && *d.CommissionPercentage != 0 {
		return *d.CommissionPercentage
	}
	return DefaultCommissionPercent
}

func withCommission(d *Deal) *Deal {
	d.Commission = Commission(d)
	return d
}
