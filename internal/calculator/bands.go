package calculator

// Bands holds Bollinger values expressed as distance from the current price:
// Upper = band top minus price, Lower = price minus band bottom.
type Bands struct {
	StdDev []float64
	Upper  []float64
	Lower  []float64
}

// CalculateBands uses a 20-day mean and sample deviation with a width of two deviations.
func CalculateBands(prices, sma20 []float64) (*Bands, error) {
	sd, err := RollingStd(prices, 20)
	if err != nil {
		return nil, err
	}
	b := &Bands{StdDev: sd, Upper: make([]float64, len(prices)), Lower: make([]float64, len(prices))}
	for i, p := range prices {
		b.Upper[i] = (sma20[i] + sd[i]*2) - p
		b.Lower[i] = p - (sma20[i] - sd[i]*2)
	}
	return b, nil
}

// CalculateMomentum multiplies the day-over-day price change by the volume change.
func CalculateMomentum(prices, volumes []float64) (dprice, dvolume, momentum []float64) {
	dprice = Diff(prices)
	dvolume = Diff(volumes)
	momentum = make([]float64, len(prices))
	for i := range momentum {
		momentum[i] = dprice[i] * dvolume[i]
	}
	return dprice, dvolume, momentum
}
