package calculator

import "fmt"

// SMAWindows are the moving-average lengths, in days, added to every table.
var SMAWindows = []int{5, 20, 50, 100, 200}

// SMATrend holds a moving average with its first and second differences and
// the linear projection built from them.
type SMATrend struct {
	SMA          []float64
	Delta        []float64
	Acceleration []float64
	Projection   []float64
}

// CalculateSMATrend computes the moving average of prices over period and
// projects it lookupStep days ahead: sma + delta*step + acceleration*step.
func CalculateSMATrend(prices []float64, period, lookupStep int) (*SMATrend, error) {
	sma, err := RollingMean(prices, period)
	if err != nil {
		return nil, fmt.Errorf("sma%d: %w", period, err)
	}
	delta := Diff(sma)
	acc := Diff(delta)
	step := float64(lookupStep)
	proj := make([]float64, len(sma))
	for i := range sma {
		proj[i] = sma[i] + delta[i]*step + acc[i]*step
	}
	return &SMATrend{SMA: sma, Delta: delta, Acceleration: acc, Projection: proj}, nil
}

// smaColumns names the sma, dsma, asma and psma columns for period.
func smaColumns(period int) [4]string {
	return [4]string{
		fmt.Sprintf("sma%d", period), fmt.Sprintf("dsma%d", period),
		fmt.Sprintf("asma%d", period), fmt.Sprintf("psma%d", period),
	}
}
