package calculator

import (
	"fmt"

	"TimeSeriesML/internal/model"
)

// Derived column names beyond the per-window SMA family.
const (
	ColEMA26     = "26ema"
	ColEMA12     = "12ema"
	ColEMA9      = "9ema"
	ColMACD      = "MACD"
	ColStd20     = "20sd"
	ColUpperBand = "upper_band"
	ColLowerBand = "lower_band"
	ColEMA       = "ema"
	ColDPrice    = "dprice"
	ColDVolume   = "dvolume"
	ColMomentum  = "momentum"
)

// Enrich appends the indicator catalogue to t, computed from the adjusted
// close and volume columns over the whole series. Existing indicator columns
// are overwritten, so enriching twice gives the same table.
func Enrich(t *model.Table, lookupStep int) error {
	prices, ok := t.Column(model.ColAdjClose)
	if !ok {
		return &model.ConfigError{Field: "column", Value: model.ColAdjClose, Reason: "does not exist in the table"}
	}
	volumes, ok := t.Column(model.ColVolume)
	if !ok {
		return &model.ConfigError{Field: "column", Value: model.ColVolume, Reason: "does not exist in the table"}
	}

	set := func(name string, v []float64) error {
		if err := t.SetColumn(name, v); err != nil {
			return fmt.Errorf("enrich: %w", err)
		}
		return nil
	}

	trends := make([]*SMATrend, len(SMAWindows))
	for i, w := range SMAWindows {
		tr, err := CalculateSMATrend(prices, w, lookupStep)
		if err != nil {
			return err
		}
		trends[i] = tr
	}
	sma20 := trends[indexOfWindow(20)].SMA

	// One family at a time: every sma, then every dsma, asma and psma.
	families := []func(*SMATrend) []float64{
		func(tr *SMATrend) []float64 { return tr.SMA },
		func(tr *SMATrend) []float64 { return tr.Delta },
		func(tr *SMATrend) []float64 { return tr.Acceleration },
		func(tr *SMATrend) []float64 { return tr.Projection },
	}
	for f, values := range families {
		for i, w := range SMAWindows {
			if err := set(smaColumns(w)[f], values(trends[i])); err != nil {
				return err
			}
		}
	}

	// MACD
	emas := map[string]float64{ColEMA26: 26, ColEMA12: 12, ColEMA9: 9}
	for _, name := range []string{ColEMA26, ColEMA12, ColEMA9} {
		v, err := EWMSpan(prices, emas[name])
		if err != nil {
			return err
		}
		if err := set(name, v); err != nil {
			return err
		}
	}
	ema26, _ := t.Column(ColEMA26)
	ema12, _ := t.Column(ColEMA12)
	macd := make([]float64, len(prices))
	for i := range macd {
		macd[i] = ema12[i] - ema26[i]
	}
	if err := set(ColMACD, macd); err != nil {
		return err
	}

	bands, err := CalculateBands(prices, sma20)
	if err != nil {
		return err
	}
	if err := set(ColStd20, bands.StdDev); err != nil {
		return err
	}
	if err := set(ColUpperBand, bands.Upper); err != nil {
		return err
	}
	if err := set(ColLowerBand, bands.Lower); err != nil {
		return err
	}

	ema, err := EWMCom(prices, 0.5)
	if err != nil {
		return err
	}
	if err := set(ColEMA, ema); err != nil {
		return err
	}

	dprice, dvolume, momentum := CalculateMomentum(prices, volumes)
	if err := set(ColDPrice, dprice); err != nil {
		return err
	}
	if err := set(ColDVolume, dvolume); err != nil {
		return err
	}
	return set(ColMomentum, momentum)
}

// IndicatorColumns lists every column Enrich adds, in the order it adds them.
func IndicatorColumns() []string {
	var out []string
	for f := 0; f < 4; f++ {
		for _, w := range SMAWindows {
			out = append(out, smaColumns(w)[f])
		}
	}
	return append(out, ColEMA26, ColEMA12, ColEMA9, ColMACD, ColStd20,
		ColUpperBand, ColLowerBand, ColEMA, ColDPrice, ColDVolume, ColMomentum)
}

func indexOfWindow(w int) int {
	for i, v := range SMAWindows {
		if v == w {
			return i
		}
	}
	return 0
}
