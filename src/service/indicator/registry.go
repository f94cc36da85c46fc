package indicator

import (
	"gitlab.com/open-soft/go-chart-server/src/model"
)

type CalculatorInterface interface {
	Calculate(config model.IndicatorConfig, candles []model.Candle) model.IndicatorSeries
	FormatLabel(config model.IndicatorConfig) string
	SeriesStyle(config model.IndicatorConfig) model.SeriesStyle
}

// Registry maps indicator types to calculators. The set is closed at
// construction time, callers cannot register new types at runtime.
type Registry struct {
	calculators map[model.IndicatorType]CalculatorInterface
}

func NewRegistry() *Registry {
	return &Registry{
		calculators: map[model.IndicatorType]CalculatorInterface{
			model.IndicatorTypeSma:       &SmaCalculator{},
			model.IndicatorTypeEma:       &EmaCalculator{},
			model.IndicatorTypeRsi:       &RsiCalculator{},
			model.IndicatorTypeBollinger: &BollingerCalculator{},
			model.IndicatorTypeMacd:      &MacdCalculator{},
		},
	}
}

func (r *Registry) Get(indicatorType model.IndicatorType) (CalculatorInterface, error) {
	calculator, ok := r.calculators[indicatorType]

	if !ok {
		return nil, model.ErrUnknownIndicator
	}

	return calculator, nil
}

// Calculate dispatches to the registered calculator. Insufficient input
// yields an empty series, never an error.
func (r *Registry) Calculate(config model.IndicatorConfig, candles []model.Candle) (model.IndicatorSeries, error) {
	calculator, err := r.Get(config.Type)

	if err != nil {
		return model.IndicatorSeries{}, err
	}

	return calculator.Calculate(config, candles), nil
}

// sourceValues extracts the configured price field from every candle.
func sourceValues(config model.IndicatorConfig, candles []model.Candle) []float64 {
	values := make([]float64, len(candles))

	for i, candle := range candles {
		values[i] = candle.SourceValue(config.Parameters.GetSource())
	}

	return values
}

// emaSeries computes an exponential moving average over values. The first
// output is the simple mean of the first period values; the result is
// aligned so that out[i] corresponds to values[i+period-1].
func emaSeries(values []float64, period int64) []float64 {
	if int64(len(values)) < period || period <= 0 {
		return nil
	}

	out := make([]float64, 0, int64(len(values))-period+1)

	seed := 0.00
	for i := int64(0); i < period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)
	out = append(out, ema)

	multiplier := 2.00 / (float64(period) + 1.00)
	for i := period; i < int64(len(values)); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out = append(out, ema)
	}

	return out
}
