package indicator

import (
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
)

type EmaCalculator struct {
}

// Calculate produces the exponential moving average seeded with the simple
// mean of the first window.
func (e *EmaCalculator) Calculate(config model.IndicatorConfig, candles []model.Candle) model.IndicatorSeries {
	period := config.Parameters.Period

	series := model.IndicatorSeries{
		Identity: config.Identity(),
		Label:    e.FormatLabel(config),
	}

	if period <= 0 || int64(len(candles)) < period {
		series.Lines = []model.SeriesLine{{Name: "value", Style: e.SeriesStyle(config), Points: []model.SeriesPoint{}}}

		return series
	}

	values := emaSeries(sourceValues(config, candles), period)
	points := make([]model.SeriesPoint, 0, len(values))

	for i, value := range values {
		points = append(points, model.SeriesPoint{
			Time:  candles[int64(i)+period-1].Time,
			Value: value,
		})
	}

	series.Lines = []model.SeriesLine{{Name: "value", Style: e.SeriesStyle(config), Points: points}}

	return series
}

func (e *EmaCalculator) FormatLabel(config model.IndicatorConfig) string {
	return fmt.Sprintf("EMA(%d)", config.Parameters.Period)
}

func (e *EmaCalculator) SeriesStyle(config model.IndicatorConfig) model.SeriesStyle {
	color := config.Color
	if color == "" {
		color = "#FF6D00"
	}

	return model.SeriesStyle{Kind: "line", Color: color, LineWidth: 2}
}
