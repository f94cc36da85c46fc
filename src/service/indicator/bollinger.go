package indicator

import (
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"math"
)

type BollingerCalculator struct {
}

// Calculate produces the Bollinger band triple: the middle line is a
// simple moving average, the outer bands sit a configurable number of
// population standard deviations away.
func (b *BollingerCalculator) Calculate(config model.IndicatorConfig, candles []model.Candle) model.IndicatorSeries {
	period := config.Parameters.Period
	multiplier := config.Parameters.StdDevMultiplier
	if multiplier == 0.00 {
		multiplier = 2.00
	}

	series := model.IndicatorSeries{
		Identity: config.Identity(),
		Label:    b.FormatLabel(config),
	}

	style := b.SeriesStyle(config)
	middle := model.SeriesLine{Name: "middle", Style: style, Points: []model.SeriesPoint{}}
	upper := model.SeriesLine{Name: "upper", Style: style, Points: []model.SeriesPoint{}}
	lower := model.SeriesLine{Name: "lower", Style: style, Points: []model.SeriesPoint{}}

	if period <= 0 || int64(len(candles)) < period {
		series.Lines = []model.SeriesLine{middle, upper, lower}

		return series
	}

	values := sourceValues(config, candles)

	for i := period - 1; i < int64(len(values)); i++ {
		window := values[i-period+1 : i+1]

		mean := 0.00
		for _, value := range window {
			mean += value
		}
		mean /= float64(period)

		variance := 0.00
		for _, value := range window {
			variance += (value - mean) * (value - mean)
		}
		stdDev := math.Sqrt(variance / float64(period))

		timestamp := candles[i].Time
		middle.Points = append(middle.Points, model.SeriesPoint{Time: timestamp, Value: mean})
		upper.Points = append(upper.Points, model.SeriesPoint{Time: timestamp, Value: mean + multiplier*stdDev})
		lower.Points = append(lower.Points, model.SeriesPoint{Time: timestamp, Value: mean - multiplier*stdDev})
	}

	series.Lines = []model.SeriesLine{middle, upper, lower}

	return series
}

func (b *BollingerCalculator) FormatLabel(config model.IndicatorConfig) string {
	multiplier := config.Parameters.StdDevMultiplier
	if multiplier == 0.00 {
		multiplier = 2.00
	}

	return fmt.Sprintf("BB(%d, %.1f)", config.Parameters.Period, multiplier)
}

func (b *BollingerCalculator) SeriesStyle(config model.IndicatorConfig) model.SeriesStyle {
	color := config.Color
	if color == "" {
		color = "#26A69A"
	}

	return model.SeriesStyle{Kind: "line", Color: color, LineWidth: 1}
}
