package indicator

import (
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
)

type RsiCalculator struct {
}

// Calculate produces Wilder's relative strength index. The first value is
// based on plain averages of the first period gains and losses, every
// later value uses the smoothed recurrence. A window with zero average
// loss reports RSI 100.
func (r *RsiCalculator) Calculate(config model.IndicatorConfig, candles []model.Candle) model.IndicatorSeries {
	period := config.Parameters.Period

	series := model.IndicatorSeries{
		Identity: config.Identity(),
		Label:    r.FormatLabel(config),
	}

	if period <= 0 || int64(len(candles)) < period+1 {
		series.Lines = []model.SeriesLine{{Name: "value", Style: r.SeriesStyle(config), Points: []model.SeriesPoint{}}}

		return series
	}

	values := sourceValues(config, candles)

	avgGain := 0.00
	avgLoss := 0.00
	for i := int64(1); i <= period; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	points := make([]model.SeriesPoint, 0, int64(len(values))-period)
	points = append(points, model.SeriesPoint{
		Time:  candles[period].Time,
		Value: rsiValue(avgGain, avgLoss),
	})

	for i := period + 1; i < int64(len(values)); i++ {
		delta := values[i] - values[i-1]
		gain := 0.00
		loss := 0.00
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		points = append(points, model.SeriesPoint{
			Time:  candles[i].Time,
			Value: rsiValue(avgGain, avgLoss),
		})
	}

	series.Lines = []model.SeriesLine{{Name: "value", Style: r.SeriesStyle(config), Points: points}}

	return series
}

func rsiValue(avgGain float64, avgLoss float64) float64 {
	if avgLoss == 0.00 {
		return 100.00
	}

	rs := avgGain / avgLoss

	return 100.00 - (100.00 / (1.00 + rs))
}

func (r *RsiCalculator) FormatLabel(config model.IndicatorConfig) string {
	return fmt.Sprintf("RSI(%d)", config.Parameters.Period)
}

func (r *RsiCalculator) SeriesStyle(config model.IndicatorConfig) model.SeriesStyle {
	color := config.Color
	if color == "" {
		color = "#7E57C2"
	}

	return model.SeriesStyle{Kind: "line", Color: color, LineWidth: 2}
}
