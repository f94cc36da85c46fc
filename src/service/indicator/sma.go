package indicator

import (
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
)

type SmaCalculator struct {
}

// Calculate produces the simple moving average. The first point lands on
// the candle closing the first full window; a non-zero offset shifts every
// point onto another candle's timestamp, points shifted past either end of
// the range are dropped.
func (s *SmaCalculator) Calculate(config model.IndicatorConfig, candles []model.Candle) model.IndicatorSeries {
	period := config.Parameters.Period
	offset := config.Parameters.Offset

	series := model.IndicatorSeries{
		Identity: config.Identity(),
		Label:    s.FormatLabel(config),
	}

	if period <= 0 || int64(len(candles)) < period {
		series.Lines = []model.SeriesLine{{Name: "value", Style: s.SeriesStyle(config), Points: []model.SeriesPoint{}}}

		return series
	}

	values := sourceValues(config, candles)
	points := make([]model.SeriesPoint, 0, int64(len(candles))-period+1)

	windowSum := 0.00
	for i := int64(0); i < int64(len(values)); i++ {
		windowSum += values[i]

		if i >= period {
			windowSum -= values[i-period]
		}

		if i < period-1 {
			continue
		}

		timeIndex := i + offset
		if timeIndex < 0 || timeIndex >= int64(len(candles)) {
			continue
		}

		points = append(points, model.SeriesPoint{
			Time:  candles[timeIndex].Time,
			Value: windowSum / float64(period),
		})
	}

	series.Lines = []model.SeriesLine{{Name: "value", Style: s.SeriesStyle(config), Points: points}}

	return series
}

func (s *SmaCalculator) FormatLabel(config model.IndicatorConfig) string {
	return fmt.Sprintf("SMA(%d)", config.Parameters.Period)
}

func (s *SmaCalculator) SeriesStyle(config model.IndicatorConfig) model.SeriesStyle {
	color := config.Color
	if color == "" {
		color = "#2962FF"
	}

	return model.SeriesStyle{Kind: "line", Color: color, LineWidth: 2}
}
