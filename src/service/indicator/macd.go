package indicator

import (
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
)

type MacdCalculator struct {
}

// Calculate produces the MACD triple. The macd line is the fast EMA minus
// the slow EMA, aligned by candle index so both averages describe the same
// bar; the signal line is an EMA over the macd values; the histogram is
// their difference.
func (m *MacdCalculator) Calculate(config model.IndicatorConfig, candles []model.Candle) model.IndicatorSeries {
	fastPeriod := config.Parameters.FastPeriod
	slowPeriod := config.Parameters.SlowPeriod
	signalPeriod := config.Parameters.SignalPeriod

	if fastPeriod <= 0 {
		fastPeriod = 12
	}
	if slowPeriod <= 0 {
		slowPeriod = 26
	}
	if signalPeriod <= 0 {
		signalPeriod = 9
	}

	series := model.IndicatorSeries{
		Identity: config.Identity(),
		Label:    m.FormatLabel(config),
	}

	lineStyle := m.SeriesStyle(config)
	signalStyle := model.SeriesStyle{Kind: "line", Color: "#FF6D00", LineWidth: 1}
	histogramStyle := model.SeriesStyle{Kind: "histogram", Color: "#26A69A", LineWidth: 1}

	macdLine := model.SeriesLine{Name: "macd", Style: lineStyle, Points: []model.SeriesPoint{}}
	signalLine := model.SeriesLine{Name: "signal", Style: signalStyle, Points: []model.SeriesPoint{}}
	histogramLine := model.SeriesLine{Name: "histogram", Style: histogramStyle, Points: []model.SeriesPoint{}}

	longest := fastPeriod
	if slowPeriod > longest {
		longest = slowPeriod
	}

	if int64(len(candles)) < longest {
		series.Lines = []model.SeriesLine{macdLine, signalLine, histogramLine}

		return series
	}

	values := sourceValues(config, candles)
	fast := emaSeries(values, fastPeriod)
	slow := emaSeries(values, slowPeriod)

	// fast[i] describes candle i+fastPeriod-1, slow[j] candle j+slowPeriod-1;
	// the macd line starts where both exist.
	macdValues := make([]float64, 0, int64(len(values))-longest+1)
	for candleIndex := longest - 1; candleIndex < int64(len(values)); candleIndex++ {
		fastValue := fast[candleIndex-fastPeriod+1]
		slowValue := slow[candleIndex-slowPeriod+1]

		macdValue := fastValue - slowValue
		macdValues = append(macdValues, macdValue)
		macdLine.Points = append(macdLine.Points, model.SeriesPoint{Time: candles[candleIndex].Time, Value: macdValue})
	}

	signalValues := emaSeries(macdValues, signalPeriod)
	for i, signalValue := range signalValues {
		candleIndex := longest - 1 + signalPeriod - 1 + int64(i)
		timestamp := candles[candleIndex].Time

		signalLine.Points = append(signalLine.Points, model.SeriesPoint{Time: timestamp, Value: signalValue})
		histogramLine.Points = append(histogramLine.Points, model.SeriesPoint{
			Time:  timestamp,
			Value: macdValues[signalPeriod-1+int64(i)] - signalValue,
		})
	}

	series.Lines = []model.SeriesLine{macdLine, signalLine, histogramLine}

	return series
}

func (m *MacdCalculator) FormatLabel(config model.IndicatorConfig) string {
	fastPeriod := config.Parameters.FastPeriod
	slowPeriod := config.Parameters.SlowPeriod
	signalPeriod := config.Parameters.SignalPeriod

	if fastPeriod <= 0 {
		fastPeriod = 12
	}
	if slowPeriod <= 0 {
		slowPeriod = 26
	}
	if signalPeriod <= 0 {
		signalPeriod = 9
	}

	return fmt.Sprintf("MACD(%d, %d, %d)", fastPeriod, slowPeriod, signalPeriod)
}

func (m *MacdCalculator) SeriesStyle(config model.IndicatorConfig) model.SeriesStyle {
	color := config.Color
	if color == "" {
		color = "#2962FF"
	}

	return model.SeriesStyle{Kind: "line", Color: color, LineWidth: 2}
}
