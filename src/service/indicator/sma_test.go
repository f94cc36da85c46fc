package indicator_test

import (
	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/service/indicator"
	"testing"
)

func candleFixture(times []int64, closes []float64) []model.Candle {
	candles := make([]model.Candle, len(times))
	for i := range times {
		price := model.Price(closes[i])
		candles[i] = model.Candle{
			Time:  model.TimestampSec(times[i]),
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		}
	}

	return candles
}

func TestSmaFirstPointClosesFirstWindow(t *testing.T) {
	assertion := assert.New(t)

	calculator := indicator.SmaCalculator{}
	config := model.IndicatorConfig{Type: model.IndicatorTypeSma, Parameters: model.IndicatorParameters{Period: 2}}
	candles := candleFixture([]int64{1, 2, 3}, []float64{11.00, 12.00, 13.00})

	series := calculator.Calculate(config, candles)

	assertion.Len(series.Lines, 1)
	points := series.Lines[0].Points
	assertion.Len(points, 2)
	assertion.Equal(model.SeriesPoint{Time: 2, Value: 11.50}, points[0])
	assertion.Equal(model.SeriesPoint{Time: 3, Value: 12.50}, points[1])
}

func TestSmaOffsetShiftsTimestamps(t *testing.T) {
	assertion := assert.New(t)

	calculator := indicator.SmaCalculator{}
	config := model.IndicatorConfig{
		Type:       model.IndicatorTypeSma,
		Parameters: model.IndicatorParameters{Period: 2, Offset: -1},
	}
	candles := candleFixture([]int64{1, 2, 3}, []float64{11.00, 12.00, 13.00})

	series := calculator.Calculate(config, candles)

	points := series.Lines[0].Points
	assertion.Len(points, 2)
	assertion.Equal(model.SeriesPoint{Time: 1, Value: 11.50}, points[0])
	assertion.Equal(model.SeriesPoint{Time: 2, Value: 12.50}, points[1])
}

func TestSmaOffsetDropsOutOfRangePoints(t *testing.T) {
	assertion := assert.New(t)

	calculator := indicator.SmaCalculator{}
	config := model.IndicatorConfig{
		Type:       model.IndicatorTypeSma,
		Parameters: model.IndicatorParameters{Period: 2, Offset: 1},
	}
	candles := candleFixture([]int64{1, 2, 3}, []float64{11.00, 12.00, 13.00})

	series := calculator.Calculate(config, candles)

	// the last window would land past the end of the range
	points := series.Lines[0].Points
	assertion.Len(points, 1)
	assertion.Equal(model.SeriesPoint{Time: 3, Value: 11.50}, points[0])
}

func TestSmaInsufficientDataYieldsEmptySeries(t *testing.T) {
	assertion := assert.New(t)

	calculator := indicator.SmaCalculator{}
	config := model.IndicatorConfig{Type: model.IndicatorTypeSma, Parameters: model.IndicatorParameters{Period: 10}}
	candles := candleFixture([]int64{1, 2, 3}, []float64{11.00, 12.00, 13.00})

	series := calculator.Calculate(config, candles)

	assertion.Len(series.Lines, 1)
	assertion.Empty(series.Lines[0].Points)
}

func TestSmaLabel(t *testing.T) {
	assertion := assert.New(t)

	calculator := indicator.SmaCalculator{}
	config := model.IndicatorConfig{Type: model.IndicatorTypeSma, Parameters: model.IndicatorParameters{Period: 20}}

	assertion.Equal("SMA(20)", calculator.FormatLabel(config))
	assertion.Equal("line", calculator.SeriesStyle(config).Kind)
}
