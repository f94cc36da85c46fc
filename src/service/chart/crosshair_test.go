package chart_test

import (
	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/service/chart"
	"testing"
)

func testLayout() model.PaneLayout {
	return model.PaneLayout{
		Symbol:   "BTC/USD",
		Interval: model.Interval15m,
		Panes: []model.Pane{
			{
				Key:  chart.PricePaneKey,
				Kind: model.PaneKindPrice,
				Series: []model.IndicatorSeries{
					{
						Identity: "SMA-2-0-close",
						Label:    "SMA(2)",
						Lines: []model.SeriesLine{
							{
								Name: "value",
								Points: []model.SeriesPoint{
									{Time: 120, Value: 11.50},
									{Time: 180, Value: 12.50},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestPointerMoveIsBroadcast(t *testing.T) {
	assertion := assert.New(t)

	service := chart.CrosshairService{}

	var observed []model.PointerState
	subscriptionId := service.SubscribePointerMove(func(state model.PointerState) {
		observed = append(observed, state)
	})

	service.MovePointer(120)
	service.ClearPointer()

	assertion.Len(observed, 2)
	assertion.Equal(model.PointerState{Time: 120, Active: true}, observed[0])
	assertion.Equal(model.PointerState{}, observed[1])

	service.UnsubscribePointerMove(subscriptionId)
	service.MovePointer(180)

	assertion.Len(observed, 2)
}

func TestSummariesAtPointerPosition(t *testing.T) {
	assertion := assert.New(t)

	service := chart.CrosshairService{}
	service.MovePointer(120)

	summaries := service.Summaries(testLayout())

	assertion.Len(summaries, 1)
	assertion.True(summaries[0].Available)
	assertion.Equal(11.50, summaries[0].Value)
	assertion.Equal("SMA(2)", summaries[0].Label)
}

func TestSummariesUnavailableIsNotDefaulted(t *testing.T) {
	assertion := assert.New(t)

	service := chart.CrosshairService{}
	service.MovePointer(999)

	summaries := service.Summaries(testLayout())

	assertion.Len(summaries, 1)
	assertion.False(summaries[0].Available)
}

func TestSummariesFallBackToLatestValue(t *testing.T) {
	assertion := assert.New(t)

	service := chart.CrosshairService{}

	summaries := service.Summaries(testLayout())

	assertion.Len(summaries, 1)
	assertion.True(summaries[0].Available)
	assertion.Equal(12.50, summaries[0].Value)
}
