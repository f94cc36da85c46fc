package chart_test

import (
	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/service/chart"
	"testing"
)

type SurfaceRecorder struct {
	layouts      []model.PaneLayout
	seriesByPane map[string][]model.IndicatorSeries
	removedPanes []string
	disposed     bool
}

func (s *SurfaceRecorder) ApplyLayout(layout model.PaneLayout) {
	s.layouts = append(s.layouts, layout)
}

func (s *SurfaceRecorder) SetSeriesData(paneKey string, series model.IndicatorSeries) {
	if s.seriesByPane == nil {
		s.seriesByPane = make(map[string][]model.IndicatorSeries)
	}

	s.seriesByPane[paneKey] = append(s.seriesByPane[paneKey], series)
}

func (s *SurfaceRecorder) RemovePane(paneKey string) {
	s.removedPanes = append(s.removedPanes, paneKey)
}

func (s *SurfaceRecorder) Dispose() {
	s.disposed = true
}

func TestRenderPushesLayoutThenSeries(t *testing.T) {
	assertion := assert.New(t)

	manager := testManager()
	surface := &SurfaceRecorder{}

	candles := candleFixture([]int64{1, 2, 3, 4, 5, 6}, []float64{10.00, 11.00, 12.00, 11.00, 13.00, 12.00})
	layout := manager.BuildLayout("BTC/USD", model.Interval15m, candles, testConfigs())

	manager.Render(surface, layout)

	assertion.Len(surface.layouts, 1)
	assertion.Len(surface.seriesByPane[chart.PricePaneKey], 2)
	assertion.Len(surface.seriesByPane["pane-RSI"], 1)
	assertion.Len(surface.seriesByPane["pane-MACD"], 1)
}

func TestBoundSurfaceReceivesPaneRemovals(t *testing.T) {
	assertion := assert.New(t)

	manager := testManager()
	surface := &SurfaceRecorder{}
	manager.BindSurface(surface)

	manager.RemovePane("pane-RSI", testConfigs())

	assertion.Equal([]string{"pane-RSI"}, surface.removedPanes)
}
