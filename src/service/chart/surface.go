package chart

import (
	"gitlab.com/open-soft/go-chart-server/src/model"
)

// SurfaceInterface is the outbound boundary to whatever renders the
// panes. The frontend consuming the HTTP surface is the usual
// implementation; tests plug in a recorder.
type SurfaceInterface interface {
	ApplyLayout(layout model.PaneLayout)
	SetSeriesData(paneKey string, series model.IndicatorSeries)
	RemovePane(paneKey string)
	Dispose()
}
