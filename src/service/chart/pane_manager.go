package chart

import (
	"fmt"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/service/indicator"
	"log"
	"sort"
	"sync"
)

const PricePaneKey = "price"

// priceHeightWeight is the share of the chart height the price pane keeps
// when dedicated panes exist; the dedicated panes split the rest evenly.
const priceHeightWeight = 0.70

type PaneRemovalCallback func(paneKey string, identities []string)

// PaneManager assembles the pane layout for a symbol: overlay indicators
// share the price pane, oscillators get a dedicated pane per indicator
// type. The layout is rebuilt from scratch on every change instead of
// patching the previous one.
type PaneManager struct {
	Registry *indicator.Registry

	mutex            sync.Mutex
	removalCallbacks []PaneRemovalCallback
}

func (p *PaneManager) IsOverlay(indicatorType model.IndicatorType) bool {
	switch indicatorType {
	case model.IndicatorTypeSma, model.IndicatorTypeEma, model.IndicatorTypeBollinger:
		return true
	}

	return false
}

func (p *PaneManager) BuildLayout(symbol string, interval model.Interval, candles []model.Candle, configs model.IndicatorConfigList) model.PaneLayout {
	pricePane := model.Pane{
		Key:          PricePaneKey,
		Kind:         model.PaneKindPrice,
		Title:        symbol,
		HeightWeight: 1.00,
		Series:       []model.IndicatorSeries{},
	}

	dedicated := make(map[model.IndicatorType]*model.Pane)
	dedicatedOrder := make([]model.IndicatorType, 0)

	for _, config := range configs {
		if !config.IsVisible {
			continue
		}

		series, err := p.Registry.Calculate(config, candles)
		if err != nil {
			log.Printf("[%s] indicator %s is skipped: %s", symbol, config.Type, err.Error())
			continue
		}

		if p.IsOverlay(config.Type) {
			pricePane.Series = append(pricePane.Series, series)
			continue
		}

		pane, ok := dedicated[config.Type]
		if !ok {
			pane = &model.Pane{
				Key:    fmt.Sprintf("pane-%s", config.Type),
				Kind:   model.PaneKindDedicated,
				Title:  string(config.Type),
				Series: []model.IndicatorSeries{},
			}
			dedicated[config.Type] = pane
			dedicatedOrder = append(dedicatedOrder, config.Type)
		}

		pane.Series = append(pane.Series, series)
	}

	panes := []model.Pane{pricePane}

	if len(dedicatedOrder) > 0 {
		panes[0].HeightWeight = priceHeightWeight
		share := (1.00 - priceHeightWeight) / float64(len(dedicatedOrder))

		sort.Slice(dedicatedOrder, func(i, j int) bool {
			return dedicatedOrder[i] < dedicatedOrder[j]
		})

		for _, indicatorType := range dedicatedOrder {
			pane := dedicated[indicatorType]
			pane.HeightWeight = share
			panes = append(panes, *pane)
		}
	}

	return model.PaneLayout{
		Symbol:   symbol,
		Interval: interval,
		Panes:    panes,
	}
}

// Render pushes a layout onto a surface: the pane structure first, then
// every series, so the surface never shows a pane without its data.
func (p *PaneManager) Render(surface SurfaceInterface, layout model.PaneLayout) {
	surface.ApplyLayout(layout)

	for _, pane := range layout.Panes {
		for _, series := range pane.Series {
			surface.SetSeriesData(pane.Key, series)
		}
	}
}

// BindSurface forwards pane removals to the surface so a dedicated pane
// disappears as soon as its last indicator is gone.
func (p *PaneManager) BindSurface(surface SurfaceInterface) {
	p.OnPaneRemoved(func(paneKey string, identities []string) {
		surface.RemovePane(paneKey)
	})
}

func (p *PaneManager) OnPaneRemoved(callback PaneRemovalCallback) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.removalCallbacks = append(p.removalCallbacks, callback)
}

// RemovePane drops every indicator living in the pane from the config
// list and notifies removal subscribers with the affected identities. The
// price pane cannot be removed, only its overlays.
func (p *PaneManager) RemovePane(paneKey string, configs model.IndicatorConfigList) model.IndicatorConfigList {
	remaining := make(model.IndicatorConfigList, 0, len(configs))
	removed := make([]string, 0)

	for _, config := range configs {
		configPane := PricePaneKey
		if !p.IsOverlay(config.Type) {
			configPane = fmt.Sprintf("pane-%s", config.Type)
		}

		if configPane == paneKey && paneKey != PricePaneKey {
			removed = append(removed, config.Identity())
			continue
		}

		remaining = append(remaining, config)
	}

	if len(removed) == 0 {
		return configs
	}

	p.mutex.Lock()
	callbacks := make([]PaneRemovalCallback, len(p.removalCallbacks))
	copy(callbacks, p.removalCallbacks)
	p.mutex.Unlock()

	for _, callback := range callbacks {
		callback(paneKey, removed)
	}

	return remaining
}

// RemoveIndicator drops a single indicator by identity. When the last
// oscillator of a type goes away its pane disappears with it and removal
// subscribers are notified.
func (p *PaneManager) RemoveIndicator(identity string, configs model.IndicatorConfigList) model.IndicatorConfigList {
	remaining := make(model.IndicatorConfigList, 0, len(configs))
	var removed *model.IndicatorConfig

	for _, config := range configs {
		if config.Identity() == identity && removed == nil {
			c := config
			removed = &c
			continue
		}

		remaining = append(remaining, config)
	}

	if removed == nil || p.IsOverlay(removed.Type) {
		return remaining
	}

	for _, config := range remaining {
		if config.Type == removed.Type {
			return remaining
		}
	}

	paneKey := fmt.Sprintf("pane-%s", removed.Type)

	p.mutex.Lock()
	callbacks := make([]PaneRemovalCallback, len(p.removalCallbacks))
	copy(callbacks, p.removalCallbacks)
	p.mutex.Unlock()

	for _, callback := range callbacks {
		callback(paneKey, []string{identity})
	}

	return remaining
}
