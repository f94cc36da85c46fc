package chart

import (
	"github.com/google/uuid"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/utils"
	"sync"
)

type PointerMoveCallback func(state model.PointerState)

// CrosshairService keeps the shared pointer position so every pane shows
// the crosshair on the same candle.
type CrosshairService struct {
	mutex       sync.Mutex
	state       model.PointerState
	subscribers map[string]PointerMoveCallback
}

func (c *CrosshairService) MovePointer(timestamp model.TimestampSec) {
	c.setState(model.PointerState{Time: timestamp, Active: true})
}

// ClearPointer is called when the pointer leaves the chart; summaries fall
// back to the latest values.
func (c *CrosshairService) ClearPointer() {
	c.setState(model.PointerState{})
}

func (c *CrosshairService) State() model.PointerState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state
}

func (c *CrosshairService) setState(state model.PointerState) {
	c.mutex.Lock()
	c.state = state

	callbacks := make([]PointerMoveCallback, 0, len(c.subscribers))
	for _, callback := range c.subscribers {
		callbacks = append(callbacks, callback)
	}
	c.mutex.Unlock()

	for _, callback := range callbacks {
		callback(state)
	}
}

func (c *CrosshairService) SubscribePointerMove(callback PointerMoveCallback) string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.subscribers == nil {
		c.subscribers = make(map[string]PointerMoveCallback)
	}

	subscriptionId := uuid.New().String()
	c.subscribers[subscriptionId] = callback

	return subscriptionId
}

func (c *CrosshairService) UnsubscribePointerMove(subscriptionId string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.subscribers, subscriptionId)
}

// Summaries reports the legend values for every indicator line at the
// current pointer position. With no active pointer the latest value of
// each line is used; a line with no point at the pointer time is reported
// unavailable instead of defaulting to zero.
func (c *CrosshairService) Summaries(layout model.PaneLayout) []model.SummaryValue {
	state := c.State()

	summaries := make([]model.SummaryValue, 0)

	for _, pane := range layout.Panes {
		for _, series := range pane.Series {
			for _, line := range series.Lines {
				var value float64
				var available bool

				if state.Active {
					value, available = line.ValueAt(state.Time)
				} else {
					value, available = line.LastValue()
				}

				summaries = append(summaries, model.SummaryValue{
					Identity:  series.Identity,
					Line:      line.Name,
					Label:     series.Label,
					Value:     utils.ToFixed(value, 8),
					Available: available,
				})
			}
		}
	}

	return summaries
}
