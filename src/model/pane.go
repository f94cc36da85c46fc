package model

type PaneKind string

const PaneKindPrice PaneKind = "price"
const PaneKindDedicated PaneKind = "dedicated"

// Pane is one vertical chart section. The price pane always exists and
// hosts the candlestick series plus overlay indicators; oscillators get a
// dedicated pane per indicator type.
type Pane struct {
	Key          string            `json:"key"`
	Kind         PaneKind          `json:"kind"`
	Title        string            `json:"title"`
	HeightWeight float64           `json:"heightWeight"`
	Series       []IndicatorSeries `json:"series"`
}

func (p Pane) HasSeries(identity string) bool {
	for _, series := range p.Series {
		if series.Identity == identity {
			return true
		}
	}

	return false
}

type PaneLayout struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Panes    []Pane   `json:"panes"`
}

// PointerState is the crosshair position shared across every pane.
type PointerState struct {
	Time   TimestampSec `json:"time"`
	Active bool         `json:"active"`
}

// SummaryValue is what the legend shows for one indicator line at the
// current pointer position. Available is false when the line has no point
// at that time; the value must not be defaulted to zero in that case.
type SummaryValue struct {
	Identity  string  `json:"identity"`
	Line      string  `json:"line"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}
