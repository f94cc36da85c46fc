package model

// ChartSession scopes cached candles and persisted indicator configs to one
// running dashboard instance.
type ChartSession struct {
	Id          int64               `json:"id"`
	SessionUuid string              `json:"sessionUuid"`
	Indicators  IndicatorConfigList `json:"indicators"`
}
