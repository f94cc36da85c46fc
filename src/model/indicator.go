package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type IndicatorType string

const IndicatorTypeSma IndicatorType = "SMA"
const IndicatorTypeEma IndicatorType = "EMA"
const IndicatorTypeRsi IndicatorType = "RSI"
const IndicatorTypeBollinger IndicatorType = "BB"
const IndicatorTypeMacd IndicatorType = "MACD"

type SourceField string

const SourceClose SourceField = "close"
const SourceOpen SourceField = "open"
const SourceHigh SourceField = "high"
const SourceLow SourceField = "low"

type IndicatorParameters struct {
	Period           int64       `json:"period"`
	Offset           int64       `json:"offset"`
	Source           SourceField `json:"source"`
	StdDevMultiplier float64     `json:"stdDevMultiplier"`
	FastPeriod       int64       `json:"fastPeriod"`
	SlowPeriod       int64       `json:"slowPeriod"`
	SignalPeriod     int64       `json:"signalPeriod"`
}

func (p IndicatorParameters) GetSource() SourceField {
	if p.Source == "" {
		return SourceClose
	}

	return p.Source
}

type IndicatorConfig struct {
	Type       IndicatorType       `json:"type"`
	Parameters IndicatorParameters `json:"parameters"`
	Color      string              `json:"color"`
	IsVisible  bool                `json:"isVisible"`
}

// Identity is the uniform indicator identity: type plus the full parameter
// set, so two instances of the same type with different periods never
// collide.
func (c IndicatorConfig) Identity() string {
	p := c.Parameters

	switch c.Type {
	case IndicatorTypeMacd:
		return fmt.Sprintf("%s-%d-%d-%d-%s", c.Type, p.FastPeriod, p.SlowPeriod, p.SignalPeriod, p.GetSource())
	case IndicatorTypeBollinger:
		return fmt.Sprintf("%s-%d-%.2f-%s", c.Type, p.Period, p.StdDevMultiplier, p.GetSource())
	default:
		return fmt.Sprintf("%s-%d-%d-%s", c.Type, p.Period, p.Offset, p.GetSource())
	}
}

type IndicatorConfigList []IndicatorConfig

func (l *IndicatorConfigList) Scan(src interface{}) error {
	return json.Unmarshal(src.([]byte), &l)
}

func (l IndicatorConfigList) Value() (driver.Value, error) {
	jsonV, err := json.Marshal(l)
	return string(jsonV), err
}

type SeriesPoint struct {
	Time  TimestampSec `json:"time"`
	Value float64      `json:"value"`
}

type SeriesStyle struct {
	Kind      string `json:"kind"` // "line" or "histogram"
	Color     string `json:"color"`
	LineWidth int64  `json:"lineWidth"`
}

// SeriesLine is one named sub-series of a computed indicator: moving
// averages and oscillators have a single "value" line, bands and MACD
// carry several.
type SeriesLine struct {
	Name   string        `json:"name"`
	Style  SeriesStyle   `json:"style"`
	Points []SeriesPoint `json:"points"`
}

func (l SeriesLine) ValueAt(timestamp TimestampSec) (float64, bool) {
	for _, point := range l.Points {
		if point.Time.Eq(timestamp) {
			return point.Value, true
		}
	}

	return 0.00, false
}

func (l SeriesLine) LastValue() (float64, bool) {
	if len(l.Points) == 0 {
		return 0.00, false
	}

	return l.Points[len(l.Points)-1].Value, true
}

type IndicatorSeries struct {
	Identity string       `json:"identity"`
	Label    string       `json:"label"`
	Lines    []SeriesLine `json:"lines"`
}
