package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type Volume float64

func (v *Volume) UnmarshalJSON(b []byte) error {
	var strValue string
	err := json.Unmarshal(b, &strValue)
	if err == nil {
		floatValue, _ := strconv.ParseFloat(strValue, 64)
		*v = Volume(floatValue)
		return nil
	}

	var floatValue float64
	err = json.Unmarshal(b, &floatValue)

	if err == nil {
		*v = Volume(floatValue)
		return nil
	}

	return errors.New(fmt.Sprintf("Volume: unsupported data type given, %s", err.Error()))
}

func (v Volume) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value())
}

func (v Volume) Value() float64 {
	return float64(v)
}

type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	var strValue string
	err := json.Unmarshal(b, &strValue)
	if err == nil {
		floatValue, _ := strconv.ParseFloat(strValue, 64)
		*p = Price(floatValue)
		return nil
	}

	var floatValue float64
	err = json.Unmarshal(b, &floatValue)

	if err == nil {
		*p = Price(floatValue)
		return nil
	}

	return errors.New(fmt.Sprintf("Price: unsupported data type given, %s", err.Error()))
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value())
}

func (p Price) Value() float64 {
	return float64(p)
}

type TimestampMilli int64

func (t *TimestampMilli) UnmarshalJSON(b []byte) error {
	var strValue string
	err := json.Unmarshal(b, &strValue)
	if err == nil {
		intValue, _ := strconv.ParseInt(strValue, 10, 64)
		*t = TimestampMilli(intValue)
		return nil
	}

	var intValue int64
	err = json.Unmarshal(b, &intValue)

	if err == nil {
		*t = TimestampMilli(intValue)
		return nil
	}

	return errors.New(fmt.Sprintf("TimestampMilli: unsupported data type given, %s", err.Error()))
}

func (t TimestampMilli) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}

func (t TimestampMilli) Value() int64 {
	return int64(t)
}

func (t TimestampMilli) ToSeconds() TimestampSec {
	return TimestampSec(t.Value() / 1000)
}

// TimestampSec is the chart time axis unit: whole seconds since epoch.
type TimestampSec int64

func (t *TimestampSec) UnmarshalJSON(b []byte) error {
	var strValue string
	err := json.Unmarshal(b, &strValue)
	if err == nil {
		intValue, _ := strconv.ParseInt(strValue, 10, 64)
		*t = TimestampSec(intValue)
		return nil
	}

	var intValue int64
	err = json.Unmarshal(b, &intValue)

	if err == nil {
		*t = TimestampSec(intValue)
		return nil
	}

	var floatValue float64
	err = json.Unmarshal(b, &floatValue)

	if err == nil {
		*t = TimestampSec(int64(floatValue))
		return nil
	}

	return errors.New(fmt.Sprintf("TimestampSec: unsupported data type given, %s", err.Error()))
}

func (t TimestampSec) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}

func (t TimestampSec) Value() int64 {
	return int64(t)
}

// Normalized coerces millisecond timestamps delivered by remote sources
// into seconds.
func (t TimestampSec) Normalized() TimestampSec {
	if t.Value() > 1_000_000_000_000 {
		return TimestampSec(t.Value() / 1000)
	}

	return t
}

func (t TimestampSec) Eq(other TimestampSec) bool {
	return t.Value() == other.Value()
}

func (t TimestampSec) Gt(other TimestampSec) bool {
	return t.Value() > other.Value()
}

func (t TimestampSec) Time() time.Time {
	return time.Unix(t.Value(), 0)
}
