package oanda

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/peter-kozarec/oanda/pkg/utility"
)

var errEmptyBody = errors.New("empty body")

type instrumentsData struct {
	Instruments *[]json.RawMessage `json:"instruments"`
}

type instrumentData struct {
	Name                        *string         `json:"name"`
	Type                        *string         `json:"type"`
	DisplayName                 *string         `json:"displayName"`
	PipLocation                 *int64          `json:"pipLocation"`
	DisplayPrecision            *int64          `json:"displayPrecision"`
	TradeUnitsPrecision         *int64          `json:"tradeUnitsPrecision"`
	MinimumTradeSize            json.RawMessage `json:"minimumTradeSize"`
	MaximumTrailingStopDistance json.RawMessage `json:"maximumTrailingStopDistance"`
	MinimumTrailingStopDistance json.RawMessage `json:"minimumTrailingStopDistance"`
	MaximumPositionSize         json.RawMessage `json:"maximumPositionSize"`
	MaximumOrderUnits           json.RawMessage `json:"maximumOrderUnits"`
	MarginRate                  json.RawMessage `json:"marginRate"`
	GuaranteedStopLossOrderMode *string         `json:"guaranteedStopLossOrderMode"`
	Tags                        *[]tagData      `json:"tags"`
	Financing                   *financingData  `json:"financing"`
}

type tagData struct {
	Type *string `json:"type"`
	Name *string `json:"name"`
}

type financingData struct {
	LongRate            json.RawMessage           `json:"longRate"`
	ShortRate           json.RawMessage           `json:"shortRate"`
	FinancingDaysOfWeek *[]financingDayOfWeekData `json:"financingDaysOfWeek"`
}

type financingDayOfWeekData struct {
	DayOfWeek   *string `json:"dayOfWeek"`
	DaysCharged *int64  `json:"daysCharged"`
}

// DecodeInstruments decodes either the {"instruments": [...]} envelope or a bare
// array of instruments. Decoding is all or nothing, the first invalid field
// aborts with a *DecodeError.
func DecodeInstruments(data []byte) ([]Instrument, error) {
	instruments, err := decodeInstruments(bytes.TrimSpace(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return instruments, nil
}

func decodeInstruments(data []byte) ([]Instrument, error) {
	if len(data) == 0 {
		return nil, errEmptyBody
	}
	if data[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, err
		}
		return decodeElements("", elements)
	}

	var envelope instrumentsData
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Instruments == nil {
		return nil, &FieldError{Field: "instruments", Err: ErrMissingField}
	}
	return decodeElements("instruments", *envelope.Instruments)
}

func decodeElements(path string, elements []json.RawMessage) ([]Instrument, error) {
	instruments := make([]Instrument, 0, len(elements))
	for idx, element := range elements {
		elementPath := fmt.Sprintf("%s[%d]", path, idx)

		var d instrumentData
		if err := json.Unmarshal(element, &d); err != nil {
			return nil, &FieldError{Field: elementPath, Err: err}
		}

		instrument, err := d.instrument(elementPath)
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, instrument)
	}
	return instruments, nil
}

func (d *instrumentData) instrument(path string) (Instrument, error) {
	r := &fieldReader{path: path}

	instrument := Instrument{
		Name:                        r.str("name", d.Name),
		Type:                        readVariant(r, "type", d.Type, ParseInstrumentType),
		DisplayName:                 r.str("displayName", d.DisplayName),
		PipLocation:                 r.integer("pipLocation", d.PipLocation),
		DisplayPrecision:            r.integer("displayPrecision", d.DisplayPrecision),
		TradeUnitsPrecision:         r.integer("tradeUnitsPrecision", d.TradeUnitsPrecision),
		MinimumTradeSize:            r.decimal("minimumTradeSize", d.MinimumTradeSize),
		MaximumTrailingStopDistance: r.decimal("maximumTrailingStopDistance", d.MaximumTrailingStopDistance),
		MinimumTrailingStopDistance: r.decimal("minimumTrailingStopDistance", d.MinimumTrailingStopDistance),
		MaximumPositionSize:         r.decimal("maximumPositionSize", d.MaximumPositionSize),
		MaximumOrderUnits:           r.decimal("maximumOrderUnits", d.MaximumOrderUnits),
		MarginRate:                  r.decimal("marginRate", d.MarginRate),
		GuaranteedStopLossOrderMode: readVariant(r, "guaranteedStopLossOrderMode", d.GuaranteedStopLossOrderMode, ParseGuaranteedStopLossOrderMode),
	}
	if r.err != nil {
		return Instrument{}, r.err
	}

	if d.Tags == nil {
		return Instrument{}, r.missing("tags")
	}
	instrument.Tags = make([]Tag, 0, len(*d.Tags))
	for idx, t := range *d.Tags {
		tr := r.nested(fmt.Sprintf("tags[%d]", idx))
		tag := Tag{
			Type: tr.str("type", t.Type),
			Name: tr.str("name", t.Name),
		}
		if tr.err != nil {
			return Instrument{}, tr.err
		}
		instrument.Tags = append(instrument.Tags, tag)
	}

	if d.Financing == nil {
		return Instrument{}, r.missing("financing")
	}
	financing, err := d.Financing.financing(r.nested("financing"))
	if err != nil {
		return Instrument{}, err
	}
	instrument.Financing = financing

	return instrument, nil
}

func (d *financingData) financing(r *fieldReader) (Financing, error) {
	financing := Financing{
		LongRate:  r.decimal("longRate", d.LongRate),
		ShortRate: r.decimal("shortRate", d.ShortRate),
	}
	if r.err != nil {
		return Financing{}, r.err
	}

	if d.FinancingDaysOfWeek == nil {
		return Financing{}, r.missing("financingDaysOfWeek")
	}

	// Days are passed through as received, neither deduplicated nor checked for
	// completeness.
	financing.FinancingDaysOfWeek = make([]FinancingDayOfWeek, 0, len(*d.FinancingDaysOfWeek))
	for idx, day := range *d.FinancingDaysOfWeek {
		dr := r.nested(fmt.Sprintf("financingDaysOfWeek[%d]", idx))
		entry := FinancingDayOfWeek{
			DayOfWeek:   readVariant(dr, "dayOfWeek", day.DayOfWeek, ParseDayOfWeek),
			DaysCharged: dr.integer("daysCharged", day.DaysCharged),
		}
		if dr.err != nil {
			return Financing{}, dr.err
		}
		financing.FinancingDaysOfWeek = append(financing.FinancingDaysOfWeek, entry)
	}

	return financing, nil
}

// fieldReader keeps the first error encountered; later reads become no-ops.
type fieldReader struct {
	path string
	err  error
}

func (r *fieldReader) nested(name string) *fieldReader {
	return &fieldReader{path: r.at(name)}
}

func (r *fieldReader) at(name string) string {
	if r.path == "" {
		return name
	}
	return r.path + "." + name
}

func (r *fieldReader) missing(name string) error {
	return &FieldError{Field: r.at(name), Err: ErrMissingField}
}

func (r *fieldReader) str(name string, v *string) string {
	if r.err != nil {
		return ""
	}
	if v == nil {
		r.err = r.missing(name)
		return ""
	}
	return *v
}

func (r *fieldReader) integer(name string, v *int64) int64 {
	if r.err != nil {
		return 0
	}
	if v == nil {
		r.err = r.missing(name)
		return 0
	}
	return *v
}

func (r *fieldReader) decimal(name string, raw json.RawMessage) float64 {
	if r.err != nil {
		return 0
	}
	if len(raw) == 0 {
		r.err = r.missing(name)
		return 0
	}
	v, err := utility.ParseDecimalNumber(raw)
	if err != nil {
		r.err = &FieldError{Field: r.at(name), Err: err}
		return 0
	}
	return v
}

func readVariant[T ~int](r *fieldReader, name string, v *string, parse func(string) (T, error)) T {
	if r.err != nil {
		return 0
	}
	if v == nil {
		r.err = r.missing(name)
		return 0
	}
	variant, err := parse(*v)
	if err != nil {
		var unknown *UnknownVariantError
		if errors.As(err, &unknown) {
			unknown.Field = r.at(name)
		}
		r.err = err
		return 0
	}
	return variant
}
