package oanda

import (
	"errors"
	"fmt"
	"math"

	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type InstrumentType int
type GuaranteedStopLossOrderMode int
type DayOfWeek int

const (
	InstrumentTypeCurrency InstrumentType = iota
	InstrumentTypeCfd
	InstrumentTypeMetal
)

const (
	GuaranteedStopLossOrderModeDisabled GuaranteedStopLossOrderMode = iota
	GuaranteedStopLossOrderModeAllowed
	GuaranteedStopLossOrderModeRequired
)

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var instrumentTypeNames = []string{"CURRENCY", "CFD", "METALS"}
var guaranteedStopLossOrderModeNames = []string{"DISABLED", "ALLOWED", "REQUIRED"}
var dayOfWeekNames = []string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

var ErrNonPositiveMarginRate = errors.New("margin rate must be positive")

// Instrument is one tradable symbol with its trading parameters as reported by
// the broker. Values are only produced by decoding a response.
type Instrument struct {
	Name                        string                      `json:"name"`
	Type                        InstrumentType              `json:"type"`
	DisplayName                 string                      `json:"display_name"`
	PipLocation                 int64                       `json:"pip_location"`
	DisplayPrecision            int64                       `json:"display_precision"`
	TradeUnitsPrecision         int64                       `json:"trade_units_precision"`
	MinimumTradeSize            float64                     `json:"minimum_trade_size"`
	MaximumTrailingStopDistance float64                     `json:"maximum_trailing_stop_distance"`
	MinimumTrailingStopDistance float64                     `json:"minimum_trailing_stop_distance"`
	MaximumPositionSize         float64                     `json:"maximum_position_size"`
	MaximumOrderUnits           float64                     `json:"maximum_order_units"`
	MarginRate                  float64                     `json:"margin_rate"`
	GuaranteedStopLossOrderMode GuaranteedStopLossOrderMode `json:"guaranteed_stop_loss_order_mode"`
	Tags                        []Tag                       `json:"tags"`
	Financing                   Financing                   `json:"financing"`
}

type Tag struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type Financing struct {
	LongRate            float64              `json:"long_rate"`
	ShortRate           float64              `json:"short_rate"`
	FinancingDaysOfWeek []FinancingDayOfWeek `json:"financing_days_of_week"`
}

type FinancingDayOfWeek struct {
	DayOfWeek   DayOfWeek `json:"day_of_week"`
	DaysCharged int64     `json:"days_charged"`
}

// PipSize returns 10^PipLocation, e.g. 0.0001 for a pip location of -4.
func (i Instrument) PipSize() (decimal.Decimal, error) {
	if i.PipLocation <= 0 {
		return decimal.New(1, int(-i.PipLocation))
	}
	coef := int64(1)
	for n := int64(0); n < i.PipLocation; n++ {
		if coef > math.MaxInt64/10 {
			return decimal.Decimal{}, fmt.Errorf("pip location %d of %s is out of range", i.PipLocation, i.Name)
		}
		coef *= 10
	}
	return decimal.New(coef, 0)
}

// Leverage returns the reciprocal of the margin rate, e.g. 50 for 0.02.
func (i Instrument) Leverage() (decimal.Decimal, error) {
	if i.MarginRate <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", i.Name, ErrNonPositiveMarginRate)
	}
	rate, err := decimal.NewFromFloat64(i.MarginRate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unable to convert margin rate of %s: %w", i.Name, err)
	}
	return decimal.One.Quo(rate)
}

func (i Instrument) Fields() []zap.Field {
	return []zap.Field{
		zap.String("name", i.Name),
		zap.Stringer("type", i.Type),
		zap.String("display_name", i.DisplayName),
		zap.Int64("pip_location", i.PipLocation),
		zap.Int64("display_precision", i.DisplayPrecision),
		zap.Int64("trade_units_precision", i.TradeUnitsPrecision),
		zap.Float64("minimum_trade_size", i.MinimumTradeSize),
		zap.Float64("maximum_order_units", i.MaximumOrderUnits),
		zap.Float64("margin_rate", i.MarginRate),
		zap.Stringer("guaranteed_stop_loss_order_mode", i.GuaranteedStopLossOrderMode),
		zap.Int("tags", len(i.Tags)),
		zap.Float64("long_rate", i.Financing.LongRate),
		zap.Float64("short_rate", i.Financing.ShortRate),
	}
}

func ParseInstrumentType(s string) (InstrumentType, error) {
	idx, err := parseVariant(s, instrumentTypeNames)
	return InstrumentType(idx), err
}

func ParseGuaranteedStopLossOrderMode(s string) (GuaranteedStopLossOrderMode, error) {
	idx, err := parseVariant(s, guaranteedStopLossOrderModeNames)
	return GuaranteedStopLossOrderMode(idx), err
}

func ParseDayOfWeek(s string) (DayOfWeek, error) {
	idx, err := parseVariant(s, dayOfWeekNames)
	return DayOfWeek(idx), err
}

func (t InstrumentType) String() string {
	return variantName(int(t), instrumentTypeNames)
}

func (m GuaranteedStopLossOrderMode) String() string {
	return variantName(int(m), guaranteedStopLossOrderModeNames)
}

func (d DayOfWeek) String() string {
	return variantName(int(d), dayOfWeekNames)
}

func (t InstrumentType) MarshalText() ([]byte, error) {
	return marshalVariant(int(t), instrumentTypeNames)
}

func (m GuaranteedStopLossOrderMode) MarshalText() ([]byte, error) {
	return marshalVariant(int(m), guaranteedStopLossOrderModeNames)
}

func (d DayOfWeek) MarshalText() ([]byte, error) {
	return marshalVariant(int(d), dayOfWeekNames)
}

func (t *InstrumentType) UnmarshalText(text []byte) (err error) {
	*t, err = ParseInstrumentType(string(text))
	return
}

func (m *GuaranteedStopLossOrderMode) UnmarshalText(text []byte) (err error) {
	*m, err = ParseGuaranteedStopLossOrderMode(string(text))
	return
}

func (d *DayOfWeek) UnmarshalText(text []byte) (err error) {
	*d, err = ParseDayOfWeek(string(text))
	return
}

// Variants are matched case-sensitively against their wire spelling.
func parseVariant(s string, names []string) (int, error) {
	for idx, name := range names {
		if name == s {
			return idx, nil
		}
	}
	return 0, &UnknownVariantError{Value: s, Expected: names}
}

func variantName(idx int, names []string) string {
	if idx < 0 || idx >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", idx)
	}
	return names[idx]
}

func marshalVariant(idx int, names []string) ([]byte, error) {
	if idx < 0 || idx >= len(names) {
		return nil, fmt.Errorf("unable to marshal variant %d", idx)
	}
	return []byte(names[idx]), nil
}
