package oanda

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/oanda/pkg/utility"
)

const eurUsdJson = `{
	"name": "EUR_USD",
	"type": "CURRENCY",
	"displayName": "EUR/USD",
	"pipLocation": -4,
	"displayPrecision": 5,
	"tradeUnitsPrecision": 0,
	"minimumTradeSize": "1",
	"maximumTrailingStopDistance": "1.00000",
	"minimumTrailingStopDistance": "0.00050",
	"maximumPositionSize": "0",
	"maximumOrderUnits": "100000000",
	"marginRate": "0.02",
	"guaranteedStopLossOrderMode": "DISABLED",
	"tags": [
		{"type": "ASSET_CLASS", "name": "CURRENCY"},
		{"type": "BRAIN_ASSET_CLASS", "name": "FX"}
	],
	"financing": {
		"longRate": "-0.0318",
		"shortRate": "0.0115",
		"financingDaysOfWeek": [
			{"dayOfWeek": "MONDAY", "daysCharged": 1},
			{"dayOfWeek": "TUESDAY", "daysCharged": 1},
			{"dayOfWeek": "WEDNESDAY", "daysCharged": 1},
			{"dayOfWeek": "THURSDAY", "daysCharged": 1},
			{"dayOfWeek": "FRIDAY", "daysCharged": 1},
			{"dayOfWeek": "SATURDAY", "daysCharged": 0},
			{"dayOfWeek": "SUNDAY", "daysCharged": 0}
		]
	}
}`

func eurUsd() Instrument {
	return Instrument{
		Name:                        "EUR_USD",
		Type:                        InstrumentTypeCurrency,
		DisplayName:                 "EUR/USD",
		PipLocation:                 -4,
		DisplayPrecision:            5,
		TradeUnitsPrecision:         0,
		MinimumTradeSize:            1,
		MaximumTrailingStopDistance: 1,
		MinimumTrailingStopDistance: 0.0005,
		MaximumPositionSize:         0,
		MaximumOrderUnits:           100000000,
		MarginRate:                  0.02,
		GuaranteedStopLossOrderMode: GuaranteedStopLossOrderModeDisabled,
		Tags: []Tag{
			{Type: "ASSET_CLASS", Name: "CURRENCY"},
			{Type: "BRAIN_ASSET_CLASS", Name: "FX"},
		},
		Financing: Financing{
			LongRate:  -0.0318,
			ShortRate: 0.0115,
			FinancingDaysOfWeek: []FinancingDayOfWeek{
				{DayOfWeek: Monday, DaysCharged: 1},
				{DayOfWeek: Tuesday, DaysCharged: 1},
				{DayOfWeek: Wednesday, DaysCharged: 1},
				{DayOfWeek: Thursday, DaysCharged: 1},
				{DayOfWeek: Friday, DaysCharged: 1},
				{DayOfWeek: Saturday, DaysCharged: 0},
				{DayOfWeek: Sunday, DaysCharged: 0},
			},
		},
	}
}

func envelope(instruments ...string) string {
	return `{"instruments": [` + strings.Join(instruments, ",") + `], "lastTransactionID": "164"}`
}

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/instruments.json")
	require.NoError(t, err)
	return data
}

func TestOandaDecode_fixture(t *testing.T) {
	instruments, err := DecodeInstruments(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, instruments, 4)

	names := make([]string, 0, len(instruments))
	for _, instrument := range instruments {
		names = append(names, instrument.Name)
	}
	assert.Equal(t, []string{"EUR_USD", "TRY_JPY", "XAU_USD", "SPX500_USD"}, names)

	assert.Equal(t, eurUsd(), instruments[0])

	tryJpy := instruments[1]
	assert.Equal(t, int64(-2), tryJpy.PipLocation)
	assert.Equal(t, 100.0, tryJpy.MaximumTrailingStopDistance)
	assert.Equal(t, 0.25, tryJpy.MarginRate)
	assert.Equal(t, 0.293, tryJpy.Financing.LongRate)
	assert.Equal(t, -0.424, tryJpy.Financing.ShortRate)

	gold := instruments[2]
	assert.Equal(t, InstrumentTypeMetal, gold.Type)
	assert.Equal(t, GuaranteedStopLossOrderModeRequired, gold.GuaranteedStopLossOrderMode)
	assert.Equal(t, 1000.0, gold.MaximumTrailingStopDistance)
	assert.Equal(t, 0.05, gold.MinimumTrailingStopDistance)
	assert.Equal(t, 50000.0, gold.MaximumOrderUnits)
	assert.Equal(t, -0.0561, gold.Financing.LongRate)
	assert.Equal(t, []FinancingDayOfWeek{
		{DayOfWeek: Monday, DaysCharged: 1},
		{DayOfWeek: Tuesday, DaysCharged: 1},
		{DayOfWeek: Wednesday, DaysCharged: 3},
		{DayOfWeek: Wednesday, DaysCharged: 1},
		{DayOfWeek: Friday, DaysCharged: 1},
	}, gold.Financing.FinancingDaysOfWeek)

	spx := instruments[3]
	assert.Equal(t, InstrumentTypeCfd, spx.Type)
	assert.Equal(t, GuaranteedStopLossOrderModeAllowed, spx.GuaranteedStopLossOrderMode)
	assert.Equal(t, int64(1), spx.TradeUnitsPrecision)
	assert.Equal(t, 0.1, spx.MinimumTradeSize)
	assert.Equal(t, 10000.0, spx.MaximumTrailingStopDistance)
	assert.Equal(t, 5.0, spx.MinimumTrailingStopDistance)
	assert.Equal(t, 2500.0, spx.MaximumOrderUnits)
	assert.Equal(t, -0.0589, spx.Financing.LongRate)
	assert.Equal(t, 0.0152, spx.Financing.ShortRate)
	assert.NotNil(t, spx.Tags)
	assert.Empty(t, spx.Tags)
}

func TestOandaDecode_shapes(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []Instrument
	}{
		{
			name:     "Envelope",
			data:     envelope(eurUsdJson),
			expected: []Instrument{eurUsd()},
		},
		{
			name:     "Bare array",
			data:     "[" + eurUsdJson + "]",
			expected: []Instrument{eurUsd()},
		},
		{
			name:     "Bare array with leading whitespace",
			data:     "\n\t [" + eurUsdJson + "," + eurUsdJson + "]",
			expected: []Instrument{eurUsd(), eurUsd()},
		},
		{
			name:     "Empty envelope array",
			data:     `{"instruments": []}`,
			expected: []Instrument{},
		},
		{
			name:     "Empty bare array",
			data:     `[]`,
			expected: []Instrument{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instruments, err := DecodeInstruments([]byte(tt.data))
			require.NoError(t, err)
			require.NotNil(t, instruments)
			assert.Equal(t, tt.expected, instruments)
		})
	}
}

func TestOandaDecode_numberRepresentations(t *testing.T) {
	data := strings.NewReplacer(
		`"marginRate": "0.02"`, `"marginRate": 0.02`,
		`"minimumTradeSize": "1"`, `"minimumTradeSize": 1`,
		`"longRate": "-0.0318"`, `"longRate": -0.0318`,
	).Replace(eurUsdJson)

	instruments, err := DecodeInstruments([]byte(envelope(eurUsdJson, data)))
	require.NoError(t, err)
	require.Len(t, instruments, 2)
	assert.Equal(t, instruments[0], instruments[1])
}

func TestOandaDecode_errors(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		expectedErr   error
		expectedField string
	}{
		{
			name:        "Not json",
			data:        "bad json response",
			expectedErr: ErrDecode,
		},
		{
			name:        "Json string",
			data:        `"bad json response"`,
			expectedErr: ErrDecode,
		},
		{
			name:          "Missing instruments",
			data:          `{"lastTransactionID": "164"}`,
			expectedErr:   ErrMissingField,
			expectedField: "instruments",
		},
		{
			name:          "Missing name",
			data:          envelope(strings.Replace(eurUsdJson, `"name": "EUR_USD",`, "", 1)),
			expectedErr:   ErrMissingField,
			expectedField: "instruments[0].name",
		},
		{
			name:          "Missing financing",
			data:          envelope(eurUsdJson[:strings.Index(eurUsdJson, `,`+"\n\t"+`"financing"`)] + "}"),
			expectedErr:   ErrMissingField,
			expectedField: "instruments[0].financing",
		},
		{
			name:          "Missing tag name",
			data:          envelope(strings.Replace(eurUsdJson, `{"type": "BRAIN_ASSET_CLASS", "name": "FX"}`, `{"type": "BRAIN_ASSET_CLASS"}`, 1)),
			expectedErr:   ErrMissingField,
			expectedField: "instruments[0].tags[1].name",
		},
		{
			name:          "Missing days charged",
			data:          envelope(strings.Replace(eurUsdJson, `{"dayOfWeek": "FRIDAY", "daysCharged": 1}`, `{"dayOfWeek": "FRIDAY"}`, 1)),
			expectedErr:   ErrMissingField,
			expectedField: "instruments[0].financing.financingDaysOfWeek[4].daysCharged",
		},
		{
			name:          "Non numeric margin rate",
			data:          envelope(strings.Replace(eurUsdJson, `"marginRate": "0.02"`, `"marginRate": "twenty three"`, 1)),
			expectedErr:   utility.ErrNotANumber,
			expectedField: "instruments[0].marginRate",
		},
		{
			name:          "Boolean long rate",
			data:          envelope(strings.Replace(eurUsdJson, `"longRate": "-0.0318"`, `"longRate": true`, 1)),
			expectedErr:   utility.ErrWrongType,
			expectedField: "instruments[0].financing.longRate",
		},
		{
			name:          "Object minimum trade size",
			data:          envelope(strings.Replace(eurUsdJson, `"minimumTradeSize": "1"`, `"minimumTradeSize": {"value": 1}`, 1)),
			expectedErr:   utility.ErrWrongType,
			expectedField: "instruments[0].minimumTradeSize",
		},
		{
			name:        "Null margin rate",
			data:        envelope(strings.Replace(eurUsdJson, `"marginRate": "0.02"`, `"marginRate": null`, 1)),
			expectedErr: ErrDecode,
		},
		{
			name:        "String pip location",
			data:        envelope(strings.Replace(eurUsdJson, `"pipLocation": -4`, `"pipLocation": "-4"`, 1)),
			expectedErr: ErrDecode,
		},
		{
			name:          "Second element fails whole decode",
			data:          envelope(eurUsdJson, strings.Replace(eurUsdJson, `"displayName": "EUR/USD",`, "", 1)),
			expectedErr:   ErrMissingField,
			expectedField: "instruments[1].displayName",
		},
		{
			name:          "Bare array element",
			data:          "[" + strings.Replace(eurUsdJson, `"displayName": "EUR/USD",`, "", 1) + "]",
			expectedErr:   ErrMissingField,
			expectedField: "[0].displayName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instruments, err := DecodeInstruments([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, instruments)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.ErrorIs(t, err, ErrDecode)
			assert.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedField != "" {
				var fieldErr *FieldError
				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, tt.expectedField, fieldErr.Field)
			}
		})
	}
}

func TestOandaDecode_unknownVariant(t *testing.T) {
	tests := []struct {
		name          string
		from, to      string
		expectedField string
		expectedValue string
	}{
		{
			name:          "Lower case instrument type",
			from:          `"type": "CURRENCY"`,
			to:            `"type": "currency"`,
			expectedField: "instruments[0].type",
			expectedValue: "currency",
		},
		{
			name:          "Unknown instrument type",
			from:          `"type": "CURRENCY"`,
			to:            `"type": "BOND"`,
			expectedField: "instruments[0].type",
			expectedValue: "BOND",
		},
		{
			name:          "Unknown stop loss mode",
			from:          `"guaranteedStopLossOrderMode": "DISABLED"`,
			to:            `"guaranteedStopLossOrderMode": "OPTIONAL"`,
			expectedField: "instruments[0].guaranteedStopLossOrderMode",
			expectedValue: "OPTIONAL",
		},
		{
			name:          "Abbreviated day of week",
			from:          `{"dayOfWeek": "SUNDAY", "daysCharged": 0}`,
			to:            `{"dayOfWeek": "SUN", "daysCharged": 0}`,
			expectedField: "instruments[0].financing.financingDaysOfWeek[6].dayOfWeek",
			expectedValue: "SUN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := envelope(strings.Replace(eurUsdJson, tt.from, tt.to, 1))

			_, err := DecodeInstruments([]byte(data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)

			var unknown *UnknownVariantError
			require.True(t, errors.As(err, &unknown))
			assert.Equal(t, tt.expectedField, unknown.Field)
			assert.Equal(t, tt.expectedValue, unknown.Value)
			assert.Contains(t, err.Error(), tt.expectedValue)
		})
	}
}

func BenchmarkOandaDecode_DecodeInstruments(b *testing.B) {
	data, err := os.ReadFile("testdata/instruments.json")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeInstruments(data)
	}
}
