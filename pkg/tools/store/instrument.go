package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peter-kozarec/oanda/pkg/exchange/oanda"
)

var (
	ErrInstrumentNotPresent = errors.New("instrument is not present in instrument table")
)

// InstrumentStore is a read only lookup over one decoded instrument list.
type InstrumentStore struct {
	instruments []oanda.Instrument
}

func CreateInstrumentStore(instruments ...oanda.Instrument) InstrumentStore {
	return InstrumentStore{
		instruments: instruments,
	}
}

func (s InstrumentStore) Len() int {
	return len(s.instruments)
}

func (s InstrumentStore) Contains(name string) bool {
	if _, err := s.Get(name); err != nil {
		return false
	}
	return true
}

// Get matches the instrument name case-insensitively. "EURUSD" also matches
// "EUR_USD"; the first match in list order wins.
func (s InstrumentStore) Get(name string) (oanda.Instrument, error) {
	for _, instrument := range s.instruments {
		if strings.EqualFold(instrument.Name, name) {
			return instrument, nil
		}
	}
	for _, instrument := range s.instruments {
		if strings.EqualFold(strings.ReplaceAll(instrument.Name, "_", ""), name) {
			return instrument, nil
		}
	}
	return oanda.Instrument{}, fmt.Errorf("unable to get instrument with name %s: %w", name, ErrInstrumentNotPresent)
}

func (s InstrumentStore) MustGet(name string) oanda.Instrument {
	instrument, err := s.Get(name)
	if err != nil {
		panic(err.Error())
	}
	return instrument
}

func (s InstrumentStore) ByType(instrumentType oanda.InstrumentType) []oanda.Instrument {
	var out []oanda.Instrument
	for _, instrument := range s.instruments {
		if instrument.Type == instrumentType {
			out = append(out, instrument)
		}
	}
	return out
}
