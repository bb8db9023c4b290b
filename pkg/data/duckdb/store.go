package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/peter-kozarec/oanda/pkg/exchange/oanda"
)

var ErrNotConnected = errors.New("store is not connected")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS instruments (
		ordinal INTEGER NOT NULL,
		name VARCHAR NOT NULL,
		instrument_type VARCHAR NOT NULL,
		display_name VARCHAR NOT NULL,
		pip_location BIGINT NOT NULL,
		display_precision BIGINT NOT NULL,
		trade_units_precision BIGINT NOT NULL,
		minimum_trade_size DOUBLE NOT NULL,
		maximum_trailing_stop_distance DOUBLE NOT NULL,
		minimum_trailing_stop_distance DOUBLE NOT NULL,
		maximum_position_size DOUBLE NOT NULL,
		maximum_order_units DOUBLE NOT NULL,
		margin_rate DOUBLE NOT NULL,
		guaranteed_stop_loss_order_mode VARCHAR NOT NULL,
		long_rate DOUBLE NOT NULL,
		short_rate DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instrument_tags (
		instrument_ordinal INTEGER NOT NULL,
		ordinal INTEGER NOT NULL,
		tag_type VARCHAR NOT NULL,
		tag_name VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instrument_financing_days (
		instrument_ordinal INTEGER NOT NULL,
		ordinal INTEGER NOT NULL,
		day_of_week VARCHAR NOT NULL,
		days_charged BIGINT NOT NULL
	)`,
}

type Store struct {
	dataSourceName string
	db             *sql.DB
}

// NewStore creates a store backed by the duckdb database at dataSourceName. An
// empty name keeps the database in memory.
func NewStore(dataSourceName string) *Store {
	return &Store{
		dataSourceName: dataSourceName,
	}
}

func (s *Store) Connect(ctx context.Context) error {
	db, err := sql.Open("duckdb", s.dataSourceName)
	if err != nil {
		return fmt.Errorf("unable to open duckdb: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("unable to create schema: %w", err)
		}
	}

	s.db = db
	return nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// SaveInstruments replaces the stored instrument list, keeping the given order.
func (s *Store) SaveInstruments(ctx context.Context, instruments []oanda.Instrument) error {
	if s.db == nil {
		return ErrNotConnected
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"instrument_financing_days", "instrument_tags", "instruments"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("unable to clear %s: %w", table, err)
		}
	}

	for idx, instrument := range instruments {
		if err := insertInstrument(ctx, tx, idx, instrument); err != nil {
			return fmt.Errorf("unable to insert %s: %w", instrument.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit transaction: %w", err)
	}
	return nil
}

func insertInstrument(ctx context.Context, tx *sql.Tx, ordinal int, instrument oanda.Instrument) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO instruments VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ordinal,
		instrument.Name,
		instrument.Type.String(),
		instrument.DisplayName,
		instrument.PipLocation,
		instrument.DisplayPrecision,
		instrument.TradeUnitsPrecision,
		instrument.MinimumTradeSize,
		instrument.MaximumTrailingStopDistance,
		instrument.MinimumTrailingStopDistance,
		instrument.MaximumPositionSize,
		instrument.MaximumOrderUnits,
		instrument.MarginRate,
		instrument.GuaranteedStopLossOrderMode.String(),
		instrument.Financing.LongRate,
		instrument.Financing.ShortRate)
	if err != nil {
		return err
	}

	for idx, tag := range instrument.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO instrument_tags VALUES (?, ?, ?, ?)`,
			ordinal, idx, tag.Type, tag.Name); err != nil {
			return err
		}
	}

	for idx, day := range instrument.Financing.FinancingDaysOfWeek {
		if _, err := tx.ExecContext(ctx, `INSERT INTO instrument_financing_days VALUES (?, ?, ?, ?)`,
			ordinal, idx, day.DayOfWeek.String(), day.DaysCharged); err != nil {
			return err
		}
	}

	return nil
}

// LoadInstruments returns the stored instrument list in saved order.
func (s *Store) LoadInstruments(ctx context.Context) ([]oanda.Instrument, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}

	instruments, err := s.loadInstruments(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, instruments); err != nil {
		return nil, err
	}
	if err := s.loadFinancingDays(ctx, instruments); err != nil {
		return nil, err
	}
	return instruments, nil
}

func (s *Store) loadInstruments(ctx context.Context) ([]oanda.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, instrument_type, display_name, pip_location, display_precision,
		trade_units_precision, minimum_trade_size, maximum_trailing_stop_distance, minimum_trailing_stop_distance,
		maximum_position_size, maximum_order_units, margin_rate, guaranteed_stop_loss_order_mode, long_rate, short_rate
		FROM instruments ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("error querying instruments: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	instruments := make([]oanda.Instrument, 0)
	for rows.Next() {
		var instrument oanda.Instrument
		var instrumentType, mode string

		err := rows.Scan(
			&instrument.Name,
			&instrumentType,
			&instrument.DisplayName,
			&instrument.PipLocation,
			&instrument.DisplayPrecision,
			&instrument.TradeUnitsPrecision,
			&instrument.MinimumTradeSize,
			&instrument.MaximumTrailingStopDistance,
			&instrument.MinimumTrailingStopDistance,
			&instrument.MaximumPositionSize,
			&instrument.MaximumOrderUnits,
			&instrument.MarginRate,
			&mode,
			&instrument.Financing.LongRate,
			&instrument.Financing.ShortRate)
		if err != nil {
			return nil, fmt.Errorf("error scanning instrument: %w", err)
		}

		if instrument.Type, err = oanda.ParseInstrumentType(instrumentType); err != nil {
			return nil, fmt.Errorf("error parsing type of %s: %w", instrument.Name, err)
		}
		if instrument.GuaranteedStopLossOrderMode, err = oanda.ParseGuaranteedStopLossOrderMode(mode); err != nil {
			return nil, fmt.Errorf("error parsing stop loss mode of %s: %w", instrument.Name, err)
		}

		instrument.Tags = make([]oanda.Tag, 0)
		instrument.Financing.FinancingDaysOfWeek = make([]oanda.FinancingDayOfWeek, 0)
		instruments = append(instruments, instrument)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning instruments: %w", err)
	}
	return instruments, nil
}

func (s *Store) loadTags(ctx context.Context, instruments []oanda.Instrument) error {
	rows, err := s.db.QueryContext(ctx, `SELECT instrument_ordinal, tag_type, tag_name FROM instrument_tags
		ORDER BY instrument_ordinal, ordinal`)
	if err != nil {
		return fmt.Errorf("error querying tags: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var ordinal int
		var tag oanda.Tag
		if err := rows.Scan(&ordinal, &tag.Type, &tag.Name); err != nil {
			return fmt.Errorf("error scanning tag: %w", err)
		}
		if ordinal < 0 || ordinal >= len(instruments) {
			return fmt.Errorf("tag references unknown instrument %d", ordinal)
		}
		instruments[ordinal].Tags = append(instruments[ordinal].Tags, tag)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning tags: %w", err)
	}
	return nil
}

func (s *Store) loadFinancingDays(ctx context.Context, instruments []oanda.Instrument) error {
	rows, err := s.db.QueryContext(ctx, `SELECT instrument_ordinal, day_of_week, days_charged FROM instrument_financing_days
		ORDER BY instrument_ordinal, ordinal`)
	if err != nil {
		return fmt.Errorf("error querying financing days: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var ordinal int
		var dayOfWeek string
		var day oanda.FinancingDayOfWeek
		if err := rows.Scan(&ordinal, &dayOfWeek, &day.DaysCharged); err != nil {
			return fmt.Errorf("error scanning financing day: %w", err)
		}
		if ordinal < 0 || ordinal >= len(instruments) {
			return fmt.Errorf("financing day references unknown instrument %d", ordinal)
		}
		if day.DayOfWeek, err = oanda.ParseDayOfWeek(dayOfWeek); err != nil {
			return fmt.Errorf("error parsing financing day: %w", err)
		}
		financing := &instruments[ordinal].Financing
		financing.FinancingDaysOfWeek = append(financing.FinancingDaysOfWeek, day)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning financing days: %w", err)
	}
	return nil
}
