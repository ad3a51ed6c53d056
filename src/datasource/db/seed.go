package db

import (
	"AirlineSafety/src/processor"
	"context"
	"fmt"
)

const createTable = `
CREATE TABLE IF NOT EXISTS %s (
	airline                TEXT    NOT NULL UNIQUE,
	avail_seat_km_per_week INTEGER NOT NULL,
	incidents_85_99        INTEGER NOT NULL,
	fatal_accidents_85_99  INTEGER NOT NULL,
	fatalities_85_99       INTEGER NOT NULL,
	incidents_00_14        INTEGER NOT NULL,
	fatal_accidents_00_14  INTEGER NOT NULL,
	fatalities_00_14       INTEGER NOT NULL
)`

const insertRow = `
INSERT INTO %s (
	airline, avail_seat_km_per_week,
	incidents_85_99, fatal_accidents_85_99, fatalities_85_99,
	incidents_00_14, fatal_accidents_00_14, fatalities_00_14
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Seed 用给定记录替换表中全部数据，整体在一个事务中完成
func (s *Store) Seed(ctx context.Context, records []processor.AirlineRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(createTable, s.table)); err != nil {
		return fmt.Errorf("建表失败: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("清空表失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertRow, s.table))
	if err != nil {
		return fmt.Errorf("预编译插入语句失败: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Airline, r.AvailSeatKmPerWeek,
			r.Incidents8599, r.FatalAccidents8599, r.Fatalities8599,
			r.Incidents0014, r.FatalAccidents0014, r.Fatalities0014,
		); err != nil {
			return fmt.Errorf("插入 %s 失败: %w", r.Airline, err)
		}
	}
	return tx.Commit()
}
