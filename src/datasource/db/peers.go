package db

import (
	"AirlineSafety/src/datasource"
	"AirlineSafety/src/processor"
	"context"
	"database/sql"
	"fmt"
)

// 自连接后按航司分区编号，差距无定义(NULL)的排在最后，差距相同按行号
const peersQuery = `
WITH pairs AS (
	SELECT a.airline AS airline,
	       b.airline AS comp_airline,
	       b.rowid   AS comp_order,
	       ABS(CAST(a.avail_seat_km_per_week AS REAL) * %[2]d - CAST(b.avail_seat_km_per_week AS REAL) * %[2]d)
	         / NULLIF(CAST(b.avail_seat_km_per_week AS REAL) * %[2]d, 0) AS comp_distance
	FROM %[1]s a
	JOIN %[1]s b ON a.airline <> b.airline
	WHERE a.airline = ?
),
ranked AS (
	SELECT comp_airline,
	       comp_distance,
	       ROW_NUMBER() OVER (
	         PARTITION BY airline
	         ORDER BY comp_distance IS NULL, comp_distance, comp_order
	       ) AS comp_rank
	FROM pairs
)
SELECT comp_airline, comp_distance, comp_rank
FROM ranked
WHERE comp_rank <= ?
ORDER BY comp_rank`

// Peers 在数据库中计算容量最接近的三家航司
// 入参和返回的航司名都是规范化后的键，与加载后的记录一致
func (s *Store) Peers(ctx context.Context, airline string) ([]processor.Peer, error) {
	stored, err := s.storedName(ctx, processor.AirlineKey(airline))
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, &processor.NotFoundError{Airline: airline, Op: "peers"}
	}

	query := fmt.Sprintf(peersQuery, s.table, processor.CapacityFactor)
	rows, err := s.db.QueryContext(ctx, query, stored, processor.PeerCount)
	if err != nil {
		return nil, datasource.NewDataAccessError(s.Source(), "peers", err)
	}
	defer rows.Close()

	var peers []processor.Peer
	for rows.Next() {
		var (
			p        processor.Peer
			distance sql.NullFloat64
		)
		if err := rows.Scan(&p.Airline, &distance, &p.Rank); err != nil {
			return nil, datasource.NewDataAccessError(s.Source(), "peers", err)
		}
		p.Airline = processor.AirlineKey(p.Airline)
		if distance.Valid {
			p.Distance = processor.NewRate(distance.Float64)
		}
		peers = append(peers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, datasource.NewDataAccessError(s.Source(), "peers", err)
	}
	if len(peers) == 0 {
		return nil, &processor.NotFoundError{Airline: airline, Op: "peers"}
	}
	return peers, nil
}

// storedName 库中航司名可能带空白或未规范化，按键找回原始值；找不到时返回空串
func (s *Store) storedName(ctx context.Context, key string) (string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT airline FROM %s ORDER BY rowid", s.table))
	if err != nil {
		return "", datasource.NewDataAccessError(s.Source(), "peers", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", datasource.NewDataAccessError(s.Source(), "peers", err)
		}
		if processor.AirlineKey(name) == key {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", datasource.NewDataAccessError(s.Source(), "peers", err)
	}
	return "", nil
}
