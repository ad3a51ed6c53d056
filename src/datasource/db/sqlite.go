// Package db 从SQLite读取原始航司表，并在数据库中完成同行排名
package db

import (
	"AirlineSafety/src/datasource"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	_ "modernc.org/sqlite"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrBadTable 表名不是合法标识符
var ErrBadTable = errors.New("invalid table name")

type options struct {
	create      bool
	busyTimeout int
}

type Option func(*options)

// WithCreate 文件不存在时创建（用于导入数据）
func WithCreate() Option { return func(o *options) { o.create = true } }

// WithBusyTimeout 毫秒
func WithBusyTimeout(ms int) Option { return func(o *options) { o.busyTimeout = ms } }

// Store 持有数据库连接和表名
type Store struct {
	db    *sql.DB
	path  string
	table string
}

// Open 打开SQLite数据库
// 参数:
//   - path: 数据库文件路径，":memory:" 为内存库
//   - table: 原始数据表名
//
// 返回值:
//   - 文件不存在或无法打开时返回 datasource.DataAccessError
func Open(path, table string, opts ...Option) (*Store, error) {
	o := options{busyTimeout: 5000}
	for _, fn := range opts {
		fn(&o)
	}
	if !identRe.MatchString(table) {
		return nil, datasource.NewDataAccessError(path, "open", fmt.Errorf("%w: %q", ErrBadTable, table))
	}

	if path != ":memory:" {
		if o.create {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, datasource.NewDataAccessError(path, "open", err)
			}
		} else if _, err := os.Stat(path); err != nil {
			return nil, datasource.NewDataAccessError(path, "open", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, datasource.NewDataAccessError(path, "open", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout)); err != nil {
		db.Close()
		return nil, datasource.NewDataAccessError(path, "open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, datasource.NewDataAccessError(path, "open", err)
	}
	return &Store{db: db, path: path, table: table}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Source 数据源标识，用于日志和错误信息
func (s *Store) Source() string {
	return fmt.Sprintf("sqlite:%s#%s", s.path, s.table)
}

// Load 按行号顺序读取整张表，所有值以字符串形式放入DataFrame，类型转换交给上层
func (s *Store) Load(ctx context.Context) (dataframe.DataFrame, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(s.Source(), "query", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(s.Source(), "query", err)
	}

	columns := make([][]string, len(names))
	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return dataframe.DataFrame{}, datasource.NewDataAccessError(s.Source(), "scan", err)
		}
		for i, v := range values {
			if v.Valid {
				columns[i] = append(columns[i], v.String)
			} else {
				columns[i] = append(columns[i], "NaN")
			}
		}
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(s.Source(), "scan", err)
	}

	seriesList := make([]series.Series, len(names))
	for i, name := range names {
		seriesList[i] = series.New(columns[i], series.String, name)
	}
	return dataframe.New(seriesList...), nil
}
