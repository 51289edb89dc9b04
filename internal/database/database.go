package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/moyu-x/image-tidy/internal"
)

// DB 改名日志数据库
type DB struct {
	conn *sql.DB
}

// New 打开（必要时创建）改名日志数据库
func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// sqlite 单连接即可，:memory: 时多连接会各自拥有独立的库
	conn.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS rename_journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		dir TEXT NOT NULL,
		original TEXT NOT NULL,
		final TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		format TEXT,
		error TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_run ON rename_journal(run_id);
	`

	if _, err = conn.Exec(createTableSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建表失败: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record 写入一条改名记录
func (db *DB) Record(rec *internal.JournalRecord) error {
	res, err := db.conn.Exec(
		`INSERT INTO rename_journal (run_id, dir, original, final, status, reason, format, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Dir, rec.Original, rec.Final, string(rec.Status),
		rec.Reason, rec.Format, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("插入改名记录失败: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// List 按时间倒序返回最近的记录，limit <= 0 时返回全部
func (db *DB) List(limit int) ([]internal.JournalRecord, error) {
	query := `SELECT id, run_id, dir, original, final, status, reason, format, error, created_at
		FROM rename_journal ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return db.query(query, args...)
}

// ListRun 返回某次运行的全部记录，按写入顺序
func (db *DB) ListRun(runID string) ([]internal.JournalRecord, error) {
	return db.query(
		`SELECT id, run_id, dir, original, final, status, reason, format, error, created_at
		FROM rename_journal WHERE run_id = ? ORDER BY id`,
		runID,
	)
}

// CountByStatus 统计某种状态的记录数
func (db *DB) CountByStatus(status internal.OutcomeStatus) (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM rename_journal WHERE status = ?", string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("查询记录数量失败: %w", err)
	}
	return count, nil
}

func (db *DB) query(query string, args ...any) ([]internal.JournalRecord, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询数据库失败: %w", err)
	}
	defer rows.Close()

	var records []internal.JournalRecord
	for rows.Next() {
		var (
			rec                   internal.JournalRecord
			status                string
			reason, format, errNS sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Dir, &rec.Original, &rec.Final,
			&status, &reason, &format, &errNS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取行数据失败: %w", err)
		}
		rec.Status = internal.OutcomeStatus(status)
		rec.Reason = reason.String
		rec.Format = format.String
		rec.Error = errNS.String
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历结果集失败: %w", err)
	}
	return records, nil
}
