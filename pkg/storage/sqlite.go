// Package storage 将会话和测量样本持久化到sqlite
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/Kevin-Rudy/godistance/pkg/session"
	_ "github.com/mattn/go-sqlite3"
)

// StoredSample 数据库中的一条样本记录，只保存图像大小而不保存图像本身
type StoredSample struct {
	Timestamp  time.Time
	Distance   float64
	FrameBytes int
}

// SqliteRecorder 实现session.Recorder接口
type SqliteRecorder struct {
	db *sql.DB

	insertSample    *sql.Stmt
	insertSampleErr error
	prepareOnce     sync.Once

	closeOnce sync.Once
	closeErr  error
}

// sqliteDSN 把文件路径转成带连接参数的file: URI
// 路径中的?和#必须转义，否则会被当成参数或片段截断
func sqliteDSN(dbPath string) string {
	return "file:" + (&url.URL{Path: dbPath}).EscapedPath() + "?_journal_mode=WAL&_synchronous=NORMAL"
}

// OpenSqliteRecorder 打开（必要时创建）数据库文件并初始化表结构
func OpenSqliteRecorder(dbPath string) (*SqliteRecorder, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r, err := NewSqliteRecorder(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// NewSqliteRecorder 使用已有的数据库连接创建记录器
func NewSqliteRecorder(db *sql.DB) (*SqliteRecorder, error) {
	if _, err := db.Exec(initSchemaSQL); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &SqliteRecorder{db: db}, nil
}

// BeginSession 实现session.Recorder接口
func (r *SqliteRecorder) BeginSession(ctx context.Context, info session.SessionInfo) error {
	if _, err := r.db.ExecContext(ctx, insertSessionSQL, info.ID, info.Endpoint, info.StartedAt.UTC()); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// RecordSample 实现session.Recorder接口
// 样本写入频繁，预编译语句只准备一次
func (r *SqliteRecorder) RecordSample(ctx context.Context, sessionID string, s core.Sample) error {
	r.prepareOnce.Do(func() {
		r.insertSample, r.insertSampleErr = r.db.Prepare(insertSampleSQL)
	})
	if r.insertSampleErr != nil {
		return fmt.Errorf("preparing statement: %w", r.insertSampleErr)
	}

	if _, err := r.insertSample.ExecContext(ctx, sessionID, s.CapturedAt.UTC(), s.Distance, len(s.Frame)); err != nil {
		return fmt.Errorf("inserting sample: %w", err)
	}
	return nil
}

// EndSession 实现session.Recorder接口
func (r *SqliteRecorder) EndSession(ctx context.Context, sessionID string, endedAt time.Time, outcome, reason string) error {
	var reasonData sql.NullString
	if reason != "" {
		reasonData.Valid = true
		reasonData.String = reason
	}

	result, err := r.db.ExecContext(ctx, endSessionSQL, endedAt.UTC(), outcome, reasonData, sessionID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

// Samples 按写入顺序返回一次会话的全部样本
func (r *SqliteRecorder) Samples(ctx context.Context, sessionID string) (samples []StoredSample, err error) {
	rows, err := r.db.QueryContext(ctx, selectSamplesSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying samples: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var s StoredSample
		if err = rows.Scan(&s.Timestamp, &s.Distance, &s.FrameBytes); err != nil {
			err = fmt.Errorf("scanning sample: %w", err)
			return
		}
		samples = append(samples, s)
	}
	err = rows.Err()
	return
}

// Close 关闭预编译语句和数据库连接
func (r *SqliteRecorder) Close() error {
	r.closeOnce.Do(func() {
		if r.insertSample != nil {
			_ = r.insertSample.Close()
		}
		r.closeErr = r.db.Close()
	})
	return r.closeErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
