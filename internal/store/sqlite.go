package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yourorg/harsift/pkg/types"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			har_path TEXT NOT NULL,
			out_dir TEXT NOT NULL,
			entries_total INTEGER NOT NULL DEFAULT 0,
			included INTEGER NOT NULL DEFAULT 0,
			response_files INTEGER NOT NULL DEFAULT 0,
			request_files INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS summary_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			started_date_time TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			status INTEGER NOT NULL,
			response_mime_type TEXT NOT NULL,
			is_probable_api INTEGER NOT NULL,
			response_is_json INTEGER NOT NULL,
			response_json_file TEXT NOT NULL,
			request_is_json INTEGER NOT NULL,
			request_json_file TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_summary_run ON summary_rows(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) CreateRun(harPath, outDir string) (*types.Run, error) {
	now := time.Now().UTC()
	id, err := s.nextRunID(now)
	if err != nil {
		return nil, err
	}
	run := &types.Run{ID: id, HARPath: harPath, OutDir: outDir, Status: "running", CreatedAt: now, UpdatedAt: now}
	_, err = s.db.Exec(`INSERT INTO runs(id,har_path,out_dir,entries_total,included,response_files,request_files,status,created_at,updated_at) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.HARPath, run.OutDir, run.EntriesTotal, run.Included, run.ResponseFiles, run.RequestFiles, run.Status, run.CreatedAt, run.UpdatedAt)
	return run, err
}

func (s *SQLiteStore) nextRunID(now time.Time) (string, error) {
	prefix := fmt.Sprintf("run_%s_", now.Format("20060102"))
	rows, err := s.db.Query(`SELECT id FROM runs WHERE id LIKE ?`, prefix+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()
	maxN := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		var n int
		_, _ = fmt.Sscanf(id, prefix+"%03d", &n)
		if n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxN+1), nil
}

func (s *SQLiteStore) FinishRun(id string, entriesTotal, included, responseFiles, requestFiles int) error {
	_, err := s.db.Exec(`UPDATE runs SET entries_total=?, included=?, response_files=?, request_files=?, status='done', updated_at=? WHERE id=?`,
		entriesTotal, included, responseFiles, requestFiles, time.Now().UTC(), id)
	return err
}

func (s *SQLiteStore) GetRun(id string) (*types.Run, error) {
	row := s.db.QueryRow(`SELECT id,har_path,out_dir,entries_total,included,response_files,request_files,status,created_at,updated_at FROM runs WHERE id=?`, id)
	var out types.Run
	if err := row.Scan(&out.ID, &out.HARPath, &out.OutDir, &out.EntriesTotal, &out.Included, &out.ResponseFiles, &out.RequestFiles, &out.Status, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) ListRuns() ([]types.Run, error) {
	rows, err := s.db.Query(`SELECT id,har_path,out_dir,entries_total,included,response_files,request_files,status,created_at,updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Run
	for rows.Next() {
		var r types.Run
		if err := rows.Scan(&r.ID, &r.HARPath, &r.OutDir, &r.EntriesTotal, &r.Included, &r.ResponseFiles, &r.RequestFiles, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM summary_rows WHERE run_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveRows(runID string, rows []types.SummaryRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT INTO summary_rows(run_id,idx,started_date_time,method,url,status,response_mime_type,is_probable_api,response_is_json,response_json_file,request_is_json,request_json_file) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(runID, r.Index, r.StartedDateTime, r.Method, r.URL, r.Status, r.ResponseMimeType, r.IsProbableAPI, r.ResponseIsJSON, r.ResponseJSONFile, r.RequestIsJSON, r.RequestJSONFile); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetRows(runID string) ([]types.SummaryRow, error) {
	rows, err := s.db.Query(`SELECT idx,started_date_time,method,url,status,response_mime_type,is_probable_api,response_is_json,response_json_file,request_is_json,request_json_file FROM summary_rows WHERE run_id=? ORDER BY idx ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.SummaryRow, 0)
	for rows.Next() {
		var r types.SummaryRow
		if err := rows.Scan(&r.Index, &r.StartedDateTime, &r.Method, &r.URL, &r.Status, &r.ResponseMimeType, &r.IsProbableAPI, &r.ResponseIsJSON, &r.ResponseJSONFile, &r.RequestIsJSON, &r.RequestJSONFile); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return errors.New("store is nil")
	}
	return s.db.Close()
}
