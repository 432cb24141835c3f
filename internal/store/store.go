// Package store persists provisioning credentials and cloud session state
// in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-logr/logr"
	"github.com/jmoiron/sqlx"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Settings keys. The token is an opaque bearer credential for the cloud API.
const (
	KeyToken   = "cloud.token"
	KeyAccount = "cloud.account"
	KeyBaseURL = "cloud.base_url"
)

type Store struct {
	db  *sqlx.DB
	log logr.Logger
}

func NewStore(log logr.Logger, dbName string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbName)
	if err != nil {
		log.Error(err, "Failed to connect to database", "dbType", "sqlite3", "dbName", dbName)
		return nil, err
	}

	s := &Store{
		db:  db,
		log: log.WithName("Store"),
	}
	if err := s.createTables(); err != nil {
		log.Error(err, "Failed to create tables")
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
    CREATE TABLE IF NOT EXISTS credentials (
        ssid TEXT PRIMARY KEY,
        password TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS settings (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );
`
	_, err := s.db.Exec(schema)
	if err != nil {
		s.log.Error(err, "Failed to execute create table query")
	}
	return err
}

// Close closes the database connection & syncs it to persistent storage.
func (s *Store) Close() {
	s.db.Close()
}

// Lookup returns the last-known-good password for an SSID.
func (s *Store) Lookup(ctx context.Context, ssid string) (string, bool, error) {
	var password string
	err := s.db.GetContext(ctx, &password, `SELECT password FROM credentials WHERE ssid = ?`, ssid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return password, true, nil
}

// Save records a confirmed-working (ssid, password) pair. Entries are only
// written on confirmed success and never expire; the last success wins.
func (s *Store) Save(ctx context.Context, ssid, password string) error {
	_, err := s.db.ExecContext(ctx, `
    INSERT INTO credentials (ssid, password) VALUES (?, ?)
    ON CONFLICT(ssid) DO UPDATE SET password = excluded.password`,
		ssid, password)
	if err != nil {
		s.log.Error(err, "Failed to save credentials", "ssid", ssid)
		return err
	}
	s.log.Info("Saved credentials", "ssid", ssid)
	return nil
}

// Forget drops the cached password for an SSID.
func (s *Store) Forget(ctx context.Context, ssid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE ssid = ?`, ssid)
	return err
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
    INSERT INTO settings (key, value) VALUES (?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		s.log.Error(err, "Failed to store setting", "key", key)
	}
	return err
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

// Token returns the cloud bearer token, empty when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.GetSetting(ctx, KeyToken)
	return token, err
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.PutSetting(ctx, KeyToken, token)
}

// ClearToken forgets the cloud session, forcing re-authentication.
func (s *Store) ClearToken(ctx context.Context) error {
	return s.DeleteSetting(ctx, KeyToken)
}

func (s *Store) Account(ctx context.Context) (string, error) {
	account, _, err := s.GetSetting(ctx, KeyAccount)
	return account, err
}

func (s *Store) SetAccount(ctx context.Context, account string) error {
	return s.PutSetting(ctx, KeyAccount, account)
}

// BaseURL returns a persisted cloud endpoint override, if any.
func (s *Store) BaseURL(ctx context.Context) (string, error) {
	u, _, err := s.GetSetting(ctx, KeyBaseURL)
	return u, err
}

func (s *Store) SetBaseURL(ctx context.Context, u string) error {
	if u == "" {
		return s.DeleteSetting(ctx, KeyBaseURL)
	}
	return s.PutSetting(ctx, KeyBaseURL, u)
}
