/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger implements the global.Logger interface for testing
type testLogger struct {
	logs []string
	mu   sync.Mutex
}

func (l *testLogger) addLog(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *testLogger) Debug(msg string)                { l.addLog("DEBUG: " + msg) }
func (l *testLogger) Info(msg string)                 { l.addLog("INFO: " + msg) }
func (l *testLogger) Notice(msg string)               { l.addLog("NOTICE: " + msg) }
func (l *testLogger) Warning(msg string)              { l.addLog("WARNING: " + msg) }
func (l *testLogger) Error(msg string)                { l.addLog("ERROR: " + msg) }
func (l *testLogger) Fatal(msg string)                { l.addLog("FATAL: " + msg) }
func (l *testLogger) Debugf(format string, v ...any)  { l.addLog(fmt.Sprintf("DEBUG: "+format, v...)) }
func (l *testLogger) Infof(format string, v ...any)   { l.addLog(fmt.Sprintf("INFO: "+format, v...)) }
func (l *testLogger) Noticef(format string, v ...any) { l.addLog(fmt.Sprintf("NOTICE: "+format, v...)) }
func (l *testLogger) Warningf(format string, v ...any) {
	l.addLog(fmt.Sprintf("WARNING: "+format, v...))
}
func (l *testLogger) Errorf(format string, v ...any) { l.addLog(fmt.Sprintf("ERROR: "+format, v...)) }
func (l *testLogger) Fatalf(format string, v ...any) { l.addLog(fmt.Sprintf("FATAL: "+format, v...)) }
func (l *testLogger) Close()                         {}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(WithLogger(&testLogger{}), WithDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(WithDataDir(t.TempDir()))
	require.Error(t, err)
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestNew_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	d, err := New(WithLogger(&testLogger{}), WithDataDir(dir))
	require.NoError(t, err)
	defer d.Close()

	_, err = os.Stat(filepath.Join(dir, DatabaseFile))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), d.Path())
}

func TestStoreAndGetToken(t *testing.T) {
	d := setupTestDB(t)

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, d.StoreToken(DefaultProfile, "eyJ0eXAiOiJKV1QiLCJhbGciOi", expires))

	token, err := d.GetToken(DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "eyJ0eXAiOiJKV1QiLCJhbGciOi", token.AccessToken)
	require.NotNil(t, token.ExpiresAt)
	assert.True(t, token.ExpiresAt.Equal(expires))
	assert.False(t, token.IsExpired())

	created := token.CreatedAt
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, d.StoreToken(DefaultProfile, "replacement-token", time.Time{}))

	token, err = d.GetToken(DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "replacement-token", token.AccessToken)
	assert.Nil(t, token.ExpiresAt)
	assert.True(t, token.CreatedAt.Equal(created))
	assert.True(t, token.UpdatedAt.After(created))
}

func TestStoreToken_Validation(t *testing.T) {
	d := setupTestDB(t)

	var vErr *ValidationError
	assert.ErrorAs(t, d.StoreToken("", "token", time.Time{}), &vErr)
	assert.ErrorAs(t, d.StoreToken("bad profile", "token", time.Time{}), &vErr)
	assert.ErrorAs(t, d.StoreToken("work", "", time.Time{}), &vErr)
}

func TestGetToken_NotFound(t *testing.T) {
	d := setupTestDB(t)

	_, err := d.GetToken("missing")
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(d.DeleteToken("missing")))
}

func TestDeleteToken(t *testing.T) {
	d := setupTestDB(t)

	require.NoError(t, d.StoreToken("work", "token-work", time.Time{}))
	require.NoError(t, d.DeleteToken("work"))

	_, err := d.GetToken("work")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestListTokens(t *testing.T) {
	d := setupTestDB(t)

	require.NoError(t, d.StoreToken("work", "abcdefghijklmnop", time.Now().Add(-time.Minute)))
	require.NoError(t, d.StoreToken("home", "short", time.Time{}))

	list, err := d.ListTokens()
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "home", list[0].Profile)
	assert.Equal(t, "****", list[0].Prefix)
	assert.False(t, list[0].Expired)

	assert.Equal(t, "work", list[1].Profile)
	assert.Equal(t, "abcdefgh...", list[1].Prefix)
	assert.True(t, list[1].Expired)
}

func TestTokenSource(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	src := d.Source("")
	assert.Equal(t, DefaultProfile, src.Profile())

	_, err := src.Token(ctx)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, d.StoreToken(DefaultProfile, "live-token", time.Now().Add(time.Hour)))
	token, err := src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "live-token", token)

	require.NoError(t, d.StoreToken(DefaultProfile, "old-token", time.Now().Add(-time.Hour)))
	_, err = src.Token(ctx)
	assert.ErrorIs(t, err, ErrTokenExpired)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Token(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose(t *testing.T) {
	d, err := New(WithLogger(&testLogger{}), WithDataDir(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err = d.GetToken(DefaultProfile)
	assert.ErrorIs(t, err, ErrDatabaseClosed)
	assert.ErrorIs(t, d.StoreToken("x", "y", time.Time{}), ErrDatabaseClosed)
}
