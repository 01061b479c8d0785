/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"fmt"
	"strings"
	"sync"
)

type testLogger struct {
	mu   sync.Mutex
	logs []string
}

func (l *testLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, level+": "+msg)
}

func (l *testLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.logs {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func (l *testLogger) Debug(msg string)                 { l.add("DEBUG", msg) }
func (l *testLogger) Debugf(format string, v ...any)   { l.add("DEBUG", fmt.Sprintf(format, v...)) }
func (l *testLogger) Info(msg string)                  { l.add("INFO", msg) }
func (l *testLogger) Infof(format string, v ...any)    { l.add("INFO", fmt.Sprintf(format, v...)) }
func (l *testLogger) Notice(msg string)                { l.add("NOTICE", msg) }
func (l *testLogger) Noticef(format string, v ...any)  { l.add("NOTICE", fmt.Sprintf(format, v...)) }
func (l *testLogger) Warning(msg string)               { l.add("WARNING", msg) }
func (l *testLogger) Warningf(format string, v ...any) { l.add("WARNING", fmt.Sprintf(format, v...)) }
func (l *testLogger) Error(msg string)                 { l.add("ERROR", msg) }
func (l *testLogger) Errorf(format string, v ...any)   { l.add("ERROR", fmt.Sprintf(format, v...)) }
func (l *testLogger) Fatal(msg string)                 { l.add("FATAL", msg) }
func (l *testLogger) Fatalf(format string, v ...any)   { l.add("FATAL", fmt.Sprintf(format, v...)) }
func (l *testLogger) Close()                           {}

// minimalConfig is a single-service document with one endpoint per test need
const minimalConfig = `{
  "services": {
    "graph": {
      "name": "Graph",
      "baseURL": "https://graph.example.com/v1.0",
      "auth": {"type": "none"},
      "endpoints": [
        {
          "id": "list-events",
          "name": "List Events",
          "description": "List events",
          "method": "GET",
          "path": "/me/events",
          "parameters": [
            {"name": "calendarId", "type": "string", "location": "identifier"}
          ],
          "response": {"type": "json"}
        }
      ]
    }
  }
}`
