package helper

import (
	"sync"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

// SpyLogRecord represents a captured log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
}

// LoggerSpy is a kvdriver.Logger implementation that captures log calls
// for inspection in tests.
type LoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

// NewLoggerSpy creates a new LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{records: make([]SpyLogRecord, 0)}
}

// Debug implements the Logger interface for testing.
func (s *LoggerSpy) Debug(msg string, args ...any) {
	s.record("DEBUG", msg, args)
}

// Info implements the Logger interface for testing.
func (s *LoggerSpy) Info(msg string, args ...any) {
	s.record("INFO", msg, args)
}

// Warn implements the Logger interface for testing.
func (s *LoggerSpy) Warn(msg string, args ...any) {
	s.record("WARN", msg, args)
}

// Error implements the Logger interface for testing.
func (s *LoggerSpy) Error(msg string, args ...any) {
	s.record("ERROR", msg, args)
}

func (s *LoggerSpy) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	argsCopy := make([]any, len(args))
	copy(argsCopy, args)

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: argsCopy})
}

// GetRecordCount returns the number of captured log records.
func (s *LoggerSpy) GetRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// GetRecords returns a copy of all captured log records.
func (s *LoggerSpy) GetRecords() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Reset clears all captured log records.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// HasLog checks if there's a log record with the specified level whose
// message contains the given prefix.
func (s *LoggerSpy) HasLog(level, messagePrefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level == level && len(record.Message) >= len(messagePrefix) &&
			record.Message[:len(messagePrefix)] == messagePrefix {
			return true
		}
	}

	return false
}

// HasLogWithAttr checks if a record with the given level and message prefix
// carries the given attribute key in its key-value args.
func (s *LoggerSpy) HasLogWithAttr(level, messagePrefix, attrKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level != level {
			continue
		}

		if len(record.Message) < len(messagePrefix) || record.Message[:len(messagePrefix)] != messagePrefix {
			continue
		}

		for i := 0; i+1 < len(record.Args); i += 2 {
			if key, ok := record.Args[i].(string); ok && key == attrKey {
				return true
			}
		}
	}

	return false
}

// Ensure LoggerSpy implements kvdriver.Logger.
var _ kvdriver.Logger = (*LoggerSpy)(nil)
