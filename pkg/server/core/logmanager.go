package core

import (
	"sync"

	"github.com/toolstream/mcp-core/pkg/models"
)

// logManager gates server log records against the peer-set level and hands
// them to a sink (the server wires the sink to its notification channel).
type logManager struct {
	mu    sync.RWMutex
	level models.LogLevel
	sink  func(level models.LogLevel, data interface{}, logger string)
}

func newLogManager() *logManager {
	return &logManager{
		level: models.LogLevelInfo,
	}
}

func (m *logManager) SetLevel(level models.LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

func (m *logManager) Level() models.LogLevel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

func (m *logManager) SetSink(sink func(level models.LogLevel, data interface{}, logger string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

// Log forwards the record to the sink if the level passes the threshold.
func (m *logManager) Log(level models.LogLevel, data interface{}, logger string) {
	m.mu.RLock()
	threshold := m.level
	sink := m.sink
	m.mu.RUnlock()

	if !threshold.Enables(level) {
		return
	}
	if sink != nil {
		sink(level, data, logger)
	}
}
