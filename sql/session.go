package sql

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Session holds session-scoped state: the current database, the temp view
// registry and the session logger. One session may run many queries, but
// only one analysis at a time per Context.
type Session interface {
	// ID returns the unique ID of the connection.
	ID() uint32
	// GetCurrentDatabase gets the current database for this session.
	GetCurrentDatabase() string
	// SetCurrentDatabase sets the current database for this session.
	SetCurrentDatabase(dbName string)
	// GetViewRegistry returns the temp view registry for this session.
	GetViewRegistry() *ViewRegistry
	// GetLogger returns the logger for this session.
	GetLogger() *logrus.Entry
	// SetLogger sets the logger to use for this session.
	SetLogger(*logrus.Entry)
}

// BaseSession is the basic session implementation.
type BaseSession struct {
	id        uint32
	mu        sync.RWMutex
	currentDB string
	views     *ViewRegistry
	logger    *logrus.Entry
}

var _ Session = (*BaseSession)(nil)

// NewBaseSession creates a new empty session.
func NewBaseSession() *BaseSession {
	return &BaseSession{
		views:  NewViewRegistry(),
		logger: logrus.NewEntry(logrus.StandardLogger()),
	}
}

// NewSession creates a new session with the given id and current database.
func NewSession(id uint32, currentDB string) *BaseSession {
	s := NewBaseSession()
	s.id = id
	s.currentDB = currentDB
	return s
}

// ID implements the Session interface.
func (s *BaseSession) ID() uint32 { return s.id }

// GetCurrentDatabase implements the Session interface.
func (s *BaseSession) GetCurrentDatabase() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDB
}

// SetCurrentDatabase implements the Session interface.
func (s *BaseSession) SetCurrentDatabase(dbName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDB = dbName
}

// GetViewRegistry implements the Session interface.
func (s *BaseSession) GetViewRegistry() *ViewRegistry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views
}

// GetLogger implements the Session interface.
func (s *BaseSession) GetLogger() *logrus.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// SetLogger implements the Session interface.
func (s *BaseSession) SetLogger(logger *logrus.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}
