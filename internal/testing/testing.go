// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/services"
)

// MockChannels is a test double for [services.Channels].
//
// Resolve answers from Resolved (keyed by the identifier as given), Search returns Candidates.
// Every call is recorded so tests can assert on what reached the remote service.
type MockChannels struct {
	Resolved   map[string]*models.Candidate
	Candidates []models.Candidate
	ResolveErr error
	SearchErr  error
	JoinErr    error
	JoinErrs   map[int64]error // per-entity join failures, checked before JoinErr

	ResolveCalls []string
	SearchCalls  []string
	SearchLimits []int
	JoinCalls    []models.EntityRef
}

var _ services.Channels = (*MockChannels)(nil)

func (m *MockChannels) Resolve(ctx context.Context, identifier string) (*models.Candidate, error) {
	m.ResolveCalls = append(m.ResolveCalls, identifier)
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	if c, ok := m.Resolved[identifier]; ok {
		return c, nil
	}
	return nil, errors.New("USERNAME_NOT_OCCUPIED")
}

func (m *MockChannels) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	m.SearchCalls = append(m.SearchCalls, query)
	m.SearchLimits = append(m.SearchLimits, limit)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Candidates, nil
}

func (m *MockChannels) Join(ctx context.Context, ref models.EntityRef) error {
	m.JoinCalls = append(m.JoinCalls, ref)
	if err, ok := m.JoinErrs[ref.ID]; ok {
		return err
	}
	return m.JoinErr
}

func (m *MockChannels) Name() string { return "mock" }

// MockConnector is a test double for [services.Connector] that hands Channels to the callback without connecting.
type MockConnector struct {
	Channels   services.Channels
	ConnectErr error
	Calls      int
}

var _ services.Connector = (*MockConnector)(nil)

func (m *MockConnector) Connect(ctx context.Context, fn func(ctx context.Context, ch services.Channels) error) error {
	m.Calls++
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	return fn(ctx, m.Channels)
}

// ChannelRef builds a channel [models.EntityRef] with a derived access hash.
func ChannelRef(id int64) models.EntityRef {
	return models.EntityRef{Kind: models.PeerChannel, ID: id, AccessHash: id * 10}
}

// Channel builds a channel candidate with the given username.
func Channel(username string, id int64) *models.Candidate {
	return &models.Candidate{Username: username, Title: strings.ToUpper(username), Ref: ChannelRef(id)}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
