// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/services"
	"github.com/playlistor/playlistor/internal/shared"
)

// MockDestination is a scriptable test double for [services.Destination].
//
// SearchResults maps track names to destination ids; absent names miss with
// [shared.ErrTrackNotFound]. Every call is recorded for assertions.
type MockDestination struct {
	mu sync.Mutex

	ServiceName   string
	BatchLimit    int
	SearchResults map[string]string
	SearchErr     error
	CreateErr     error
	AddErr        error
	Created       *services.CreatedPlaylist

	SearchCalls []models.SourceTrack
	CreateCalls []CreateCall
	AddCalls    []AddCall
}

// CreateCall records one CreatePlaylist invocation.
type CreateCall struct {
	Title       string
	Description string
	Initial     []string
}

// AddCall records one AddTracks invocation.
type AddCall struct {
	PlaylistID string
	TrackIDs   []string
}

func (m *MockDestination) Name() string {
	if m.ServiceName == "" {
		return "mock"
	}
	return m.ServiceName
}

func (m *MockDestination) MaxBatchItems() int {
	if m.BatchLimit <= 0 {
		return 100
	}
	return m.BatchLimit
}

func (m *MockDestination) SearchTrack(ctx context.Context, track models.SourceTrack) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SearchCalls = append(m.SearchCalls, track)

	if m.SearchErr != nil {
		return "", m.SearchErr
	}
	if id, ok := m.SearchResults[track.Name]; ok {
		return id, nil
	}
	return "", shared.ErrTrackNotFound
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, title, description string, initial []string) (*services.CreatedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, CreateCall{Title: title, Description: description, Initial: initial})

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Created != nil {
		return m.Created, nil
	}
	return &services.CreatedPlaylist{ID: "mock-playlist", URL: "https://mock.example/playlist/mock-playlist"}, nil
}

func (m *MockDestination) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddCalls = append(m.AddCalls, AddCall{PlaylistID: playlistID, TrackIDs: trackIDs})
	return m.AddErr
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

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper replays responses in order, one per request.
type SequenceRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	calls     int
}

func NewSequenceRoundTripper(responses ...*http.Response) *SequenceRoundTripper {
	return &SequenceRoundTripper{responses: responses}
}

func (s *SequenceRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.responses) {
		return nil, errors.New("no more scripted responses")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

// Calls returns how many requests were served.
func (s *SequenceRoundTripper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
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
