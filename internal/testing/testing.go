// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/shared"
)

// StubPlantCatalog is a test double for [services.PlantCatalog]
type StubPlantCatalog struct {
	mu      sync.Mutex
	Plants  []models.Plant
	Err     error
	Queries []string
	// Gate, when set, blocks Search until it receives a value or is closed.
	Gate chan struct{}
}

func (s *StubPlantCatalog) Search(ctx context.Context, query string) ([]models.Plant, error) {
	s.mu.Lock()
	s.Queries = append(s.Queries, query)
	gate := s.Gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Plant(nil), s.Plants...), nil
}

func (s *StubPlantCatalog) Name() string { return "stub" }

// Calls returns how many searches were issued.
func (s *StubPlantCatalog) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Queries)
}

// MakePlants builds n catalog plants named "<prefix> 1".."<prefix> n".
func MakePlants(prefix string, n int) []models.Plant {
	plants := make([]models.Plant, n)
	for i := range plants {
		plants[i] = models.Plant{
			ID:             i + 1,
			CommonName:     fmt.Sprintf("%s %d", prefix, i+1),
			ScientificName: models.Names{fmt.Sprintf("Species %d", i+1)},
			DefaultImage:   &models.PlantImage{MediumURL: fmt.Sprintf("https://img.example/%d.jpg", i+1)},
		}
	}
	return plants
}

// StubTrackCatalog is a test double for [services.TrackCatalog]
type StubTrackCatalog struct {
	mu    sync.Mutex
	Items []models.Track
	Err   error
	calls int
	Gate  chan struct{}
}

func (s *StubTrackCatalog) Tracks(ctx context.Context) ([]models.Track, error) {
	s.mu.Lock()
	s.calls++
	gate := s.Gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Track(nil), s.Items...), nil
}

func (s *StubTrackCatalog) Name() string { return "stub" }

// Calls returns how many fetches were issued.
func (s *StubTrackCatalog) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// MakeTracks builds n tracks with ids "t0".."tN-1".
func MakeTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := fmt.Sprintf("t%d", i)
		tracks[i] = models.Track{ID: id, Title: "Track " + id, Artist: "Artist", AudioURL: "https://audio.example/" + id + ".mp3"}
	}
	return tracks
}

// RecordingNotifier captures every notification shown through it.
type RecordingNotifier struct {
	mu    sync.Mutex
	Shown []notify.Notification
}

func (r *RecordingNotifier) Show(message string, kind notify.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Shown = append(r.Shown, notify.Notification{Sequence: uint64(len(r.Shown) + 1), Message: message, Kind: kind})
}

// Count returns how many notifications of kind were shown.
func (r *RecordingNotifier) Count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.Shown {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent notification.
func (r *RecordingNotifier) Last() (notify.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Shown) == 0 {
		return notify.Notification{}, false
	}
	return r.Shown[len(r.Shown)-1], true
}

// Len returns the number of notifications shown.
func (r *RecordingNotifier) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Shown)
}

// MemoryFavoriteStore keeps profile favorites in memory.
//
// It mirrors the document store: AddFavorite creates missing profiles and skips
// exact duplicates, SetFavorites requires an existing profile.
type MemoryFavoriteStore struct {
	mu       sync.Mutex
	profiles map[string][]models.FavoritePlant
	ReadErr  error
	AddErr   error
	SetErr   error
	Writes   int
}

func NewMemoryFavoriteStore() *MemoryFavoriteStore {
	return &MemoryFavoriteStore{profiles: make(map[string][]models.FavoritePlant)}
}

// Seed creates a profile with favs.
func (m *MemoryFavoriteStore) Seed(uid string, favs ...models.FavoritePlant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[uid] = append([]models.FavoritePlant{}, favs...)
}

// Exists reports whether a profile for uid exists.
func (m *MemoryFavoriteStore) Exists(uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.profiles[uid]
	return ok
}

func (m *MemoryFavoriteStore) Favorites(ctx context.Context, uid string) ([]models.FavoritePlant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]models.FavoritePlant{}, m.profiles[uid]...), nil
}

func (m *MemoryFavoriteStore) AddFavorite(ctx context.Context, uid string, fav models.FavoritePlant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Writes++
	for _, existing := range m.profiles[uid] {
		if reflect.DeepEqual(existing, fav) {
			return nil
		}
	}
	m.profiles[uid] = append(m.profiles[uid], fav)
	return nil
}

func (m *MemoryFavoriteStore) SetFavorites(ctx context.Context, uid string, favs []models.FavoritePlant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if _, ok := m.profiles[uid]; !ok {
		return shared.ErrDocumentNotFound
	}
	m.Writes++
	m.profiles[uid] = append([]models.FavoritePlant{}, favs...)
	return nil
}

// RecordingOutput records the commands a player sends to its audio output.
type RecordingOutput struct {
	mu       sync.Mutex
	Commands []string
	PlayErr  error
}

func (o *RecordingOutput) Play(ctx context.Context, t models.Track) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Commands = append(o.Commands, "play:"+t.ID)
	return o.PlayErr
}

func (o *RecordingOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Commands = append(o.Commands, "pause")
}

// Last returns the most recent command, or "".
func (o *RecordingOutput) Last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.Commands) == 0 {
		return ""
	}
	return o.Commands[len(o.Commands)-1]
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

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
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
