package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/eslsoft/flashdeck/internal/entity"
)

var errStorageDown = errors.New("storage unavailable")

type fakeKV struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failSet bool
	sets    int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errStorageDown
	}
	f.sets++
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeKV) setFailing(v bool) {
	f.mu.Lock()
	f.failSet = v
	f.mu.Unlock()
}

type studiedEvent struct {
	category   entity.Category
	difficulty entity.Difficulty
}

type fakeRecorder struct {
	mu       sync.Mutex
	studied  []studiedEvent
	sessions []entity.SessionStats
}

func (f *fakeRecorder) CardStudied(_ context.Context, category entity.Category, difficulty entity.Difficulty) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.studied = append(f.studied, studiedEvent{category: category, difficulty: difficulty})
}

func (f *fakeRecorder) SessionStats(_ context.Context, stats entity.SessionStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, stats)
}

func sampleDeck() []entity.Card {
	return []entity.Card{
		{ID: "X", Category: "pain", BaseDifficulty: entity.DifficultyMedium, Front: "Ibuprofen class?", Back: "NSAID"},
		{ID: "Y", Category: "digestive", BaseDifficulty: entity.DifficultyEasy, Front: "Omeprazole class?", Back: "PPI"},
		{ID: "Z", Category: "pain", BaseDifficulty: entity.DifficultyHard, Front: "Tramadol class?", Back: "Opioid"},
	}
}
