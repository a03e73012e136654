package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/constants"
	"github.com/kapu/warmtalk-go/internal/domain"
)

type memStore struct {
	data   map[string][]byte
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string, dest any) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func result(text string) *domain.TranslationResult {
	return &domain.TranslationResult{
		OriginalText:         "快點去睡覺！",
		TranslatedText:       text,
		Principles:           []string{"先連結"},
		PsychologicalContext: "c",
		SuggestedAction:      "a",
		FrameworkReference:   "正向教養",
	}
}

func TestRecordKeepsNewestFirst(t *testing.T) {
	svc := NewService(newMemStore(), nil, 0, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, result("第一句"), domain.ScenarioGeneral))
	require.NoError(t, svc.Record(ctx, result("第二句"), domain.ScenarioTantrum))

	entries := svc.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, "第二句", entries[0].Result.TranslatedText)
	assert.Equal(t, domain.ScenarioTantrum, entries[0].Scenario)
	assert.Equal(t, "第一句", entries[1].Result.TranslatedText)
}

func TestRecordEvictsOldestPastLimit(t *testing.T) {
	svc := NewService(newMemStore(), nil, 0, zap.NewNop())
	ctx := context.Background()

	limit := constants.HistoryConfig.DefaultLimit
	for i := 0; i <= limit; i++ {
		require.NoError(t, svc.Record(ctx, result(fmt.Sprintf("句子 %d", i)), domain.ScenarioGeneral))
	}

	entries := svc.List(ctx)
	require.Len(t, entries, limit)
	assert.Equal(t, fmt.Sprintf("句子 %d", limit), entries[0].Result.TranslatedText)
	// The very first entry fell off the end.
	assert.Equal(t, fmt.Sprintf("句子 %d", 1), entries[limit-1].Result.TranslatedText)
}

func TestListEmptyWhenAbsent(t *testing.T) {
	svc := NewService(newMemStore(), nil, 0, zap.NewNop())

	entries := svc.List(context.Background())
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestListDegradesToEmptyOnStoreError(t *testing.T) {
	store := newMemStore()
	store.getErr = fmt.Errorf("unreadable payload")
	svc := NewService(store, nil, 0, zap.NewNop())

	entries := svc.List(context.Background())
	assert.Empty(t, entries)
}

func TestClearDropsAllEntries(t *testing.T) {
	svc := NewService(newMemStore(), nil, 0, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, result("一句"), domain.ScenarioGeneral))
	require.NoError(t, svc.Clear(ctx))
	assert.Empty(t, svc.List(ctx))
}

type recordingArchiver struct {
	calls int
	err   error
}

func (r *recordingArchiver) ArchiveTranslation(context.Context, *domain.TranslationResult, domain.Scenario, time.Time) error {
	r.calls++
	return r.err
}

func TestRecordArchivesBestEffort(t *testing.T) {
	arch := &recordingArchiver{err: fmt.Errorf("archive down")}
	svc := NewService(newMemStore(), arch, 0, zap.NewNop())
	ctx := context.Background()

	// Archive failure is swallowed and the entry still lands in the list.
	require.NoError(t, svc.Record(ctx, result("一句"), domain.ScenarioGeneral))
	assert.Equal(t, 1, arch.calls)
	assert.Len(t, svc.List(ctx), 1)
}
