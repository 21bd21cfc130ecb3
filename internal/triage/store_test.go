package triage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCapture = `{"voidstar_sdk":{"language":{"name":"Go","version":"go1.25"},"protocol_version":"1.0.0","sdk_version":"0.2.0"}}
{"voidstar_assert":{"assert_type":"always","condition":false,"details":null,"display_type":"Always","hit":false,"id":"cart ok","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"cart ok","must_hit":true}}
{"voidstar_assert":{"assert_type":"always","condition":true,"details":null,"display_type":"Always","hit":true,"id":"cart ok","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"cart ok","must_hit":true}}
{"voidstar_assert":{"assert_type":"always","condition":false,"details":null,"display_type":"Always","hit":true,"id":"cart ok","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"cart ok","must_hit":true}}
{"voidstar_assert":{"assert_type":"sometimes","condition":false,"details":null,"display_type":"Sometimes","hit":false,"id":"retries","location":{"begin_column":0,"begin_line":2,"class":"","filename":"b.go","function":"g"},"message":"retries","must_hit":true}}
{"voidstar_assert":{"assert_type":"sometimes","condition":true,"details":null,"display_type":"Sometimes","hit":true,"id":"retries","location":{"begin_column":0,"begin_line":2,"class":"","filename":"b.go","function":"g"},"message":"retries","must_hit":true}}
{"checkout":{"phase":"begin","run_token":"t1"}}
{"checkout":{"phase":"end","run_token":"t1"}}
{"voidstar_setup":{"details":null,"status":"complete"}}
`

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIngestAndSummary(t *testing.T) {
	store := openStore(t)

	stats, err := store.Ingest(context.Background(), strings.NewReader(sampleCapture))
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Lines)
	assert.Equal(t, 9, stats.Records)
	assert.Equal(t, 0, stats.Skipped)

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, PropertySummary{
		Message: "cart ok", DisplayType: "Always",
		Definitions: 1, Passes: 1, Fails: 1,
	}, summary[0])
	assert.Equal(t, PropertySummary{
		Message: "retries", DisplayType: "Sometimes",
		Definitions: 1, Passes: 1, Fails: 0,
	}, summary[1])
}

func TestIngest_CountsEvents(t *testing.T) {
	store := openStore(t)

	_, err := store.Ingest(context.Background(), strings.NewReader(sampleCapture))
	require.NoError(t, err)

	events, err := store.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCount{Name: "checkout", Count: 2}, events[0])
}

func TestIngest_SkipsUnparsableLines(t *testing.T) {
	store := openStore(t)

	capture := "not json\n" +
		`{"voidstar_assert":{"assert_type":"always","condition":true,"details":null,"display_type":"Always","hit":true,"id":"x","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"x","must_hit":true}}` + "\n" +
		"{\"truncated\":\n"

	stats, err := store.Ingest(context.Background(), strings.NewReader(capture))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Lines)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 2, stats.Skipped)
}

func TestIngest_EmptyCapture(t *testing.T) {
	store := openStore(t)

	stats, err := store.Ingest(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, &IngestStats{}, stats)

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestIngest_IsCumulative(t *testing.T) {
	store := openStore(t)

	line := `{"voidstar_assert":{"assert_type":"always","condition":true,"details":null,"display_type":"Always","hit":true,"id":"x","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"x","must_hit":true}}` + "\n"
	for range 2 {
		_, err := store.Ingest(context.Background(), strings.NewReader(line))
		require.NoError(t, err)
	}

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, int64(2), summary[0].Passes)
}

func TestOpen_OnDiskReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Ingest(context.Background(), strings.NewReader(sampleCapture))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	summary, err := reopened.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary, 2)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		wantKind string
	}{
		{"definition", `{"voidstar_assert":{"hit":false,"message":"m","display_type":"Always","id":"m"}}`, KindDefinition},
		{"outcome", `{"voidstar_assert":{"hit":true,"condition":true,"message":"m","display_type":"Always","id":"m"}}`, KindOutcome},
		{"setup", `{"voidstar_setup":{"status":"complete"}}`, KindSetup},
		{"sdk", `{"voidstar_sdk":{"protocol_version":"1.0.0"}}`, KindSDK},
		{"event", `{"my_event":{"k":"v"}}`, KindEvent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := openStore(t)
			_, err := store.Ingest(context.Background(), strings.NewReader(tc.line+"\n"))
			require.NoError(t, err)

			var kind string
			require.NoError(t, store.db.QueryRow("SELECT kind FROM records").Scan(&kind))
			assert.Equal(t, tc.wantKind, kind)
		})
	}
}
