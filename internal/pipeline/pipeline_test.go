package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popvault/popdash/internal/ingest"
	"github.com/popvault/popdash/internal/model"
	"github.com/popvault/popdash/internal/snapshot"
)

const salesCSV = `console-name,product-name,new-price,sales-volume,release-date
Vinyl Figures,Bulbasaur,24.99,120,2019-03-01
Vinyl Figures,Charmander,19.99,80,2020-06-15
Plush,Snorlax,49.99,35,2018-11-20
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newRunner(path string) (*Runner, *snapshot.Store) {
	store := snapshot.New(4)
	return New(store, Options{
		Location: path,
		Profile:  ingest.DefaultProfile(),
	}), store
}

func TestRunnerLoad(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, salesCSV)
	runner, _ := newRunner(path)

	ds, err := runner.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.Records, 3)
	assert.Equal(t, 3, ds.Diagnostics.RowCount)
	assert.Equal(t, 3, ds.Diagnostics.RecordCount)
	assert.Equal(t, path, ds.Source)
	assert.False(t, ds.LoadedAt.IsZero())

	require.NotNil(t, ds.Bounds.Price)
	assert.InDelta(t, 19.99, ds.Bounds.Price.Min, 0.001)
	assert.InDelta(t, 49.99, ds.Bounds.Price.Max, 0.001)
	require.NotNil(t, ds.Bounds.Year)
	assert.InDelta(t, 2018, ds.Bounds.Year.Min, 0.001)
	assert.InDelta(t, 2020, ds.Bounds.Year.Max, 0.001)
}

func TestRunnerLoadCachesByContent(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, salesCSV)
	runner, store := newRunner(path)

	first, err := runner.Load(context.Background())
	require.NoError(t, err)
	second, err := runner.Load(context.Background())
	require.NoError(t, err)

	// Unchanged bytes come back as the same dataset.
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), store.Stats().Hits)
}

func TestRunnerLoadProfileChangesKey(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, salesCSV)
	store := snapshot.New(4)

	strict := New(store, Options{Location: path, Profile: ingest.DefaultProfile()})
	_, err := strict.Load(context.Background())
	require.NoError(t, err)

	lenient := ingest.DefaultProfile()
	lenient.Strict = false
	other := New(store, Options{Location: path, Profile: lenient})
	_, err = other.Load(context.Background())
	require.NoError(t, err)

	// Same bytes under a different profile occupy a second slot.
	assert.Equal(t, 2, store.Stats().Entries)
}

func TestRunnerReloadSeesNewContent(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, salesCSV)
	runner, _ := newRunner(path)

	ds, err := runner.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)

	updated := salesCSV + "Plush,Psyduck,14.99,50,2021-02-02\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	ds, err = runner.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Records, 4)
}

func TestRunnerLoadMissingFile(t *testing.T) {
	t.Parallel()

	runner, _ := newRunner(filepath.Join(t.TempDir(), "absent.csv"))

	_, err := runner.Load(context.Background())
	assert.Error(t, err)
}

func TestRunnerLoadSchemaError(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "console-name,product-name\nPlush,Snorlax\n")
	runner, _ := newRunner(path)

	_, err := runner.Load(context.Background())
	require.Error(t, err)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Missing, "price")
}

func TestRunnerLoadXLSXByExtension(t *testing.T) {
	t.Parallel()

	// A .xlsx location with CSV bytes must fail as an unreadable workbook.
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0644))

	store := snapshot.New(4)
	runner := New(store, Options{
		Location: path,
		Profile:  ingest.DefaultProfile(),
	})

	_, err := runner.Load(context.Background())
	require.Error(t, err)

	var parseErr *model.ParseError
	assert.True(t, errors.As(err, &parseErr))
}
