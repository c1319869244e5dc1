package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"github.com/stretchr/testify/require"
)

func readDoc(t *testing.T, root, date string) document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, date, "posted.json"))
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestLoadCreatesEmptyRecord(t *testing.T) {
	root := t.TempDir()
	s := New(root, logger.NewNop())

	posted, err := s.Load(context.Background(), "2025_10_05")
	require.NoError(t, err)
	require.Empty(t, posted)

	doc := readDoc(t, root, "2025_10_05")
	require.Equal(t, "2025_10_05", doc.Date)
	require.NotNil(t, doc.Posted)
	require.Empty(t, doc.Posted)
}

func TestAppendIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := New(root, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "2025_10_05", "b.png"))
	once := readDoc(t, root, "2025_10_05")

	require.NoError(t, s.Append(ctx, "2025_10_05", "b.png"))
	twice := readDoc(t, root, "2025_10_05")

	require.Equal(t, once, twice)
	require.Equal(t, []string{"b.png"}, twice.Posted)
}

func TestAppendKeepsExistingAndSorts(t *testing.T) {
	root := t.TempDir()
	s := New(root, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "2025_10_05", "c.png"))
	require.NoError(t, s.Append(ctx, "2025_10_05", "a.png"))
	require.NoError(t, s.Append(ctx, "2025_10_04", "z.png"))

	require.Equal(t, []string{"a.png", "c.png"}, readDoc(t, root, "2025_10_05").Posted)
	require.Equal(t, []string{"z.png"}, readDoc(t, root, "2025_10_04").Posted)

	posted, err := New(root, logger.NewNop()).Load(ctx, "2025_10_05")
	require.NoError(t, err)
	require.Contains(t, posted, "a.png")
	require.Contains(t, posted, "c.png")
}

func TestNonASCIIFilenamesAreKeptVerbatim(t *testing.T) {
	root := t.TempDir()
	s := New(root, logger.NewNop())

	require.NoError(t, s.Append(context.Background(), "2025_10_05", "images/2025_10_05/夕陽.png"))

	raw, err := os.ReadFile(filepath.Join(root, "2025_10_05", "posted.json"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "夕陽.png")
}

func TestLoadRejectsCorruptRecord(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2025_10_05"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2025_10_05", "posted.json"), []byte("{not json"), 0o644))

	_, err := New(root, logger.NewNop()).Load(context.Background(), "2025_10_05")
	require.Error(t, err)
}
