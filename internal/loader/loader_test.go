package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/config"
	"pdfchat/internal/docstore"
	"pdfchat/internal/domain"
	"pdfchat/internal/logging"
	"pdfchat/internal/vectorstore/local"
)

func fixtureConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.IndexDir = filepath.Join(dir, "index")
	cfg.Paths.Docstore = filepath.Join(dir, "docstore.json")

	require.NoError(t, local.Write(cfg.Paths.IndexDir, []local.Entry{
		{ID: "c1", Vector: []float64{1, 0}, Content: "summary", Metadata: map[string]string{"doc_id": "p1"}},
	}))
	require.NoError(t, docstore.Save(cfg.Paths.Docstore, map[string]domain.RetrievedItem{
		"p1": domain.DocumentItem(domain.Document{Content: "parent"}),
	}))
	return cfg
}

func TestLoadAllBuildsResourcesOnce(t *testing.T) {
	l := New(fixtureConfig(t), logging.Discard())
	ctx := context.Background()

	require.NoError(t, l.LoadAll(ctx))
	r1, err := l.Retriever(ctx)
	require.NoError(t, err)
	r2, err := l.Retriever(ctx)
	require.NoError(t, err)
	assert.Same(t, r1, r2)

	m, err := l.ChatModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", m.Name())

	require.NoError(t, l.Close())
}

func TestLazyAccessorLoads(t *testing.T) {
	l := New(fixtureConfig(t), logging.Discard())
	defer l.Close()
	m, err := l.ChatModel(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestMissingIndexAbortsInit(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Paths.IndexDir = filepath.Join(t.TempDir(), "does-not-exist")
	l := New(cfg, logging.Discard())

	err := l.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Retriever(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMissingAPIKeyAbortsInit(t *testing.T) {
	cfg := fixtureConfig(t)
	t.Setenv("OPENAI_API_KEY", "")
	err := New(cfg, logging.Discard()).LoadAll(context.Background())
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}
