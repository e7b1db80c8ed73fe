package app

import (
	"context"
	"errors"
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
		"p1": domain.DocumentItem(domain.Document{Content: "Linear models are parametric."}),
	}))
	return cfg
}

func TestRunClosesAfterFailure(t *testing.T) {
	var got *App
	boom := errors.New("report failed")
	err := Run(context.Background(), fixtureConfig(t), logging.Discard(), func(_ context.Context, a *App) error {
		got = a
		assert.False(t, a.closed)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInit)
	require.NotNil(t, got)
	assert.True(t, got.closed)
}

func TestRunClosesAfterSuccess(t *testing.T) {
	var got *App
	err := Run(context.Background(), fixtureConfig(t), logging.Discard(), func(ctx context.Context, a *App) error {
		got = a
		m, err := a.ChatModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, "openai:gpt-4o-mini", m.Name())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, got.closed)
}

func TestRunInitFailureSkipsCallback(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Paths.IndexDir = filepath.Join(t.TempDir(), "missing")

	called := false
	err := Run(context.Background(), cfg, logging.Discard(), func(context.Context, *App) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrInit)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, called)
}

func TestBuildRejectsUnknownTemplate(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Prompt.Template = "haiku"
	_, err := Build(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}
