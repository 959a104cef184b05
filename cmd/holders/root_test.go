package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(context.Background())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCmd(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, catalog.DefaultVersion)
	assert.Contains(t, out, catalog.RaydiumAMMV4)
	assert.Contains(t, out, catalog.IncineratorWallet)
}

func TestReportCmd_InvalidMint(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "none.env")
	_, err := run(t, "--env-file", envFile, "report", "not-a-mint")
	assert.Error(t, err)
}

func TestReportCmd_RequiresMint(t *testing.T) {
	_, err := run(t, "report")
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	rep := &domain.Report{ReportID: "r1", TokenMint: "Mint111", Holders: []domain.ClassifiedHolder{{Rank: 1}}}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep, "json", true, 5))
	assert.Contains(t, buf.String(), "\n  \"reportId\": \"r1\"")

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, "markdown", false, 5))
	assert.Contains(t, buf.String(), "# Holder Report: Mint111")

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, "csv", false, 5))
	assert.Contains(t, buf.String(), "rank,owner,")

	assert.Error(t, writeReport(&buf, rep, "xml", false, 5))
}
