//go:build integration

package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/repository"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx, repository.Schema...)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}

	code := m.Run()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

func TestAuditRepository_Integration(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := testutil.DefaultTestContext(t)
	require.NoError(t, suite.Truncate(ctx, "mrz_scan_audit"))
	repo := repository.NewAuditRepository(suite.DB)

	deletedAt := time.Now().UTC().Truncate(time.Second)
	entry := &domain.AuditEntry{
		JobID:           "job-int-1",
		Status:          domain.StatusCompleted,
		DocumentType:    "passport",
		MRZType:         "TD3",
		Method:          "tesseract",
		ValidScore:      100,
		FieldsExtracted: []string{"number", "surname", "names"},
		ImageDeletedAt:  &deletedAt,
	}
	require.NoError(t, repo.Create(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := repo.GetByJobID(ctx, "job-int-1")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.ElementsMatch(t, []string{"number", "surname", "names"}, got.FieldsExtracted)

	err = repo.Create(ctx, &domain.AuditEntry{JobID: "job-int-1", Status: domain.StatusFailed})
	assert.True(t, errors.Is(err, errors.ErrConflict), "got %v", err)

	err = repo.Create(ctx, &domain.AuditEntry{JobID: "job-int-2", Status: domain.StatusCompleted, ValidScore: 120})
	assert.True(t, errors.Is(err, errors.ErrValidation), "got %v", err)

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
