package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
	"github.com/josh-kwaku/grey-ledger/internal/service"
	"github.com/josh-kwaku/grey-ledger/internal/testutil"
)

func TestSequenceAllocator_Concurrent_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	alloc := service.NewSequenceAllocator(repository.NewSequenceRepository(db), repository.NewDB(db), &config.Config{
		SequenceMaxRetries:     10,
		SequenceRetryInitialMS: 5,
	})
	ctx := context.Background()
	at := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]int64)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := alloc.NextAt(ctx, domain.SequenceInvoice, at)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[n.Number] = n.Seq
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, numbers, workers, "every number must be unique")
	seen := make(map[int64]bool)
	for number, seq := range numbers {
		assert.Regexp(t, `^INV-20240115-\d{3}$`, number)
		seen[seq] = true
	}
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "gap at %d", i)
	}

	next, err := alloc.NextAt(ctx, domain.SequenceInvoice, at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "INV-20240116-001", next.Number)
}

func TestSequenceAllocator_SkipsExternallyIssued_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seqs := repository.NewSequenceRepository(db)
	alloc := service.NewSequenceAllocator(seqs, repository.NewDB(db), &config.Config{
		SequenceMaxRetries:     3,
		SequenceRetryInitialMS: 1,
	})
	ctx := context.Background()
	at := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	_, err := db.Exec(`INSERT INTO issued_numbers (number, sequence_name, period_key, seq) VALUES ('PRJ-202401-0004', 'project', '202401', 4)`)
	require.NoError(t, err)

	current, err := seqs.Current(ctx, "project", "202401")
	require.NoError(t, err)
	assert.Equal(t, int64(4), current, "registry counts before the counter row exists")

	n, err := alloc.NextAt(ctx, domain.SequenceProject, at)
	require.NoError(t, err)
	assert.Equal(t, "PRJ-202401-0005", n.Number)

	current, err = seqs.Current(ctx, "project", "202401")
	require.NoError(t, err)
	assert.Equal(t, int64(5), current)

	current, err = seqs.Current(ctx, "project", "202402")
	require.NoError(t, err)
	assert.Zero(t, current)
}

func TestAccountService_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(repository.NewAccountRepository(db), repository.NewDB(db))
	ctx := context.Background()

	assets, err := svc.CreateAccount(ctx, service.CreateAccountParams{Code: "1000", Name: "Assets", Type: domain.AccountTypeAsset})
	require.NoError(t, err)
	cash, err := svc.CreateAccount(ctx, service.CreateAccountParams{Code: "1010", Name: "Cash", Type: domain.AccountTypeAsset, ParentID: &assets.ID})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, service.CreateAccountParams{Code: "1000", Name: "Dup", Type: domain.AccountTypeAsset})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	_, err = svc.UpdateAccount(ctx, assets.ID, service.UpdateAccountParams{ParentID: &cash.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, assets.ID), domain.ErrAccountHasChildren)

	sales := testutil.SeedAccount(t, db, "4000", "Sales", domain.AccountTypeRevenue)
	testutil.SeedPostedEntry(t, db, testutil.Date("2024-01-05"), "INV-1",
		testutil.Line{AccountID: cash.ID, Debit: "10"},
		testutil.Line{AccountID: sales.ID, Credit: "10"},
	)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, cash.ID), domain.ErrAccountInUse)

	roots, err := svc.GetTree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "1000", roots[0].Code)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "1010", roots[0].Children[0].Code)
}
