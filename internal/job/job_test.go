package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/batchline/internal/checkpoint"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/internal/synchro"
	"github.com/BartekS5/batchline/pkg/models"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

const transactionInput = `customerNumber;number;transactionDate;amount
1;tx-1;2024-01-01;4.00
1;tx-2;2024-01-02;6.004
2;tx-3;2024-01-03;12.50
2;tx-4;2024-01-04;-2.504
`

const customerInput = `number;firstName;lastName;address;city;state;postCode
1;John;Doe;1 Main St;Springfield;IL;62704
2;Jane;Roe;2 Oak Ave;Shelbyville;IL;62705
3;Max;Poe;3 Elm Rd;Ogdenville;IL;62706
`

func TestGroupingSumsByCustomer(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "transaction.csv", transactionInput)
	output := filepath.Join(dir, "sums.csv")

	err := Grouping(context.Background(), GroupingConfig{
		TransactionFile: input,
		OutputFile:      output,
	})
	require.NoError(t, err)

	lines := readLines(t, output)
	assert.Equal(t, []string{
		"customerNumber;balance",
		"1;10.00",
		"2;10.00",
	}, lines)
}

func TestGroupingDryRunWritesNoRows(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "transaction.csv", transactionInput)
	output := filepath.Join(dir, "sums.csv")

	err := Grouping(context.Background(), GroupingConfig{
		TransactionFile: input,
		OutputFile:      output,
		DryRun:          true,
	})
	require.NoError(t, err)

	// The sink is opened (header written) but no group rows are persisted.
	lines := readLines(t, output)
	assert.Equal(t, []string{"customerNumber;balance"}, lines)
}

func TestFile2FileSynchroComputesBalances(t *testing.T) {
	dir := t.TempDir()
	customers := writeInput(t, dir, "customer.csv", customerInput)
	transactions := writeInput(t, dir, "transaction.csv", transactionInput)
	output := filepath.Join(dir, "balances.csv")

	err := File2FileSynchro(context.Background(), customers, transactions, output, SynchroOptions{})
	require.NoError(t, err)

	lines := readLines(t, output)
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(models.CustomerBalanceFileFields, ";"), lines[0])
	assert.Equal(t, "1;John;Doe;1 Main St;Springfield;IL;62704;10.00", lines[1])
	assert.Equal(t, "2;Jane;Roe;2 Oak Ave;Shelbyville;IL;62705;10.00", lines[2])
	// Customer 3 has no transactions and a zero balance.
	assert.Equal(t, "3;Max;Poe;3 Elm Rd;Ogdenville;IL;62706;0.00", lines[3])
}

func TestFile2FileSynchroOrphanDetailsDiscarded(t *testing.T) {
	dir := t.TempDir()
	customers := writeInput(t, dir, "customer.csv", `number;firstName;lastName;address;city;state;postCode
2;Jane;Roe;2 Oak Ave;Shelbyville;IL;62705
`)
	transactions := writeInput(t, dir, "transaction.csv", `customerNumber;number;transactionDate;amount
1;tx-1;2024-01-01;4.00
2;tx-3;2024-01-03;12.50
`)
	output := filepath.Join(dir, "balances.csv")

	err := File2FileSynchro(context.Background(), customers, transactions, output, SynchroOptions{})
	require.NoError(t, err)

	lines := readLines(t, output)
	require.Len(t, lines, 2)
	assert.Equal(t, "2;Jane;Roe;2 Oak Ave;Shelbyville;IL;62705;12.50", lines[1])
}

func TestFile2FileSynchroDuplicateMasterFails(t *testing.T) {
	dir := t.TempDir()
	customers := writeInput(t, dir, "customer.csv", `number;firstName;lastName;address;city;state;postCode
1;John;Doe;1 Main St;Springfield;IL;62704
1;John;Doe;1 Main St;Springfield;IL;62704
`)
	transactions := writeInput(t, dir, "transaction.csv", transactionInput)
	output := filepath.Join(dir, "balances.csv")

	err := File2FileSynchro(context.Background(), customers, transactions, output, SynchroOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, synchro.ErrDuplicateMasterKey)
}

func TestFile2FileSynchroResumeDoesNotRewrite(t *testing.T) {
	dir := t.TempDir()
	customers := writeInput(t, dir, "customer.csv", customerInput)
	transactions := writeInput(t, dir, "transaction.csv", transactionInput)

	// Baseline: a clean run with no checkpointing.
	baselinePath := filepath.Join(dir, "baseline.csv")
	require.NoError(t, File2FileSynchro(context.Background(), customers, transactions, baselinePath, SynchroOptions{}))
	baseline := readLines(t, baselinePath)

	// Simulate a run that committed its first one-customer chunk and then
	// died: the checkpoint records one chunk and the output holds the
	// header plus the first row.
	store, err := checkpoint.NewFileStore(filepath.Join(dir, "checkpoints"))
	require.NoError(t, err)
	require.NoError(t, store.Save("file2filesynchro-job", pipeline.Checkpoint{ChunksCommitted: 1, ItemsWritten: 1}))

	output := filepath.Join(dir, "balances.csv")
	require.NoError(t, os.WriteFile(output, []byte(strings.Join(baseline[:2], "\n")+"\n"), 0o644))

	err = File2FileSynchro(context.Background(), customers, transactions, output, SynchroOptions{
		ChunkSize: 1,
		Store:     store,
	})
	require.NoError(t, err)

	// The relaunch appends only the uncommitted rows: no duplicates, same
	// final content as the clean run.
	assert.Equal(t, baseline, readLines(t, output))

	// A completed run clears its checkpoint.
	cp, err := store.Load("file2filesynchro-job")
	require.NoError(t, err)
	assert.Nil(t, cp)
}
