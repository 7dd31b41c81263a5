package diseases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = "g2p id\tgene symbol\tdisease name\tdisease name formatted\tallelic requirement\tUpdated\n" +
	"G2P00001\tKCNQ2\told disease name\tKCNQ2-related epileptic encephalopathy\tmonoallelic_autosomal\t\n" +
	"G2P00002\tABCD1\thandled disease\tABCD1-related adrenoleukodystrophy\tmonoallelic_X_hemizygous\tYes\n"

func writeInput(t *testing.T, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "diseases.txt")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestReadInputFile(t *testing.T) {
	rows, err := readInputFile(writeInput(t, sampleInput))
	require.NoError(t, err)

	// the row marked Updated=Yes is skipped
	require.Len(t, rows, 1)
	assert.Equal(t, "G2P00001", rows[0].g2pID)
	assert.Equal(t, "KCNQ2", rows[0].geneSymbol)
	assert.Equal(t, "old disease name", rows[0].current)
	assert.Equal(t, "KCNQ2-related epileptic encephalopathy", rows[0].newName)
	assert.Equal(t, "monoallelic_autosomal", rows[0].genotype)
}

func TestReadInputFileRejectsWrongHeader(t *testing.T) {
	shuffled := "gene symbol\tg2p id\tdisease name\tdisease name formatted\tallelic requirement\n" +
		"KCNQ2\tG2P00001\told\tnew\tmonoallelic_autosomal\n"

	_, err := readInputFile(writeInput(t, shuffled))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected columns")

	_, err = readInputFile(writeInput(t, "g2p id\tgene symbol\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected columns")
}
