package gencc_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gene2phenotype/g2ptools/gencc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `"g2p id","gene symbol","hgnc id","disease name","disease mim","disease MONDO","allelic requirement","confidence","date of last review","publications"
"G2P00001","KCNQ2","HGNC:6296","KCNQ2-related epileptic encephalopathy","613720","","monoallelic_autosomal","definitive","2024-05-01T10:30:00Z","20437616; 22275249"
"G2P00002","ABCD1","HGNC:61","ABCD1-related adrenoleukodystrophy","","MONDO:0018544","monoallelic_X_hemizygous","strong","2023-11-20","25356899"
"G2P00003","BRCA2","HGNC:1101","BRCA2-related cancer","","","biallelic_autosomal","limited","2023-01-01",""
`

func TestParseRecords(t *testing.T) {
	records, err := gencc.ParseRecords([]byte(sampleDump))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "G2P00001", records[0].G2PID)
	assert.Equal(t, "KCNQ2", records[0].GeneSymbol)
	assert.Equal(t, "613720", records[0].DiseaseMIM)
	assert.Equal(t, "MONDO:0018544", records[1].DiseaseMondo)
	assert.Equal(t, "monoallelic_X_hemizygous", records[1].AllelicRequirement)
}

func TestWriteSubmissionFile(t *testing.T) {
	records, err := gencc.ParseRecords([]byte(sampleDump))
	require.NoError(t, err)

	dir := t.TempDir()
	outFile := filepath.Join(dir, "G2P_GenCC.txt")
	issuesFile := filepath.Join(dir, "records_with_issues.txt")

	entries, err := gencc.WriteSubmissionFile(records, outFile, issuesFile)
	require.NoError(t, err)

	// the record without a disease ID goes to the issues file
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].TypeOfSubmission)
	assert.Equal(t, "100011200001", entries[0].SubmissionID)
	assert.Equal(t, "G2P00001", entries[0].G2PStableID)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, "100011200001", fields[0])
	assert.Equal(t, "HGNC:6296", fields[1])
	assert.Equal(t, "613720", fields[3])
	assert.Equal(t, "HP:0000006", fields[5])
	assert.Equal(t, "GENCC:100001", fields[9])
	assert.Equal(t, "2024/05/01", fields[11])
	assert.Equal(t, "https://www.ebi.ac.uk/gene2phenotype/lgd/G2P00001", fields[12])

	issues, err := os.ReadFile(issuesFile)
	require.NoError(t, err)
	assert.Contains(t, string(issues), "G2P00003")
	assert.Contains(t, string(issues), "Missing disease ID")
}

func TestFilterUpdated(t *testing.T) {
	records, err := gencc.ParseRecords([]byte(sampleDump))
	require.NoError(t, err)

	byID := map[string]gencc.Record{}
	for _, record := range records {
		byID[record.G2PID] = record
	}

	previous := map[string]gencc.PreviousSubmission{
		"100011200001": {DiseaseID: "613720", Classification: "definitive"},
		"100011200002": {DiseaseID: "MONDO:0000000", Classification: "strong"},
	}
	updated := map[string]string{
		"G2P00001": "100011200001",
		"G2P00002": "100011200002",
	}

	filtered := gencc.FilterUpdated(previous, byID, updated)

	// G2P00001 is unchanged, G2P00002 has a new disease ID
	assert.NotContains(t, filtered, "G2P00001")
	assert.Equal(t, "100011200002", filtered["G2P00002"])
}

func TestRecordURL(t *testing.T) {
	assert.Equal(t,
		"https://www.ebi.ac.uk/gene2phenotype/lgd/G2P00001",
		gencc.RecordURL("G2P00001"))
}
