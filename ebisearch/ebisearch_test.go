package ebisearch_test

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/ebisearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parsedField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type parsedRef struct {
	DBName string `xml:"dbname,attr"`
	DBKey  string `xml:"dbkey,attr"`
}

type parsedEntry struct {
	ID     string        `xml:"id,attr"`
	Acc    string        `xml:"acc,attr"`
	Name   string        `xml:"name"`
	Fields []parsedField `xml:"additional_fields>field"`
	Refs   []parsedRef   `xml:"cross_references>ref"`
}

type parsedDump struct {
	Name       string        `xml:"name"`
	Release    string        `xml:"release"`
	EntryCount int           `xml:"entry_count"`
	Entries    []parsedEntry `xml:"entries>entry"`
}

func TestGenerate(t *testing.T) {
	records := map[string]*database.PublicRecord{
		"G2P00002": {
			Disease:    "ABCD1-related adrenoleukodystrophy",
			Confidence: "strong",
			Genotype:   "monoallelic_X_hemizygous",
			Mechanism:  "loss of function",
			Gene:       "ABCD1",
			GeneIDs:    []string{"ENSG00000101986", "HGNC:61", "300371"},
		},
		"G2P00001": {
			Disease:       "KCNQ2-related epileptic encephalopathy",
			Confidence:    "definitive",
			Genotype:      "monoallelic_autosomal",
			Mechanism:     "dominant negative",
			Gene:          "KCNQ2",
			GeneIDs:       []string{"ENSG00000075043", "HGNC:6296"},
			OntologyTerms: []string{"MONDO:0100079", "Orphanet:439218", "613720"},
		},
	}

	data, err := ebisearch.Generate("2025-08", records)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))

	var dump parsedDump
	require.NoError(t, xml.Unmarshal(data, &dump))

	assert.Equal(t, "G2P", dump.Name)
	assert.Equal(t, "2025-08", dump.Release)
	assert.Equal(t, 2, dump.EntryCount)
	require.Len(t, dump.Entries, 2)

	// entries come out sorted by stable ID
	first := dump.Entries[0]
	assert.Equal(t, "G2P00001", first.ID)
	assert.Equal(t, "G2P00001", first.Acc)
	assert.Equal(t, "KCNQ2-related epileptic encephalopathy (definitive)", first.Name)

	fields := map[string]string{}
	for _, f := range first.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "KCNQ2", fields["gene"])
	assert.Equal(t, "dominant negative", fields["mechanism"])

	refs := map[string]string{}
	for _, ref := range first.Refs {
		refs[ref.DBKey] = ref.DBName
	}
	assert.Equal(t, "ENSEMBL_GENE", refs["ENSG00000075043"])
	assert.Equal(t, "HGNC", refs["HGNC:6296"])
	assert.Equal(t, "Mondo", refs["MONDO:0100079"])
	assert.Equal(t, "Orphanet", refs["Orphanet:439218"])
	assert.Equal(t, "OMIM_DISEASE", refs["613720"])

	// OMIM gene IDs have no cross reference
	second := dump.Entries[1]
	assert.Equal(t, "G2P00002", second.ID)
	require.Len(t, second.Refs, 2)
	assert.NotContains(t, refs, "300371")
}
