package genes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"github.com/gene2phenotype/g2ptools/gtf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore opens a migrated in-memory database with the sources, attribs and
// the sequence the gene update relies on.
func testStore(t *testing.T) *database.Store {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := database.NewStore(db)

	for _, name := range []string{"Ensembl", "HGNC", "OMIM"} {
		require.NoError(t, db.Create(&data_model.Source{Name: name}).Error)
	}

	locusType := data_model.AttribType{Code: "locus_type"}
	require.NoError(t, db.Create(&locusType).Error)
	require.NoError(t, db.Create(&data_model.Attrib{Value: "gene", TypeID: locusType.ID}).Error)
	require.NoError(t, db.Create(&data_model.AttribType{Code: "gene_synonym"}).Error)

	require.NoError(t, db.Create(&data_model.Sequence{Name: "1"}).Error)

	return store
}

func seedGene(t *testing.T, store *database.Store, symbol, stableID string, start, end int) uint {
	t.Helper()

	geneAttribID, err := store.AttribID("gene")
	require.NoError(t, err)
	sourceID, err := store.SourceID("Ensembl")
	require.NoError(t, err)
	sequences, err := store.Sequences()
	require.NoError(t, err)

	locus := data_model.Locus{
		Name:       symbol,
		Start:      start,
		End:        end,
		Strand:     1,
		TypeID:     geneAttribID,
		SequenceID: sequences["1"],
	}
	locusID, err := store.InsertGene(locus, stableID, sourceID)
	require.NoError(t, err)

	return locusID
}

func synonymValues(t *testing.T, store *database.Store, locusID uint) []string {
	t.Helper()

	var attribs []data_model.LocusAttrib
	require.NoError(t, store.DB().Where("locus_id = ?", locusID).Find(&attribs).Error)

	var values []string
	for _, attrib := range attribs {
		values = append(values, attrib.Value)
	}
	return values
}

func TestImportGenesRenamesAndMovesCoordinates(t *testing.T) {
	store := testStore(t)
	locusID := seedGene(t, store, "OLDSYM", "ENSG00000000001", 100, 200)

	g2pGenes, g2pBySymbol, err := store.EnsemblGenes()
	require.NoError(t, err)

	dir := t.TempDir()
	err = importGenes(store, dir, g2pGenes, g2pBySymbol, map[string]gtf.Gene{
		"ENSG00000000001": {Symbol: "NEWSYM", Chr: "1", Start: 150, End: 250, Strand: "+"},
	})
	require.NoError(t, err)

	var locus data_model.Locus
	require.NoError(t, store.DB().First(&locus, locusID).Error)
	assert.Equal(t, "NEWSYM", locus.Name)
	assert.Equal(t, 150, locus.Start)
	assert.Equal(t, 250, locus.End)

	// the old symbol survives as a synonym
	assert.Contains(t, synonymValues(t, store, locusID), "OLDSYM")

	report, err := os.ReadFile(filepath.Join(dir, "report_gene_updates.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "UPDATE GENE SYMBOL")
	assert.Contains(t, string(report), "UPDATE COORDINATES")
}

func TestImportGenesKeepsSymbolForPlaceholderNames(t *testing.T) {
	store := testStore(t)
	locusID := seedGene(t, store, "KEEPME", "ENSG00000000002", 300, 400)

	g2pGenes, g2pBySymbol, err := store.EnsemblGenes()
	require.NoError(t, err)

	dir := t.TempDir()
	err = importGenes(store, dir, g2pGenes, g2pBySymbol, map[string]gtf.Gene{
		"ENSG00000000002": {Symbol: "AC1234.5", Chr: "1", Start: 300, End: 400, Strand: "+"},
	})
	require.NoError(t, err)

	var locus data_model.Locus
	require.NoError(t, store.DB().First(&locus, locusID).Error)
	assert.Equal(t, "KEEPME", locus.Name)
	assert.Contains(t, synonymValues(t, store, locusID), "AC1234.5")

	report, err := os.ReadFile(filepath.Join(dir, "report_gene_updates.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "ADD SYNONYM")
}

func TestImportGenesUpdatesMovedStableID(t *testing.T) {
	store := testStore(t)
	seedGene(t, store, "MOVED", "ENSG00000000003", 500, 600)

	g2pGenes, g2pBySymbol, err := store.EnsemblGenes()
	require.NoError(t, err)

	dir := t.TempDir()
	err = importGenes(store, dir, g2pGenes, g2pBySymbol, map[string]gtf.Gene{
		"ENSG00000000099": {Symbol: "MOVED", Chr: "1", Start: 500, End: 600, Strand: "+"},
	})
	require.NoError(t, err)

	loci, err := store.EnsemblIDToLocusID()
	require.NoError(t, err)
	assert.Contains(t, loci, "ENSG00000000099")
	assert.NotContains(t, loci, "ENSG00000000003")

	report, err := os.ReadFile(filepath.Join(dir, "report_new_genes.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "new stable_id ENSG00000000099")
}

const sampleHGNC = `# HGNC complete set
hgnc_id	symbol	prev_symbol	omim_id	ensembl_gene_id
HGNC:100	SYMB	"ANCIENT1|ANCIENT2"	123456	ENSG00000000010
`

func TestUpdateXrefsStoresPrevSymbols(t *testing.T) {
	store := testStore(t)
	locusID := seedGene(t, store, "SYMB", "ENSG00000000010", 100, 200)

	dir := t.TempDir()
	hgncFile := filepath.Join(dir, "hgnc_complete_set.txt")
	require.NoError(t, os.WriteFile(hgncFile, []byte(sampleHGNC), 0o644))

	require.NoError(t, updateXrefs(store, dir, hgncFile))

	synonyms := synonymValues(t, store, locusID)
	assert.Contains(t, synonyms, "ANCIENT1")
	assert.Contains(t, synonyms, "ANCIENT2")

	report, err := os.ReadFile(filepath.Join(dir, "report_hgnc_updates.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "ADD GENE PREV SYMBOL")
}
