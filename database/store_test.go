package database_test

import (
	"testing"
	"time"

	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore opens a fresh in-memory database with the schema migrated and a
// minimal set of sources, attribs and gene loci.
func testStore(t *testing.T) *database.Store {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := database.NewStore(db)

	for _, name := range []string{"Ensembl", "HGNC", "OMIM", "Mondo", "G2P"} {
		require.NoError(t, db.Create(&data_model.Source{Name: name}).Error)
	}

	locusType := data_model.AttribType{Code: "locus_type"}
	require.NoError(t, db.Create(&locusType).Error)
	geneAttrib := data_model.Attrib{Value: "gene", TypeID: locusType.ID}
	require.NoError(t, db.Create(&geneAttrib).Error)

	ensemblID, err := store.SourceID("Ensembl")
	require.NoError(t, err)
	hgncID, err := store.SourceID("HGNC")
	require.NoError(t, err)

	kcnq2 := data_model.Locus{Name: "KCNQ2", TypeID: geneAttrib.ID}
	require.NoError(t, db.Create(&kcnq2).Error)
	abcd1 := data_model.Locus{Name: "ABCD1", TypeID: geneAttrib.ID}
	require.NoError(t, db.Create(&abcd1).Error)

	for _, row := range []data_model.LocusIdentifier{
		{Identifier: "ENSG00000075043", LocusID: kcnq2.ID, SourceID: ensemblID},
		{Identifier: "HGNC:6296", LocusID: kcnq2.ID, SourceID: hgncID},
		{Identifier: "ENSG00000101986", LocusID: abcd1.ID, SourceID: ensemblID},
		{Identifier: "HGNC:61", LocusID: abcd1.ID, SourceID: hgncID},
	} {
		require.NoError(t, db.Create(&row).Error)
	}

	return store
}

func TestSourceID(t *testing.T) {
	store := testStore(t)

	id, err := store.SourceID("Mondo")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = store.SourceID("no such source")
	assert.Error(t, err)
}

func TestAttribID(t *testing.T) {
	store := testStore(t)

	id, err := store.AttribID("gene")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = store.AttribID("no such attrib")
	assert.Error(t, err)
}

func TestAddMetaAndLatestVersion(t *testing.T) {
	store := testStore(t)

	sourceID, err := store.SourceID("Ensembl")
	require.NoError(t, err)

	require.NoError(t, store.AddMeta("import_gene_disease_omim", "first run", "110", sourceID))

	version, err := store.LatestVersion("Ensembl")
	require.NoError(t, err)
	assert.Equal(t, "110", version)

	// a newer meta row wins
	newer := data_model.Meta{
		Key:        "import_gene_disease_omim",
		DateUpdate: time.Now().Add(time.Hour),
		Version:    "111",
		SourceID:   sourceID,
	}
	require.NoError(t, store.DB().Create(&newer).Error)

	version, err = store.LatestVersion("Ensembl")
	require.NoError(t, err)
	assert.Equal(t, "111", version)

	_, err = store.LatestVersion("Mondo")
	assert.Error(t, err)
}

func TestLatestImports(t *testing.T) {
	store := testStore(t)

	ensemblID, err := store.SourceID("Ensembl")
	require.NoError(t, err)
	mondoID, err := store.SourceID("Mondo")
	require.NoError(t, err)

	rows := []data_model.Meta{
		{Key: "import_gene_disease_omim", DateUpdate: time.Now().Add(-48 * time.Hour), Version: "109", SourceID: ensemblID},
		{Key: "import_gene_disease_omim", DateUpdate: time.Now(), Version: "110", SourceID: ensemblID},
		{Key: "import_gene_disease_mondo", DateUpdate: time.Now(), Version: "2025-06-03", SourceID: mondoID},
		{Key: "some_other_key", DateUpdate: time.Now(), Version: "x", SourceID: ensemblID},
	}
	for _, row := range rows {
		require.NoError(t, store.DB().Create(&row).Error)
	}

	imports, err := store.LatestImports()
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "110", imports["Ensembl"].Version)
	assert.Equal(t, "2025-06-03", imports["Mondo"].Version)
}

func TestEnsemblIDToLocusID(t *testing.T) {
	store := testStore(t)

	loci, err := store.EnsemblIDToLocusID()
	require.NoError(t, err)
	require.Len(t, loci, 2)
	assert.Contains(t, loci, "ENSG00000075043")
	assert.Contains(t, loci, "ENSG00000101986")
}

func TestHGNCIDToLocusID(t *testing.T) {
	store := testStore(t)

	loci, err := store.HGNCIDToLocusID()
	require.NoError(t, err)
	require.Len(t, loci, 2)

	// the HGNC: prefix is stripped from the keys
	assert.Contains(t, loci, "6296")
	assert.Contains(t, loci, "61")
	assert.NotContains(t, loci, "HGNC:6296")
}

func TestGeneDiseaseRoundTrip(t *testing.T) {
	store := testStore(t)

	omimID, err := store.SourceID("OMIM")
	require.NoError(t, err)
	loci, err := store.EnsemblIDToLocusID()
	require.NoError(t, err)

	rows := []data_model.GeneDisease{
		{GeneID: loci["ENSG00000075043"], Disease: "epileptic encephalopathy", Identifier: "613720", SourceID: omimID},
		{GeneID: loci["ENSG00000101986"], Disease: "adrenoleukodystrophy", Identifier: "300100", SourceID: omimID},
	}
	require.NoError(t, store.InsertGeneDiseases(rows))

	count, err := store.CountGeneDiseases()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	current, err := store.CurrentGeneDiseases("OMIM")
	require.NoError(t, err)
	require.Len(t, current, 2)

	assoc, ok := current["613720---ENSG00000075043"]
	require.True(t, ok)
	assert.Equal(t, "epileptic encephalopathy", assoc.Disease)

	require.NoError(t, store.UpdateGeneDiseaseName("613720", "KCNQ2-related epileptic encephalopathy"))

	current, err = store.CurrentGeneDiseases("OMIM")
	require.NoError(t, err)
	assert.Equal(t, "KCNQ2-related epileptic encephalopathy", current["613720---ENSG00000075043"].Disease)
}

func TestCurrentMondoGeneDiseases(t *testing.T) {
	store := testStore(t)

	mondoID, err := store.SourceID("Mondo")
	require.NoError(t, err)
	loci, err := store.HGNCIDToLocusID()
	require.NoError(t, err)

	rows := []data_model.GeneDisease{
		{GeneID: loci["6296"], Disease: "epileptic encephalopathy", Identifier: "MONDO:0100079", SourceID: mondoID},
	}
	require.NoError(t, store.InsertGeneDiseases(rows))

	current, err := store.CurrentMondoGeneDiseases()
	require.NoError(t, err)
	require.Len(t, current, 1)

	assoc, ok := current["MONDO:0100079"]
	require.True(t, ok)
	assert.Equal(t, "epileptic encephalopathy", assoc.Disease)
	assert.Equal(t, "6296", assoc.HGNCID)
}

func TestGeneIDsBySymbol(t *testing.T) {
	store := testStore(t)

	synonymType := data_model.AttribType{Code: "gene_synonym"}
	require.NoError(t, store.DB().Create(&synonymType).Error)

	loci, err := store.EnsemblIDToLocusID()
	require.NoError(t, err)
	kcnq2 := loci["ENSG00000075043"]
	abcd1 := loci["ENSG00000101986"]

	synonyms := []data_model.LocusAttrib{
		{Value: "KCNQ2OLD", AttribTypeID: synonymType.ID, LocusID: kcnq2},
		// a synonym clashing with a primary symbol loses
		{Value: "ABCD1", AttribTypeID: synonymType.ID, LocusID: kcnq2},
	}
	for _, row := range synonyms {
		require.NoError(t, store.DB().Create(&row).Error)
	}

	bySymbol, err := store.GeneIDsBySymbol()
	require.NoError(t, err)

	assert.Equal(t, kcnq2, bySymbol["KCNQ2"])
	assert.Equal(t, kcnq2, bySymbol["KCNQ2OLD"])
	assert.Equal(t, abcd1, bySymbol["ABCD1"])
}

func TestReplaceExternalDiseases(t *testing.T) {
	store := testStore(t)

	mondoID, err := store.SourceID("Mondo")
	require.NoError(t, err)

	first := map[string]string{
		"MONDO:0000001": "disease one",
		"MONDO:0000002": "disease two",
		"MONDO:0000003": "disease three",
	}
	require.NoError(t, store.ReplaceExternalDiseases(first, mondoID))

	second := map[string]string{
		"MONDO:0000001": "disease one renamed",
	}
	require.NoError(t, store.ReplaceExternalDiseases(second, mondoID))

	var rows []data_model.DiseaseExternal
	require.NoError(t, store.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "MONDO:0000001", rows[0].Identifier)
	assert.Equal(t, "disease one renamed", rows[0].Disease)
}
