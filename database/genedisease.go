package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"gorm.io/gorm"
)

// ImportInfo describes the newest meta entry of a gene-disease import.
type ImportInfo struct {
	Version    string
	DateUpdate time.Time
}

// LatestImports reads the newest OMIM and Mondo gene-disease import entries
// from meta, keyed by source name.
func (s *Store) LatestImports() (map[string]ImportInfo, error) {
	rows := []struct {
		Name       string
		Version    string
		DateUpdate time.Time
	}{}

	err := s.db.Table("meta m").
		Select("s.name, m.version, m.date_update").
		Joins("LEFT JOIN source s ON s.id = m.source_id").
		Where("m.key = ? OR m.key = ?", "import_gene_disease_omim", "import_gene_disease_mondo").
		Order("m.date_update DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch import meta info: %s", err)
	}

	info := map[string]ImportInfo{}
	for _, row := range rows {
		existing, ok := info[row.Name]
		if !ok || row.DateUpdate.After(existing.DateUpdate) {
			info[row.Name] = ImportInfo{Version: row.Version, DateUpdate: row.DateUpdate}
		}
	}

	return info, nil
}

// EnsemblIDToLocusID maps Ensembl stable IDs of gene loci to locus ids.
func (s *Store) EnsemblIDToLocusID() (map[string]uint, error) {
	rows := []struct {
		Identifier string
		ID         uint
	}{}

	err := s.db.Table("locus l").
		Select("i.identifier, l.id").
		Joins("LEFT JOIN attrib a ON a.id = l.type_id").
		Joins("LEFT JOIN locus_identifier i ON i.locus_id = l.id").
		Joins("LEFT JOIN source s ON s.id = i.source_id").
		Where("a.value = ? AND s.name = ?", "gene", "Ensembl").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Ensembl IDs: %s", err)
	}

	result := map[string]uint{}
	for _, row := range rows {
		if _, ok := result[row.Identifier]; !ok {
			result[row.Identifier] = row.ID
		}
	}

	return result, nil
}

// GeneDiseaseAssociation is one stored gene-disease link from a given source.
type GeneDiseaseAssociation struct {
	Disease    string
	Identifier string
	StableID   string
}

// CurrentGeneDiseases dumps the gene-disease associations of one source,
// keyed by "<identifier>---<ensembl stable id>".
func (s *Store) CurrentGeneDiseases(sourceName string) (map[string]GeneDiseaseAssociation, error) {
	rows := []struct {
		Disease    string
		Identifier string
		StableID   string
	}{}

	err := s.db.Table("gene_disease gd").
		Select("gd.disease, gd.identifier, li.identifier AS stable_id").
		Joins("LEFT JOIN locus l ON l.id = gd.gene_id").
		Joins("LEFT JOIN locus_identifier li ON li.locus_id = l.id").
		Joins("LEFT JOIN source s ON s.id = li.source_id").
		Joins("LEFT JOIN source s_gd ON s_gd.id = gd.source_id").
		Where("s.name = ? AND s_gd.name = ?", "Ensembl", sourceName).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to dump %s gene-disease associations: %s", sourceName, err)
	}

	result := map[string]GeneDiseaseAssociation{}
	for _, row := range rows {
		key := fmt.Sprintf("%s---%s", row.Identifier, row.StableID)
		if _, ok := result[key]; ok {
			log.Warnf("duplicated %s ID found in G2P %q", sourceName, key)
			continue
		}
		result[key] = GeneDiseaseAssociation{
			Disease:    row.Disease,
			Identifier: row.Identifier,
			StableID:   row.StableID,
		}
	}

	return result, nil
}

// InsertGeneDiseases bulk inserts gene-disease association rows.
func (s *Store) InsertGeneDiseases(rows []data_model.GeneDisease) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("failed to insert gene-disease associations: %s", err)
	}

	return nil
}

// CountGeneDiseases returns the number of stored gene-disease associations.
func (s *Store) CountGeneDiseases() (int64, error) {
	var count int64
	err := s.db.Model(&data_model.GeneDisease{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count gene-disease associations: %s", err)
	}

	return count, nil
}

// MondoAssociation is one stored Mondo gene-disease link.
type MondoAssociation struct {
	Disease string
	HGNCID  string
}

// CurrentMondoGeneDiseases dumps the Mondo gene-disease associations, keyed
// by Mondo ID. The HGNC ID is stored without its "HGNC:" prefix.
func (s *Store) CurrentMondoGeneDiseases() (map[string]MondoAssociation, error) {
	rows := []struct {
		Disease    string
		Identifier string
		HGNCID     string
	}{}

	err := s.db.Table("gene_disease gd").
		Select("gd.disease, gd.identifier, li.identifier AS hgnc_id").
		Joins("LEFT JOIN locus l ON l.id = gd.gene_id").
		Joins("LEFT JOIN locus_identifier li ON li.locus_id = l.id").
		Joins("LEFT JOIN source s ON s.id = li.source_id").
		Joins("LEFT JOIN source s_gd ON s_gd.id = gd.source_id").
		Where("s.name = ? AND s_gd.name = ?", "HGNC", "Mondo").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to dump Mondo gene-disease associations: %s", err)
	}

	result := map[string]MondoAssociation{}
	for _, row := range rows {
		if _, ok := result[row.Identifier]; ok {
			log.Warnf("duplicated Mondo ID found in G2P %q", row.Identifier)
			continue
		}
		result[row.Identifier] = MondoAssociation{
			Disease: row.Disease,
			HGNCID:  strings.TrimPrefix(row.HGNCID, "HGNC:"),
		}
	}

	return result, nil
}

// HGNCIDToLocusID maps HGNC IDs of gene loci (without the "HGNC:" prefix) to
// locus ids.
func (s *Store) HGNCIDToLocusID() (map[string]uint, error) {
	rows := []struct {
		Identifier string
		ID         uint
	}{}

	err := s.db.Table("locus l").
		Select("i.identifier, l.id").
		Joins("LEFT JOIN attrib a ON a.id = l.type_id").
		Joins("LEFT JOIN locus_identifier i ON i.locus_id = l.id").
		Joins("LEFT JOIN source s ON s.id = i.source_id").
		Where("a.value = ? AND s.name = ?", "gene", "HGNC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HGNC IDs: %s", err)
	}

	result := map[string]uint{}
	for _, row := range rows {
		id := strings.TrimPrefix(row.Identifier, "HGNC:")
		if _, ok := result[id]; !ok {
			result[id] = row.ID
		}
	}

	return result, nil
}

// UpdateGeneDiseaseName renames the disease of a stored association.
func (s *Store) UpdateGeneDiseaseName(identifier, disease string) error {
	err := s.db.Model(&data_model.GeneDisease{}).
		Where("identifier = ?", identifier).
		Update("disease", disease).Error
	if err != nil {
		return fmt.Errorf("failed to update gene-disease %q: %s", identifier, err)
	}

	return nil
}

// ReplaceExternalDiseases rebuilds the disease_external table from a full
// identifier to disease name dump of one source.
func (s *Store) ReplaceExternalDiseases(diseases map[string]string, sourceID uint) error {
	err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&data_model.DiseaseExternal{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear external diseases: %s", err)
	}

	rows := make([]data_model.DiseaseExternal, 0, len(diseases))
	for identifier, disease := range diseases {
		rows = append(rows, data_model.DiseaseExternal{
			Disease:    disease,
			Identifier: identifier,
			SourceID:   sourceID,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	err = s.db.CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("failed to insert external diseases: %s", err)
	}

	return nil
}

// MIMAssociation is an OMIM morbid entry attached to a gene in an Ensembl
// core database.
type MIMAssociation struct {
	MIMID   string
	Disease string
}

// MIMGeneDiseases fetches MIM morbid gene-disease data from an Ensembl core
// database, keyed by Ensembl gene stable ID. Only the first description
// segment (before ";") is kept as the disease name.
func MIMGeneDiseases(db *gorm.DB) (map[string][]MIMAssociation, error) {
	rows := []struct {
		Value       string
		StableID    string
		Accession   string
		Description string
	}{}

	sql := `SELECT a.value, g.stable_id, x.dbprimary_acc AS accession, x.description
		FROM external_db e, xref x, object_xref o, gene g, gene_attrib a
		WHERE e.external_db_id = x.external_db_id AND x.xref_id = o.xref_id
		AND o.ensembl_id = g.gene_id AND e.db_name = 'MIM_MORBID' AND a.gene_id = g.gene_id
		AND a.attrib_type_id = 4`

	err := db.Raw(sql).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch MIM morbid data: %s", err)
	}

	result := map[string][]MIMAssociation{}
	for _, row := range rows {
		disease := row.Description
		if idx := strings.IndexByte(disease, ';'); idx >= 0 {
			disease = disease[:idx]
		}
		result[row.StableID] = append(result[row.StableID], MIMAssociation{
			MIMID:   row.Accession,
			Disease: disease,
		})
	}

	return result, nil
}
