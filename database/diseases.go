package database

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// DiseaseRecord is one curated record linked to a disease.
type DiseaseRecord struct {
	LGDID     uint
	StableID  string
	IsDeleted int
	Genotype  string
}

// DiseaseEntry groups the records linked to one disease name.
type DiseaseEntry struct {
	DiseaseID uint
	Records   []DiseaseRecord
}

// DiseasesWithRecords dumps all diseases with their linked records, keyed by
// disease name.
func (s *Store) DiseasesWithRecords() (map[string]*DiseaseEntry, error) {
	rows := []struct {
		Name      string
		DiseaseID uint
		LGDID     *uint
		StableID  *string
		IsDeleted *int
		Genotype  *string
	}{}

	err := s.db.Table("disease d").
		Select("d.name, d.id AS disease_id, lgd.id AS lgd_id, g.stable_id, g.is_deleted, a.value AS genotype").
		Joins("LEFT JOIN locus_genotype_disease lgd ON lgd.disease_id = d.id").
		Joins("LEFT JOIN g2p_stableid g ON g.id = lgd.stable_id").
		Joins("LEFT JOIN attrib a ON a.id = lgd.genotype_id").
		Order("d.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to dump diseases: %s", err)
	}

	diseases := map[string]*DiseaseEntry{}
	for _, row := range rows {
		entry, ok := diseases[row.Name]
		if !ok {
			entry = &DiseaseEntry{DiseaseID: row.DiseaseID}
			diseases[row.Name] = entry
		}

		if row.LGDID == nil {
			continue
		}

		record := DiseaseRecord{LGDID: *row.LGDID}
		if row.StableID != nil {
			record.StableID = *row.StableID
		}
		if row.IsDeleted != nil {
			record.IsDeleted = *row.IsDeleted
		}
		if row.Genotype != nil {
			record.Genotype = *row.Genotype
		}
		entry.Records = append(entry.Records, record)
	}

	return diseases, nil
}

// DiseaseSynonyms dumps all diseases that have at least one synonym, keyed by
// disease name.
func (s *Store) DiseaseSynonyms() (map[string][]string, error) {
	rows := []struct {
		Name    string
		Synonym string
	}{}

	err := s.db.Table("disease d").
		Select("d.name, s.synonym").
		Joins("LEFT JOIN disease_synonym s ON s.disease_id = d.id").
		Where("s.synonym IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to dump disease synonyms: %s", err)
	}

	diseases := map[string][]string{}
	for _, row := range rows {
		diseases[row.Name] = append(diseases[row.Name], row.Synonym)
	}

	return diseases, nil
}

// RecordDiseaseName is one live record with its gene symbol and disease name.
type RecordDiseaseName struct {
	StableID string
	Gene     string
	Disease  string
}

// RecordDiseaseNames lists all live records with their gene symbol and
// disease name, used to flag diseases that do not carry the current gene
// symbol.
func (s *Store) RecordDiseaseNames() ([]RecordDiseaseName, error) {
	rows := []struct {
		StableID string
		Gene     string
		Disease  string
	}{}

	err := s.db.Table("locus_genotype_disease lgd").
		Select("g.stable_id, l.name AS gene, d.name AS disease").
		Joins("LEFT JOIN disease d ON d.id = lgd.disease_id").
		Joins("LEFT JOIN g2p_stableid g ON g.id = lgd.stable_id").
		Joins("LEFT JOIN locus l ON l.id = lgd.locus_id").
		Where("g.is_deleted = 0").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record disease names: %s", err)
	}

	result := make([]RecordDiseaseName, 0, len(rows))
	for _, row := range rows {
		result = append(result, RecordDiseaseName(row))
	}

	return result, nil
}

// OntologyEntry is a Mondo or OMIM ontology term stored in G2P.
type OntologyEntry struct {
	Term        string
	Description string
}

// MondoOMIMTerms dumps all Mondo and OMIM ontology terms keyed by accession.
// Duplicated accessions are reported and the first one wins.
func (s *Store) MondoOMIMTerms() (map[string]OntologyEntry, error) {
	rows := []struct {
		Accession   string
		Term        string
		Description string
	}{}

	err := s.db.Table("ontology_term o").
		Select("o.accession, o.term, o.description").
		Joins("LEFT JOIN source s ON s.id = o.source_id").
		Where("s.name = ? OR s.name = ?", "Mondo", "OMIM").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to dump ontology terms: %s", err)
	}

	terms := map[string]OntologyEntry{}
	for _, row := range rows {
		if _, ok := terms[row.Accession]; ok {
			log.Warnf("duplicated ontology term %q", row.Accession)
			continue
		}
		terms[row.Accession] = OntologyEntry{
			Term:        row.Term,
			Description: row.Description,
		}
	}

	return terms, nil
}
