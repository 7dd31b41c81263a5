package database

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/database/data_model"
)

// PublicRecord is the flattened view of a curated record on a visible panel,
// used for file generation.
type PublicRecord struct {
	Disease       string
	Confidence    string
	Genotype      string
	Mechanism     string
	Gene          string
	Panels        []string
	GeneIDs       []string
	OntologyTerms []string
}

// PublicPanelRecords dumps all records linked to visible panels, keyed by G2P
// stable ID. Panel names, gene identifiers and ontology accessions are
// aggregated per record.
func (s *Store) PublicPanelRecords() (map[string]*PublicRecord, error) {
	rows := []struct {
		StableID      string
		Disease       string
		Confidence    string
		Genotype      string
		Mechanism     string
		Gene          string
		PanelNames    string
		Identifiers   string
		OntologyTerms *string
	}{}

	err := s.db.Table("locus_genotype_disease lgd").
		Select(`g2p.stable_id, d.name AS disease, a1.value AS confidence, a2.value AS genotype,
			m.value AS mechanism, l.name AS gene,
			GROUP_CONCAT(DISTINCT p.name) AS panel_names,
			GROUP_CONCAT(DISTINCT li.identifier) AS identifiers,
			GROUP_CONCAT(DISTINCT o.accession) AS ontology_terms`).
		Joins("LEFT JOIN g2p_stableid g2p ON g2p.id = lgd.stable_id").
		Joins("LEFT JOIN lgd_panel panel ON panel.lgd_id = lgd.id").
		Joins("LEFT JOIN panel p ON p.id = panel.panel_id").
		Joins("LEFT JOIN disease d ON d.id = lgd.disease_id").
		Joins("LEFT JOIN disease_ontology_term dot ON dot.disease_id = d.id").
		Joins("LEFT JOIN ontology_term o ON o.id = dot.ontology_term_id").
		Joins("LEFT JOIN attrib a1 ON a1.id = lgd.confidence_id").
		Joins("LEFT JOIN attrib a2 ON a2.id = lgd.genotype_id").
		Joins("LEFT JOIN cv_molecular_mechanism m ON m.id = lgd.mechanism_id").
		Joins("LEFT JOIN locus l ON l.id = lgd.locus_id").
		Joins("LEFT JOIN locus_identifier li ON li.locus_id = l.id").
		Where("p.is_visible = 1").
		Group("g2p.stable_id, d.name, a1.value, a2.value, m.value, l.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to dump public records: %s", err)
	}

	records := map[string]*PublicRecord{}
	for _, row := range rows {
		if _, ok := records[row.StableID]; ok {
			log.Warnf("duplicated record %q", row.StableID)
			continue
		}

		record := &PublicRecord{
			Disease:    row.Disease,
			Confidence: row.Confidence,
			Genotype:   row.Genotype,
			Mechanism:  row.Mechanism,
			Gene:       row.Gene,
			Panels:     strings.Split(row.PanelNames, ","),
			GeneIDs:    strings.Split(row.Identifiers, ","),
		}
		if row.OntologyTerms != nil && *row.OntologyTerms != "" {
			record.OntologyTerms = strings.Split(*row.OntologyTerms, ",")
		}
		records[row.StableID] = record
	}

	return records, nil
}

// AttribsByType dumps all controlled-vocabulary values grouped by attrib type
// code. Molecular mechanisms live in their own table and are merged in under
// their type.
func (s *Store) AttribsByType() (map[string]map[string]uint, error) {
	attribRows := []struct {
		ID    uint
		Value string
		Code  string
	}{}

	err := s.db.Table("attrib a").
		Select("a.id, a.value, at.code").
		Joins("LEFT JOIN attrib_type at ON a.type_id = at.id").
		Where("at.is_deleted = 0").
		Scan(&attribRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attribs: %s", err)
	}

	result := map[string]map[string]uint{}
	for _, row := range attribRows {
		if _, ok := result[row.Code]; !ok {
			result[row.Code] = map[string]uint{}
		}
		result[row.Code][row.Value] = row.ID
	}

	var mechanisms []data_model.CVMolecularMechanism
	err = s.db.Find(&mechanisms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch molecular mechanisms: %s", err)
	}
	for _, mech := range mechanisms {
		if _, ok := result[mech.Type]; !ok {
			result[mech.Type] = map[string]uint{}
		}
		result[mech.Type][mech.Value] = mech.ID
	}

	return result, nil
}

// Panels returns a name to id mapping of all panels.
func (s *Store) Panels() (map[string]uint, error) {
	var panels []data_model.Panel
	err := s.db.Find(&panels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch panels: %s", err)
	}

	result := map[string]uint{}
	for _, panel := range panels {
		result[panel.Name] = panel.ID
	}

	return result, nil
}
