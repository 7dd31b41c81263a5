package database

import (
	"fmt"

	"github.com/gene2phenotype/g2ptools/database/data_model"
)

// GeneInfo is the G2P view of a gene keyed by its Ensembl stable ID.
type GeneInfo struct {
	Symbol     string
	LocusID    uint
	Start      int
	End        int
	SequenceID uint
}

// UnusedGene is a gene with no links from any curation or annotation table.
type UnusedGene struct {
	Symbol  string
	LocusID uint
}

// GeneXrefs collects the identifiers and synonyms attached to a gene symbol.
type GeneXrefs struct {
	StableID string
	LocusID  uint
	Synonyms []string
	HGNCID   string
	OMIMID   string
}

// EnsemblGenes fetches all genes with an Ensembl identifier. It returns the
// gene data keyed by stable ID, plus a symbol to stable ID mapping.
func (s *Store) EnsemblGenes() (map[string]GeneInfo, map[string]string, error) {
	rows := []struct {
		Name       string
		Identifier string
		ID         uint
		Start      int
		End        int
		SequenceID uint
	}{}

	err := s.db.Table("locus l").
		Select("l.name, li.identifier, l.id, l.start, l.end, l.sequence_id").
		Joins("LEFT JOIN locus_identifier li ON li.locus_id = l.id").
		Joins("LEFT JOIN source s ON s.id = li.source_id").
		Where("s.name = ?", "Ensembl").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch G2P genes: %s", err)
	}

	byStableID := map[string]GeneInfo{}
	bySymbol := map[string]string{}
	for _, row := range rows {
		byStableID[row.Identifier] = GeneInfo{
			Symbol:     row.Name,
			LocusID:    row.ID,
			Start:      row.Start,
			End:        row.End,
			SequenceID: row.SequenceID,
		}
		bySymbol[row.Name] = row.Identifier
	}

	return byStableID, bySymbol, nil
}

// GenesWithXrefs fetches the full gene set with HGNC and OMIM IDs and
// synonyms, keyed by gene symbol.
func (s *Store) GenesWithXrefs() (map[string]*GeneXrefs, error) {
	rows := []struct {
		Name       string
		Identifier string
		ID         uint
		Value      *string
	}{}

	err := s.db.Table("locus l").
		Select("l.name, li.identifier, l.id, la.value").
		Joins("LEFT JOIN locus_identifier li ON li.locus_id = l.id").
		Joins("LEFT JOIN locus_attrib la ON la.locus_id = l.id").
		Joins("LEFT JOIN source s ON s.id = li.source_id").
		Where("s.name = ?", "Ensembl").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch G2P genes: %s", err)
	}

	bySymbol := map[string]*GeneXrefs{}
	for _, row := range rows {
		entry, ok := bySymbol[row.Name]
		if !ok {
			entry = &GeneXrefs{
				StableID: row.Identifier,
				LocusID:  row.ID,
			}
			bySymbol[row.Name] = entry
		}
		if row.Value != nil {
			entry.Synonyms = append(entry.Synonyms, *row.Value)
		}
	}

	idRows := []struct {
		Name       string
		Identifier string
	}{}
	err = s.db.Table("locus l").
		Select("l.name, li.identifier").
		Joins("LEFT JOIN locus_identifier li ON li.locus_id = l.id").
		Scan(&idRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gene identifiers: %s", err)
	}

	for _, row := range idRows {
		entry, ok := bySymbol[row.Name]
		if !ok {
			continue
		}
		if isHGNC(row.Identifier) {
			entry.HGNCID = row.Identifier
		} else if isDigits(row.Identifier) {
			entry.OMIMID = row.Identifier
		}
	}

	return bySymbol, nil
}

func isHGNC(identifier string) bool {
	return len(identifier) >= 4 && identifier[:4] == "HGNC"
}

func isDigits(identifier string) bool {
	if identifier == "" {
		return false
	}
	for _, r := range identifier {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// UnusedGenes fetches the genes not linked to any curation table, keyed by
// Ensembl stable ID. Only those can be deleted safely.
func (s *Store) UnusedGenes() (map[string]UnusedGene, error) {
	rows := []struct {
		Name       string
		Identifier string
		ID         uint
	}{}

	err := s.db.Table("locus l").
		Select("l.name, li.identifier, l.id").
		Joins("LEFT JOIN locus_identifier li ON l.id = li.locus_id").
		Joins("LEFT JOIN source s ON s.id = li.source_id").
		Joins("LEFT JOIN locus_genotype_disease lgd ON lgd.locus_id = l.id").
		Joins("LEFT JOIN gene_stats g ON g.gene_id = l.id").
		Joins("LEFT JOIN uniprot_annotation u ON u.gene_id = l.id").
		Joins("LEFT JOIN gene_disease d ON d.gene_id = l.id").
		Where("l.id IS NOT NULL AND lgd.locus_id IS NULL AND g.gene_id IS NULL AND u.gene_id IS NULL AND d.gene_id IS NULL AND s.name = ?", "Ensembl").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unused genes: %s", err)
	}

	result := map[string]UnusedGene{}
	for _, row := range rows {
		result[row.Identifier] = UnusedGene{
			Symbol:  row.Name,
			LocusID: row.ID,
		}
	}

	return result, nil
}

// LocusForeignKeyCheck verifies that every locus link in the given tables
// points at an existing locus row. The mapping is table name to the column
// holding the locus id. An error is returned on the first unlinked entry.
func (s *Store) LocusForeignKeyCheck(tables map[string]string) error {
	for table, column := range tables {
		var count int64
		sql := fmt.Sprintf(
			"SELECT COUNT(t.id) FROM %s t LEFT JOIN locus l ON l.id = t.%s WHERE l.id IS NULL AND t.%s IS NOT NULL",
			table, column, column,
		)

		err := s.db.Raw(sql).Scan(&count).Error
		if err != nil {
			return fmt.Errorf("foreign key check failed on table %s: %s", table, err)
		}
		if count != 0 {
			return fmt.Errorf("found %d unlinked entries in table %s after locus_id foreign key check", count, table)
		}
	}

	return nil
}

// RenameLocus updates the gene symbol of a locus.
func (s *Store) RenameLocus(locusID uint, name string) error {
	err := s.db.Model(&data_model.Locus{}).Where("id = ?", locusID).Update("name", name).Error
	if err != nil {
		return fmt.Errorf("failed to rename locus %d: %s", locusID, err)
	}
	return nil
}

// UpdateLocusCoords updates the coordinates of a locus.
func (s *Store) UpdateLocusCoords(locusID uint, start, end int, sequenceID uint) error {
	err := s.db.Model(&data_model.Locus{}).Where("id = ?", locusID).Updates(map[string]any{
		"start":       start,
		"end":         end,
		"sequence_id": sequenceID,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update coordinates of locus %d: %s", locusID, err)
	}
	return nil
}

// AddLocusSynonym stores an extra gene symbol as a locus attrib.
func (s *Store) AddLocusSynonym(locusID uint, symbol string, attribTypeID, sourceID uint) error {
	attrib := data_model.LocusAttrib{
		Value:        symbol,
		IsDeleted:    0,
		AttribTypeID: attribTypeID,
		LocusID:      locusID,
		SourceID:     sourceID,
	}

	err := s.db.Create(&attrib).Error
	if err != nil {
		return fmt.Errorf("failed to add synonym %q to locus %d: %s", symbol, locusID, err)
	}
	return nil
}

// AddLocusIdentifier attaches a new external identifier to a locus.
func (s *Store) AddLocusIdentifier(locusID uint, identifier string, sourceID uint) error {
	row := data_model.LocusIdentifier{
		Identifier: identifier,
		LocusID:    locusID,
		SourceID:   sourceID,
	}

	err := s.db.Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to add identifier %q to locus %d: %s", identifier, locusID, err)
	}
	return nil
}

// UpdateLocusIdentifier replaces the identifier of a given source on a locus.
func (s *Store) UpdateLocusIdentifier(locusID uint, identifier string, sourceID uint) error {
	err := s.db.Model(&data_model.LocusIdentifier{}).
		Where("locus_id = ? AND source_id = ?", locusID, sourceID).
		Update("identifier", identifier).Error
	if err != nil {
		return fmt.Errorf("failed to update identifier of locus %d: %s", locusID, err)
	}
	return nil
}

// InsertGene adds a new locus together with its Ensembl stable ID. It returns
// the id of the created locus.
func (s *Store) InsertGene(gene data_model.Locus, stableID string, sourceID uint) (uint, error) {
	err := s.db.Create(&gene).Error
	if err != nil {
		return 0, fmt.Errorf("failed to insert gene %q: %s", gene.Name, err)
	}

	err = s.AddLocusIdentifier(gene.ID, stableID, sourceID)
	if err != nil {
		return 0, err
	}

	return gene.ID, nil
}

// DeleteLocus removes a locus and its attribs and identifiers.
func (s *Store) DeleteLocus(locusID uint) error {
	err := s.db.Where("locus_id = ?", locusID).Delete(&data_model.LocusIdentifier{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete identifiers of locus %d: %s", locusID, err)
	}

	err = s.db.Where("locus_id = ?", locusID).Delete(&data_model.LocusAttrib{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete attribs of locus %d: %s", locusID, err)
	}

	err = s.db.Where("id = ?", locusID).Delete(&data_model.Locus{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete locus %d: %s", locusID, err)
	}

	return nil
}

// GeneIDsBySymbol returns a symbol to locus id mapping covering both primary
// gene symbols and synonyms stored in locus_attrib. Primary symbols win.
func (s *Store) GeneIDsBySymbol() (map[string]uint, error) {
	result := map[string]uint{}

	var loci []data_model.Locus
	err := s.db.Find(&loci).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loci: %s", err)
	}
	for _, locus := range loci {
		if _, ok := result[locus.Name]; !ok {
			result[locus.Name] = locus.ID
		}
	}

	var attribs []data_model.LocusAttrib
	err = s.db.Find(&attribs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locus attribs: %s", err)
	}
	for _, attrib := range attribs {
		if _, ok := result[attrib.Value]; !ok {
			result[attrib.Value] = attrib.LocusID
		}
	}

	return result, nil
}

// GeneSymbolsOfType returns a symbol to locus id mapping restricted to loci of
// the given attrib type, normally "gene".
func (s *Store) GeneSymbolsOfType(locusType string) (map[string]uint, error) {
	rows := []struct {
		ID   uint
		Name string
	}{}

	err := s.db.Table("locus l").
		Select("l.id, l.name").
		Joins("LEFT JOIN attrib a ON a.id = l.type_id").
		Where("a.value = ?", locusType).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s loci: %s", locusType, err)
	}

	result := map[string]uint{}
	for _, row := range rows {
		result[row.Name] = row.ID
	}

	return result, nil
}
