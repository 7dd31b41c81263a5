package database

import (
	"fmt"

	"github.com/gene2phenotype/g2ptools/database/data_model"
)

// InsertGeneStats bulk inserts score rows into gene_stats.
func (s *Store) InsertGeneStats(rows []data_model.GeneStats) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("failed to insert gene stats: %s", err)
	}

	return nil
}
