package api

import (
	"fmt"
	"net/http"
)

// LGDRecord is the subset of a curated record returned by the lgd endpoint
// that is needed for cross checking user input.
type LGDRecord struct {
	Locus struct {
		GeneSymbol string `json:"gene_symbol"`
	} `json:"locus"`
	Disease struct {
		Name string `json:"name"`
	} `json:"disease"`
	Genotype           string `json:"genotype"`
	MolecularMechanism struct {
		Mechanism string `json:"mechanism"`
	} `json:"molecular_mechanism"`
}

// MergeRequest folds a set of records into one surviving record.
type MergeRequest struct {
	G2PIDs     []string `json:"g2p_ids"`
	FinalG2PID string   `json:"final_g2p_id"`
}

// GetLGD fetches one curated record by its G2P stable ID.
func (c *Client) GetLGD(stableID string) (*LGDRecord, error) {
	record := new(LGDRecord)

	err := c.doJSON("GET", "lgd/"+stableID, nil, record, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record %s: %s", stableID, err)
	}

	return record, nil
}

// MergeRecords folds duplicated records into their surviving record.
func (c *Client) MergeRecords(merges []MergeRequest) error {
	result := map[string]any{}

	err := c.doJSON("POST", "merge_records/", merges, &result, http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to merge records: %s", err)
	}

	if msg, ok := result["error"]; ok {
		return fmt.Errorf("some records were not merged: %v", msg)
	}

	return nil
}
