package api

import (
	"fmt"
	"net/http"
)

// OntologyTermUpdate is the corrected term and description for one accession.
type OntologyTermUpdate struct {
	Term        string `json:"term"`
	Description string `json:"description"`
}

// UpdateOntologyTerms replaces stored ontology terms, keyed by accession.
func (c *Client) UpdateOntologyTerms(updates map[string]OntologyTermUpdate) error {
	result := struct {
		Errors []map[string]any `json:"errors"`
	}{}

	err := c.doJSON("POST", "update/ontology_terms/", updates, &result, http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to update ontology terms: %s", err)
	}

	if len(result.Errors) != 0 {
		return fmt.Errorf("some ontology terms were not updated: %v", result.Errors)
	}

	return nil
}

// DeleteOntologyTerms removes obsolete ontology accessions.
func (c *Client) DeleteOntologyTerms(accessions []string) error {
	result := struct {
		Errors []map[string]any `json:"errors"`
	}{}

	err := c.doJSON("DELETE", "update/ontology_terms/", accessions, &result, http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to delete ontology terms: %s", err)
	}

	if len(result.Errors) != 0 {
		return fmt.Errorf("some ontology terms were not deleted: %v", result.Errors)
	}

	return nil
}
