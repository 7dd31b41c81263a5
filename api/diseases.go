package api

import (
	"fmt"
	"net/http"
)

// DiseaseUpdate is a plain rename of a stored disease.
type DiseaseUpdate struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LGDDiseaseUpdate points a curated record at a different disease id.
type LGDDiseaseUpdate struct {
	DiseaseID    uint   `json:"disease_id"`
	NewDiseaseID uint   `json:"new_disease_id"`
	StableID     string `json:"stable_id,omitempty"`
}

// UpdateDiseasesResult reports renames the service refused because the new
// name already exists. Those records get re-pointed at the existing disease
// through lgd_disease_updates.
type UpdateDiseasesResult struct {
	Errors []struct {
		ID         uint `json:"id"`
		ExistingID uint `json:"existing_id"`
	} `json:"errors"`
}

// AddDisease creates a new disease and returns its id.
func (c *Client) AddDisease(name string) (uint, error) {
	payload := map[string]string{"name": name}

	result := struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}{}

	err := c.doJSON("POST", "add/disease/", payload, &result, http.StatusCreated)
	if err != nil {
		return 0, fmt.Errorf("failed to add disease %q: %s", name, err)
	}

	return result.ID, nil
}

// UpdateDiseases renames a batch of diseases. Renames rejected because the
// target name already exists come back in the result.
func (c *Client) UpdateDiseases(updates []DiseaseUpdate) (*UpdateDiseasesResult, error) {
	result := new(UpdateDiseasesResult)

	err := c.doJSON("POST", "update/diseases/", updates, result, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to update diseases: %s", err)
	}

	return result, nil
}

// UpdateLGDDiseases re-points curated records at new disease ids.
func (c *Client) UpdateLGDDiseases(updates []LGDDiseaseUpdate) error {
	err := c.doJSON("POST", "lgd_disease_updates/", updates, nil, http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to update record diseases: %s", err)
	}

	return nil
}
