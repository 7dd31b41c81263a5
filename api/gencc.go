package api

import (
	"fmt"
	"net/http"

	"github.com/gene2phenotype/g2ptools/network"
)

// GenCCSubmissionEntry records one submitted record in the service, so later
// runs can tell new, updated and already-submitted records apart.
type GenCCSubmissionEntry struct {
	SubmissionID     string `json:"submission_id"`
	DateOfSubmission string `json:"date_of_submission"`
	TypeOfSubmission string `json:"type_of_submission"`
	G2PStableID      string `json:"g2p_stable_id"`
}

type genccIDList struct {
	IDs []string `json:"ids"`
}

type genccIDMap struct {
	IDs map[string]string `json:"ids"`
}

// DownloadAllPanels fetches the all-panels record dump in CSV form. The call
// is made without a session on purpose, only visible panels are included for
// anonymous users.
func (c *Client) DownloadAllPanels() ([]byte, error) {
	return c.downloadCSV("panel/all/download/")
}

// DownloadPanel fetches the record dump of one panel in CSV form.
func (c *Client) DownloadPanel(panel string) ([]byte, error) {
	return c.downloadCSV("panel/" + panel + "/download/")
}

func (c *Client) downloadCSV(path string) ([]byte, error) {
	resp, err := c.Do("GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %s", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d while downloading %s", resp.StatusCode, path)
	}

	data, err := network.DecompressResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read download of %s: %s", path, err)
	}

	return data, nil
}

// UnsubmittedStableIDs lists live records on public panels that have never
// been submitted to GenCC.
func (c *Client) UnsubmittedStableIDs() ([]string, error) {
	var ids []string

	err := c.doJSON("GET", "unsubmitted_stable_ids/", nil, &ids, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsubmitted records: %s", err)
	}

	return ids, nil
}

// UpdatedSinceSubmission maps stable IDs of records reviewed after their last
// GenCC submission to their submission ids.
func (c *Client) UpdatedSinceSubmission() (map[string]string, error) {
	result := genccIDMap{}

	err := c.doJSON("GET", "later_review_date/", nil, &result, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated records: %s", err)
	}

	return result.IDs, nil
}

// DeletedSubmittedRecords lists stable IDs of records submitted to GenCC that
// were later deleted in G2P.
func (c *Client) DeletedSubmittedRecords() ([]string, error) {
	result := genccIDList{}

	err := c.doJSON("GET", "gencc_deleted_records/", nil, &result, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deleted records: %s", err)
	}

	return result.IDs, nil
}

// CreateGenCCSubmissions records a new batch of GenCC submissions. Requires a
// logged-in session.
func (c *Client) CreateGenCCSubmissions(entries []GenCCSubmissionEntry) error {
	err := c.doJSON("POST", "gencc_create/", entries, nil, http.StatusCreated)
	if err != nil {
		return fmt.Errorf("failed to create submission entries: %s", err)
	}

	return nil
}
