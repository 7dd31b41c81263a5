package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gene2phenotype/g2ptools/network"
)

// ActivityLog is one curation action recorded by the service. Most fields
// only apply to record level changes.
type ActivityLog struct {
	G2PID      string `json:"g2p_id"`
	DataType   string `json:"data_type"`
	ChangeType string `json:"change_type"`
	IsDeleted  int    `json:"is_deleted"`
	Date       string `json:"date"`
	User       string `json:"user"`
	Disease    string `json:"disease"`
	Genotype   string `json:"genotype"`
	Mechanism  string `json:"mechanism"`
	Confidence string `json:"confidence"`
}

type activityLogPage struct {
	Results []ActivityLog `json:"results"`
	Next    *string       `json:"next"`
}

// ActivityLogs fetches all curation activity since the cutoff date, given in
// YYYY-MM-DD form. The endpoint paginates, pages are followed until done.
func (c *Client) ActivityLogs(dateCutoff string) ([]ActivityLog, error) {
	return c.collectActivityLogs(c.baseURL + "activity_logs/?date_cutoff=" + dateCutoff)
}

// RecordActivityLogs fetches the curation activity of one record.
func (c *Client) RecordActivityLogs(stableID string) ([]ActivityLog, error) {
	return c.collectActivityLogs(c.baseURL + "activity_logs/?stable_id=" + stableID)
}

func (c *Client) collectActivityLogs(target string) ([]ActivityLog, error) {
	var logs []ActivityLog

	for target != "" {
		req, err := http.NewRequest("GET", target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create new request: %s", err)
		}
		for name, value := range c.headers {
			req.Header.Set(name, value)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch activity logs: %s", err)
		}

		data, err := network.DecompressResponseBody(resp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read activity logs: %s", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d while fetching activity logs", resp.StatusCode)
		}

		page := activityLogPage{}
		err = json.Unmarshal(data, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to decode activity logs: %s", err)
		}

		logs = append(logs, page.Results...)

		if page.Next == nil {
			break
		}
		target = *page.Next
	}

	return logs, nil
}
