// Package ols wraps the EBI Ontology Lookup Service search API.
package ols

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gene2phenotype/g2ptools/network"
)

const searchURL = "https://www.ebi.ac.uk/ols4/api/search"

// Term is the label and description resolved for an ontology accession. Zero
// value means the accession is unknown.
type Term struct {
	Label       string
	Description string
}

type searchResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			IRI         string   `json:"iri"`
			Label       string   `json:"label"`
			Description []string `json:"description"`
		} `json:"docs"`
	} `json:"response"`
}

type Client struct {
	*http.Client
}

func NewClient() *Client {
	client := &Client{
		Client: new(http.Client),
	}
	client.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	return client
}

func (c *Client) search(query string, params map[string]string) (*searchResponse, error) {
	values := url.Values{}
	values.Set("q", query)
	for name, value := range params {
		values.Set(name, value)
	}

	req, err := http.NewRequest("GET", searchURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OLS search for %q failed: %s", query, err)
	}
	defer resp.Body.Close()

	data, err := network.DecompressResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read OLS response for %q: %s", query, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from OLS search for %q", resp.StatusCode, query)
	}

	result := new(searchResponse)
	err = json.Unmarshal(data, result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode OLS response for %q: %s", query, err)
	}

	return result, nil
}

// Mondo resolves a Mondo accession with an exact match search.
func (c *Client) Mondo(accession string) (*Term, error) {
	result, err := c.search(accession, map[string]string{
		"ontology": "mondo",
		"exact":    "1",
	})
	if err != nil {
		return nil, err
	}

	if result.Response.NumFound == 0 {
		return nil, nil
	}

	doc := result.Response.Docs[0]
	term := &Term{Label: doc.Label}
	if len(doc.Description) > 0 {
		term.Description = doc.Description[0]
	}

	return term, nil
}

// OMIM resolves an OMIM accession. The cco ontology aggregates several
// sources, only hits backed by an OMIM IRI count.
func (c *Client) OMIM(accession string) (*Term, error) {
	result, err := c.search(accession, map[string]string{
		"ontology": "cco",
	})
	if err != nil {
		return nil, err
	}

	if result.Response.NumFound == 0 {
		return nil, nil
	}

	doc := result.Response.Docs[0]
	if !strings.Contains(doc.IRI, "/omim/") {
		return nil, nil
	}

	term := &Term{Label: doc.Label}
	if len(doc.Description) > 0 {
		term.Description = doc.Description[0]
	}

	return term, nil
}
