// Package europepmc fetches publication data from the Europe PMC REST
// service.
package europepmc

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/network"
)

const restURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/"

// Article is the publication data needed for relevance analysis. FullText is
// empty when no open access full text is available.
type Article struct {
	Title    string
	Abstract string
	Journal  string
	FullText string
}

type articleResponse struct {
	HitCount int `json:"hitCount"`
	Result   struct {
		Title          string `json:"title"`
		AbstractText   string `json:"abstractText"`
		FullTextIDList *struct {
			FullTextID []string `json:"fullTextId"`
		} `json:"fullTextIdList"`
		JournalInfo *struct {
			Journal struct {
				Title string `json:"title"`
			} `json:"journal"`
		} `json:"journalInfo"`
	} `json:"result"`
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

func (c *Client) get(path string) ([]byte, int, error) {
	resp, err := c.Get(restURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %s", path, err)
	}
	defer resp.Body.Close()

	data, err := network.DecompressResponseBody(resp)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response of %s: %s", path, err)
	}

	return data, resp.StatusCode, nil
}

// Article fetches the core metadata of one PubMed publication. A nil article
// with nil error means the publication is unknown or has no usable title or
// abstract.
func (c *Client) Article(pmid int) (*Article, error) {
	path := fmt.Sprintf("article/MED/%d?resultType=core&format=json", pmid)

	data, status, err := c.get(path)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d while fetching article %d", status, pmid)
	}

	result := articleResponse{}
	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode article %d: %s", pmid, err)
	}

	if result.HitCount == 0 {
		return nil, nil
	}
	if result.Result.Title == "" || result.Result.AbstractText == "" {
		return nil, nil
	}

	article := &Article{
		Title:    result.Result.Title,
		Abstract: stripMarkup(result.Result.AbstractText),
		Journal:  "Unknown",
	}
	if result.Result.JournalInfo != nil {
		article.Journal = result.Result.JournalInfo.Journal.Title
	}

	list := result.Result.FullTextIDList
	if list != nil && len(list.FullTextID) > 0 {
		fullText, err := c.fullText(list.FullTextID[0])
		if err != nil {
			log.Warnf("full text not available for PMID %d: %s", pmid, err)
		} else {
			article.FullText = fullText
		}
	}

	return article, nil
}

// fullText fetches and flattens the open access full text XML of an article.
func (c *Client) fullText(fullTextID string) (string, error) {
	data, status, err := c.get(fullTextID + "/fullTextXML")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", status)
	}

	return extractBodyText(data)
}

// extractBodyText flattens the article body into plain text. Section titles
// stay on their own lines, citation cross references are dropped.
func extractBodyText(data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	var builder strings.Builder
	inBody := false
	skipDepth := 0

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch elem := token.(type) {
		case xml.StartElement:
			switch {
			case elem.Name.Local == "body":
				inBody = true
			case !inBody:
			case skipDepth > 0 || elem.Name.Local == "xref":
				skipDepth++
			case elem.Name.Local == "title":
				builder.WriteString("\n")
			case elem.Name.Local == "p":
				builder.WriteString(" ")
			}
		case xml.EndElement:
			switch {
			case elem.Name.Local == "body":
				inBody = false
			case skipDepth > 0:
				skipDepth--
			case inBody && elem.Name.Local == "title":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inBody && skipDepth == 0 {
				builder.WriteString(strings.ReplaceAll(string(elem), "\n", " "))
			}
		}
	}

	return builder.String(), nil
}

// stripMarkup drops HTML tags from abstract text, keeping the visible words.
func stripMarkup(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
