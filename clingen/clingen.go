// Package clingen reads ClinGen gene-disease validity exports and fetches
// evidence summaries from the ClinGen site.
package clingen

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gene2phenotype/g2ptools/network"
)

// Row is one curated gene-disease assertion from the ClinGen validity
// export.
type Row struct {
	GeneSymbol     string
	HGNCID         string
	DiseaseLabel   string
	MondoID        string
	Classification string
	Panel          string
	OnlineReport   string
}

// Record is the extracted form of a ClinGen assertion, enriched with the
// evidence summary scraped from the online report. The analysis fields are
// filled in by a later model pass, a record with PMIDs set is considered
// analysed.
type Record struct {
	GeneSymbol      string   `json:"gene_symbol"`
	HGNCID          string   `json:"hgnc_id"`
	Disease         string   `json:"disease"`
	MondoID         string   `json:"mondo_id"`
	Confidence      string   `json:"confidence"`
	Panel           string   `json:"clingen_panel"`
	EvidenceSummary []string `json:"evidence_summary"`
	URL             string   `json:"url"`

	PMIDs              []string `json:"pmids,omitempty"`
	DiseaseID          string   `json:"disease_id,omitempty"`
	Mechanism          string   `json:"mechanism,omitempty"`
	AllelicRequirement string   `json:"allelic_requirement,omitempty"`
	Phenotypes         []string `json:"phenotypes,omitempty"`
	Evidence           []string `json:"evidence,omitempty"`
	Comment            string   `json:"comment,omitempty"`
}

// ReadSummaryFile parses a ClinGen gene-disease validity CSV export. The file
// carries preamble lines before the header and "+"-filled separator rows,
// both are skipped.
func ReadSummaryFile(filename string) ([]Row, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClinGen file %s: %s", filename, err)
	}

	lines := strings.Split(string(data), "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, `"GENE SYMBOL"`) || strings.HasPrefix(line, "GENE SYMBOL") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("no header found in ClinGen file %s", filename)
	}

	reader := csv.NewReader(bytes.NewReader([]byte(strings.Join(lines[start:], "\n"))))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ClinGen file %s: %s", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no data found in ClinGen file %s", filename)
	}

	columns := map[string]int{}
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		index, ok := columns[name]
		if !ok || index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	var rows []Row
	for _, record := range records[1:] {
		symbol := field(record, "GENE SYMBOL")
		if symbol == "" || strings.HasPrefix(symbol, "+") {
			continue
		}

		rows = append(rows, Row{
			GeneSymbol:     symbol,
			HGNCID:         field(record, "GENE ID (HGNC)"),
			DiseaseLabel:   field(record, "DISEASE LABEL"),
			MondoID:        field(record, "DISEASE ID (MONDO)"),
			Classification: field(record, "CLASSIFICATION"),
			Panel:          field(record, "GCEP"),
			OnlineReport:   field(record, "ONLINE REPORT"),
		})
	}

	return rows, nil
}

// FetchEvidenceSummaries scrapes the evidence summary texts from a ClinGen
// online report page.
func FetchEvidenceSummaries(client *http.Client, url string) ([]string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %s", url, err)
	}
	defer resp.Body.Close()

	data, err := network.DecompressResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %s", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d while fetching report %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %s", url, err)
	}

	var summaries []string
	doc.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		if strings.TrimSpace(cell.Text()) != "Evidence Summary:" {
			return
		}

		next := cell.NextFiltered("td")
		if next.Length() == 0 {
			next = cell.Parent().Find("td").Last()
		}

		text := strings.Join(strings.Fields(next.Text()), " ")
		if text != "" && text != "Evidence Summary:" {
			summaries = append(summaries, text)
		}
	})

	return summaries, nil
}
