// Package ebisearch generates the XML dump consumed by the EBI search
// engine.
package ebisearch

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/gene2phenotype/g2ptools/database"
)

type field struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type ref struct {
	DBName string `xml:"dbname,attr"`
	DBKey  string `xml:"dbkey,attr"`
}

type entry struct {
	ID               string  `xml:"id,attr"`
	Acc              string  `xml:"acc,attr"`
	Name             string  `xml:"name"`
	AdditionalFields []field `xml:"additional_fields>field"`
	CrossReferences  []ref   `xml:"cross_references>ref"`
}

type databaseDump struct {
	XMLName     xml.Name `xml:"database"`
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	URL         string   `xml:"url"`
	URLSearch   string   `xml:"url_search"`
	Release     string   `xml:"release"`
	EntryCount  int      `xml:"entry_count"`
	Entries     []entry  `xml:"entries>entry"`
}

const description = "Gene2Phenotype (G2P) is a detailed collection of expert curated gene-disease associations with information on allelic requirement, observed variant classes and disease mechanism"

// Generate builds the search engine XML for all records on visible panels.
func Generate(version string, records map[string]*database.PublicRecord) ([]byte, error) {
	dump := databaseDump{
		Name:        "G2P",
		Description: description,
		URL:         "https://www.ebi.ac.uk/gene2phenotype/",
		URLSearch:   "https://www.ebi.ac.uk/gene2phenotype/lgd/",
		Release:     version,
		EntryCount:  len(records),
	}

	stableIDs := make([]string, 0, len(records))
	for stableID := range records {
		stableIDs = append(stableIDs, stableID)
	}
	sort.Strings(stableIDs)

	for _, stableID := range stableIDs {
		record := records[stableID]

		item := entry{
			ID:   stableID,
			Acc:  stableID,
			Name: fmt.Sprintf("%s (%s)", record.Disease, record.Confidence),
			AdditionalFields: []field{
				{Name: "gene", Value: record.Gene},
				{Name: "disease", Value: record.Disease},
				{Name: "genotype", Value: record.Genotype},
				{Name: "mechanism", Value: record.Mechanism},
				{Name: "confidence", Value: record.Confidence},
			},
		}

		for _, xref := range record.GeneIDs {
			switch {
			case strings.HasPrefix(xref, "ENSG"):
				item.CrossReferences = append(item.CrossReferences, ref{DBName: "ENSEMBL_GENE", DBKey: xref})
			case strings.HasPrefix(xref, "HGNC:"):
				item.CrossReferences = append(item.CrossReferences, ref{DBName: "HGNC", DBKey: xref})
			}
			// OMIM gene IDs are skipped, the search engine does not
			// support them
		}

		for _, xref := range record.OntologyTerms {
			var dbName string
			switch {
			case strings.HasPrefix(xref, "MONDO"):
				dbName = "Mondo"
			case strings.HasPrefix(xref, "Orphanet"):
				dbName = "Orphanet"
			default:
				dbName = "OMIM_DISEASE"
			}
			item.CrossReferences = append(item.CrossReferences, ref{DBName: dbName, DBKey: xref})
		}

		dump.Entries = append(dump.Entries, item)
	}

	data, err := xml.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate XML dump: %s", err)
	}

	return append([]byte(xml.Header), data...), nil
}
