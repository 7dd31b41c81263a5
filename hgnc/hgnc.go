package hgnc

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FileURL is the download URL of the full HGNC gene set in TSV form.
const FileURL = "https://storage.googleapis.com/public-download-files/hgnc/tsv/tsv/hgnc_complete_set.txt"

// Gene collects the cross references of one HGNC gene, keyed later by its
// Ensembl gene ID. OMIM IDs come "|" separated in the source file and are
// kept split.
type Gene struct {
	Symbol      string
	HGNCIDs     []string
	PrevSymbols []string
	OMIMIDs     []string
}

// ReadFile parses the HGNC complete gene set TSV file into an Ensembl gene ID
// to gene mapping. Rows without an Ensembl gene ID are skipped.
func ReadFile(filename string) (map[string]*Gene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open HGNC file %s: %s", filename, err)
	}
	defer file.Close()

	var header []string
	result := map[string]*Gene{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "hgnc_id") {
			header = strings.Split(strings.TrimRight(line, "\n"), "\t")
			continue
		}
		if !strings.HasPrefix(line, "HGNC:") || header == nil {
			continue
		}

		fields := strings.Split(line, "\t")
		row := map[string]string{}
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}

		ensemblID := row["ensembl_gene_id"]
		if ensemblID == "" {
			continue
		}

		gene, ok := result[ensemblID]
		if !ok {
			gene = &Gene{}
			result[ensemblID] = gene
		}
		gene.Symbol = row["symbol"]

		if value := cleanValue(row["hgnc_id"]); value != "" {
			gene.HGNCIDs = append(gene.HGNCIDs, value)
		}
		if value := cleanValue(row["prev_symbol"]); value != "" {
			gene.PrevSymbols = append(gene.PrevSymbols, splitMulti(value)...)
		}
		if value := cleanValue(row["omim_id"]); value != "" {
			gene.OMIMIDs = append(gene.OMIMIDs, splitMulti(value)...)
		}
	}

	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read HGNC file %s: %s", filename, err)
	}

	return result, nil
}

func cleanValue(value string) string {
	return strings.ReplaceAll(value, `"`, "")
}

func splitMulti(value string) []string {
	var result []string
	for _, part := range strings.Split(value, "|") {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
