package clingen_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gene2phenotype/g2ptools/clingen"
)

const sampleSummary = `CLINGEN GENE-DISEASE VALIDITY CURATIONS
Downloaded: 2025-01-01
++++++++++++,+++++++++++,+++++++++++
"GENE SYMBOL","GENE ID (HGNC)","DISEASE LABEL","DISEASE ID (MONDO)","MOI","SOP","CLASSIFICATION","ONLINE REPORT","CLASSIFICATION DATE","GCEP"
+++++++++++,+++++++++++,++++++++++++
"ABCC9","HGNC:60","hypertrichotic osteochondrodysplasia Cantu type","MONDO:0009406","AD","SOP7","Definitive","https://search.clinicalgenome.org/kb/gene-validity/1","2021-03-12","Cardiomyopathy GCEP"
"ABCD1","HGNC:61","adrenoleukodystrophy","MONDO:0018544","XL","SOP7","Moderate","https://search.clinicalgenome.org/kb/gene-validity/2","2022-01-02","Peroxisomal GCEP"
`

func TestReadSummaryFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "clingen.csv")
	err := os.WriteFile(filename, []byte(sampleSummary), 0o644)
	if err != nil {
		t.Fatalf("failed to write ClinGen file: %s", err)
	}

	rows, err := clingen.ReadSummaryFile(filename)
	if err != nil {
		t.Fatalf("ReadSummaryFile failed: %s", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	row := rows[0]
	if row.GeneSymbol != "ABCC9" {
		t.Errorf("unexpected gene symbol %q", row.GeneSymbol)
	}
	if row.HGNCID != "HGNC:60" {
		t.Errorf("unexpected HGNC ID %q", row.HGNCID)
	}
	if row.MondoID != "MONDO:0009406" {
		t.Errorf("unexpected Mondo ID %q", row.MondoID)
	}
	if row.Classification != "Definitive" {
		t.Errorf("unexpected classification %q", row.Classification)
	}
	if row.Panel != "Cardiomyopathy GCEP" {
		t.Errorf("unexpected panel %q", row.Panel)
	}
}

func TestFetchEvidenceSummaries(t *testing.T) {
	page := `<html><body><table>
		<tr><td>Classification:</td><td>Definitive</td></tr>
		<tr><td>Evidence Summary:</td><td>The   ABCC9 gene was first reported
		in relation to this disease in 2012.</td></tr>
	</table></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	summaries, err := clingen.FetchEvidenceSummaries(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("FetchEvidenceSummaries failed: %s", err)
	}

	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	want := "The ABCC9 gene was first reported in relation to this disease in 2012."
	if summaries[0] != want {
		t.Errorf("summary = %q, want %q", summaries[0], want)
	}
}
