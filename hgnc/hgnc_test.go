package hgnc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gene2phenotype/g2ptools/hgnc"
)

const sampleHGNC = `# HGNC complete set
hgnc_id	symbol	prev_symbol	omim_id	ensembl_gene_id
HGNC:5	A1BG		138670	ENSG00000121410
HGNC:37133	A1BG-AS1	"NCRNA00181|A1BGAS"	"100000|200000"	ENSG00000268895
HGNC:24086	A1CF	ACF	618199
`

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "hgnc_complete_set.txt")
	err := os.WriteFile(filename, []byte(sampleHGNC), 0o644)
	if err != nil {
		t.Fatalf("failed to write HGNC file: %s", err)
	}

	genes, err := hgnc.ReadFile(filename)
	if err != nil {
		t.Fatalf("ReadFile failed: %s", err)
	}

	if len(genes) != 2 {
		t.Fatalf("expected 2 genes with Ensembl IDs, got %d", len(genes))
	}

	gene, ok := genes["ENSG00000121410"]
	if !ok {
		t.Fatal("expected ENSG00000121410 in the gene set")
	}
	if gene.Symbol != "A1BG" {
		t.Errorf("unexpected symbol %q", gene.Symbol)
	}
	if len(gene.HGNCIDs) != 1 || gene.HGNCIDs[0] != "HGNC:5" {
		t.Errorf("unexpected HGNC IDs %v", gene.HGNCIDs)
	}
	if len(gene.OMIMIDs) != 1 || gene.OMIMIDs[0] != "138670" {
		t.Errorf("unexpected OMIM IDs %v", gene.OMIMIDs)
	}
	if len(gene.PrevSymbols) != 0 {
		t.Errorf("unexpected previous symbols %v", gene.PrevSymbols)
	}

	gene, ok = genes["ENSG00000268895"]
	if !ok {
		t.Fatal("expected ENSG00000268895 in the gene set")
	}
	if len(gene.PrevSymbols) != 2 || gene.PrevSymbols[0] != "NCRNA00181" || gene.PrevSymbols[1] != "A1BGAS" {
		t.Errorf("unexpected previous symbols %v", gene.PrevSymbols)
	}
	if len(gene.OMIMIDs) != 2 {
		t.Errorf("expected 2 OMIM IDs, got %v", gene.OMIMIDs)
	}
}
