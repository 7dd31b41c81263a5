package gtf_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gene2phenotype/g2ptools/gtf"
	"github.com/klauspost/compress/gzip"
)

const sampleGTF = `#!genome-build GRCh38
1	havana	gene	65419	71585	.	+	.	gene_id "ENSG00000186092"; gene_version "7"; gene_name "OR4F5"; gene_biotype "protein_coding";
1	havana	transcript	65419	71585	.	+	.	gene_id "ENSG00000186092"; gene_name "OR4F5"; gene_biotype "protein_coding";
1	havana	gene	89295	133723	.	-	.	gene_id "ENSG00000238009"; gene_name "AL627309.1"; gene_biotype "misc_RNA";
2	havana	gene	1000	2000	.	+	.	gene_id "ENSG00000000001"; gene_name "DUPGENE"; gene_biotype "protein_coding";
3	havana	gene	5000	6000	.	+	.	gene_id "ENSG00000000002"; gene_name "DUPGENE"; gene_biotype "protein_coding";
X	havana	gene	276322	303356	.	+	.	gene_id "ENSG00000228572"; gene_name "ASMTL"; gene_biotype "protein_coding";
Y	havana	gene	276322	303356	.	+	.	gene_id "ENSG00000285000"; gene_name "ASMTL"; gene_biotype "protein_coding";
`

func writeSampleGTF(t *testing.T, dir string) string {
	t.Helper()

	filename := filepath.Join(dir, "test.gtf.gz")
	file, err := os.Create(filename)
	if err != nil {
		t.Fatalf("failed to create GTF file: %s", err)
	}
	defer file.Close()

	writer := gzip.NewWriter(file)
	_, err = writer.Write([]byte(sampleGTF))
	if err != nil {
		t.Fatalf("failed to write GTF file: %s", err)
	}
	err = writer.Close()
	if err != nil {
		t.Fatalf("failed to close GTF writer: %s", err)
	}

	return filename
}

func TestReadGenes(t *testing.T) {
	dir := t.TempDir()
	filename := writeSampleGTF(t, dir)

	genes, err := gtf.ReadGenes(filename, dir, []string{"pseudogene", "misc_RNA"})
	if err != nil {
		t.Fatalf("ReadGenes failed: %s", err)
	}

	gene, ok := genes["ENSG00000186092"]
	if !ok {
		t.Fatal("expected OR4F5 in the gene set")
	}
	if gene.Symbol != "OR4F5" || gene.Chr != "1" || gene.Start != 65419 || gene.End != 71585 || gene.Strand != "+" {
		t.Errorf("unexpected gene details: %+v", gene)
	}

	// excluded biotype
	if _, ok := genes["ENSG00000238009"]; ok {
		t.Error("misc_RNA gene should have been excluded")
	}

	// ambiguous symbol outside the pseudoautosomal regions
	if _, ok := genes["ENSG00000000001"]; ok {
		t.Error("ambiguous symbol should have been dropped")
	}

	// pseudoautosomal duplicate kept under the first stable ID
	if _, ok := genes["ENSG00000228572"]; !ok {
		t.Error("expected pseudoautosomal gene under its X stable ID")
	}
	if _, ok := genes["ENSG00000285000"]; ok {
		t.Error("pseudoautosomal Y copy should not get its own entry")
	}
}

func TestReadGenesReports(t *testing.T) {
	dir := t.TempDir()
	filename := writeSampleGTF(t, dir)

	_, err := gtf.ReadGenes(filename, dir, nil)
	if err != nil {
		t.Fatalf("ReadGenes failed: %s", err)
	}

	errorLog, err := os.ReadFile(filepath.Join(dir, "ensembl_genes_grch38_error.log"))
	if err != nil {
		t.Fatalf("failed to read error log: %s", err)
	}
	if !strings.Contains(string(errorLog), "DUPGENE") {
		t.Errorf("expected DUPGENE in the error log, got: %s", errorLog)
	}

	geneList, err := os.ReadFile(filepath.Join(dir, "ensembl_genes_grch38.txt"))
	if err != nil {
		t.Fatalf("failed to read gene list: %s", err)
	}
	if !strings.Contains(string(geneList), "ENSG00000186092\tOR4F5") {
		t.Errorf("expected OR4F5 in the gene list, got: %s", geneList)
	}
}

func TestURL(t *testing.T) {
	url := gtf.URL(110)
	want := "https://ftp.ensembl.org/pub/release-110/gtf/homo_sapiens/Homo_sapiens.GRCh38.110.chr.gtf.gz"
	if url != want {
		t.Errorf("URL(110) = %q, want %q", url, want)
	}
}
