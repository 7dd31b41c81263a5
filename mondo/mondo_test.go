package mondo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gene2phenotype/g2ptools/mondo"
)

const sampleOWL = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
    xmlns:owl="http://www.w3.org/2002/07/owl#"
    xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
    xmlns:oboInOwl="http://www.geneontology.org/formats/oboInOwl#">
  <owl:Ontology>
    <owl:versionIRI rdf:resource="http://purl.obolibrary.org/obo/mondo/releases/2025-06-03/mondo.owl"/>
  </owl:Ontology>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/MONDO_0000001">
    <oboInOwl:id>MONDO:0000001</oboInOwl:id>
    <rdfs:label>linked disease</rdfs:label>
    <rdfs:subClassOf>
      <owl:Restriction>
        <owl:someValuesFrom rdf:resource="http://identifiers.org/hgnc/12345"/>
      </owl:Restriction>
    </rdfs:subClassOf>
  </owl:Class>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/MONDO_0000002">
    <oboInOwl:id>MONDO:0000002</oboInOwl:id>
    <rdfs:label>obsolete old disease</rdfs:label>
  </owl:Class>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/MONDO_0000003">
    <oboInOwl:id>MONDO:0000003</oboInOwl:id>
    <oboInOwl:hasExactSynonym>synonym only disease</oboInOwl:hasExactSynonym>
  </owl:Class>
  <owl:Axiom>
    <owl:Restriction>
      <owl:someValuesFrom rdf:resource="http://identifiers.org/hgnc/67890"/>
    </owl:Restriction>
  </owl:Axiom>
</rdf:RDF>
`

func writeSampleOWL(t *testing.T) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "mondo.owl")
	err := os.WriteFile(filename, []byte(sampleOWL), 0o644)
	if err != nil {
		t.Fatalf("failed to write OWL file: %s", err)
	}

	return filename
}

func TestVersion(t *testing.T) {
	filename := writeSampleOWL(t)

	version, err := mondo.Version(filename)
	if err != nil {
		t.Fatalf("Version failed: %s", err)
	}
	if version != "2025-06-03" {
		t.Errorf("version = %q, want %q", version, "2025-06-03")
	}
}

func TestReadFile(t *testing.T) {
	filename := writeSampleOWL(t)

	associations, allDiseases, err := mondo.ReadFile(filename)
	if err != nil {
		t.Fatalf("ReadFile failed: %s", err)
	}

	// HGNC restriction inside the class
	assoc, ok := associations["MONDO:0000001"]
	if !ok {
		t.Fatal("expected an association for MONDO:0000001")
	}
	if assoc.Disease != "linked disease" || assoc.HGNCID != "12345" {
		t.Errorf("unexpected association %+v", assoc)
	}

	// HGNC restriction after the class it belongs to
	assoc, ok = associations["MONDO:0000003"]
	if !ok {
		t.Fatal("expected an association for MONDO:0000003")
	}
	if assoc.Disease != "synonym only disease" || assoc.HGNCID != "67890" {
		t.Errorf("unexpected association %+v", assoc)
	}

	if _, ok := associations["MONDO:0000002"]; ok {
		t.Error("obsolete term should not produce an association")
	}
	if _, ok := allDiseases["MONDO:0000002"]; ok {
		t.Error("obsolete term should not be listed as a disease")
	}

	if len(allDiseases) != 2 {
		t.Errorf("expected 2 diseases, got %d: %v", len(allDiseases), allDiseases)
	}
}
