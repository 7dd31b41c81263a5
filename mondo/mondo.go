// Package mondo reads gene-disease associations from a Mondo OWL file.
// The file can be downloaded from https://mondo.monarchinitiative.org/pages/download/
package mondo

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	owlNS      = "http://www.w3.org/2002/07/owl#"
	oboInOwlNS = "http://www.geneontology.org/formats/oboInOwl#"
	rdfsNS     = "http://www.w3.org/2000/01/rdf-schema#"
	rdfNS      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// GeneAssociation is a disease linked to a gene through a Mondo class.
type GeneAssociation struct {
	Disease string
	HGNCID  string
}

var versionPattern = regexp.MustCompile(`[0-9]+-[0-9]+-[0-9]+`)

// Version extracts the Mondo data version from the versionIRI of an OWL file.
func Version(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open Mondo file %s: %s", filename, err)
	}
	defer file.Close()

	decoder := xml.NewDecoder(file)
	decoder.Strict = false

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Space != owlNS || start.Name.Local != "versionIRI" {
			continue
		}

		version := versionPattern.FindString(resourceAttr(start))
		if version != "" {
			return version, nil
		}
	}

	return "", fmt.Errorf("could not detect Mondo version from %s", filename)
}

// ReadFile parses a Mondo OWL file. It returns the gene-disease associations
// keyed by Mondo ID, plus every non obsolete Mondo ID with its disease name.
// The HGNC link of a class often lives in a restriction outside the class
// element, such restrictions are attributed to the last class read.
func ReadFile(filename string) (map[string]GeneAssociation, map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Mondo file %s: %s", filename, err)
	}
	defer file.Close()

	decoder := xml.NewDecoder(file)
	decoder.Strict = false

	associations := map[string]GeneAssociation{}
	allDiseases := map[string]string{}

	var classDepth int
	var lastID string
	var mondoID, label, synonym, hgncID string

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch elem := token.(type) {
		case xml.StartElement:
			if elem.Name.Space == owlNS && elem.Name.Local == "Class" {
				classDepth++
				if classDepth == 1 {
					mondoID, label, synonym, hgncID = "", "", "", ""
				}
				continue
			}

			if classDepth > 0 {
				switch {
				case elem.Name.Space == oboInOwlNS && elem.Name.Local == "id" && mondoID == "":
					mondoID = elementText(decoder, &elem)
				case elem.Name.Space == rdfsNS && elem.Name.Local == "label" && label == "":
					label = elementText(decoder, &elem)
				case elem.Name.Space == oboInOwlNS && elem.Name.Local == "hasExactSynonym" && synonym == "":
					synonym = elementText(decoder, &elem)
				case elem.Name.Space == owlNS && elem.Name.Local == "someValuesFrom":
					if id := hgncFromResource(elem); id != "" {
						hgncID = id
					}
				}
				continue
			}

			// HGNC restriction after the class it belongs to
			if elem.Name.Space == owlNS && elem.Name.Local == "someValuesFrom" && lastID != "" {
				id := hgncFromResource(elem)
				_, known := associations[lastID]
				if id != "" && !known {
					associations[lastID] = GeneAssociation{
						Disease: allDiseases[lastID],
						HGNCID:  id,
					}
				}
			}

		case xml.EndElement:
			if elem.Name.Space != owlNS || elem.Name.Local != "Class" || classDepth == 0 {
				continue
			}
			classDepth--
			if classDepth != 0 {
				continue
			}

			name := label
			if name == "" {
				name = synonym
			}
			if mondoID == "" || name == "" || strings.HasPrefix(name, "obsolete") {
				continue
			}

			lastID = mondoID
			if _, ok := allDiseases[mondoID]; !ok {
				allDiseases[mondoID] = name
			}
			_, known := associations[mondoID]
			if hgncID != "" && !known {
				associations[mondoID] = GeneAssociation{Disease: name, HGNCID: hgncID}
			}
		}
	}

	return associations, allDiseases, nil
}

// elementText consumes a leaf element and returns its character data.
func elementText(decoder *xml.Decoder, start *xml.StartElement) string {
	var text string
	err := decoder.DecodeElement(&text, start)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(text)
}

func resourceAttr(elem xml.StartElement) string {
	for _, attr := range elem.Attr {
		if attr.Name.Space == rdfNS && attr.Name.Local == "resource" {
			return attr.Value
		}
	}

	return ""
}

// hgncFromResource returns the HGNC ID of a someValuesFrom element pointing
// at an HGNC resource, without the "HGNC:" prefix.
func hgncFromResource(elem xml.StartElement) string {
	resource := resourceAttr(elem)
	if !strings.Contains(resource, "hgnc") {
		return ""
	}

	parts := strings.Split(resource, "/")
	return parts[len(parts)-1]
}
