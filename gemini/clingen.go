package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ClinGenDraft is the structured extraction of a ClinGen evidence summary,
// used to pre-fill a new curation record.
type ClinGenDraft struct {
	PMIDs                []string `json:"pmids"`
	Disease              string   `json:"disease"`
	DiseaseID            string   `json:"disease_id"`
	Mechanism            string   `json:"mechanism"`
	AllelicRequirement   string   `json:"allelic_requirement"`
	Gene                 string   `json:"gene"`
	Phenotypes           []string `json:"phenotypes"`
	ExperimentalEvidence []string `json:"experimental_evidence"`
	Comment              string   `json:"comment"`
}

var clinGenSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"pmids": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"disease":             {Type: genai.TypeString},
		"disease_id":          {Type: genai.TypeString},
		"mechanism":           {Type: genai.TypeString},
		"allelic_requirement": {Type: genai.TypeString},
		"gene":                {Type: genai.TypeString},
		"phenotypes": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"experimental_evidence": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"comment": {Type: genai.TypeString},
	},
	Required: []string{
		"pmids", "disease", "disease_id", "mechanism", "allelic_requirement",
		"gene", "phenotypes", "experimental_evidence", "comment",
	},
}

const clinGenPromptHead = `You are a biomedical information extraction assistant. You will be provided with a specific gene and disease, along with an Evidence summary that contains scientific evidence for this gene-disease association.

Your task is to extract structured information only for this gene-disease pair.
For this association extract:
- pmids: A list of all PubMed IDs associated with the specific gene-disease.
- disease: The disease or diseases mentioned.
- disease_id: The MIM/OMIM or Mondo IDs associated with the specific disease.
- mechanism: The mechanism of the specific disease if mentioned (e.g. "gain of function", "loss of function")
- allelic_requirement: The allelic requirement or mode of inheritance if mentioned (e.g., "autosomal dominant", "autosomal recessive").
- gene: The gene symbol mentioned.
- phenotypes: Any specific phenotypes described in the text associated with the specific disease. (e.g. "reduced tendon reflexes", "distal motor weakness", "sensory disturbances").
- experimental_evidence: Any experimental evidence supporting the rule of the specific gene in the specific disease. The type of evidence can be: function (evidence related to gene expression or computer simulations), rescue (evidence showing that the phenotype can be rescued), models (a model with a disrupted copy of the gene shows a phenotype consistent with the human disease) or functional alteration (evidence showing that cultured cells, in which the function of the gene has been disrupted, have a phenotype that is consistent with the human disease process).

Only extract information that is explicitly mentioned in the text. If a field is not mentioned, return an empty list for pmids or phenotypes, and an empty string for gene, disease, disease_id, mechanism or allelic_requirement.
The specific gene-disease are provided in the input as gene and disease.
If there are PMIDs associated with other diseases do not include them in the output.

After producing the structured output, provide one short comment stating whether additional diseases (besides the input disease) appear in the evidence summary.

Input:
`

// AnalyseClinGenRecord extracts draft curation data from a ClinGen evidence
// summary.
func (c *Client) AnalyseClinGenRecord(ctx context.Context, gene, disease, evidenceSummary string) (*ClinGenDraft, error) {
	var builder strings.Builder
	builder.WriteString(clinGenPromptHead)

	fmt.Fprintf(&builder, "gene: %s\n", gene)
	fmt.Fprintf(&builder, "disease: %s\n", disease)
	builder.WriteString("Here it is the text to analise:\n")
	fmt.Fprintf(&builder, "Evidence summary: %s", evidenceSummary)

	result := new(ClinGenDraft)
	err := c.generate(ctx, builder.String(), clinGenSchema, 0, result)
	if err != nil {
		return nil, fmt.Errorf("evidence summary analysis failed: %s", err)
	}

	return result, nil
}
