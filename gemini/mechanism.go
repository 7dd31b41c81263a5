package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Mechanism is the molecular mechanism extraction for one gene-disease pair,
// backed by functional assay evidence from a publication.
type Mechanism struct {
	Mechanism         string   `json:"mechanism"`
	MechanismEvidence []string `json:"mechanism_evidence"`
	Comment           string   `json:"comment"`
}

var mechanismSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"mechanism": {Type: genai.TypeString},
		"mechanism_evidence": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"comment": {Type: genai.TypeString},
	},
	Required: []string{"mechanism", "mechanism_evidence", "comment"},
}

const mechanismPromptHead = `You are a biomedical information extraction assistant.
You will be provided with a specific gene, a specific disease, and a scientific publication that may contain evidence for this gene-disease association.

Your task is to extract structured information only for the specified gene-disease pair, using only the information explicitly stated in the provided text.

For this association extract:
- mechanism: the explicitly stated mechanism of the disease. Only extract mechanisms that are explicitly and experimentally demonstrated in the text. Acceptable mechanisms must be supported by functional evidence or experimental assays described in the publication (e.g. "loss of function", "gain of function", "dominant negative"). Mechanisms must not be inferred from computational predictions (SIFT, PolyPhen), population data, phenotype correlations, or assumptions. Only use wording from the text or minimal paraphrase for clarity.
- mechanism_evidence: functional assay evidence directly supporting the stated mechanism of disease for the specified gene-disease pair. Only extract evidence if the publication explicitly describes a functional assay in which gene or protein function was directly measured and compared between normal and altered states (e.g. wild-type vs mutant) and which demonstrates the stated mechanism (e.g. loss of function, gain of function, dominant negative). Functional assay evidence can include experiments such as: protein expression or activity measurements; protein-protein or molecular interactions; cellular localization studies; rescue experiments, overexpression or knockdown/knockin studies; gene editing (CRISPR, morpholino) in cells or model organisms; assays in cell culture, mouse, zebrafish, Drosophila, or other systems; binding, enzymatic, or reporter assays. Use the following keywords to identify functional assay evidence in the text: functional assays, mechanism, protein interaction, protein expression, interaction, expression, cells, cell culture, model organism, rescue, overexpression, gene editing, knockdown, knockin, crispr, morpholino, mouse, zebrafish, drosophila, cellular localisation, activity, binding.
- comment: a brief extractive justification that explicitly supports the extracted mechanism for the specified gene-disease association. The comment must only use wording present in the provided text or be a minimal paraphrase. Do not add new interpretations.

Only extract information if:
- the gene and the disease are explicitly linked in the text
- the mechanism or evidence is explicitly described

If the disease mentioned in the publication does not match the specified disease or if the gene-disease association is not explicitly supported return 'not found' for fields mechanism and mechanism_evidence.

Input:
`

// ExtractMechanism asks the model for the experimentally demonstrated disease
// mechanism described in a publication.
func (c *Client) ExtractMechanism(ctx context.Context, record RecordInfo, article ArticleInfo) (*Mechanism, error) {
	var builder strings.Builder
	builder.WriteString(mechanismPromptHead)

	fmt.Fprintf(&builder, "Gene: %s\n", record.Gene)
	fmt.Fprintf(&builder, "Disease: %s\n", record.Disease)
	fmt.Fprintf(&builder, "Title: %s\n", article.Title)
	fmt.Fprintf(&builder, "Abstract: %s\n", article.Abstract)
	fmt.Fprintf(&builder, "Journal: %s", article.Journal)
	if article.FullText != "" {
		fmt.Fprintf(&builder, "\nFull text: %s", article.FullText)
	}

	result := new(Mechanism)
	err := c.generate(ctx, builder.String(), mechanismSchema, 0.2, result)
	if err != nil {
		return nil, fmt.Errorf("mechanism extraction failed: %s", err)
	}

	return result, nil
}
