package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// RecordInfo is the gene-disease record context handed to the model together
// with a publication.
type RecordInfo struct {
	ID                  string
	Gene                string
	PreviousGeneSymbols string
	Disease             string
	Confidence          string
	Mechanism           string
}

// ArticleInfo is the publication content handed to the model.
type ArticleInfo struct {
	Title    string
	Abstract string
	Journal  string
	FullText string
}

// Relevance is the model verdict on how relevant a publication is to a
// gene-disease record.
type Relevance struct {
	Label   string `json:"label"`
	Comment string `json:"comment"`
}

var relevanceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"label": {
			Type: genai.TypeString,
			Enum: []string{"high", "medium", "low", "disputed"},
		},
		"comment": {Type: genai.TypeString},
	},
	Required: []string{"label", "comment"},
}

const relevancePromptHead = `You are assessing whether a scientific publication is relevant to a Gene2Phenotype record defined by a gene and a disease.
Relevance means the publication provides or discusses evidence that this gene is causally or mechanistically linked to this disease in humans or relevant models (e.g. mammalian or functional models recapitulating the human phenotype).

Output one of four labels:
- high: the article directly supports or reports an association between the specified gene and the specified disease (same disease, not just related systems).
- medium: the article discusses the specified gene or disease in a mechanistically relevant or closely related context, but without demonstrating a direct association between the two. The disease context should still be similar (e.g. same system or phenotype family).
- low: the article discusses the gene or disease in an unrelated context, or links the gene to a different disease than the one specified or focuses on a different gene.
- disputed: The article provides evidence that contradicts or disproves an association between the specified gene and the specified disease.

Then provide one short reason.

NEVER assign "high" relevance unless the publication provides evidence directly linking the gene to the specific disease named in the record.
If the article discusses a different disease caused by the same gene:
- If the diseases share overlapping molecular mechanisms and phenotypes, assign "medium";
- If they do not, assign "low".
Consider whether the molecular mechanism described in the publication (e.g. gain or loss of function) matches the mechanism in the record (if available) when assessing similarity.
If the publication or the record do not mention a molecular mechanism, base your decision on the gene-disease association itself (e.g. clinical or genetic evidence). Do not lower relevance solely because the mechanism is unspecified.
If the publication discusses multiple genes or structural variants involving the specified gene then assign "low" relevance.

Input:
`

// PublicationRelevance asks the model how relevant a publication is to a
// gene-disease record.
func (c *Client) PublicationRelevance(ctx context.Context, record RecordInfo, article ArticleInfo) (*Relevance, error) {
	var builder strings.Builder
	builder.WriteString(relevancePromptHead)

	fmt.Fprintf(&builder, "Gene: %s\n", record.Gene)
	fmt.Fprintf(&builder, "Previous gene symbols: %s\n", record.PreviousGeneSymbols)
	fmt.Fprintf(&builder, "Disease: %s\n", record.Disease)
	fmt.Fprintf(&builder, "Title: %s\n", article.Title)
	fmt.Fprintf(&builder, "Abstract: %s\n", article.Abstract)
	fmt.Fprintf(&builder, "Journal: %s", article.Journal)
	if record.Mechanism != "" {
		fmt.Fprintf(&builder, "\nMolecular mechanism: %s", record.Mechanism)
	}
	if article.FullText != "" {
		fmt.Fprintf(&builder, "\nFull text: %s", article.FullText)
	}

	result := new(Relevance)
	err := c.generate(ctx, builder.String(), relevanceSchema, 0.2, result)
	if err != nil {
		return nil, fmt.Errorf("relevance analysis failed: %s", err)
	}

	return result, nil
}
