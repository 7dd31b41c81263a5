// Package gencc builds gene-disease validity submissions for the GenCC
// consortium from G2P record dumps.
package gencc

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	submissionIDBase     = "1000112"
	submitterID          = "GENCC:000112"
	submitterName        = "TGMI"
	assertionCriteriaURL = "https://www.ebi.ac.uk/gene2phenotype/about/terminology"
	recordURLBase        = "https://www.ebi.ac.uk/gene2phenotype/lgd/"
)

// allelicRequirementHP maps G2P allelic requirement terms to the HP mode of
// inheritance IDs GenCC expects.
var allelicRequirementHP = map[string]string{
	"biallelic_autosomal":        "HP:0000007",
	"monoallelic_autosomal":      "HP:0000006",
	"monoallelic_X_hemizygous":   "HP:0001417",
	"monoallelic_Y_hemizygous":   "HP:0001450",
	"monoallelic_X_heterozygous": "HP:0001417",
	"mitochondrial":              "HP:0001427",
	"monoallelic_PAR":            "HP:0000006",
	"biallelic_PAR":              "HP:0000007",
}

// confidenceGenCC maps G2P confidence values to GenCC classification IDs.
var confidenceGenCC = map[string]string{
	"definitive": "GENCC:100001",
	"strong":     "GENCC:100002",
	"moderate":   "GENCC:100003",
	"limited":    "GENCC:100004",
	"disputed":   "GENCC:100005",
	"refuted":    "GENCC:100006",
}

// RecordURL returns the public report URL of a record.
func RecordURL(g2pID string) string {
	return recordURLBase + g2pID
}

// Record is one row of the G2P all-panels CSV dump, plus the submission state
// worked out against previous GenCC submissions.
type Record struct {
	G2PID              string
	GeneSymbol         string
	HGNCID             string
	DiseaseName        string
	DiseaseMIM         string
	DiseaseMondo       string
	AllelicRequirement string
	Confidence         string
	DateOfLastReview   string
	Publications       string

	TypeOfSubmission string
	SubmissionID     string
}

// SubmissionEntry records one submission line for the G2P service, so the
// database knows what was sent to GenCC and when.
type SubmissionEntry struct {
	SubmissionID     string
	DateOfSubmission string
	TypeOfSubmission string
	G2PStableID      string
}

// ParseRecords reads the CSV dump downloaded from the G2P service.
func ParseRecords(data []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse record dump: %s", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record dump is empty")
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[name] = i
	}

	field := func(row []string, name string) string {
		index, ok := columns[name]
		if !ok || index >= len(row) {
			return ""
		}
		return row[index]
	}

	var records []Record
	for _, row := range rows[1:] {
		records = append(records, Record{
			G2PID:              field(row, "g2p id"),
			GeneSymbol:         field(row, "gene symbol"),
			HGNCID:             field(row, "hgnc id"),
			DiseaseName:        field(row, "disease name"),
			DiseaseMIM:         field(row, "disease mim"),
			DiseaseMondo:       field(row, "disease MONDO"),
			AllelicRequirement: field(row, "allelic requirement"),
			Confidence:         field(row, "confidence"),
			DateOfLastReview:   field(row, "date of last review"),
			Publications:       field(row, "publications"),
		})
	}

	return records, nil
}

// WriteSubmissionFile writes the GenCC submission TSV for a batch of records.
// Records without a disease ID or with an unsupported allelic requirement are
// appended to the issues file instead. The returned entries are what gets
// recorded in the G2P database.
func WriteSubmissionFile(records []Record, outFile, issuesFile string) ([]SubmissionEntry, error) {
	out, err := os.Create(outFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission file %s: %s", outFile, err)
	}
	defer out.Close()

	fmt.Fprint(out,
		"submission_id\thgnc_id\thgnc_symbol\tdisease_id\tdisease_name\tmoi_id\tmoi_name"+
			"\tsubmitter_id\tsubmitter_name\tclassification_id\tclassification_name\tdate"+
			"\tpublic_report_url\tnotes\tpmids\tassertion_criteria_url\n",
	)

	issues := map[string]string{}
	var entries []SubmissionEntry

	for _, record := range records {
		submissionID := record.SubmissionID
		typeOfSubmission := record.TypeOfSubmission
		if typeOfSubmission == "" || typeOfSubmission == "create" {
			submissionID = submissionIDBase + strings.TrimPrefix(record.G2PID, "G2P")
			typeOfSubmission = "create"
		}

		diseaseID := record.DiseaseMIM
		if diseaseID == "" {
			diseaseID = record.DiseaseMondo
		}
		if diseaseID == "" {
			issues[record.G2PID] = "Missing disease ID"
			continue
		}

		moiID, ok := allelicRequirementHP[record.AllelicRequirement]
		if !ok {
			issues[record.G2PID] = fmt.Sprintf("Unsupported allelic requirement %q", record.AllelicRequirement)
			continue
		}

		reviewDate, err := time.Parse(time.RFC3339, record.DateOfLastReview)
		if err != nil {
			reviewDate, err = time.Parse("2006-01-02", record.DateOfLastReview)
			if err != nil {
				issues[record.G2PID] = fmt.Sprintf("Invalid review date %q", record.DateOfLastReview)
				continue
			}
		}

		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\t%s\t%s\n",
			submissionID,
			record.HGNCID,
			record.GeneSymbol,
			diseaseID,
			record.DiseaseName,
			moiID,
			record.AllelicRequirement,
			submitterID,
			submitterName,
			confidenceGenCC[record.Confidence],
			record.Confidence,
			reviewDate.Format("2006/01/02"),
			recordURLBase+record.G2PID,
			record.Publications,
			assertionCriteriaURL,
		)

		entries = append(entries, SubmissionEntry{
			SubmissionID:     submissionID,
			DateOfSubmission: time.Now().Format("2006-01-02"),
			TypeOfSubmission: typeOfSubmission,
			G2PStableID:      record.G2PID,
		})
	}

	if len(issues) != 0 {
		err = appendIssues(issuesFile, issues)
		if err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func appendIssues(issuesFile string, issues map[string]string) error {
	out, err := os.OpenFile(issuesFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open issues file %s: %s", issuesFile, err)
	}
	defer out.Close()

	for g2pID, issue := range issues {
		fmt.Fprintf(out, "%s\t%s\n", g2pID, issue)
	}

	return nil
}

// PreviousSubmission is the already-submitted state of one record, read from
// the last submission file.
type PreviousSubmission struct {
	DiseaseID      string
	Classification string
}

// ReadPreviousSubmission reads the TSV file of the last GenCC submission,
// keyed by submission id.
func ReadPreviousSubmission(filename string) (map[string]PreviousSubmission, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open previous submission file %s: %s", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse previous submission file %s: %s", filename, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("previous submission file %s is empty", filename)
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[name] = i
	}

	result := map[string]PreviousSubmission{}
	for _, row := range rows[1:] {
		id := row[columns["submission_id"]]
		result[id] = PreviousSubmission{
			DiseaseID:      row[columns["disease_id"]],
			Classification: row[columns["classification_name"]],
		}
	}

	return result, nil
}

// FilterUpdated keeps only the updated records whose disease ID or confidence
// actually changed since the previous submission. Other updates do not need a
// re-submission.
func FilterUpdated(
	previous map[string]PreviousSubmission,
	recordsByID map[string]Record,
	updated map[string]string,
) map[string]string {
	result := map[string]string{}

	for g2pID, submissionID := range updated {
		old, ok := previous[submissionID]
		if !ok {
			continue
		}

		record, ok := recordsByID[g2pID]
		if !ok {
			continue
		}

		diseaseChanged := (record.DiseaseMIM != "" || record.DiseaseMondo != "") &&
			old.DiseaseID != record.DiseaseMIM && old.DiseaseID != record.DiseaseMondo
		if diseaseChanged || old.Classification != record.Confidence {
			result[g2pID] = submissionID
		}
	}

	return result
}
