package clingen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/clingen"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/gemini"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "clingen",
		Usage: "draft records from ClinGen gene-disease validity data",
		Commands: []*cli.Command{
			subCmdFetch(),
			subCmdDraft(),
		},
	}
}

// fetchWorkers bounds the parallel report downloads.
const fetchWorkers = 4

func subCmdFetch() *cli.Command {
	var inputFile string
	var outputFile string

	return &cli.Command{
		Name:  "fetch",
		Usage: "fetch evidence summaries for a ClinGen gene-disease validity export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Usage:       "ClinGen gene-disease validity file (csv)",
				Required:    true,
				Destination: &inputFile,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output JSON file",
				Value:       "clingen_extracted_data.json",
				Destination: &outputFile,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			rows, err := clingen.ReadSummaryFile(inputFile)
			if err != nil {
				return err
			}
			log.Infof("%d ClinGen assertions read from %s", len(rows), inputFile)

			records, err := fetchSummaries(rows)
			if err != nil {
				return err
			}

			return writeRecords(outputFile, records)
		},
	}
}

// fetchSummaries scrapes the evidence summary of every online report. Reports
// are fetched in parallel, the output keeps the input order.
func fetchSummaries(rows []clingen.Row) ([]clingen.Record, error) {
	client := &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	}

	records := make([]clingen.Record, len(rows))

	var group errgroup.Group
	group.SetLimit(fetchWorkers)

	for i, row := range rows {
		group.Go(func() error {
			summaries, err := clingen.FetchEvidenceSummaries(client, row.OnlineReport)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				log.Warnf("no evidence summary found for %s (%s)", row.GeneSymbol, row.OnlineReport)
			}

			records[i] = clingen.Record{
				GeneSymbol:      row.GeneSymbol,
				HGNCID:          row.HGNCID,
				Disease:         row.DiseaseLabel,
				MondoID:         row.MondoID,
				Confidence:      row.Classification,
				Panel:           row.Panel,
				EvidenceSummary: summaries,
				URL:             row.OnlineReport,
			}
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}

	return records, nil
}

func subCmdDraft() *cli.Command {
	var configPath string
	var inputFile string
	var clingenPanel string
	var limit int64

	return &cli.Command{
		Name:  "draft",
		Usage: "analyse fetched ClinGen records with Gemini",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "input-file",
				Usage:       "JSON file written by the fetch subcommand",
				Required:    true,
				Destination: &inputFile,
			},
			&cli.StringFlag{
				Name:        "clingen-panel",
				Usage:       "only analyse records of this ClinGen panel",
				Destination: &clingenPanel,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"l"},
				Usage:       "analyse N records and exit, 0 means all",
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			geminiCfg, err := cfg.RequireGemini()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file %s: %s", inputFile, err)
			}
			var records []clingen.Record
			err = json.Unmarshal(data, &records)
			if err != nil {
				return fmt.Errorf("failed to parse input file %s: %s", inputFile, err)
			}

			client, err := gemini.NewClient(ctx, geminiCfg.APIKey, geminiCfg.Model, geminiCfg.RPM)
			if err != nil {
				return err
			}

			analyseErr := analyseRecords(ctx, client, records, clingenPanel, int(limit))

			// keep what was analysed so far even when a call failed
			err = writeRecords(inputFile, records)
			if err != nil {
				return err
			}

			return analyseErr
		},
	}
}

// analyseRecords runs the draft analysis over every record that has no
// analysis yet, a record with PMIDs set is considered done.
func analyseRecords(
	ctx context.Context,
	client *gemini.Client,
	records []clingen.Record,
	clingenPanel string,
	limit int,
) error {
	done := 0

	for i := range records {
		record := &records[i]

		if len(record.PMIDs) != 0 {
			continue
		}
		if clingenPanel != "" && clingenPanel != record.Panel {
			continue
		}

		summary := ""
		for _, part := range record.EvidenceSummary {
			if summary != "" {
				summary += "\n\n"
			}
			summary += part
		}

		draft, err := client.AnalyseClinGenRecord(ctx, record.GeneSymbol, record.Disease, summary)
		if err != nil {
			return fmt.Errorf("analysis failed for %s: %s", record.GeneSymbol, err)
		}

		record.PMIDs = draft.PMIDs
		record.DiseaseID = draft.DiseaseID
		record.Mechanism = draft.Mechanism
		record.AllelicRequirement = draft.AllelicRequirement
		record.Phenotypes = draft.Phenotypes
		record.Evidence = draft.ExperimentalEvidence
		record.Comment = draft.Comment

		log.Infof("analysed %s, %s", record.GeneSymbol, record.Disease)
		log.Infof("  publications: %v", draft.PMIDs)
		log.Infof("  disease ID: %s", draft.DiseaseID)
		log.Infof("  mechanism: %s", draft.Mechanism)
		log.Infof("  allelic requirement: %s", draft.AllelicRequirement)
		log.Infof("  phenotypes: %v", draft.Phenotypes)

		done++
		if done == limit {
			return nil
		}

		client.Throttle()
	}

	log.Infof("%d records analysed", done)
	return nil
}

func writeRecords(filename string, records []clingen.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %s", err)
	}

	err = os.WriteFile(filename, data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %s", filename, err)
	}

	return nil
}
