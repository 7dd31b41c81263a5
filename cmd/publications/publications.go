package publications

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/api"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/europepmc"
	"github.com/gene2phenotype/g2ptools/gemini"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "publications",
		Usage: "relevance analysis of mined publications",
		Commands: []*cli.Command{
			subCmdInit(),
			subCmdProcess(),
			subCmdMechanism(),
		},
	}
}

// publication is one mined publication of a record. A publication with an
// empty status still needs to be analysed.
type publication struct {
	ID       int    `json:"id"`
	Title    string `json:"title,omitempty"`
	Abstract string `json:"abstract,omitempty"`
	Journal  string `json:"journal,omitempty"`
	Status   string `json:"status,omitempty"`
	Comment  string `json:"comment,omitempty"`
	AIModel  string `json:"ai_model,omitempty"`

	Mechanism         string   `json:"mechanism,omitempty"`
	MechanismEvidence []string `json:"mechanism_evidence,omitempty"`
}

type record struct {
	ID                  string         `json:"id"`
	Gene                string         `json:"gene"`
	PreviousGeneSymbols string         `json:"previous_gene_symbols"`
	Disease             string         `json:"disease"`
	Confidence          string         `json:"confidence"`
	Mechanism           string         `json:"mechanism,omitempty"`
	Publications        []*publication `json:"publications"`
}

func subCmdInit() *cli.Command {
	var configPath string
	var outputFile string
	var panel string

	return &cli.Command{
		Name:  "init",
		Usage: "download the panel records and their mined publications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output JSON file",
				Required:    true,
				Destination: &outputFile,
			},
			&cli.StringFlag{
				Name:        "panel",
				Usage:       "panel to download",
				Value:       "dd",
				Destination: &panel,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			_, err := os.Stat(outputFile)
			if err == nil {
				return fmt.Errorf("file %q already exists", outputFile)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			apiURL, err := cfg.RequireAPI()
			if err != nil {
				return err
			}

			client, err := api.NewClient(apiURL)
			if err != nil {
				return err
			}

			log.Infof("downloading the %s panel", panel)
			dump, err := client.DownloadPanel(panel)
			if err != nil {
				return err
			}

			records, err := parsePanelDump(dump)
			if err != nil {
				return err
			}

			log.Infof("%d records written to %s", len(records), outputFile)
			return writeRecords(outputFile, records)
		},
	}
}

// parsePanelDump turns the panel CSV dump into records, one publication entry
// per mined PMID.
func parsePanelDump(dump []byte) ([]*record, error) {
	reader := csv.NewReader(strings.NewReader(string(dump)))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse panel dump: %s", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("panel dump is empty")
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

	var records []*record
	for _, row := range rows[1:] {
		var publications []*publication
		for _, pmid := range strings.Split(field(row, "additional mined publications"), ";") {
			pmid = strings.TrimSpace(pmid)
			if pmid == "" {
				continue
			}
			id, err := strconv.Atoi(pmid)
			if err != nil {
				log.Warnf("invalid PMID %q for record %s", pmid, field(row, "g2p id"))
				continue
			}
			publications = append(publications, &publication{ID: id})
		}

		entry := &record{
			ID:                  field(row, "g2p id"),
			Gene:                field(row, "gene symbol"),
			PreviousGeneSymbols: field(row, "previous gene symbols"),
			Disease:             field(row, "disease name"),
			Confidence:          field(row, "confidence"),
			Publications:        publications,
		}
		if mechanism := field(row, "molecular mechanism"); mechanism != "undetermined" {
			entry.Mechanism = mechanism
		}

		records = append(records, entry)
	}

	return records, nil
}

func subCmdProcess() *cli.Command {
	var configPath string
	var inputFile string
	var confidence string
	var limit int64

	return &cli.Command{
		Name:  "process",
		Usage: "assess the relevance of each mined publication with Gemini",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "file",
				Usage:       "JSON file written by the init subcommand",
				Required:    true,
				Destination: &inputFile,
			},
			&cli.StringFlag{
				Name:        "confidence",
				Usage:       "only process records with this confidence value",
				Destination: &confidence,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"l"},
				Usage:       "process N publications and exit, 0 means all",
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
			var records []*record
			err = json.Unmarshal(data, &records)
			if err != nil {
				return fmt.Errorf("failed to parse input file %s: %s", inputFile, err)
			}

			client, err := gemini.NewClient(ctx, geminiCfg.APIKey, geminiCfg.Model, geminiCfg.RPM)
			if err != nil {
				return err
			}

			processErr := processRecords(ctx, client, records, confidence, int(limit))

			// keep what was analysed so far even when a call failed
			err = writeRecords(inputFile, records)
			if err != nil {
				return err
			}

			return processErr
		},
	}
}

// processRecords fetches each pending publication from Europe PMC and asks
// the model how relevant it is to its record.
func processRecords(
	ctx context.Context,
	client *gemini.Client,
	records []*record,
	confidence string,
	limit int,
) error {
	epmc := europepmc.NewClient()

	pending := 0
	for _, entry := range records {
		if confidence != "" && entry.Confidence != confidence {
			continue
		}
		for _, pub := range entry.Publications {
			if pub.Status == "" {
				pending++
			}
		}
	}
	if limit > 0 && limit < pending {
		pending = limit
	}
	bar := progressbar.Default(int64(pending))

	done := 0
	for _, entry := range records {
		if confidence != "" && entry.Confidence != confidence {
			continue
		}

		for _, pub := range entry.Publications {
			if pub.Status != "" {
				continue
			}

			article, err := epmc.Article(pub.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch article %d: %s", pub.ID, err)
			}
			if article == nil {
				pub.Status = "incomplete"
				continue
			}

			pub.Title = article.Title
			pub.Abstract = article.Abstract
			pub.Journal = article.Journal

			relevance, err := client.PublicationRelevance(ctx,
				gemini.RecordInfo{
					ID:                  entry.ID,
					Gene:                entry.Gene,
					PreviousGeneSymbols: entry.PreviousGeneSymbols,
					Disease:             entry.Disease,
					Confidence:          entry.Confidence,
					Mechanism:           entry.Mechanism,
				},
				gemini.ArticleInfo{
					Title:    article.Title,
					Abstract: article.Abstract,
					Journal:  article.Journal,
					FullText: article.FullText,
				},
			)
			if err != nil {
				return fmt.Errorf("relevance analysis failed for PMID %d: %s", pub.ID, err)
			}

			pub.Status = relevance.Label
			pub.Comment = relevance.Comment
			pub.AIModel = client.Model()

			log.Infof("record %s, %s, %s", entry.ID, entry.Gene, entry.Disease)
			log.Infof("  article: %s", pub.Title)
			log.Infof("  relevance: %s", pub.Status)

			bar.Add(1)
			done++
			if done == limit {
				return nil
			}

			client.Throttle()
		}
	}

	return nil
}

func subCmdMechanism() *cli.Command {
	var configPath string
	var inputFile string
	var recordsFile string
	var limit int64

	return &cli.Command{
		Name:  "mechanism",
		Usage: "extract the molecular mechanism from each mined publication with Gemini",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "file",
				Usage:       "JSON file written by the init subcommand",
				Required:    true,
				Destination: &inputFile,
			},
			&cli.StringFlag{
				Name:        "records-file",
				Usage:       "text file listing the G2P IDs to analyse, one per line",
				Destination: &recordsFile,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"l"},
				Usage:       "process N publications and exit, 0 means all",
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
			var records []*record
			err = json.Unmarshal(data, &records)
			if err != nil {
				return fmt.Errorf("failed to parse input file %s: %s", inputFile, err)
			}

			var wanted map[string]bool
			if recordsFile != "" {
				wanted, err = readRecordIDs(recordsFile)
				if err != nil {
					return err
				}
			}

			client, err := gemini.NewClient(ctx, geminiCfg.APIKey, geminiCfg.Model, geminiCfg.RPM)
			if err != nil {
				return err
			}

			extractErr := extractMechanisms(ctx, client, records, wanted, int(limit))

			// keep what was analysed so far even when a call failed
			err = writeRecords(inputFile, records)
			if err != nil {
				return err
			}

			return extractErr
		},
	}
}

func readRecordIDs(filename string) (map[string]bool, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %s", filename, err)
	}

	ids := map[string]bool{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids[line] = true
		}
	}

	return ids, nil
}

// extractMechanisms fetches each pending publication from Europe PMC and asks
// the model for the experimentally demonstrated disease mechanism.
func extractMechanisms(
	ctx context.Context,
	client *gemini.Client,
	records []*record,
	wanted map[string]bool,
	limit int,
) error {
	epmc := europepmc.NewClient()

	done := 0
	for _, entry := range records {
		if wanted != nil && !wanted[entry.ID] {
			continue
		}

		for _, pub := range entry.Publications {
			if pub.Mechanism != "" {
				continue
			}

			article, err := epmc.Article(pub.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch article %d: %s", pub.ID, err)
			}
			if article == nil {
				pub.Mechanism = "incomplete"
				continue
			}

			pub.Title = article.Title
			pub.Abstract = article.Abstract
			pub.Journal = article.Journal

			mechanism, err := client.ExtractMechanism(ctx,
				gemini.RecordInfo{
					ID:                  entry.ID,
					Gene:                entry.Gene,
					PreviousGeneSymbols: entry.PreviousGeneSymbols,
					Disease:             entry.Disease,
					Confidence:          entry.Confidence,
					Mechanism:           entry.Mechanism,
				},
				gemini.ArticleInfo{
					Title:    article.Title,
					Abstract: article.Abstract,
					Journal:  article.Journal,
					FullText: article.FullText,
				},
			)
			if err != nil {
				return fmt.Errorf("mechanism extraction failed for PMID %d: %s", pub.ID, err)
			}

			pub.Mechanism = mechanism.Mechanism
			pub.MechanismEvidence = mechanism.MechanismEvidence
			pub.Comment = mechanism.Comment
			pub.AIModel = client.Model()

			log.Infof("record %s, %s, %s", entry.ID, entry.Gene, entry.Disease)
			log.Infof("  article: %s", pub.Title)
			log.Infof("  mechanism: %s", pub.Mechanism)

			done++
			if done == limit {
				return nil
			}

			client.Throttle()
		}
	}

	log.Infof("%d publications analysed", done)
	return nil
}

func writeRecords(filename string, records []*record) error {
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
