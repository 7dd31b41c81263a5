package records

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/api"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "curated record maintenance",
		Commands: []*cli.Command{
			subCmdMerge(),
			subCmdLoad(),
		},
	}
}

// mergeColumns is the expected header of a merge input file.
var mergeColumns = []string{
	"g2p id to keep", "g2p ids to merge", "gene", "disease name", "genotype", "mechanism",
}

func subCmdMerge() *cli.Command {
	var configPath string
	var inputFile string
	var apiUsername string
	var apiPassword string
	var dryRun bool

	return &cli.Command{
		Name:  "merge",
		Usage: "merge duplicated records into their surviving record",
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
				Usage:       "tab delimited file with records to be merged",
				Required:    true,
				Destination: &inputFile,
			},
			&cli.StringFlag{
				Name:        "api-username",
				Usage:       "username to connect to the G2P API",
				Required:    true,
				Destination: &apiUsername,
			},
			&cli.StringFlag{
				Name:        "api-password",
				Usage:       "password to connect to the G2P API",
				Required:    true,
				Destination: &apiPassword,
			},
			&cli.BoolFlag{
				Name:        "dryrun",
				Usage:       "only check which records are going to be merged",
				Destination: &dryRun,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			apiURL, err := cfg.RequireAPI()
			if err != nil {
				return err
			}

			rows, err := readMergeFile(inputFile)
			if err != nil {
				return err
			}

			client, err := api.NewClient(apiURL)
			if err != nil {
				return err
			}

			log.Info("logging in")
			err = client.Login(apiUsername, apiPassword)
			if err != nil {
				return err
			}
			defer func() {
				err := client.Logout()
				if err != nil {
					log.Warnf("logout failed: %s", err)
				}
			}()

			log.Info("checking records to merge")
			merges, err := collectMerges(client, rows)
			if err != nil {
				return err
			}

			if dryRun {
				log.Infof("dry run: %d merges skipped", len(merges))
				return nil
			}

			if len(merges) == 0 {
				log.Info("nothing to merge")
				return nil
			}

			log.Info("merging records")
			return client.MergeRecords(merges)
		},
	}
}

type mergeRow struct {
	keepID    string
	mergeIDs  []string
	rawMerge  string
	gene      string
	disease   string
	genotype  string
	mechanism string
}

func readMergeFile(filename string) ([]mergeRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %s", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file %s is empty", filename)
	}

	header := records[0]
	if len(header) < len(mergeColumns) {
		return nil, fmt.Errorf("file format is incorrect, expected columns: %s", strings.Join(mergeColumns, ", "))
	}
	for i, name := range mergeColumns {
		if header[i] != name {
			return nil, fmt.Errorf("file format is incorrect, expected columns: %s", strings.Join(mergeColumns, ", "))
		}
	}

	var rows []mergeRow
	for _, record := range records[1:] {
		if len(record) < len(mergeColumns) {
			continue
		}

		row := mergeRow{
			keepID:    strings.TrimSpace(record[0]),
			rawMerge:  record[1],
			gene:      strings.TrimSpace(record[2]),
			disease:   strings.TrimSpace(record[3]),
			genotype:  strings.TrimSpace(record[4]),
			mechanism: strings.TrimSpace(record[5]),
		}
		for _, id := range strings.Split(record[1], ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				row.mergeIDs = append(row.mergeIDs, id)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// collectMerges cross checks every merge request against the live record
// before allowing it. Mismatches are written to records_not_merged.txt,
// accepted merges to records_to_merge.txt.
func collectMerges(client *api.Client, rows []mergeRow) ([]api.MergeRequest, error) {
	notMerged, err := os.Create("records_not_merged.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %s", err)
	}
	defer notMerged.Close()

	toMerge, err := os.Create("records_to_merge.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %s", err)
	}
	defer toMerge.Close()

	var merges []api.MergeRequest

	for _, row := range rows {
		if !strings.HasPrefix(row.keepID, "G2P") {
			fmt.Fprintf(notMerged, "Invalid G2P ID\t%s\t%s\n", row.keepID, row.rawMerge)
			continue
		}

		record, err := client.GetLGD(row.keepID)
		if err != nil {
			log.Warnf("failed to fetch record %s: %s", row.keepID, err)
			continue
		}

		switch {
		case row.gene != record.Locus.GeneSymbol:
			fmt.Fprintf(notMerged, "Gene doesn't match\t%s\t%s\n", row.keepID, row.rawMerge)
		case row.disease != record.Disease.Name:
			fmt.Fprintf(notMerged, "Disease doesn't match\t%s\t%s\n", row.keepID, row.rawMerge)
		case row.genotype != record.Genotype:
			fmt.Fprintf(notMerged, "Genotype doesn't match\t%s\t%s\n", row.keepID, row.rawMerge)
		case row.mechanism != record.MolecularMechanism.Mechanism:
			fmt.Fprintf(notMerged, "Mechanism doesn't match\t%s\t%s\n", row.keepID, row.rawMerge)
		default:
			merges = append(merges, api.MergeRequest{
				G2PIDs:     row.mergeIDs,
				FinalG2PID: row.keepID,
			})
			fmt.Fprintf(toMerge, "Merge %s into %s\n", row.rawMerge, row.keepID)
		}
	}

	return merges, nil
}
