package records

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/urfave/cli/v3"
)

// mandatory columns of a record import file
var loadColumns = []string{
	"gene symbol", "hgnc id", "disease name", "allelic requirement",
	"molecular mechanism", "confidence", "publication PMID", "panel",
	"inferred variant consequence",
}

func subCmdLoad() *cli.Command {
	var configPath string
	var inputFile string

	return &cli.Command{
		Name:  "load",
		Usage: "validate a batch of new records against the database",
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
				Usage:       "CSV file with records to be imported",
				Required:    true,
				Destination: &inputFile,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			if !strings.HasSuffix(inputFile, ".csv") {
				return fmt.Errorf("unsupported file format, please check %q", inputFile)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dbCfg, err := cfg.RequireG2PDatabase()
			if err != nil {
				return err
			}

			db, err := database.Open(dbCfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			store := database.NewStore(db)

			attribs, err := store.AttribsByType()
			if err != nil {
				return err
			}
			genes, err := store.GeneSymbolsOfType("gene")
			if err != nil {
				return err
			}
			panels, err := store.Panels()
			if err != nil {
				return err
			}

			rows, err := readLoadFile(inputFile)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				log.Info("no data to import, input file is empty")
				return nil
			}

			return validateRecords(rows, attribs, genes, panels)
		},
	}
}

func readLoadFile(filename string) ([]map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %s", filename, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range loadColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing data, mandatory fields are: %s", strings.Join(loadColumns, ", "))
		}
	}

	var rows []map[string]string
	for _, record := range records[1:] {
		row := map[string]string{}
		for name, index := range columns {
			if index < len(record) {
				row[name] = record[index]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// validateRecords checks every row against the controlled vocabularies, gene
// set and panels of the database.
func validateRecords(
	rows []map[string]string,
	attribs map[string]map[string]uint,
	genes map[string]uint,
	panels map[string]uint,
) error {
	seen := map[string]bool{}

	for _, row := range rows {
		var errors []string

		if _, ok := genes[row["gene symbol"]]; !ok {
			errors = append(errors, fmt.Sprintf("Gene: %s not found in G2P", row["gene symbol"]))
		}
		if _, ok := attribs["genotype"][row["allelic requirement"]]; !ok {
			errors = append(errors, fmt.Sprintf("Invalid allelic requirement (genotype): %s", row["allelic requirement"]))
		}
		if _, ok := attribs["mechanism"][row["molecular mechanism"]]; !ok {
			errors = append(errors, fmt.Sprintf("Invalid molecular mechanism: %s", row["molecular mechanism"]))
		}
		if _, ok := attribs["confidence_category"][row["confidence"]]; !ok {
			errors = append(errors, fmt.Sprintf("Invalid confidence: %s", row["confidence"]))
		}
		if _, ok := panels[row["panel"]]; !ok {
			errors = append(errors, fmt.Sprintf("Invalid panel: %s", row["panel"]))
		}

		key := strings.Join([]string{
			row["gene symbol"], row["disease name"],
			row["allelic requirement"], row["molecular mechanism"],
		}, "-")

		if len(errors) == 0 {
			if seen[key] {
				log.Warnf("duplicated record in input: %s", key)
				continue
			}
			seen[key] = true
			log.Infof("valid: %s", key)
		} else {
			log.Warnf("invalid: %s: %s", key, strings.Join(errors, "; "))
		}
	}

	return nil
}
