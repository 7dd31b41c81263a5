package stats

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "per-gene score imports into gene_stats",
		Commands: []*cli.Command{
			subCmdGnomad(),
			subCmdMarsh(),
		},
	}
}

const gnomadSourceName = "gnomAD constraint metrics"

// column positions of the gnomAD constraint metrics file
const (
	gnomadGeneCol       = 0
	gnomadManeSelectCol = 4
	gnomadPLICol        = 18
	gnomadLOEUFCol      = 22
)

func subCmdGnomad() *cli.Command {
	var configPath string
	var inputFile string

	return &cli.Command{
		Name:  "gnomad",
		Usage: "import gnomAD gene constraint metrics",
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
				Usage:       "tab delimited gnomAD constraint metrics file",
				Required:    true,
				Destination: &inputFile,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
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

			log.Info("getting locus ids")
			genes, err := store.GeneIDsBySymbol()
			if err != nil {
				return err
			}

			sourceID, err := store.SourceID(gnomadSourceName)
			if err != nil {
				return err
			}
			pliAttribID, err := store.AttribID("pli_gnomAD")
			if err != nil {
				return err
			}
			loeufAttribID, err := store.AttribID("loeuf_gnomAD")
			if err != nil {
				return err
			}

			log.Info("reading constraint metrics")
			rows, err := readConstraintMetrics(inputFile, genes, sourceID, pliAttribID, loeufAttribID)
			if err != nil {
				return err
			}

			log.Infof("inserting %d gene stats", len(rows))
			err = store.InsertGeneStats(rows)
			if err != nil {
				return err
			}

			return store.AddMeta("gnomAD_constraint_metrics", "gnomAD constraint metrics", "v4", sourceID)
		},
	}
}

// readConstraintMetrics reads the gnomAD constraint metrics dump and builds
// one pLI and one LOEUF row per gene, taken from the MANE select transcript.
func readConstraintMetrics(
	filename string,
	genes map[string]uint,
	sourceID, pliAttribID, loeufAttribID uint,
) ([]data_model.GeneStats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", filename, err)
	}
	defer file.Close()

	var rows []data_model.GeneStats

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	previousGene := ""
	previousHasMane := false

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "gene") {
			err := checkConstraintHeader(line)
			if err != nil {
				return nil, err
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= gnomadLOEUFCol {
			continue
		}

		gene := fields[gnomadGeneCol]
		if previousGene != "" && gene != previousGene {
			if !previousHasMane {
				log.Warnf("gene %q does not have a MANE transcript", previousGene)
			}
			previousHasMane = false
		}
		previousGene = gene

		geneID, ok := genes[gene]
		if !ok {
			log.Warnf("gene %q not found in G2P", gene)
			continue
		}

		if fields[gnomadManeSelectCol] != "TRUE" {
			continue
		}
		previousHasMane = true

		pli, err := strconv.ParseFloat(fields[gnomadPLICol], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pLI score for gene %s: %s", gene, err)
		}
		loeuf, err := strconv.ParseFloat(fields[gnomadLOEUFCol], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LOEUF score for gene %s: %s", gene, err)
		}

		rows = append(rows,
			data_model.GeneStats{
				GeneSymbol:          gene,
				GeneID:              geneID,
				Score:               pli,
				SourceID:            sourceID,
				DescriptionAttribID: pliAttribID,
			},
			data_model.GeneStats{
				GeneSymbol:          gene,
				GeneID:              geneID,
				Score:               loeuf,
				SourceID:            sourceID,
				DescriptionAttribID: loeufAttribID,
			},
		)
	}
	if previousGene != "" && !previousHasMane {
		log.Warnf("gene %q does not have a MANE transcript", previousGene)
	}

	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %s", filename, err)
	}

	return rows, nil
}

func checkConstraintHeader(line string) error {
	header := strings.Split(strings.TrimSpace(line), "\t")

	expected := map[int]string{
		gnomadGeneCol:       "gene",
		gnomadManeSelectCol: "mane_select",
		gnomadPLICol:        "lof.pLI",
		gnomadLOEUFCol:      "lof.oe_ci.upper",
	}
	for index, name := range expected {
		if index >= len(header) || header[index] != name {
			return fmt.Errorf("file format is incorrect, expected column %d to be %q", index, name)
		}
	}

	return nil
}

const marshSourceName = "Marsh Mechanism probabilities"

// marshAttribs maps each Badonyi & Marsh input file to the attrib describing
// its probability score.
var marshAttribs = map[string]string{
	"gain_of_function.tsv":  "gain_of_function_mp",
	"loss_of_function.tsv":  "loss_of_function_mp",
	"dominant_negative.tsv": "dominant_negative_mp",
}

func subCmdMarsh() *cli.Command {
	var configPath string
	var inputDir string

	return &cli.Command{
		Name:  "marsh",
		Usage: "import Badonyi & Marsh mechanism probabilities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "directory with the probability input files",
				Required:    true,
				Destination: &inputDir,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
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

			log.Info("getting locus ids")
			genes, err := store.GeneIDsBySymbol()
			if err != nil {
				return err
			}

			sourceID, err := store.SourceID(marshSourceName)
			if err != nil {
				return err
			}

			var rows []data_model.GeneStats
			for filename, attribValue := range marshAttribs {
				attribID, err := store.AttribID(attribValue)
				if err != nil {
					return err
				}

				log.Infof("reading %s", filename)
				fileRows, err := readProbabilityFile(
					inputDir+"/"+filename, genes, sourceID, attribID)
				if err != nil {
					return err
				}
				rows = append(rows, fileRows...)
			}

			log.Infof("inserting %d gene stats", len(rows))
			err = store.InsertGeneStats(rows)
			if err != nil {
				return err
			}

			for _, attribValue := range marshAttribs {
				err = store.AddMeta(
					"Badonyi_score_"+attribValue, "Baydoni & Marsh probabilities", "1", sourceID)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// readProbabilityFile reads one probability file, columns are gene symbol,
// identifier and score.
func readProbabilityFile(
	filename string,
	genes map[string]uint,
	sourceID, attribID uint,
) ([]data_model.GeneStats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", filename, err)
	}
	defer file.Close()

	var rows []data_model.GeneStats

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "gene") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}

		geneID, ok := genes[fields[0]]
		if !ok {
			continue
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score for gene %s: %s", fields[0], err)
		}

		rows = append(rows, data_model.GeneStats{
			GeneSymbol:          fields[0],
			GeneID:              geneID,
			Score:               score,
			SourceID:            sourceID,
			DescriptionAttribID: attribID,
		})
	}

	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %s", filename, err)
	}

	return rows, nil
}
