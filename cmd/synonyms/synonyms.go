package synonyms

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/common"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "synonyms",
		Usage: "disease synonym checks",
		Commands: []*cli.Command{
			subCmdCheck(),
		},
	}
}

func subCmdCheck() *cli.Command {
	var configPath string
	var outputFile string
	var cutoff float64

	return &cli.Command{
		Name:  "check",
		Usage: "report disease synonyms that look too different from their disease",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.FloatFlag{
				Name:        "cutoff",
				Usage:       "report similarity scores below this value",
				Value:       0.5,
				Destination: &cutoff,
			},
			&cli.StringFlag{
				Name:        "output-file",
				Aliases:     []string{"o"},
				Usage:       "output file name",
				Value:       "report_disease_scores.txt",
				Destination: &outputFile,
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

			log.Info("dumping diseases with synonyms")
			diseases, err := store.DiseaseSynonyms()
			if err != nil {
				return err
			}

			return compareSynonyms(diseases, cutoff, outputFile)
		},
	}
}

// compareSynonyms scores every disease against each of its synonyms and
// writes the pairs scoring below the cutoff.
func compareSynonyms(diseases map[string][]string, cutoff float64, outputFile string) error {
	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %s", outputFile, err)
	}
	defer out.Close()

	fmt.Fprint(out, "G2P disease name\tG2P disease synonym\tScore\n")

	reported := 0
	for disease, synonyms := range diseases {
		cleanDisease := common.CleanDiseaseName(disease)

		for _, synonym := range synonyms {
			score := common.SimilarityRatio(cleanDisease, common.CleanDiseaseName(synonym))
			if score < cutoff {
				fmt.Fprintf(out, "%s\t%s\t%g\n", disease, synonym, score)
				reported++
			}
		}
	}

	log.Infof("%d synonym pairs below cutoff %g written to %s", reported, cutoff, outputFile)
	return nil
}
