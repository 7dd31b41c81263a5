package ebisearch

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/ebisearch"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "ebisearch",
		Usage: "EBI search engine exports",
		Commands: []*cli.Command{
			subCmdGenerate(),
		},
	}
}

func subCmdGenerate() *cli.Command {
	var configPath string
	var outputFile string

	return &cli.Command{
		Name:  "generate",
		Usage: "dump the public records as an EBI search XML file",
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
				Usage:       "output file name",
				Value:       "g2p_records.xml",
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

			version, err := store.LatestVersion("G2P")
			if err != nil {
				return err
			}

			log.Info("fetching public records")
			records, err := store.PublicPanelRecords()
			if err != nil {
				return err
			}

			data, err := ebisearch.Generate(version, records)
			if err != nil {
				return err
			}

			err = os.WriteFile(outputFile, data, 0o644)
			if err != nil {
				return fmt.Errorf("failed to write %s: %s", outputFile, err)
			}

			log.Infof("%d records written to %s", len(records), outputFile)
			return nil
		},
	}
}
