package ontology

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/api"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/ols"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "ontology",
		Usage: "ontology term maintenance",
		Commands: []*cli.Command{
			subCmdUpdate(),
		},
	}
}

func subCmdUpdate() *cli.Command {
	var configPath string
	var apiUsername string
	var apiPassword string
	var dryRun bool

	return &cli.Command{
		Name:  "update",
		Usage: "fix ontology terms stored with their accession as term name",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "api-username",
				Usage:       "username to connect to the G2P API",
				Destination: &apiUsername,
			},
			&cli.StringFlag{
				Name:        "api-password",
				Usage:       "password to connect to the G2P API",
				Destination: &apiPassword,
			},
			&cli.BoolFlag{
				Name:        "dryrun",
				Usage:       "report the terms without updating them",
				Destination: &dryRun,
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
			terms, err := store.MondoOMIMTerms()
			if err != nil {
				return err
			}

			updates, obsolete := analyseTerms(terms)
			log.Infof("%d terms to update, %d obsolete terms", len(updates), len(obsolete))

			if dryRun {
				for accession, update := range updates {
					log.Infof("update %s: %q", accession, update.Term)
				}
				for _, accession := range obsolete {
					log.Infof("delete %s", accession)
				}
				return nil
			}

			apiURL, err := cfg.RequireAPI()
			if err != nil {
				return err
			}
			client, err := api.NewClient(apiURL)
			if err != nil {
				return err
			}

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

			if len(updates) != 0 {
				err = client.UpdateOntologyTerms(updates)
				if err != nil {
					return err
				}
			}
			if len(obsolete) != 0 {
				err = client.DeleteOntologyTerms(obsolete)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// analyseTerms finds stored ontology terms whose name is just the accession
// and resolves the proper term through the OLS API. Accessions OLS does not
// know are flagged as obsolete.
func analyseTerms(terms map[string]database.OntologyEntry) (map[string]api.OntologyTermUpdate, []string) {
	client := ols.NewClient()

	updates := map[string]api.OntologyTermUpdate{}
	var obsolete []string

	for accession, entry := range terms {
		if accession != entry.Term {
			continue
		}

		var term *ols.Term
		var err error
		if strings.HasPrefix(accession, "MONDO") {
			term, err = client.Mondo(accession)
		} else {
			term, err = client.OMIM(accession)
		}
		if err != nil {
			log.Warnf("failed to resolve %s: %s", accession, err)
			continue
		}

		if term == nil || term.Label == "" {
			log.Warnf("invalid ontology ID %s", accession)
			obsolete = append(obsolete, accession)
			continue
		}

		updates[accession] = api.OntologyTermUpdate{
			Term:        term.Label,
			Description: term.Description,
		}
	}

	return updates, obsolete
}
