package genedisease

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"github.com/gene2phenotype/g2ptools/mondo"
	"github.com/urfave/cli/v3"
)

const (
	omimMetaKey  = "import_gene_disease_omim"
	mondoMetaKey = "import_gene_disease_mondo"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "genedisease",
		Usage: "gene-disease association imports from OMIM and Mondo",
		Commands: []*cli.Command{
			subCmdImport(),
		},
	}
}

func subCmdImport() *cli.Command {
	var configPath string
	var mondoFile string
	var skipOMIM bool
	var skipMondo bool
	var fullImport bool

	return &cli.Command{
		Name:  "import",
		Usage: "import or update gene-disease associations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "mondo-file",
				Usage:       "Mondo file in owl format",
				Destination: &mondoFile,
			},
			&cli.BoolFlag{
				Name:        "skip-omim",
				Usage:       "skip importing OMIM gene-disease data",
				Destination: &skipOMIM,
			},
			&cli.BoolFlag{
				Name:        "skip-mondo",
				Usage:       "skip importing Mondo gene-disease data",
				Destination: &skipMondo,
			},
			&cli.BoolFlag{
				Name:        "full-import",
				Usage:       "run a full import instead of an update, only valid on a new database",
				Destination: &fullImport,
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

			// the newest OMIM and Mondo import runs recorded in meta
			imports, err := store.LatestImports()
			if err != nil {
				return err
			}

			if !skipOMIM {
				err = importOMIM(cfg, store, imports, fullImport)
				if err != nil {
					return err
				}
			}

			if !skipMondo {
				err = importMondo(store, imports, mondoFile, fullImport)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// importOMIM loads MIM morbid gene-disease associations from an Ensembl core
// database. An update only inserts associations G2P does not know yet.
func importOMIM(
	cfg *config.Config,
	store *database.Store,
	imports map[string]database.ImportInfo,
	fullImport bool,
) error {
	ensemblCfg, err := cfg.RequireEnsemblDatabase()
	if err != nil {
		return err
	}

	// the Ensembl release is part of the core database name
	version := regexp.MustCompile("[0-9]+").FindString(ensemblCfg.Name)
	if version == "" {
		return fmt.Errorf("cannot detect Ensembl release from database name %q", ensemblCfg.Name)
	}
	log.Infof("going to import OMIM data from Ensembl %s", version)

	current, hasImport := imports["Ensembl"]
	if hasImport {
		log.Infof("current OMIM data is from Ensembl %s", current.Version)

		if fullImport {
			return fmt.Errorf("cannot run full import: G2P already has OMIM gene-disease associations, run an update instead")
		}
		if !versionNewer(version, current.Version) {
			log.Info("skipping update: OMIM gene-disease data is up-to-date")
			return nil
		}
	}

	ensemblDB, err := database.Open(ensemblCfg)
	if err != nil {
		return err
	}
	defer database.Close(ensemblDB)

	log.Info("getting OMIM gene-disease associations")
	geneDiseases, err := database.MIMGeneDiseases(ensemblDB)
	if err != nil {
		return err
	}

	loci, err := store.EnsemblIDToLocusID()
	if err != nil {
		return err
	}
	omimSourceID, err := store.SourceID("OMIM")
	if err != nil {
		return err
	}
	ensemblSourceID, err := store.SourceID("Ensembl")
	if err != nil {
		return err
	}

	known := map[string]database.GeneDiseaseAssociation{}
	if !fullImport {
		known, err = store.CurrentGeneDiseases("OMIM")
		if err != nil {
			return err
		}
	}

	var rows []data_model.GeneDisease
	for stableID, associations := range geneDiseases {
		geneID, ok := loci[stableID]
		if !ok {
			continue
		}

		for _, assoc := range associations {
			key := fmt.Sprintf("%s---%s", assoc.MIMID, stableID)
			if _, ok := known[key]; ok {
				continue
			}
			if !fullImport {
				log.Infof("inserting new OMIM ID %s; %s; %s", assoc.MIMID, assoc.Disease, stableID)
			}
			rows = append(rows, data_model.GeneDisease{
				GeneID:     geneID,
				Disease:    assoc.Disease,
				Identifier: assoc.MIMID,
				SourceID:   omimSourceID,
			})
		}
	}

	err = store.InsertGeneDiseases(rows)
	if err != nil {
		return err
	}
	log.Infof("%d OMIM gene-disease associations inserted", len(rows))

	return store.AddMeta(
		omimMetaKey,
		"Import OMIM gene disease associations from Ensembl core db",
		version,
		ensemblSourceID,
	)
}

// importMondo loads gene-disease associations from a Mondo OWL file. Every
// non obsolete Mondo ID also lands in disease_external, linked or not.
func importMondo(
	store *database.Store,
	imports map[string]database.ImportInfo,
	mondoFile string,
	fullImport bool,
) error {
	if !strings.HasSuffix(mondoFile, ".owl") {
		return fmt.Errorf("invalid Mondo file format, accepted format is: owl")
	}

	version, err := mondo.Version(mondoFile)
	if err != nil {
		return err
	}
	fileDate, err := time.Parse("2006-01-02", version)
	if err != nil {
		return fmt.Errorf("invalid Mondo version %q: %s", version, err)
	}
	log.Infof("going to import Mondo data version %s", version)

	current, hasImport := imports["Mondo"]
	if hasImport {
		if fullImport {
			return fmt.Errorf("cannot run full import: G2P already has Mondo gene-disease associations, run an update instead")
		}

		currentDate, err := time.Parse("2006-01-02", current.Version)
		if err == nil && !fileDate.After(currentDate) {
			log.Info("skipping update: Mondo gene-disease data is up-to-date")
			return nil
		}
	}

	log.Info("getting Mondo gene-disease associations")
	geneDiseases, allDiseases, err := mondo.ReadFile(mondoFile)
	if err != nil {
		return err
	}

	mondoSourceID, err := store.SourceID("Mondo")
	if err != nil {
		return err
	}

	log.Infof("populating external diseases with %d Mondo IDs", len(allDiseases))
	err = store.ReplaceExternalDiseases(allDiseases, mondoSourceID)
	if err != nil {
		return err
	}

	hgncLoci, err := store.HGNCIDToLocusID()
	if err != nil {
		return err
	}

	known := map[string]database.MondoAssociation{}
	if !fullImport {
		known, err = store.CurrentMondoGeneDiseases()
		if err != nil {
			return err
		}
	}

	var rows []data_model.GeneDisease
	for mondoID, assoc := range geneDiseases {
		stored, ok := known[mondoID]
		if ok {
			if stored.Disease != assoc.Disease {
				log.Infof("updating %s", mondoID)
				err = store.UpdateGeneDiseaseName(mondoID, assoc.Disease)
				if err != nil {
					return err
				}
			}
			continue
		}

		geneID, ok := hgncLoci[assoc.HGNCID]
		if !ok {
			log.Warnf("skipping %s: could not find HGNC:%s in G2P", mondoID, assoc.HGNCID)
			continue
		}

		if !fullImport {
			log.Infof("inserting new %s; %s; HGNC:%s", mondoID, assoc.Disease, assoc.HGNCID)
		}
		rows = append(rows, data_model.GeneDisease{
			GeneID:     geneID,
			Disease:    assoc.Disease,
			Identifier: mondoID,
			SourceID:   mondoSourceID,
		})
	}

	err = store.InsertGeneDiseases(rows)
	if err != nil {
		return err
	}
	log.Infof("%d Mondo gene-disease associations inserted", len(rows))

	return store.AddMeta(
		mondoMetaKey,
		"Import Mondo gene disease associations",
		version,
		mondoSourceID,
	)
}

// versionNewer compares two numeric release strings.
func versionNewer(candidate, current string) bool {
	a, errA := strconv.Atoi(candidate)
	b, errB := strconv.Atoi(current)
	if errA != nil || errB != nil {
		return candidate > current
	}

	return a > b
}
