package diseases

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/api"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "diseases",
		Usage: "disease name maintenance",
		Commands: []*cli.Command{
			subCmdUpdate(),
		},
	}
}

// updateColumns is the expected header of a disease rename input file. The
// optional sixth column ("Updated") marks rows already handled.
var updateColumns = []string{
	"g2p id", "gene symbol", "disease name", "disease name formatted", "allelic requirement",
}

// updateRow is one line of the disease rename input file.
type updateRow struct {
	g2pID      string
	geneSymbol string
	current    string
	newName    string
	genotype   string
}

func subCmdUpdate() *cli.Command {
	var configPath string
	var inputFile string
	var apiUsername string
	var apiPassword string
	var dryRun bool

	return &cli.Command{
		Name:  "update",
		Usage: "rename diseases from a curator provided file",
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
				Usage:       "tab delimited file with diseases to update",
				Required:    true,
				Destination: &inputFile,
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
				Usage:       "check the input without running the updates",
				Destination: &dryRun,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			if !dryRun && (apiUsername == "" || apiPassword == "") {
				return fmt.Errorf("API credentials are required unless --dryrun is given")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dbCfg, err := cfg.RequireG2PDatabase()
			if err != nil {
				return err
			}
			apiURL, err := cfg.RequireAPI()
			if err != nil {
				return err
			}

			db, err := database.Open(dbCfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			store := database.NewStore(db)
			diseases, err := store.DiseasesWithRecords()
			if err != nil {
				return err
			}

			client, err := api.NewClient(apiURL)
			if err != nil {
				return err
			}

			if !dryRun {
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
			}

			return updateDiseases(client, diseases, inputFile, dryRun)
		},
	}
}

func updateDiseases(
	client *api.Client,
	diseases map[string]*database.DiseaseEntry,
	inputFile string,
	dryRun bool,
) error {
	rows, err := readInputFile(inputFile)
	if err != nil {
		return err
	}

	notUpdated, err := os.Create("diseases_not_updated.txt")
	if err != nil {
		return fmt.Errorf("failed to create report file: %s", err)
	}
	defer notUpdated.Close()
	fmt.Fprint(notUpdated, "comment\tg2p id\tgene symbol\tdisease name\tdisease name formatted\tgenotype\n")

	reject := func(comment string, row updateRow) {
		fmt.Fprintf(notUpdated, "%s\t%s\t%s\t%s\t%s\t%s\n",
			comment, row.g2pID, row.geneSymbol, row.current, row.newName, row.genotype)
	}

	var renames []api.DiseaseUpdate
	var lgdUpdates []api.LGDDiseaseUpdate
	seen := map[string]bool{}

	for _, row := range rows {
		entry, ok := diseases[row.current]
		if !ok {
			reject("Current disease not found in G2P", row)
			continue
		}

		if dryRun {
			log.Infof("%s; %s; %s; %s (new disease: %s)",
				row.g2pID, row.geneSymbol, row.genotype, row.current, row.newName)
		}

		// disease names follow the dyadic form <gene>-related <phenotype>
		if !strings.HasPrefix(row.newName, row.geneSymbol+"-related") {
			reject("Invalid new disease name", row)
			continue
		}

		// the same disease can be renamed once per genotype
		key := row.current + "-" + row.genotype
		if seen[key] {
			reject("This disease + genotype has already been updated", row)
			continue
		}
		seen[key] = true

		if len(entry.Records) > 1 {
			update, ok := resolveSharedDisease(client, diseases, entry, row, dryRun)
			if !ok {
				reject("Record cannot be found in G2P (maybe it's deleted)", row)
				continue
			}
			if update != nil {
				lgdUpdates = append(lgdUpdates, *update)
			}
			continue
		}

		record := entry.Records[0]
		if record.IsDeleted != 0 {
			log.Warnf("%s is deleted", row.g2pID)
			reject(fmt.Sprintf("%s is deleted", row.g2pID), row)
			continue
		}
		if record.StableID != row.g2pID {
			reject(fmt.Sprintf("%s looks suspicious. Please check record %s", row.g2pID, record.StableID), row)
			continue
		}

		if target, ok := diseases[row.newName]; ok {
			// the new name already exists, re-point the record instead
			if dryRun {
				log.Infof("record %s: replace disease_id %d by %d",
					row.g2pID, entry.DiseaseID, target.DiseaseID)
			}
			lgdUpdates = append(lgdUpdates, api.LGDDiseaseUpdate{
				DiseaseID:    entry.DiseaseID,
				NewDiseaseID: target.DiseaseID,
				StableID:     row.g2pID,
			})
			continue
		}

		renames = append(renames, api.DiseaseUpdate{ID: entry.DiseaseID, Name: row.newName})
		if dryRun {
			log.Infof("rename disease_id %d: %q to %q", entry.DiseaseID, row.current, row.newName)
		}
	}

	if dryRun {
		return nil
	}

	if len(renames) != 0 {
		result, err := client.UpdateDiseases(renames)
		if err != nil {
			return err
		}
		for _, failure := range result.Errors {
			// the target name exists already, re-point the records
			log.Infof("replace disease_id %d by existing %d", failure.ID, failure.ExistingID)
			lgdUpdates = append(lgdUpdates, api.LGDDiseaseUpdate{
				DiseaseID:    failure.ID,
				NewDiseaseID: failure.ExistingID,
			})
		}
	}

	if len(lgdUpdates) != 0 {
		err = client.UpdateLGDDiseases(lgdUpdates)
		if err != nil {
			return err
		}
	}

	return nil
}

// resolveSharedDisease handles a disease linked to several records. The record
// matching the requested genotype gets re-pointed at the new disease, which is
// created first when it does not exist yet.
func resolveSharedDisease(
	client *api.Client,
	diseases map[string]*database.DiseaseEntry,
	entry *database.DiseaseEntry,
	row updateRow,
	dryRun bool,
) (*api.LGDDiseaseUpdate, bool) {
	for _, record := range entry.Records {
		if record.Genotype != row.genotype || record.IsDeleted != 0 {
			continue
		}

		target, ok := diseases[row.newName]
		if !ok {
			if dryRun {
				log.Infof("going to add disease %q and update record %s", row.newName, row.g2pID)
				return nil, true
			}

			newID, err := client.AddDisease(row.newName)
			if err != nil {
				log.Warnf("could not insert new disease %q: %s", row.newName, err)
				return nil, true
			}
			return &api.LGDDiseaseUpdate{
				DiseaseID:    entry.DiseaseID,
				NewDiseaseID: newID,
				StableID:     row.g2pID,
			}, true
		}

		if dryRun {
			log.Infof("disease %q already exists, record %s: replace disease_id %d by %d",
				row.newName, row.g2pID, entry.DiseaseID, target.DiseaseID)
			return nil, true
		}
		return &api.LGDDiseaseUpdate{
			DiseaseID:    entry.DiseaseID,
			NewDiseaseID: target.DiseaseID,
			StableID:     row.g2pID,
		}, true
	}

	return nil, false
}

func readInputFile(filename string) ([]updateRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", filename, err)
	}
	defer file.Close()

	var rows []updateRow

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, fmt.Errorf("input file %s is empty", filename)
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < len(updateColumns) {
		return nil, fmt.Errorf("file format is incorrect, expected columns: %s", strings.Join(updateColumns, ", "))
	}
	for i, name := range updateColumns {
		if strings.TrimSpace(header[i]) != name {
			return nil, fmt.Errorf("file format is incorrect, expected columns: %s", strings.Join(updateColumns, ", "))
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}

		// the optional sixth column marks rows that were already updated
		if len(fields) > 5 && strings.TrimSpace(fields[5]) == "Yes" {
			continue
		}

		rows = append(rows, updateRow{
			g2pID:      strings.TrimSpace(fields[0]),
			geneSymbol: strings.TrimSpace(fields[1]),
			current:    strings.ReplaceAll(strings.TrimSpace(fields[2]), `"`, ""),
			newName:    strings.ReplaceAll(strings.TrimSpace(fields[3]), `"`, ""),
			genotype:   strings.TrimSpace(fields[4]),
		})
	}

	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %s", filename, err)
	}

	return rows, nil
}
