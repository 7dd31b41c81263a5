package gencc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/api"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/gencc"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "gencc",
		Usage: "gene-disease validity submissions to GenCC",
		Commands: []*cli.Command{
			subCmdSubmit(),
		},
	}
}

func subCmdSubmit() *cli.Command {
	var configPath string
	var outputPath string
	var oldFile string
	var apiUsername string
	var apiPassword string
	var newSubmission bool
	var skipWriteToDB bool

	return &cli.Command{
		Name:  "submit",
		Usage: "build the GenCC submission files from the public records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "path",
				Aliases:     []string{"p"},
				Usage:       "directory where the submission files are saved",
				Value:       ".",
				Destination: &outputPath,
			},
			&cli.StringFlag{
				Name:        "old-file",
				Usage:       "file of the previous GenCC submission",
				Destination: &oldFile,
			},
			&cli.BoolFlag{
				Name:        "new-submission",
				Usage:       "submit every record for the first time",
				Destination: &newSubmission,
			},
			&cli.BoolFlag{
				Name:        "skip-write-to-db",
				Usage:       "do not record the submissions in the database",
				Destination: &skipWriteToDB,
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
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			if newSubmission && oldFile != "" {
				return fmt.Errorf("cannot use --new-submission and --old-file at the same time")
			}
			if !newSubmission && oldFile == "" {
				return fmt.Errorf("--old-file is required unless --new-submission is given")
			}
			if !skipWriteToDB && (apiUsername == "" || apiPassword == "") {
				return fmt.Errorf("API credentials are required unless --skip-write-to-db is given")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			apiURL, err := cfg.RequireAPI()
			if err != nil {
				return err
			}

			// one directory per submission run
			outputDir := filepath.Join(outputPath, time.Now().Format("2006-01-02"))
			err = os.MkdirAll(outputDir, 0o755)
			if err != nil {
				return fmt.Errorf("failed to create output directory %s: %s", outputDir, err)
			}

			client, err := api.NewClient(apiURL)
			if err != nil {
				return err
			}

			log.Info("downloading the record dump")
			dump, err := client.DownloadAllPanels()
			if err != nil {
				return err
			}
			records, err := gencc.ParseRecords(dump)
			if err != nil {
				return err
			}

			issuesFile := filepath.Join(outputDir, "records_with_issues.txt")
			submitFile := filepath.Join(outputDir, "G2P_GenCC.txt")

			var entries []gencc.SubmissionEntry
			if newSubmission {
				log.Info("handling new submission")
				entries, err = gencc.WriteSubmissionFile(records, submitFile, issuesFile)
			} else {
				log.Info("handling existing submission")
				entries, err = existingSubmission(client, records, outputDir, oldFile, submitFile, issuesFile)
			}
			if err != nil {
				return err
			}
			log.Infof("%d records written to the submission files", len(entries))

			if skipWriteToDB {
				return nil
			}

			log.Info("recording the submissions in the database")
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

			apiEntries := make([]api.GenCCSubmissionEntry, 0, len(entries))
			for _, entry := range entries {
				apiEntries = append(apiEntries, api.GenCCSubmissionEntry{
					SubmissionID:     entry.SubmissionID,
					DateOfSubmission: entry.DateOfSubmission,
					TypeOfSubmission: entry.TypeOfSubmission,
					G2PStableID:      entry.G2PStableID,
				})
			}

			return client.CreateGenCCSubmissions(apiEntries)
		},
	}
}

// existingSubmission splits the record dump into new records, records whose
// disease ID or confidence changed since the last submission, and records
// deleted in G2P after being submitted. Each group goes to its own file.
func existingSubmission(
	client *api.Client,
	records []gencc.Record,
	outputDir, oldFile, submitFile, issuesFile string,
) ([]gencc.SubmissionEntry, error) {
	unsubmitted, err := client.UnsubmittedStableIDs()
	if err != nil {
		return nil, err
	}
	updated, err := client.UpdatedSinceSubmission()
	if err != nil {
		return nil, err
	}
	deleted, err := client.DeletedSubmittedRecords()
	if err != nil {
		return nil, err
	}

	previous, err := gencc.ReadPreviousSubmission(oldFile)
	if err != nil {
		return nil, err
	}

	byID := map[string]gencc.Record{}
	for _, record := range records {
		byID[record.G2PID] = record
	}

	// only re-submit records where disease ID or confidence changed
	toUpdate := gencc.FilterUpdated(previous, byID, updated)

	isNew := map[string]bool{}
	for _, id := range unsubmitted {
		isNew[id] = true
	}

	var newRecords []gencc.Record
	var updatedRecords []gencc.Record
	for _, record := range records {
		if isNew[record.G2PID] {
			record.TypeOfSubmission = "create"
			newRecords = append(newRecords, record)
		}
		if submissionID, ok := toUpdate[record.G2PID]; ok {
			record.TypeOfSubmission = "update"
			record.SubmissionID = submissionID
			updatedRecords = append(updatedRecords, record)
		}
	}

	entries, err := gencc.WriteSubmissionFile(newRecords, submitFile, issuesFile)
	if err != nil {
		return nil, err
	}

	updatedFile := filepath.Join(outputDir, "G2P_GenCC_updated_records.txt")
	updatedEntries, err := gencc.WriteSubmissionFile(updatedRecords, updatedFile, issuesFile)
	if err != nil {
		return nil, err
	}
	entries = append(entries, updatedEntries...)

	deletedFile := filepath.Join(outputDir, "G2P_GenCC_deleted_records.txt")
	out, err := os.Create(deletedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %s", deletedFile, err)
	}
	defer out.Close()
	for _, id := range deleted {
		fmt.Fprintln(out, gencc.RecordURL(id))
	}

	return entries, nil
}
