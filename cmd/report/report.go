package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/api"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "curation activity reports",
		Commands: []*cli.Command{
			subCmdActivities(),
		},
	}
}

func subCmdActivities() *cli.Command {
	var configPath string
	var apiUsername string
	var apiPassword string
	var outputDir string
	var stableID string

	return &cli.Command{
		Name:  "activities",
		Usage: "report the record changes of the last 7 days, or of one record",
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
				Required:    true,
				Destination: &apiUsername,
			},
			&cli.StringFlag{
				Name:        "api-password",
				Usage:       "password to connect to the G2P API",
				Required:    true,
				Destination: &apiPassword,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Usage:       "directory where the report is saved",
				Value:       ".",
				Destination: &outputDir,
			},
			&cli.StringFlag{
				Name:        "stable-id",
				Usage:       "report the full history of one record instead of the last 7 days",
				Destination: &stableID,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			info, err := os.Stat(outputDir)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("invalid output directory %q", outputDir)
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

			if stableID != "" {
				log.Infof("fetching activity logs of %s", stableID)
				logs, err := client.RecordActivityLogs(stableID)
				if err != nil {
					return err
				}
				return writeReport(outputDir, "History of "+stableID, logs)
			}

			cutoff := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
			log.Infof("fetching activity logs since %s", cutoff)
			logs, err := client.ActivityLogs(cutoff)
			if err != nil {
				return err
			}

			return writeReport(outputDir, "Updates from last 7 days", logs)
		},
	}
}

// writeReport groups the activity logs by record and writes one report block
// per changed record.
func writeReport(outputDir, title string, logs []api.ActivityLog) error {
	var order []string
	byRecord := map[string][]api.ActivityLog{}
	for _, entry := range logs {
		if entry.G2PID == "" {
			continue
		}
		if _, ok := byRecord[entry.G2PID]; !ok {
			order = append(order, entry.G2PID)
		}
		byRecord[entry.G2PID] = append(byRecord[entry.G2PID], entry)
	}

	filename := filepath.Join(outputDir, "updates_"+time.Now().Format("2006-01-02")+".txt")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %s", filename, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "%s\n", title)
	for _, g2pID := range order {
		fmt.Fprintf(file, "\n### %s ###\n", g2pID)
		for _, entry := range byRecord[g2pID] {
			fmt.Fprint(file, formatLogEntry(entry))
		}
	}

	log.Infof("report written to %s", filename)
	return nil
}

func formatLogEntry(entry api.ActivityLog) string {
	if entry.DataType == "record" {
		if entry.ChangeType == "updated" {
			if entry.IsDeleted == 1 {
				return fmt.Sprintf("On %s %s deleted record %s: %s; %s; %s; %s\n",
					entry.Date, entry.User, entry.G2PID,
					entry.Disease, entry.Genotype, entry.Mechanism, entry.Confidence)
			}
			return fmt.Sprintf("On %s %s updated record %s\n",
				entry.Date, entry.User, entry.G2PID)
		}
		return fmt.Sprintf("On %s %s %s record %s: %s; %s; %s; %s\n",
			entry.Date, entry.User, entry.ChangeType, entry.G2PID,
			entry.Disease, entry.Genotype, entry.Mechanism, entry.Confidence)
	}

	if entry.ChangeType == "updated" && entry.IsDeleted == 1 {
		return fmt.Sprintf("On %s %s deleted a %s for record %s\n",
			entry.Date, entry.User, entry.DataType, entry.G2PID)
	}
	return fmt.Sprintf("On %s %s %s a %s for record %s\n",
		entry.Date, entry.User, entry.ChangeType, entry.DataType, entry.G2PID)
}
