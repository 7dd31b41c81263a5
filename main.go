package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gene2phenotype/g2ptools/cmd/clingen"
	"github.com/gene2phenotype/g2ptools/cmd/diseases"
	"github.com/gene2phenotype/g2ptools/cmd/ebisearch"
	"github.com/gene2phenotype/g2ptools/cmd/gencc"
	"github.com/gene2phenotype/g2ptools/cmd/genedisease"
	"github.com/gene2phenotype/g2ptools/cmd/genes"
	"github.com/gene2phenotype/g2ptools/cmd/ontology"
	"github.com/gene2phenotype/g2ptools/cmd/publications"
	"github.com/gene2phenotype/g2ptools/cmd/records"
	"github.com/gene2phenotype/g2ptools/cmd/report"
	"github.com/gene2phenotype/g2ptools/cmd/stats"
	"github.com/gene2phenotype/g2ptools/cmd/synonyms"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "g2ptools",
		Usage:   "maintenance toolkit for the Gene2Phenotype database",
		Version: "0.1.0",
		Commands: []*cli.Command{
			genes.Cmd(),
			diseases.Cmd(),
			ontology.Cmd(),
			records.Cmd(),
			genedisease.Cmd(),
			stats.Cmd(),
			report.Cmd(),
			ebisearch.Cmd(),
			gencc.Cmd(),
			synonyms.Cmd(),
			clingen.Cmd(),
			publications.Cmd(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
