package genes

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gene2phenotype/g2ptools/common"
	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"github.com/gene2phenotype/g2ptools/gtf"
	"github.com/gene2phenotype/g2ptools/hgnc"
	"github.com/gene2phenotype/g2ptools/network"
	"github.com/urfave/cli/v3"
)

const defaultRetryCnt = 3

// excludeBiotypes are the gene biotype patterns left out of the gene set.
var excludeBiotypes = []string{"pseudogene", "misc_RNA"}

// identifierLikeSymbol matches placeholder gene symbols derived from clone
// accessions, e.g. AC012345.1. Those never replace a proper symbol.
var identifierLikeSymbol = regexp.MustCompile(`^[A-Z]+[0-9]+\.[0-9]+`)

// tablesWithLocusLink are the tables checked for dangling locus references
// before and after a gene set update.
var tablesWithLocusLink = []string{
	"locus_identifier",
	"locus_attrib",
	"locus_genotype_disease",
	"uniprot_annotation",
	"gene_stats",
	"gene_disease",
	"gene2phenotype_app_historicallocusgenotypedisease",
}

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "genes",
		Usage: "gene set maintenance",
		Commands: []*cli.Command{
			subCmdUpdate(),
		},
	}
}

func subCmdUpdate() *cli.Command {
	var configPath string
	var workingDir string
	var version int64
	var onlySymbols bool

	return &cli.Command{
		Name:  "update",
		Usage: "update the gene set from an Ensembl GTF release and the HGNC gene set",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "working-dir",
				Usage:       "directory for downloads and report files",
				Required:    true,
				Destination: &workingDir,
			},
			&cli.IntFlag{
				Name:        "version",
				Usage:       "Ensembl release version",
				Destination: &version,
			},
			&cli.BoolFlag{
				Name:        "only-update-gene-symbol",
				Usage:       "only update gene symbols and identifiers from the HGNC file",
				Destination: &onlySymbols,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			if !onlySymbols && version == 0 {
				return fmt.Errorf("an Ensembl version is required unless --only-update-gene-symbol is given")
			}

			info, err := os.Stat(workingDir)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("invalid working directory %q", workingDir)
			}

			banner := []string{"G2P gene set update"}
			if onlySymbols {
				banner = append(banner, "mode: gene symbols and identifiers only")
			} else {
				banner = append(banner, fmt.Sprintf("Ensembl release: %d", version))
			}
			common.LogBannerMsg(banner, 2)

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

			hgncFile := filepath.Join(workingDir, "hgnc_complete_set.txt")
			err = network.DownloadFile(hgnc.FileURL, hgncFile, defaultRetryCnt)
			if err != nil {
				return fmt.Errorf("failed to download HGNC file: %s", err)
			}

			if !onlySymbols {
				log.Info("updating gene set")
				err = updateGeneSet(store, workingDir, int(version))
				if err != nil {
					return err
				}
				log.Info("updating gene set done")
			}

			log.Info("updating gene symbols and identifiers")
			err = updateXrefs(store, workingDir, hgncFile)
			if err != nil {
				return err
			}
			log.Info("updating gene symbols and identifiers done")

			log.Info("running checks")
			err = checkDiseaseNames(store, workingDir)
			if err != nil {
				return err
			}
			err = store.LocusForeignKeyCheck(locusLinkColumns())
			if err != nil {
				return err
			}
			log.Info("running checks done")

			return recordUpdateMeta(store, int(version), onlySymbols)
		},
	}
}

func locusLinkColumns() map[string]string {
	result := map[string]string{}
	for _, table := range tablesWithLocusLink {
		column := "gene_id"
		if strings.HasPrefix(table, "locus_") || strings.HasPrefix(table, "gene2phenotype_app_") {
			column = "locus_id"
		}
		result[table] = column
	}
	return result
}

// updateGeneSet imports new genes from the Ensembl GTF file, refreshes stale
// stable IDs and deletes outdated unused genes.
func updateGeneSet(store *database.Store, workingDir string, version int) error {
	gtfFile := filepath.Join(workingDir, fmt.Sprintf("Homo_sapiens.GRCh38.%d.chr.gtf.gz", version))
	err := network.DownloadFile(gtf.URL(version), gtfFile, defaultRetryCnt)
	if err != nil {
		return fmt.Errorf("failed to download Ensembl GTF file: %s", err)
	}

	err = store.LocusForeignKeyCheck(locusLinkColumns())
	if err != nil {
		return err
	}

	g2pGenes, g2pBySymbol, err := store.EnsemblGenes()
	if err != nil {
		return err
	}

	ensemblGenes, err := gtf.ReadGenes(gtfFile, workingDir, excludeBiotypes)
	if err != nil {
		return err
	}

	err = importGenes(store, workingDir, g2pGenes, g2pBySymbol, ensemblGenes)
	if err != nil {
		return err
	}

	return deleteOutdatedGenes(store, workingDir, g2pGenes, ensemblGenes)
}

// importGenes walks the Ensembl gene set. Unknown stable IDs either replace
// the stale stable ID of an existing gene symbol or become a new locus.
func importGenes(
	store *database.Store,
	workingDir string,
	g2pGenes map[string]database.GeneInfo,
	g2pBySymbol map[string]string,
	ensemblGenes map[string]gtf.Gene,
) error {
	sequences, err := store.Sequences()
	if err != nil {
		return err
	}
	geneAttribID, err := store.AttribID("gene")
	if err != nil {
		return err
	}
	sourceID, err := store.SourceID("Ensembl")
	if err != nil {
		return err
	}
	synonymTypeID, err := store.AttribTypeID("gene_synonym")
	if err != nil {
		return err
	}
	knownSymbols, err := store.GeneIDsBySymbol()
	if err != nil {
		return err
	}

	updateReport, err := os.Create(filepath.Join(workingDir, "report_gene_updates.txt"))
	if err != nil {
		return fmt.Errorf("failed to create update report: %s", err)
	}
	defer updateReport.Close()

	newGenesReport, err := os.Create(filepath.Join(workingDir, "report_new_genes.txt"))
	if err != nil {
		return fmt.Errorf("failed to create new genes report: %s", err)
	}
	defer newGenesReport.Close()

	for stableID, gene := range ensemblGenes {
		if current, ok := g2pGenes[stableID]; ok {
			err = refreshKnownGene(store, updateReport, gene, current, knownSymbols, sequences, synonymTypeID, sourceID)
			if err != nil {
				return err
			}
			continue
		}

		if currentStableID, ok := g2pBySymbol[gene.Symbol]; ok {
			// gene is known but its stable ID moved on
			locusID := g2pGenes[currentStableID].LocusID
			err = store.UpdateLocusIdentifier(locusID, stableID, sourceID)
			if err != nil {
				return err
			}
			fmt.Fprintf(newGenesReport,
				"UPDATE: locus_id = %d gene symbol %s new stable_id %s (previous stable_id %s)\n",
				locusID, gene.Symbol, stableID, currentStableID,
			)
			continue
		}

		strand := 1
		if gene.Strand == "-" {
			strand = -1
		}

		sequenceID, ok := sequences[gene.Chr]
		if !ok {
			log.Warnf("unknown sequence %q for gene %s", gene.Chr, gene.Symbol)
			continue
		}

		locus := data_model.Locus{
			Start:      gene.Start,
			End:        gene.End,
			Strand:     strand,
			Name:       gene.Symbol,
			TypeID:     geneAttribID,
			SequenceID: sequenceID,
		}
		locusID, err := store.InsertGene(locus, stableID, sourceID)
		if err != nil {
			return err
		}
		knownSymbols[gene.Symbol] = locusID
		fmt.Fprintf(newGenesReport, "ADD: new gene %s stable_id %s\n", gene.Symbol, stableID)
	}

	return nil
}

// refreshKnownGene reconciles a stored gene with its GTF entry. A changed
// symbol becomes a synonym when the new one is a clone-style placeholder or is
// already taken; otherwise the locus is renamed and the old symbol kept as
// synonym. Coordinates follow the GTF.
func refreshKnownGene(
	store *database.Store,
	report io.Writer,
	gene gtf.Gene,
	current database.GeneInfo,
	knownSymbols map[string]uint,
	sequences map[string]uint,
	synonymTypeID, sourceID uint,
) error {
	if gene.Symbol != current.Symbol {
		takenBy, taken := knownSymbols[gene.Symbol]
		placeholder := identifierLikeSymbol.MatchString(gene.Symbol) &&
			!identifierLikeSymbol.MatchString(current.Symbol)

		if taken || placeholder {
			if !taken || takenBy != current.LocusID {
				err := store.AddLocusSynonym(current.LocusID, gene.Symbol, synonymTypeID, sourceID)
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(report, "ADD SYNONYM: locus_id = %d gene symbol %s new synonym %s\n",
				current.LocusID, current.Symbol, gene.Symbol)
		} else {
			err := store.RenameLocus(current.LocusID, gene.Symbol)
			if err != nil {
				return err
			}
			err = store.AddLocusSynonym(current.LocusID, current.Symbol, synonymTypeID, sourceID)
			if err != nil {
				return err
			}
			knownSymbols[gene.Symbol] = current.LocusID
			fmt.Fprintf(report, "UPDATE GENE SYMBOL: locus_id = %d old gene symbol %q new gene symbol %q\n",
				current.LocusID, current.Symbol, gene.Symbol)
		}
	}

	sequenceID, ok := sequences[gene.Chr]
	if !ok {
		sequenceID = current.SequenceID
	}
	if gene.Start != current.Start || gene.End != current.End || sequenceID != current.SequenceID {
		err := store.UpdateLocusCoords(current.LocusID, gene.Start, gene.End, sequenceID)
		if err != nil {
			return err
		}
		fmt.Fprintf(report, "UPDATE COORDINATES: locus_id = %d gene symbol %s %s:%d-%d\n",
			current.LocusID, gene.Symbol, gene.Chr, gene.Start, gene.End)
	}

	return nil
}

// deleteOutdatedGenes removes genes no longer present in the GTF file, as
// long as nothing links to them.
func deleteOutdatedGenes(
	store *database.Store,
	workingDir string,
	g2pGenes map[string]database.GeneInfo,
	ensemblGenes map[string]gtf.Gene,
) error {
	unused, err := store.UnusedGenes()
	if err != nil {
		return err
	}

	report, err := os.Create(filepath.Join(workingDir, "report_outdated_genes.txt"))
	if err != nil {
		return fmt.Errorf("failed to create outdated genes report: %s", err)
	}
	defer report.Close()

	for stableID, gene := range g2pGenes {
		if _, ok := ensemblGenes[stableID]; ok {
			continue
		}

		entry, ok := unused[stableID]
		if !ok {
			fmt.Fprintf(report, "WARNING: outdated locus used in G2P %s (%s)\n", stableID, gene.Symbol)
			continue
		}

		err = store.DeleteLocus(entry.LocusID)
		if err != nil {
			return err
		}
		fmt.Fprintf(report, "INFO: outdated %s (%s) deleted from G2P\n", stableID, gene.Symbol)
	}

	return nil
}

// updateXrefs refreshes HGNC IDs, OMIM IDs and gene symbols from the HGNC
// gene set, matching genes by Ensembl stable ID.
func updateXrefs(store *database.Store, workingDir, hgncFile string) error {
	hgncGenes, err := hgnc.ReadFile(hgncFile)
	if err != nil {
		return err
	}

	g2pGenes, err := store.GenesWithXrefs()
	if err != nil {
		return err
	}
	byStableID := map[string]*xrefTarget{}
	for symbol, entry := range g2pGenes {
		byStableID[entry.StableID] = &xrefTarget{symbol: symbol, xrefs: entry}
	}

	hgncSourceID, err := store.SourceID("HGNC")
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
	synonymTypeID, err := store.AttribTypeID("gene_synonym")
	if err != nil {
		return err
	}

	report, err := os.Create(filepath.Join(workingDir, "report_hgnc_updates.txt"))
	if err != nil {
		return fmt.Errorf("failed to create HGNC report: %s", err)
	}
	defer report.Close()

	for ensemblID, hgncGene := range hgncGenes {
		target, ok := byStableID[ensemblID]
		if !ok {
			continue
		}

		if len(hgncGene.HGNCIDs) == 1 {
			newID := hgncGene.HGNCIDs[0]
			switch {
			case target.xrefs.HGNCID != "" && target.xrefs.HGNCID != newID:
				err = store.UpdateLocusIdentifier(target.xrefs.LocusID, newID, hgncSourceID)
				if err != nil {
					return err
				}
				fmt.Fprintf(report, "UPDATE HGNC ID: locus_id = %d gene symbol %s %s\n",
					target.xrefs.LocusID, target.symbol, newID)
			case target.xrefs.HGNCID == "":
				err = store.AddLocusIdentifier(target.xrefs.LocusID, newID, hgncSourceID)
				if err != nil {
					return err
				}
				fmt.Fprintf(report, "ADD HGNC ID: locus_id = %d gene symbol %s %s\n",
					target.xrefs.LocusID, target.symbol, newID)
			}
		}

		if len(hgncGene.OMIMIDs) == 1 && hgncGene.OMIMIDs[0] != "" {
			newID := hgncGene.OMIMIDs[0]
			switch {
			case target.xrefs.OMIMID != "" && target.xrefs.OMIMID != newID:
				err = store.UpdateLocusIdentifier(target.xrefs.LocusID, newID, omimSourceID)
				if err != nil {
					return err
				}
				fmt.Fprintf(report, "UPDATE OMIM ID: locus_id = %d gene symbol %s %s\n",
					target.xrefs.LocusID, target.symbol, newID)
			case target.xrefs.OMIMID == "":
				err = store.AddLocusIdentifier(target.xrefs.LocusID, newID, omimSourceID)
				if err != nil {
					return err
				}
				fmt.Fprintf(report, "ADD OMIM ID: locus_id = %d gene symbol %s %s\n",
					target.xrefs.LocusID, target.symbol, newID)
			}
		}

		if hgncGene.Symbol != "" && hgncGene.Symbol != target.symbol {
			err = store.RenameLocus(target.xrefs.LocusID, hgncGene.Symbol)
			if err != nil {
				return err
			}
			if !contains(target.xrefs.Synonyms, target.symbol) {
				err = store.AddLocusSynonym(target.xrefs.LocusID, target.symbol, synonymTypeID, ensemblSourceID)
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(report, "UPDATE GENE SYMBOL: locus_id = %d old gene symbol %q new gene symbol %q\n",
				target.xrefs.LocusID, target.symbol, hgncGene.Symbol)
		}

		for _, prev := range hgncGene.PrevSymbols {
			if prev == "" || prev == hgncGene.Symbol || contains(target.xrefs.Synonyms, prev) {
				continue
			}
			err = store.AddLocusSynonym(target.xrefs.LocusID, prev, synonymTypeID, hgncSourceID)
			if err != nil {
				return err
			}
			target.xrefs.Synonyms = append(target.xrefs.Synonyms, prev)
			fmt.Fprintf(report, "ADD GENE PREV SYMBOL: locus_id = %d gene symbol %s synonym %s\n",
				target.xrefs.LocusID, target.symbol, prev)
		}
	}

	return nil
}

type xrefTarget struct {
	symbol string
	xrefs  *database.GeneXrefs
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// checkDiseaseNames flags live records whose disease name does not start with
// the current gene symbol.
func checkDiseaseNames(store *database.Store, workingDir string) error {
	records, err := store.RecordDiseaseNames()
	if err != nil {
		return err
	}

	report, err := os.Create(filepath.Join(workingDir, "report_diseases_to_update.txt"))
	if err != nil {
		return fmt.Errorf("failed to create disease report: %s", err)
	}
	defer report.Close()

	for _, record := range records {
		if strings.HasPrefix(record.Disease, record.Gene+"-") ||
			strings.HasPrefix(record.Disease, record.Gene+" ") {
			continue
		}
		fmt.Fprintf(report, "Disease to update: %s; gene %q; disease %q\n",
			record.StableID, record.Gene, record.Disease)
	}

	return nil
}

func recordUpdateMeta(store *database.Store, version int, onlySymbols bool) error {
	if onlySymbols {
		sourceID, err := store.SourceID("HGNC")
		if err != nil {
			return err
		}
		return store.AddMeta(
			"locus_gene_symbol_update",
			"Update gene symbols from HGNC",
			time.Now().Format("2006-01-02"),
			sourceID,
		)
	}

	sourceID, err := store.SourceID("Ensembl")
	if err != nil {
		return err
	}
	return store.AddMeta(
		"locus_gene_update",
		fmt.Sprintf("Update genes to Ensembl release %d", version),
		fmt.Sprintf("%d", version),
		sourceID,
	)
}
