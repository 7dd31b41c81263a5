package gtf

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Gene is one gene entry read from an Ensembl GTF file.
type Gene struct {
	Symbol string
	Chr    string
	Start  int
	End    int
	Strand string
}

// URL returns the download URL of the GRCh38 chromosome-level GTF file for an
// Ensembl release.
func URL(version int) string {
	return fmt.Sprintf(
		"https://ftp.ensembl.org/pub/release-%d/gtf/homo_sapiens/Homo_sapiens.GRCh38.%d.chr.gtf.gz",
		version, version,
	)
}

// pseudoautosomal regions on GRCh38, genes duplicated between X and Y live
// here under the same symbol
var parRegions = []struct {
	chr        string
	start, end int
}{
	{"X", 10001, 2781479},
	{"X", 155701383, 156030895},
	{"Y", 10001, 2781479},
	{"Y", 56887903, 57217415},
}

func inPARRegion(chr string, start, end int) bool {
	for _, region := range parRegions {
		if chr == region.chr && start >= region.start && end <= region.end {
			return true
		}
	}
	return false
}

// ReadGenes parses a gzipped Ensembl GTF file into a stable ID to gene
// mapping. Genes whose biotype matches one of the exclude patterns are
// skipped. Symbols mapping to more than one stable ID are dropped and
// reported, except for pseudoautosomal duplicates which are kept under the
// first stable ID seen.
//
// Two report files are written into `workingDir`: the accepted gene list and
// an error log of ambiguous symbols.
func ReadGenes(gtfFile, workingDir string, excludeBiotypes []string) (map[string]Gene, error) {
	file, err := os.Open(gtfFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open GTF file %s: %s", gtfFile, err)
	}
	defer file.Close()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTF file %s: %s", gtfFile, err)
	}
	defer reader.Close()

	excludePatterns := make([]*regexp.Regexp, 0, len(excludeBiotypes))
	for _, biotype := range excludeBiotypes {
		pattern, err := regexp.Compile(biotype)
		if err != nil {
			return nil, fmt.Errorf("invalid biotype pattern %q: %s", biotype, err)
		}
		excludePatterns = append(excludePatterns, pattern)
	}

	symbolToIDs := map[string]map[string]bool{}
	symbolDetails := map[string]Gene{}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			continue
		}

		attribs := parseAttributes(fields[8])
		geneID := attribs["gene_id"]
		symbol := attribs["gene_name"]
		biotype := attribs["gene_biotype"]
		if geneID == "" || symbol == "" || biotype == "" {
			continue
		}

		excluded := false
		for _, pattern := range excludePatterns {
			if pattern.MatchString(biotype) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		start, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		end, err := strconv.Atoi(fields[4])
		if err != nil {
			continue
		}

		ids, ok := symbolToIDs[symbol]
		if !ok {
			symbolToIDs[symbol] = map[string]bool{geneID: true}
			symbolDetails[symbol] = Gene{
				Symbol: symbol,
				Chr:    fields[0],
				Start:  start,
				End:    end,
				Strand: fields[6],
			}
			continue
		}

		if !inPARRegion(fields[0], start, end) {
			ids[geneID] = true
		}
	}

	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read GTF file %s: %s", gtfFile, err)
	}

	genes, err := resolveUniqueGenes(workingDir, symbolToIDs, symbolDetails)
	if err != nil {
		return nil, err
	}

	return genes, nil
}

// parseAttributes extracts the gene level key-value pairs from the GTF
// attribute column.
func parseAttributes(raw string) map[string]string {
	result := map[string]string{}

	for _, attrib := range strings.Split(raw, ";") {
		attrib = strings.TrimSpace(attrib)
		if !strings.HasPrefix(attrib, "gene_id") &&
			!strings.HasPrefix(attrib, "gene_name") &&
			!strings.HasPrefix(attrib, "gene_biotype") {
			continue
		}

		parts := strings.Split(strings.ReplaceAll(attrib, `"`, ""), " ")
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}

	return result
}

func resolveUniqueGenes(
	workingDir string,
	symbolToIDs map[string]map[string]bool,
	symbolDetails map[string]Gene,
) (map[string]Gene, error) {
	genesFile := filepath.Join(workingDir, "ensembl_genes_grch38.txt")
	errorFile := filepath.Join(workingDir, "ensembl_genes_grch38_error.log")

	genesOut, err := os.Create(genesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create gene list file %s: %s", genesFile, err)
	}
	defer genesOut.Close()

	errorOut, err := os.Create(errorFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create error log file %s: %s", errorFile, err)
	}
	defer errorOut.Close()

	result := map[string]Gene{}
	for symbol, ids := range symbolToIDs {
		if len(ids) > 1 {
			list := make([]string, 0, len(ids))
			for id := range ids {
				list = append(list, id)
			}
			fmt.Fprintf(errorOut, "ERROR: more than one stable_id for %s: %s\n", symbol, strings.Join(list, ", "))
			continue
		}

		var stableID string
		for id := range ids {
			stableID = id
		}

		fmt.Fprintf(genesOut, "%s\t%s\n", stableID, symbol)
		result[stableID] = symbolDetails[symbol]
	}

	return result, nil
}
