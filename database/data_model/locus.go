package data_model

// Locus is a gene (or other genomic feature) known to G2P.
type Locus struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	Start      int
	End        int
	Strand     int
	TypeID     uint
	SequenceID uint
}

func (Locus) TableName() string { return "locus" }

// LocusIdentifier is an external accession attached to a locus, e.g. an
// Ensembl stable ID, a HGNC ID or an OMIM gene ID. The source row tells the
// identifiers apart.
type LocusIdentifier struct {
	ID          uint `gorm:"primaryKey"`
	Identifier  string
	Description *string
	LocusID     uint
	SourceID    uint
}

func (LocusIdentifier) TableName() string { return "locus_identifier" }

// LocusAttrib stores extra values attached to a locus, gene symbol synonyms
// in particular.
type LocusAttrib struct {
	ID           uint `gorm:"primaryKey"`
	Value        string
	IsDeleted    int
	AttribTypeID uint
	LocusID      uint
	SourceID     uint
}

func (LocusAttrib) TableName() string { return "locus_attrib" }

// Sequence is a chromosome or other toplevel sequence.
type Sequence struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func (Sequence) TableName() string { return "sequence" }

// GeneStats holds per-gene scores imported from external sources, such as
// gnomAD constraint metrics and Badonyi & Marsh mechanism probabilities.
type GeneStats struct {
	ID                  uint `gorm:"primaryKey"`
	GeneSymbol          string
	GeneID              uint
	Score               float64
	SourceID            uint
	DescriptionAttribID uint
}

func (GeneStats) TableName() string { return "gene_stats" }

// GeneDisease is a gene-disease association imported from OMIM or Mondo.
type GeneDisease struct {
	ID         uint `gorm:"primaryKey"`
	GeneID     uint
	Disease    string
	Identifier string
	SourceID   uint
}

func (GeneDisease) TableName() string { return "gene_disease" }

// UniprotAnnotation links protein annotations to a gene. Only the gene link
// matters here, the table is touched by the locus foreign key check.
type UniprotAnnotation struct {
	ID     uint `gorm:"primaryKey"`
	GeneID uint
}

func (UniprotAnnotation) TableName() string { return "uniprot_annotation" }
