package data_model

// G2PStableID is the public accession of a curated record, e.g. G2P01234.
type G2PStableID struct {
	ID        uint `gorm:"primaryKey"`
	StableID  string
	IsDeleted int
}

func (G2PStableID) TableName() string { return "g2p_stableid" }

// LocusGenotypeDisease is the central curated record: a gene linked to a
// disease under an allelic requirement and molecular mechanism.
type LocusGenotypeDisease struct {
	ID           uint `gorm:"primaryKey"`
	StableID     uint `gorm:"column:stable_id"`
	LocusID      uint
	DiseaseID    uint
	GenotypeID   uint
	ConfidenceID uint
	MechanismID  uint
	IsDeleted    int
}

func (LocusGenotypeDisease) TableName() string { return "locus_genotype_disease" }

// Panel groups records by curation effort, e.g. DD or Eye.
type Panel struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	IsVisible int
}

func (Panel) TableName() string { return "panel" }

type LGDPanel struct {
	ID      uint `gorm:"primaryKey"`
	LGDID   uint `gorm:"column:lgd_id"`
	PanelID uint
}

func (LGDPanel) TableName() string { return "lgd_panel" }

// CVMolecularMechanism is the controlled vocabulary of molecular mechanisms.
type CVMolecularMechanism struct {
	ID    uint `gorm:"primaryKey"`
	Type  string
	Value string
}

func (CVMolecularMechanism) TableName() string { return "cv_molecular_mechanism" }
