package data_model

import "time"

// Source names an external data provider: Ensembl, HGNC, OMIM, Mondo, gnomAD
// constraint metrics, Marsh Mechanism probabilities, G2P itself.
type Source struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func (Source) TableName() string { return "source" }

type AttribType struct {
	ID        uint `gorm:"primaryKey"`
	Code      string
	IsDeleted int
}

func (AttribType) TableName() string { return "attrib_type" }

// Attrib is a controlled-vocabulary value, keyed by its attrib type code:
// genotypes, confidence categories, gene synonym markers and so on.
type Attrib struct {
	ID     uint `gorm:"primaryKey"`
	Value  string
	TypeID uint
}

func (Attrib) TableName() string { return "attrib" }

// Meta records every bulk import or update run against the database.
type Meta struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"column:key"`
	DateUpdate  time.Time
	IsPublic    int
	Description string
	Version     string
	SourceID    uint
}

func (Meta) TableName() string { return "meta" }
