package data_model

// Disease is a curated disease name.
type Disease struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func (Disease) TableName() string { return "disease" }

type DiseaseSynonym struct {
	ID        uint `gorm:"primaryKey"`
	DiseaseID uint
	Synonym   string
}

func (DiseaseSynonym) TableName() string { return "disease_synonym" }

// DiseaseOntologyTerm links a disease to an ontology term.
type DiseaseOntologyTerm struct {
	ID             uint `gorm:"primaryKey"`
	DiseaseID      uint
	OntologyTermID uint
}

func (DiseaseOntologyTerm) TableName() string { return "disease_ontology_term" }

// DiseaseExternal stores every known disease of an external source, not
// necessarily linked to any gene. The table is rebuilt on each Mondo import.
type DiseaseExternal struct {
	ID         uint `gorm:"primaryKey"`
	Disease    string
	Identifier string
	SourceID   uint
}

func (DiseaseExternal) TableName() string { return "disease_external" }

// OntologyTerm is a Mondo or OMIM disease ontology entry.
type OntologyTerm struct {
	ID          uint `gorm:"primaryKey"`
	Accession   string
	Term        string
	Description string
	SourceID    uint
}

func (OntologyTerm) TableName() string { return "ontology_term" }
