package database

import (
	"fmt"

	"github.com/gene2phenotype/g2ptools/config"
	"github.com/gene2phenotype/g2ptools/database/data_model"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to a MySQL database described by a config section.
func Open(cfg config.Database) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s at %s: %s", cfg.Name, cfg.Host, err)
	}

	return db, nil
}

// OpenSQLite opens a local SQLite database. Used for tests and offline work
// against database dumps.
func OpenSQLite(filePath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(filePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %s", filePath, err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&data_model.Source{},
		&data_model.AttribType{},
		&data_model.Attrib{},
		&data_model.Sequence{},
		&data_model.Locus{},
		&data_model.LocusIdentifier{},
		&data_model.LocusAttrib{},
		&data_model.Meta{},
		&data_model.Disease{},
		&data_model.DiseaseSynonym{},
		&data_model.DiseaseOntologyTerm{},
		&data_model.OntologyTerm{},
		&data_model.G2PStableID{},
		&data_model.LocusGenotypeDisease{},
		&data_model.Panel{},
		&data_model.LGDPanel{},
		&data_model.CVMolecularMechanism{},
		&data_model.GeneStats{},
		&data_model.GeneDisease{},
		&data_model.DiseaseExternal{},
		&data_model.UniprotAnnotation{},
	)
}

func Close(db *gorm.DB) error {
	inner, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to close database, can't read inner data: %s", err)
	}

	err = inner.Close()
	if err != nil {
		return fmt.Errorf("failed to close inner database: %s", err)
	}

	return nil
}
