package database

import (
	"fmt"
	"time"

	"github.com/gene2phenotype/g2ptools/database/data_model"
	"gorm.io/gorm"
)

// Store wraps a gorm connection with the queries the maintenance commands
// need. All methods operate on the G2P schema.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// SourceID looks up the id of a source by name, e.g. "Ensembl" or "Mondo".
func (s *Store) SourceID(name string) (uint, error) {
	var source data_model.Source
	err := s.db.Where("name = ?", name).First(&source).Error
	if err != nil {
		return 0, fmt.Errorf("cannot find source %q: %s", name, err)
	}

	return source.ID, nil
}

// AttribID looks up the id of an attrib by value.
func (s *Store) AttribID(value string) (uint, error) {
	var attrib data_model.Attrib
	err := s.db.Where("value = ?", value).First(&attrib).Error
	if err != nil {
		return 0, fmt.Errorf("cannot find attrib %q: %s", value, err)
	}

	return attrib.ID, nil
}

// AttribTypeID looks up the id of an attrib type by code.
func (s *Store) AttribTypeID(code string) (uint, error) {
	var attribType data_model.AttribType
	err := s.db.Where("code = ?", code).First(&attribType).Error
	if err != nil {
		return 0, fmt.Errorf("cannot find attrib type %q: %s", code, err)
	}

	return attribType.ID, nil
}

// Sequences returns a name to id mapping for all toplevel sequences.
func (s *Store) Sequences() (map[string]uint, error) {
	var sequences []data_model.Sequence
	err := s.db.Find(&sequences).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sequences: %s", err)
	}

	result := map[string]uint{}
	for _, seq := range sequences {
		result[seq.Name] = seq.ID
	}

	return result, nil
}

// AddMeta records an import or update run in the meta table.
func (s *Store) AddMeta(key, description, version string, sourceID uint) error {
	meta := data_model.Meta{
		Key:         key,
		DateUpdate:  time.Now(),
		IsPublic:    0,
		Description: description,
		Version:     version,
		SourceID:    sourceID,
	}

	err := s.db.Create(&meta).Error
	if err != nil {
		return fmt.Errorf("failed to insert meta row %q: %s", key, err)
	}

	return nil
}

// LatestVersion returns the most recent version recorded in meta for a source.
func (s *Store) LatestVersion(sourceName string) (string, error) {
	var version string
	err := s.db.Table("meta m").
		Select("m.version").
		Joins("LEFT JOIN source s ON s.id = m.source_id").
		Where("s.name = ?", sourceName).
		Order("m.date_update DESC").
		Limit(1).
		Scan(&version).Error
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest %s version: %s", sourceName, err)
	}
	if version == "" {
		return "", fmt.Errorf("no meta entry found for source %q", sourceName)
	}

	return version, nil
}
