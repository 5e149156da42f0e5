package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of an existing table.
type ColumnInfo struct {
	Field string
	Type  string
}

// GetTableColumns retrieves the column definitions for a given table. Names and types are
// lowercased. A missing table yields no columns.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == DriverSQLite {
		var rows []struct {
			Name string
			Type string
		}
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, r := range rows {
			columns = append(columns, ColumnInfo{Field: strings.ToLower(r.Name), Type: strings.ToLower(r.Type)})
		}
		return columns, nil
	}

	var rows []struct {
		Field string
		Type  string
	}
	err := db.Raw("SELECT COLUMN_NAME AS field, COLUMN_TYPE AS type FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION", tableName).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for _, r := range rows {
		columns = append(columns, ColumnInfo{Field: strings.ToLower(r.Field), Type: strings.ToLower(r.Type)})
	}
	return columns, nil
}

// MissingColumns returns the names in expected that tableName does not have.
func MissingColumns(db *gorm.DB, tableName string, expected []string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.Field] = true
	}
	var missing []string
	for _, name := range expected {
		if !have[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
