package repositories

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mutateRows loads the rows with the given ids under SELECT ... FOR UPDATE,
// hands them to fn and saves every row in the same transaction. sqlite has no
// row locks; OpenDatabase limits it to one connection, which serializes the
// transactions instead.
func mutateRows[T any](db *gorm.DB, table string, ids []string, key func(*T) string, fn func(map[string]*T) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var rows []T
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to lock %s: %w", table, err)
		}

		byID := make(map[string]*T, len(rows))
		for i := range rows {
			byID[key(&rows[i])] = &rows[i]
		}
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				return fmt.Errorf("%s with ID %s: %w", table, id, ErrNotFound)
			}
		}

		if err := fn(byID); err != nil {
			return err
		}
		for id, row := range byID {
			if err := tx.Model(new(T)).Where("id = ?", id).Select("*").Updates(row).Error; err != nil {
				return fmt.Errorf("failed to update %s %s: %w", table, id, err)
			}
		}
		return nil
	})
}

func mutateRow[T any](db *gorm.DB, table, id string, key func(*T) string, fn func(*T) error) (*T, error) {
	var out *T
	err := mutateRows(db, table, []string{id}, key, func(rows map[string]*T) error {
		out = rows[id]
		return fn(out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
