package service

import (
	"database/sql"
	"log/slog"
)

// rollback откатывает транзакцию и только логирует неудачу отката
func rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
