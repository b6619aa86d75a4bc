package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codedrip/logger"
	"codedrip/models"
)

const (
	insertAnalysisQuery = `
		INSERT INTO repo_analyses (id, document, created_at)
		VALUES ($1, $2, $3)
	`
	selectAnalysesQuery = `
		SELECT id, document
		FROM repo_analyses
		ORDER BY created_at
	`
	selectAnalysisQuery = `
		SELECT id, document
		FROM repo_analyses
		WHERE id = $1
	`
)

// analysisRow is one stored document.
type analysisRow struct {
	ID       string `db:"id"`
	Document []byte `db:"document"`
}

func (r analysisRow) decode() (models.RepoAnalysis, error) {
	var analysis models.RepoAnalysis
	if err := json.Unmarshal(r.Document, &analysis); err != nil {
		return analysis, fmt.Errorf("%w: corrupt document %s: %v", models.ErrPersistence, r.ID, err)
	}
	analysis.ID = r.ID
	return analysis, nil
}

// Insert stores a new analysis document and returns its generated id.
func (db *DB) Insert(ctx context.Context, analysis *models.RepoAnalysis) (string, error) {
	id := uuid.NewString()

	stored := *analysis
	stored.ID = ""
	document, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	stmt, err := db.getStmt(ctx, insertAnalysisQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	if _, err := stmt.ExecContext(ctx, id, document, analysis.AnalyzedAt); err != nil {
		return "", fmt.Errorf("%w: failed to store analysis: %v", models.ErrPersistence, err)
	}

	logger.Info("Analysis stored",
		zap.String("id", id),
		zap.String("repo", analysis.Basic.FullName))
	return id, nil
}

// FindAll returns every stored analysis in insertion order.
func (db *DB) FindAll(ctx context.Context) ([]models.RepoAnalysis, error) {
	stmt, err := db.getStmt(ctx, selectAnalysesQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	var rows []analysisRow
	if err := stmt.SelectContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to list analyses: %v", models.ErrPersistence, err)
	}

	analyses := make([]models.RepoAnalysis, 0, len(rows))
	for _, row := range rows {
		analysis, err := row.decode()
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// FindByID returns the analysis with the given id. Ids that are not UUIDs
// yield models.ErrInvalidID.
func (db *DB) FindByID(ctx context.Context, id string) (*models.RepoAnalysis, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid id", models.ErrInvalidID, id)
	}

	stmt, err := db.getStmt(ctx, selectAnalysisQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	var row analysisRow
	if err := stmt.GetContext(ctx, &row, parsed.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: analysis %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get analysis %s: %v", models.ErrPersistence, id, err)
	}

	analysis, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}
