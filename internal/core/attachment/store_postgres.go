// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attachment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mediagate/internal/platform/apperr"
	"github.com/taibuivan/mediagate/internal/platform/database/schema"
	"github.com/taibuivan/mediagate/internal/platform/dberr"
)

// maxCandidates bounds the LIKE scan; two rows already mean "ambiguous".
const maxCandidates = 16

// likeEscaper escapes LIKE wildcards so file names match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// metadataDocument is the JSON shape of the metadata column.
type metadataDocument struct {
	Width  int                `json:"width"`
	Height int                `json:"height"`
	File   string             `json:"file"`
	Sizes  map[string]Variant `json:"sizes"`
}

// querier is the subset of pgxpool.Pool the repository needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db      querier
	builder squirrel.StatementBuilderType
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return newPostgresRepository(db)
}

func newPostgresRepository(db querier) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindIDs returns the ids of attachments whose metadata mentions relativePath.
func (repository *PostgresRepository) FindIDs(ctx context.Context, relativePath string) ([]int64, error) {
	query, args, err := repository.findIDsQuery(relativePath)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build find_attachment_ids: %w", err))
	}

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "find_attachment_ids")
	}
	defer rows.Close()

	ids := make([]int64, 0, 1)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_attachment_id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_attachment_ids")
	}

	return ids, nil
}

func (repository *PostgresRepository) findIDsQuery(relativePath string) (string, []any, error) {
	pattern := "%" + likeEscaper.Replace(relativePath) + "%"

	return repository.builder.
		Select(schema.MediaAttachment.ID).
		From(schema.MediaAttachment.Table).
		Where(squirrel.Like{schema.MediaAttachment.Metadata + "::text": pattern}).
		OrderBy(schema.MediaAttachment.ID).
		Limit(maxCandidates).
		ToSql()
}

// FindByID loads one attachment and decodes its metadata.
func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*Record, error) {
	query, args, err := repository.builder.
		Select(
			schema.MediaAttachment.ID,
			schema.MediaAttachment.File,
			schema.MediaAttachment.MimeType,
			schema.MediaAttachment.Metadata,
		).
		From(schema.MediaAttachment.Table).
		Where(squirrel.Eq{schema.MediaAttachment.ID: id}).
		ToSql()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build get_attachment_by_id: %w", err))
	}

	record := &Record{}
	var raw []byte

	err = repository.db.QueryRow(ctx, query, args...).Scan(&record.ID, &record.File, &record.MimeType, &raw)
	if err != nil {
		return nil, dberr.Wrap(err, "get_attachment_by_id")
	}

	var doc metadataDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode attachment %d metadata: %w", id, err))
	}

	record.Width = doc.Width
	record.Height = doc.Height
	record.Sizes = doc.Sizes
	if doc.File != "" {
		record.File = doc.File
	}
	if record.Sizes == nil {
		record.Sizes = map[string]Variant{}
	}

	return record, nil
}
