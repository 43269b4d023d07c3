// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

var tracer = otel.Tracer("github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists incidents in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New verifies the connection, applies the schema, and returns a ready
// Store. The Store takes ownership of the pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Insert records an incident and returns its database-assigned id.
func (s *Store) Insert(ctx context.Context, in *triage.Incident) (int64, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Insert", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO incidents (message, priority, source_service, confidence_score, resolved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		in.Message, in.Priority, in.Source, in.Confidence, in.Resolved, in.CreatedAt,
	).Scan(&id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("insert incident: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit incidents, newest first by id.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]triage.Incident, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ListRecent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, message, priority, source_service, confidence_score, resolved, created_at
		 FROM incidents ORDER BY id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var out []triage.Incident
	for rows.Next() {
		var in triage.Incident
		if err := rows.Scan(&in.ID, &in.Message, &in.Priority, &in.Source, &in.Confidence, &in.Resolved, &in.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return out, nil
}
