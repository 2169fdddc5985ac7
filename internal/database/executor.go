package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Query executes a raw SurrealQL query with parameters and returns multiple
// results, unmarshalled into a slice of type T.
func Query[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) ([]T, error) {
	queryResults, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if len(*queryResults) == 0 {
		return nil, nil
	}
	return (*queryResults)[0].Result, nil
}

// QueryOne executes a query and returns a single result.
// If no results are found, it returns nil, nil.
func QueryOne[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) (*T, error) {
	// Only SELECT statements support LIMIT; CREATE/UPDATE/DELETE do not.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}

	results, err := Query[T](ctx, db, query, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Execute runs a query that doesn't return rows (INSERT, UPDATE, DELETE, etc.).
func Execute(ctx context.Context, db *surrealdb.DB, query string, params map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	return nil
}

func hasLimitClause(query string) bool {
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}
