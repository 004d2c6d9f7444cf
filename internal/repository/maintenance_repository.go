package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

// SchoolDataTables are the tables holding school records, in dependency order (children last).
var SchoolDataTables = []string{
	"classes", "students", "semesters", "materials", "attendance", "formative_scores", "summative_scores", "journals", "ledger_snapshots",
}

// BackupTables are every table included in a backup dump.
var BackupTables = append([]string{"users", "grade_weights"}, SchoolDataTables...)

// RestoreTables are the tables a restore replaces. User accounts are left as they are.
var RestoreTables = append([]string{"grade_weights"}, SchoolDataTables...)

// MaintenanceRepository runs database-wide maintenance statements.
type MaintenanceRepository struct {
	db *sqlx.DB
}

// NewMaintenanceRepository constructs the repository.
func NewMaintenanceRepository(db *sqlx.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// TableCounts returns the row count of each table.
func (r *MaintenanceRepository) TableCounts(ctx context.Context, tables []string) ([]models.TableCount, error) {
	counts := make([]models.TableCount, 0, len(tables))
	for _, table := range tables {
		var rows int
		if err := r.db.GetContext(ctx, &rows, "SELECT COUNT(*) FROM "+pq.QuoteIdentifier(table)); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts = append(counts, models.TableCount{Table: table, Rows: rows})
	}
	return counts, nil
}

// DatabaseSize returns the human readable size of the current database.
func (r *MaintenanceRepository) DatabaseSize(ctx context.Context) (string, error) {
	var size string
	if err := r.db.GetContext(ctx, &size, `SELECT pg_size_pretty(pg_database_size(current_database()))`); err != nil {
		return "", fmt.Errorf("database size: %w", err)
	}
	return size, nil
}

// DumpTable reads every row of table as column/value maps.
func (r *MaintenanceRepository) DumpTable(ctx context.Context, table string) ([]map[string]interface{}, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		for k, v := range row {
			switch val := v.(type) {
			case []byte:
				row[k] = string(val)
			case time.Time:
				row[k] = val.UTC().Format(time.RFC3339Nano)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// Vacuum runs VACUUM ANALYZE on each table. VACUUM cannot run inside a transaction.
func (r *MaintenanceRepository) Vacuum(ctx context.Context, tables []string) error {
	for _, table := range tables {
		if _, err := r.db.ExecContext(ctx, "VACUUM ANALYZE "+pq.QuoteIdentifier(table)); err != nil {
			return fmt.Errorf("vacuum %s: %w", table, err)
		}
	}
	return nil
}

// Truncate empties the given tables in a single statement.
func (r *MaintenanceRepository) Truncate(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, truncateStatement(tables)); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// Restore replaces the contents of tables with rows inside one transaction. The tables are
// truncated together, then filled in the given order so parents load before children.
func (r *MaintenanceRepository) Restore(ctx context.Context, tables []string, rows map[string][]map[string]interface{}) (err error) {
	if len(tables) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, truncateStatement(tables)); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	for _, table := range tables {
		for i, row := range rows[table] {
			query, args, buildErr := insertStatement(table, row)
			if buildErr != nil {
				return fmt.Errorf("restore %s row %d: %w", table, i+1, buildErr)
			}
			if _, err = tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("restore %s row %d: %w", table, i+1, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit restore tx: %w", err)
	}
	return nil
}

func truncateStatement(tables []string) string {
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = pq.QuoteIdentifier(table)
	}
	return "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"
}

// insertStatement builds a parameterised INSERT with columns in sorted order.
func insertStatement(table string, row map[string]interface{}) (string, []interface{}, error) {
	if len(row) == 0 {
		return "", nil, errors.New("row has no columns")
	}
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		quoted[i] = pq.QuoteIdentifier(column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[column]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}
