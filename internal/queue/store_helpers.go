package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source_path, output_path, request_id, status, strategy, retried, probe_json, diagnostic, error_message, progress_percent, elapsed_seconds, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		sourcePath      string
		outputPath      sql.NullString
		requestID       sql.NullString
		statusStr       string
		strategy        sql.NullString
		retried         sql.NullInt64
		probeJSON       sql.NullString
		diagnostic      sql.NullString
		errorMessage    sql.NullString
		progressPercent sql.NullFloat64
		elapsedSeconds  sql.NullFloat64
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&outputPath,
		&requestID,
		&statusStr,
		&strategy,
		&retried,
		&probeJSON,
		&diagnostic,
		&errorMessage,
		&progressPercent,
		&elapsedSeconds,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		SourcePath:      sourcePath,
		OutputPath:      outputPath.String,
		RequestID:       requestID.String,
		Status:          Status(statusStr),
		Strategy:        strategy.String,
		ProbeJSON:       probeJSON.String,
		Diagnostic:      diagnostic.String,
		ErrorMessage:    errorMessage.String,
		ProgressPercent: progressPercent.Float64,
		ElapsedSeconds:  elapsedSeconds.Float64,
	}
	if retried.Valid {
		item.Retried = retried.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
