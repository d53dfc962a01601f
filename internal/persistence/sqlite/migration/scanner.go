package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Pattern matches: {version}_{description}.sql
var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scan reads every migration file in dir of fsys and returns them ordered by version.
func Scan(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, newMigrationError(0, dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[int]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		filePath := path.Join(dir, entry.Name())
		m, err := parseFile(fsys, filePath)
		if err != nil {
			return nil, err
		}

		if existing, ok := seen[m.Version]; ok {
			return nil, newMigrationError(m.Version, filePath, "check duplicates",
				fmt.Errorf("%w: also defined in %s", ErrDuplicateVersion, existing))
		}
		seen[m.Version] = filePath
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func parseFile(fsys fs.FS, filePath string) (Migration, error) {
	name := path.Base(filePath)
	matches := migrationFilePattern.FindStringSubmatch(name)
	if len(matches) != 3 {
		return Migration{}, newMigrationError(0, filePath, "validate filename",
			fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, name))
	}

	version, err := strconv.Atoi(matches[1])
	if err != nil || version <= 0 {
		return Migration{}, newMigrationError(0, filePath, "validate filename",
			fmt.Errorf("%w: version %q is not a positive number", ErrInvalidMigrationFile, matches[1]))
	}

	content, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return Migration{}, newMigrationError(version, filePath, "read file", err)
	}
	sqlContent := string(content)
	if len(splitStatements(sqlContent)) == 0 {
		return Migration{}, newMigrationError(version, filePath, "validate content",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	description := descriptionFromContent(sqlContent)
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	sum := sha256.Sum256(content)
	return Migration{
		Version:     version,
		Description: description,
		SQL:         sqlContent,
		FilePath:    filePath,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

func descriptionFromContent(sql string) string {
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			continue
		}
		comment := strings.TrimSpace(strings.TrimPrefix(line, "--"))
		if after, ok := strings.CutPrefix(comment, "Description:"); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// splitStatements splits SQL content on semicolons and drops comment-only lines.
func splitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
