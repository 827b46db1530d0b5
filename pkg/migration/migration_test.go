package migration

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbedded(t *testing.T) {
	migrations, err := Embedded()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	// Versions must come back ordered
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Errorf("migrations out of order: %s before %s",
				migrations[i-1].Version, migrations[i].Version)
		}
	}

	for _, mig := range migrations {
		if strings.TrimSpace(mig.UpSQL) == "" {
			t.Errorf("migration %s has empty up SQL", mig.Version)
		}
		if strings.TrimSpace(mig.DownSQL) == "" {
			t.Errorf("migration %s has empty down SQL", mig.Version)
		}
	}

	if migrations[0].Name != "create_users" {
		t.Errorf("expected first migration create_users, got %s", migrations[0].Name)
	}
	if !strings.Contains(migrations[2].UpSQL, "order_products") {
		t.Error("orders migration should create the join table")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr bool
		count   int
	}{
		{
			name: "valid pair",
			files: map[string]string{
				"0001_create_widgets.up.sql":   "CREATE TABLE widgets (id SERIAL PRIMARY KEY);",
				"0001_create_widgets.down.sql": "DROP TABLE widgets;",
			},
			count: 1,
		},
		{
			name: "missing up file",
			files: map[string]string{
				"0001_create_widgets.down.sql": "DROP TABLE widgets;",
			},
			wantErr: true,
		},
		{
			name: "unexpected file name",
			files: map[string]string{
				"README.md": "notes",
			},
			wantErr: true,
		},
		{
			name: "conflicting names for one version",
			files: map[string]string{
				"0001_create_widgets.up.sql": "CREATE TABLE widgets (id SERIAL PRIMARY KEY);",
				"0001_create_gadgets.up.sql": "CREATE TABLE gadgets (id SERIAL PRIMARY KEY);",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, content := range tt.files {
				fsys["sql/"+name] = &fstest.MapFile{Data: []byte(content)}
			}
			migrations, err := load(fsys, "sql")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(migrations) != tt.count {
				t.Errorf("expected %d migrations, got %d", tt.count, len(migrations))
			}
		})
	}
}

func TestSplitSQL(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected int
	}{
		{
			name:     "single statement",
			sql:      "CREATE TABLE t (id INT);",
			expected: 1,
		},
		{
			name:     "multiple statements",
			sql:      "CREATE TABLE a (id INT);\nCREATE TABLE b (id INT);",
			expected: 2,
		},
		{
			name:     "comments and blank lines removed",
			sql:      "-- a comment\n\nCREATE TABLE t (id INT);\n\n-- another\n",
			expected: 1,
		},
		{
			name:     "empty input",
			sql:      "",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statements := splitSQL(tt.sql)
			if len(statements) != tt.expected {
				t.Errorf("expected %d statements, got %d: %v", tt.expected, len(statements), statements)
			}
		})
	}
}
