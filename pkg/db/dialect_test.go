package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://user:pw@localhost:5432/orsta", DriverPostgres},
		{"postgresql://localhost/orsta", DriverPostgres},
		{"host=localhost user=orsta dbname=orsta", DriverPostgres},
		{"orsta.db", DriverSQLite},
		{"/var/lib/orsta/orsta.db", DriverSQLite},
		{"file:orsta?mode=memory", DriverSQLite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DriverName(tt.url), "url %q", tt.url)
	}
}
