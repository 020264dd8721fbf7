package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableIdentifier(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{table: "players", want: `"players"`},
		{table: "public.players_21", want: `"public"."players_21"`},
		{table: "Players 21", want: `"Players 21"`},
		{table: `evil"; DROP TABLE x; --`, want: `"evil""; DROP TABLE x; --"`},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, TableIdentifier(tt.table).Sanitize())
		})
	}
}
