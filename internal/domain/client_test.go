package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseNameFor(t *testing.T) {
	tests := []struct {
		name   string
		church string
		want   string
	}{
		{"simple", "Grace Chapel", "grace_chapel"},
		{"already slugged", "grace_chapel", "grace_chapel"},
		{"collapses whitespace", "  Igreja   Batista \t Central ", "igreja_batista_central"},
		{"strips punctuation", "St. Mary's Church!", "st_marys_church"},
		{"strips accents entirely", "Assembleia de Deus São João", "assembleia_de_deus_so_joo"},
		{"digits kept", "Igreja 7 de Setembro", "igreja_7_de_setembro"},
		{"empty", "", ""},
		{"only invalid chars", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DatabaseNameFor(tt.church))
		})
	}
}

func TestDatabaseNameFor_Idempotent(t *testing.T) {
	inputs := []string{"Grace Chapel", "Igreja Batista Central", "a  b  c", "X9_y"}
	for _, in := range inputs {
		once := DatabaseNameFor(in)
		assert.Equal(t, once, DatabaseNameFor(once), "slug must be idempotent for %q", in)
	}
}

func TestDatabaseNameFor_OutputCharset(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]*$`)
	inputs := []string{"Grace Chapel", "Ünïcode Nämé", "tabs\tand\nnewlines", "UPPER CASE", "semi;colon"}
	for _, in := range inputs {
		assert.Regexp(t, valid, DatabaseNameFor(in))
	}
}
