package schema

import "testing"

func TestKindOf(t *testing.T) {
	tests := []struct {
		dataType string
		want     TypeKind
	}{
		{"character varying", KindVarchar},
		{"varchar", KindVarchar},
		{"character", KindChar},
		{"char", KindChar},
		{"numeric", KindNumeric},
		{"decimal", KindNumeric},
		{"integer", KindInteger},
		{"int", KindInteger},
		{"bigint", KindBigint},
		{"smallint", KindSmallint},
		{"boolean", KindBoolean},
		{"date", KindDate},
		{"timestamp without time zone", KindTimestamp},
		{"datetime", KindTimestamp},
		{"timestamp with time zone", KindTimestampTZ},
		{"text", KindText},
		{"json", KindJSON},
		{"jsonb", KindJSONB},
		{"uuid", KindOther},
		{"bytea", KindOther},
		{"double precision", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			if got := KindOf(tt.dataType); got != tt.want {
				t.Errorf("KindOf(%q) = %v, want %v", tt.dataType, got, tt.want)
			}
		})
	}
}
