package class_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/polyskema/class"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		expr string
		want string
		opt  bool
	}{
		{"", "any", false},
		{"str", "str", false},
		{"float", "float", false},
		{"list[int]", "list[int]", false},
		{"dict[str, float]", "map[float]", false},
		{"tuple[float, float]", "tuple[float,float]", false},
		{"optional[list[str]]", "list[str]", true},
		{"Length", "Length", false},
		{"map", "map[any]", false},
		{"date-time", "datetime", false},
		{"list[datetime]", "list[datetime]", false},
	}
	for _, tc := range cases {
		got, opt, err := class.ParseType(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, got.String(), tc.expr)
		assert.Equal(t, tc.opt, opt, tc.expr)
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, expr := range []string{"list[int", "dict[int,str]", "Length[int]", "int[str]", "tuple[int]]", "optional"} {
		_, _, err := class.ParseType(expr)
		assert.Error(t, err, expr)
	}
}
