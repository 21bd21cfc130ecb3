package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsObjectKeys(t *testing.T) {
	got, err := Marshal(map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mango":3,"zebra":1}`, string(got))
}

func TestMarshal_NestedContainers(t *testing.T) {
	got, err := Marshal(map[string]any{
		"outer": map[string]any{
			"b": []any{true, false, nil},
			"a": "text",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"outer":{"a":"text","b":[true,false,null]}}`, string(got))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	got, err := Marshal(map[string]any{"cmp": "a < b && c > d"})
	require.NoError(t, err)
	assert.Equal(t, `{"cmp":"a < b && c > d"}`, string(got))
}

func TestMarshal_NFCNormalizesStrings(t *testing.T) {
	// "é" as 'e' plus combining acute must encode identically to the
	// precomposed form.
	decomposed, err := Marshal("cafe\u0301")
	require.NoError(t, err)
	composed, err := Marshal("caf\u00e9")
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshal_Scalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float", 41.75, "41.75"},
		{"string", "hello", `"hello"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestMarshal_StructFallback(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	got, err := Marshal(map[string]any{"data": payload{Name: "x", Count: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"count":2,"name":"x"}}`, string(got))
}

func TestMarshal_Deterministic(t *testing.T) {
	in := map[string]any{
		"details": map[string]any{"pens": 10, "weight": 41.75, "title": "some stationary"},
		"message": "inventory is consistent",
	}
	first, err := Marshal(in)
	require.NoError(t, err)
	for range 10 {
		again, err := Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestNormalizeNFC(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NormalizeNFC("cafe\u0301"))
	assert.Equal(t, "plain", NormalizeNFC("plain"))
}
