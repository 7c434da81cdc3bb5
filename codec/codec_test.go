package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name   string   `json:"name"`
	Phones []string `json:"phones"`
	Age    int      `json:"age"`
}

func roundTrip(t *testing.T, c Codec) {
	t.Helper()

	in := testDoc{Name: "John Doe", Phones: []string{"+1555", "+1666"}, Age: 42}

	b, err := c.Marshal(in)
	require.NoError(t, err)

	var out testDoc
	require.NoError(t, c.Unmarshal(b, &out))
	require.Equal(t, in, out)
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, c := range []Codec{
		JSON{},
		GoJSON{},
		Zstd(JSON{}),
		Zstd(GoJSON{}),
		LZ4(JSON{}),
		LZ4(GoJSON{}),
	} {
		t.Run(c.Name(), func(t *testing.T) {
			roundTrip(t, c)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{
		"json", "go-json", "json+zstd", "go-json+zstd", "json+lz4", "go-json+lz4",
	} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestUnknownFieldsIgnored(t *testing.T) {
	// Old readers must tolerate fields added by newer writers.
	data := []byte(`{"name":"Joan","age":7,"nickname":"jo","phones":null}`)

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		var out testDoc
		require.NoError(t, c.Unmarshal(data, &out))
		assert.Equal(t, "Joan", out.Name)
		assert.Equal(t, 7, out.Age)
	}
}

func TestCompressedCodec_RejectsPlainBytes(t *testing.T) {
	var out testDoc
	err := Zstd(GoJSON{}).Unmarshal([]byte(`{"name":"x"}`), &out)
	require.Error(t, err)
}
