package main

import (
	"testing"

	"github.com/cbroglie/mustache"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestRender_Default(t *testing.T) {
	line, err := render(nil, recordView{Tag: []byte{0x9F, 0x02}, Length: "2", Value: []byte{0x00, 0x10}})
	require.NoError(t, err)
	assert.Equal(t, "9F02 [2] 0x00:0x10\n", line)

	line, err = render(nil, recordView{Tag: []byte{0x5A}, Length: "70000", Streamed: true})
	require.NoError(t, err)
	assert.Equal(t, "5A [70000] (not shown)\n", line)
}

func TestRender_Template(t *testing.T) {
	tmpl, err := mustache.ParseString("{{index}} {{tag}} {{octets}}\n")
	require.NoError(t, err)

	line, err := render(tmpl, recordView{Index: 3, Tag: []byte{0x5A}, Length: "1", Value: []byte{0xFF}})
	require.NoError(t, err)
	assert.Equal(t, "3 5A 0xFF\n", line)
}
