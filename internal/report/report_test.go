package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcm-pool/internal/factor"
)

func TestText(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Text(buf, factor.Table{7: 1, 3: 2, 5: 1}))

	assert.Equal(t, "3 : 2\n5 : 1\n7 : 1\nLeast common multiple is 315\n", buf.String())
}

func TestTextEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Text(buf, factor.Table{}))

	assert.Equal(t, "Least common multiple is 1\n", buf.String())
}

func TestJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, JSON(buf, factor.Table{2: 2, 3: 1}))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "12", doc.LCM)
	assert.True(t, doc.Fits64)
	assert.Equal(t, []factor.Term{{Prime: 2, Exponent: 2}, {Prime: 3, Exponent: 1}}, doc.Factors)
}

func TestDocumentOverflow(t *testing.T) {
	doc := NewDocument(factor.Table{2: 70})

	assert.False(t, doc.Fits64)
	assert.Equal(t, "1180591620717411303424", doc.LCM)
}
