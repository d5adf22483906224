package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

const katexMeta = "sha384-odtC+0UGzzFL/6PNoE8rX/SPcQDXBJ+uRepguP4QkPCm2LBxH3FA3y+fKSiJ+AmM"

func TestParse(t *testing.T) {
	digests, err := Parse(katexMeta)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, SHA384, digests[0].Algorithm)
	assert.Equal(t, katexMeta, digests[0].String())
}

func TestParseSkipsUnknownAlgorithms(t *testing.T) {
	sha256Meta, err := Compute([]byte("body{}"), SHA256)
	require.NoError(t, err)

	digests, err := Parse("md5-AAAA " + sha256Meta + "?ct=text/css")
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, SHA256, digests[0].Algorithm)
	assert.Equal(t, "ct=text/css", digests[0].Options)
}

func TestParseRejectsMalformedMetadata(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"no prefix":    "abcdef",
		"only unknown": "md5-AAAA",
		"bad base64":   "sha256-!!!",
		"wrong length": "sha384-AAAA",
	}
	for name, meta := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(meta)
			require.Error(t, err)
			assert.True(t, ferrors.HasCode(err, ferrors.CodeInvalidIntegrity))
		})
	}
}

func TestVerify(t *testing.T) {
	content := []byte(".katex { font-size: 1.1em; }")
	meta, err := Compute(content, SHA384)
	require.NoError(t, err)

	require.NoError(t, Verify(content, meta))

	err = Verify([]byte("tampered"), meta)
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeIntegrityMismatch))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryIntegrity))
}

func TestVerifyUsesStrongestAlgorithmOnly(t *testing.T) {
	content := []byte("a{}")
	weak, err := Compute(content, SHA256)
	require.NoError(t, err)
	strongWrong, err := Compute([]byte("other"), SHA512)
	require.NoError(t, err)

	// A matching weaker digest does not rescue a mismatching stronger one.
	err = Verify(content, weak+" "+strongWrong)
	require.Error(t, err)

	strong, err := Compute(content, SHA512)
	require.NoError(t, err)
	require.NoError(t, Verify(content, strongWrong+" "+strong))
}

func TestComputeRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Compute(nil, Algorithm("md5"))
	require.Error(t, err)
}
