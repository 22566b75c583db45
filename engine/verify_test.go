package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedTrace(t *testing.T, cfg Config, msg string) *TraceDocument {
	t.Helper()
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	steps, err := e.Hash(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, msg, cfg, steps))
	doc, err := ReadJSON(&buf)
	require.NoError(t, err)
	return doc
}

func TestVerifyTrace(t *testing.T) {
	doc := storedTrace(t, DefaultConfig(), "abc")
	ok, err := VerifyTrace(doc)
	require.NoError(t, err)
	assert.True(t, ok)

	short := storedTrace(t, Config{RoundCount: 3}, "hello")
	ok, err = VerifyTrace(short)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyTraceTampered(t *testing.T) {
	doc := storedTrace(t, DefaultConfig(), "abc")
	doc.Steps[20].StateAfter.A ^= 1
	ok, err := VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok)

	doc = storedTrace(t, DefaultConfig(), "abc")
	doc.Steps[5].Values[0].Number ^= 1
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok, "altered value")

	doc = storedTrace(t, DefaultConfig(), "abc")
	require.NotEmpty(t, doc.Steps[3].Gates)
	doc.Steps[3].Gates[0].Output ^= 1
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok, "altered gate")

	doc = storedTrace(t, DefaultConfig(), "abc")
	doc.Steps[5].Gates = nil
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok, "dropped gates")

	doc = storedTrace(t, DefaultConfig(), "abc")
	doc.Steps[5].StateBefore.A ^= 1
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok, "altered state before")

	doc = storedTrace(t, DefaultConfig(), "abc")
	doc.Steps[9].ChangedBits = doc.Steps[9].ChangedBits[1:]
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok, "altered changed bits")

	doc = storedTrace(t, DefaultConfig(), "abc")
	doc.Message = "abd"
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok)

	doc = storedTrace(t, DefaultConfig(), "abc")
	doc.Steps = doc.Steps[:len(doc.Steps)-2]
	ok, err = VerifyTrace(doc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyTraceInvalid(t *testing.T) {
	_, err := VerifyTrace(nil)
	assert.Error(t, err)

	doc := storedTrace(t, DefaultConfig(), "abc")
	doc.Config = Config{RoundCount: 99}
	_, err = VerifyTrace(doc)
	assert.ErrorIs(t, err, ErrInvalidRoundCount)

	_, err = ReadJSON(bytes.NewBufferString("{"))
	assert.Error(t, err)
}

func TestVerifyDigest(t *testing.T) {
	e := newStandard(t)
	ok, err := e.VerifyDigest("abc", "BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD\n")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.VerifyDigest("abd", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	require.NoError(t, err)
	assert.False(t, ok)
}
