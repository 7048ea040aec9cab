package inesfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImage(prgBlocks, chrBlocks int, flags6, flags7 byte) []byte {
	data := []byte{'N', 'E', 'S', 0x1A, byte(prgBlocks), byte(chrBlocks), flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	data = append(data, make([]byte, prgBlocks*prgBlockSize)...)
	data = append(data, make([]byte, chrBlocks*chrBlockSize)...)
	return data
}

func TestParseBadMagic(t *testing.T) {
	_, err := Parse([]byte{0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestParseMapperNumberSplitAcrossBytes(t *testing.T) {
	// mapper 49 = 0x31: low nibble 1 in flags6 bits4-7, high nibble 3 in flags7 bits4-7
	img := buildImage(1, 1, 0x10, 0x30)
	rom, err := Parse(img)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x31), rom.MapperNum)
}

func TestParseMirroringVertical(t *testing.T) {
	img := buildImage(1, 1, 0x01, 0x00)
	rom, err := Parse(img)
	require.NoError(t, err)
	assert.Equal(t, uint8(MirrorVertical), rom.Mirroring)
}

func TestParseSkipsTrainer(t *testing.T) {
	img := buildImage(1, 0, 0x04, 0x00)
	trainer := make([]byte, trainerSize)
	full := append(append([]byte{}, img[:headerSize]...), trainer...)
	full = append(full, img[headerSize:]...)

	rom, err := Parse(full)
	require.NoError(t, err)
	assert.Len(t, rom.PRG, prgBlockSize)
}

func TestParseChrRAMWhenNoChrBlocks(t *testing.T) {
	img := buildImage(1, 0, 0, 0)
	rom, err := Parse(img)
	require.NoError(t, err)
	assert.Empty(t, rom.CHR)
}

func TestParseTruncatedPRG(t *testing.T) {
	img := buildImage(2, 0, 0, 0)
	_, err := Parse(img[:headerSize+prgBlockSize]) // claims 2 blocks, has 1
	assert.Error(t, err)
}
