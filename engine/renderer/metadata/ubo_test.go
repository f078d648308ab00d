package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardUBOSize(t *testing.T) {
	// Three column-major mat4s plus one vec4, no padding.
	require.Equal(t, uint64(3*64+16), StandardUBOSize)

	var ubo StandardUBO
	require.Len(t, ubo.Bytes(), int(StandardUBOSize))
}

var alignStrideTestCases = map[string]struct {
	Size         uint64
	MinAlignment uint64
	Expected     uint64
}{
	"TestExactFit":      {Size: 256, MinAlignment: 256, Expected: 256},
	"TestRoundsUp":      {Size: 208, MinAlignment: 256, Expected: 256},
	"TestSmallAlign":    {Size: 208, MinAlignment: 16, Expected: 208},
	"TestOddSize":       {Size: 209, MinAlignment: 64, Expected: 256},
	"TestZeroAlignment": {Size: 208, MinAlignment: 0, Expected: 208},
}

func TestAlignUniformStride(t *testing.T) {
	for testName, testCase := range alignStrideTestCases {
		t.Run(testName, func(t *testing.T) {
			got := AlignUniformStride(testCase.Size, testCase.MinAlignment)
			require.Equal(t, testCase.Expected, got)
			if testCase.MinAlignment > 0 {
				require.Zero(t, got%testCase.MinAlignment)
				require.GreaterOrEqual(t, got, testCase.Size)
			}
		})
	}
}
