package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Packed voxels are 4 float32s: the contour position followed by a word whose
// bits, read as an integer, carry the flags.
const (
	filledBit = 1
	edgeShift = 1
	flipShift = edgeShift + EdgeCount
)

// Pack encodes v in the packed storage layout.
func Pack(v Voxel) [4]float32 {
	var w uint32
	if v.Filled {
		w |= filledBit
	}

	w |= uint32(v.EdgeMask&edgeBits) << edgeShift
	w |= uint32(v.FlipMask&edgeBits) << flipShift

	return [4]float32{
		v.ContourPosition[0],
		v.ContourPosition[1],
		v.ContourPosition[2],
		math.Float32frombits(w),
	}
}

// Unpack decodes a packed voxel. coords and center are not part of the packed
// data and are passed through.
func Unpack(coords [3]int, center mgl32.Vec3, data [4]float32) Voxel {
	w := math.Float32bits(data[3])

	return Voxel{
		Coords:          coords,
		Filled:          w&filledBit != 0,
		ContourPosition: mgl32.Vec3{data[0], data[1], data[2]},
		Center:          center,
		EdgeMask:        uint16(w>>edgeShift) & edgeBits,
		FlipMask:        uint16(w>>flipShift) & edgeBits,
	}
}
