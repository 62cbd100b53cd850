package core

// NewBlock allocates a planar block with the given channel count and length.
func NewBlock(channels, frames int) [][]float64 {
	if channels < 0 {
		channels = 0
	}

	if frames < 0 {
		frames = 0
	}

	block := make([][]float64, channels)
	for ch := range block {
		block[ch] = make([]float64, frames)
	}

	return block
}

// EnsureBlock returns a planar block with at least the requested channels
// and exactly frames samples per channel, reusing capacity where possible.
func EnsureBlock(block [][]float64, channels, frames int) [][]float64 {
	if len(block) < channels {
		grown := make([][]float64, channels)
		copy(grown, block)
		block = grown
	}

	block = block[:channels]
	for ch := range block {
		if cap(block[ch]) >= frames {
			block[ch] = block[ch][:frames]
			continue
		}

		block[ch] = make([]float64, frames)
	}

	return block
}

// ZeroBlock sets every sample in block to 0.
func ZeroBlock(block [][]float64) {
	for _, ch := range block {
		for i := range ch {
			ch[i] = 0
		}
	}
}

// SliceBlock returns the frames [start, end) of every channel without copying.
func SliceBlock(block [][]float64, start, end int) [][]float64 {
	out := make([][]float64, len(block))
	for ch := range block {
		out[ch] = block[ch][start:end]
	}

	return out
}

// Frames returns the per-channel length of block, 0 when it has no channels.
func Frames(block [][]float64) int {
	if len(block) == 0 {
		return 0
	}

	return len(block[0])
}
