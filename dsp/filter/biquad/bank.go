package biquad

// Bank runs one Section per channel with shared coefficients.
type Bank struct {
	sections []Section
}

// NewBank returns a Bank of channels sections initialized with c.
func NewBank(channels int, c Coefficients) *Bank {
	b := &Bank{sections: make([]Section, max(channels, 1))}
	b.SetCoefficients(c)

	return b
}

// SetCoefficients swaps the coefficients of every channel. Delay-line state
// is kept so parameter sweeps do not click.
func (b *Bank) SetCoefficients(c Coefficients) {
	for i := range b.sections {
		b.sections[i].Coefficients = c
	}
}

// Coefficients returns the shared coefficients.
func (b *Bank) Coefficients() Coefficients {
	return b.sections[0].Coefficients
}

// Process filters a planar block in place. Channels beyond the bank size
// are left untouched.
func (b *Bank) Process(block [][]float64) {
	for ch := range block {
		if ch >= len(b.sections) {
			return
		}

		b.sections[ch].ProcessBlock(block[ch])
	}
}

// Reset clears every channel's state.
func (b *Bank) Reset() {
	for i := range b.sections {
		b.sections[i].Reset()
	}
}

// State returns the delay-line state of channel ch.
func (b *Bank) State(ch int) [2]float64 {
	return b.sections[ch].State()
}
