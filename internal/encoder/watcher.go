package encoder

// Pins describes where the encoder is wired.
type Pins struct {
	Chip string
	CLK  int
	DT   int
	SW   int
}
