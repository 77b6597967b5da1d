package mpoly

// Stats summarizes a polynomial for reports.
type Stats struct {
	Terms        int
	TotalDegree  uint64
	MaxCoeffBits int
	FieldBits    uint
	Words        int // packed words per monomial
}

// Stats computes the summary of p.
func (p *Poly) Stats(ctx *Context) Stats {
	s := Stats{Terms: p.Len, FieldBits: p.Bits, Words: p.Layout(ctx).N}
	lay := p.Layout(ctx)
	exps := make([]uint64, ctx.nvars)
	for k := 0; k < p.Len; k++ {
		lay.Unpack(exps, p.Exp(k))
		var deg uint64
		for _, e := range exps {
			deg += e
		}
		s.TotalDegree = max(s.TotalDegree, deg)
		s.MaxCoeffBits = max(s.MaxCoeffBits, p.Coeffs[k].BitLen())
	}
	return s
}
