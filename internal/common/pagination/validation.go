package pagination

// Normalize clamps the window: limit ≤ 0 takes the default, limit above the
// maximum takes the maximum, and a negative offset becomes zero.
func (p Params) Normalize(config Config) Params {
	if p.Limit <= 0 {
		p.Limit = config.DefaultLimit
	}
	if p.Limit > config.MaxLimit {
		p.Limit = config.MaxLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
