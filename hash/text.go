package hash

// Text is a string carrying its precomputed digest.
type Text struct {
	s string
	h Hash
}

// NewText computes digest of s with provider p.
func NewText(s string, p Provider) (*Text, error) {
	h, err := p.Sum([]byte(s))
	if err != nil {
		return nil, err
	}
	return &Text{s: s, h: h}, nil
}

func (t *Text) ComputedHash() Hash { return t.h }
func (t *Text) String() string     { return t.s }
