package generator

type constGen struct {
	value any
}

func (g *constGen) Next(ctx Context) (any, error) {
	return g.value, nil
}
