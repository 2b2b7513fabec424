package generator

import "github.com/google/uuid"

type uuidGen struct{}

func (g *uuidGen) Next(ctx Context) (any, error) {
	return uuid.NewString(), nil
}
