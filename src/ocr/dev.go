package ocr

import (
	"context"
	"image"
)

// DevEngine returns a fixed chat transcript instead of reading the image.
type DevEngine struct{}

func (DevEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "[Equipe] Jogador1: oi pessoal, bora jogar?\n[Equipe] Jogador2: bora!", nil
}
