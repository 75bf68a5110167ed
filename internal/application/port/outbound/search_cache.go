package outbound

import "github.com/DioGolang/GoPlaces/internal/domain/entity"

type SearchCache interface {
	Get(query string) ([]entity.Place, bool)
	Set(query string, places []entity.Place)
}
